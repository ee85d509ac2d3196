package goform

import (
	"github.com/reoring/goform/control"
)

// Keys of the aggregated error and warning trees.
const (
	KeyGroupErrors     = "groupErrors"
	KeyGroupWarnings   = "groupWarnings"
	KeyControlErrors   = "controlErrors"
	KeyControlWarnings = "controlWarnings"
	KeyArrayErrors     = "arrayErrors"
	KeyArrayWarnings   = "arrayWarnings"
)

type channel int

const (
	errorChannel channel = iota
	warningChannel
)

func (c channel) own(n control.Node) any {
	if c == errorChannel {
		if e := n.Errors(); len(e) > 0 {
			return e
		}
		return nil
	}
	if w := n.Warnings(); len(w) > 0 {
		return w
	}
	return nil
}

func (c channel) keys() (group, ctrl, array string) {
	if c == errorChannel {
		return KeyGroupErrors, KeyControlErrors, KeyArrayErrors
	}
	return KeyGroupWarnings, KeyControlWarnings, KeyArrayWarnings
}

// Errors returns the validation errors of every field, or nil when there
// are none. Leaf fields map to their control.Errors. Array fields map to
// {"controlErrors": own errors, "arrayErrors": {index: element errors}},
// where elements built from a schema report their own aggregate. Errors
// of a group validator are reported under "groupErrors". Empty levels are
// left out.
func (f *Form) Errors() map[string]any {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	return f.aggregate(errorChannel)
}

// Warnings is Errors for the warning channel, with the keys
// "controlWarnings", "arrayWarnings" and "groupWarnings".
func (f *Form) Warnings() map[string]any {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	return f.aggregate(warningChannel)
}

// HasWarnings reports whether any node of the form carries a warning.
func (f *Form) HasWarnings() bool {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	return f.aggregate(warningChannel) != nil
}

func (f *Form) aggregate(c channel) map[string]any {
	out := map[string]any{}
	groupKey, _, _ := c.keys()
	if own := c.own(f.root); own != nil {
		out[groupKey] = own
	}
	for _, k := range f.keys {
		if v := f.fieldFindings(k, c); v != nil {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (f *Form) fieldFindings(k string, c channel) any {
	if sub := f.nested[k]; sub != nil {
		if agg := sub.aggregate(c); agg != nil {
			return agg
		}
		return nil
	}
	n := f.nodes[k]
	arr, ok := n.(*control.Array)
	if !ok {
		return c.own(n)
	}

	_, ctrlKey, arrayKey := c.keys()
	out := map[string]any{}
	if own := c.own(arr); own != nil {
		out[ctrlKey] = own
	}
	perIndex := map[int]any{}
	for i, el := range arr.Controls() {
		var v any
		if sub := OwnerOf(el); sub != nil {
			if agg := sub.aggregate(c); agg != nil {
				v = agg
			}
		} else {
			v = c.own(el)
		}
		if v != nil {
			perIndex[i] = v
		}
	}
	if len(perIndex) > 0 {
		out[arrayKey] = perIndex
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
