// Package selectmodel tracks the options of a choice field and which of them
// are selected.
package selectmodel

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Option is one selectable entry.
type Option struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}

var (
	// ErrMultipleSelect is returned by single-selection calls on a
	// multi-select manager.
	ErrMultipleSelect = errors.New("selectmodel: single selection used on a multiple select")
	// ErrSingleSelect is returned when several ids are assigned to a
	// single-select manager.
	ErrSingleSelect = errors.New("selectmodel: multiple ids assigned to a single select")
)

// UnknownOptionError lists selected ids that are not in the option list.
type UnknownOptionError struct {
	IDs []string
}

func (e *UnknownOptionError) Error() string {
	return "selectmodel: ids not in the option list: " + strings.Join(e.IDs, ", ")
}

// Manager holds the option list and the selected ids. The selection is
// always a subset of the option ids.
type Manager struct {
	multiple bool
	values   []Option
	selected []string
}

// New returns an empty manager. multiple selects between 0..1 and 0..N
// selected ids.
func New(multiple bool) *Manager {
	return &Manager{multiple: multiple}
}

// Multiple reports whether several ids may be selected.
func (m *Manager) Multiple() bool { return m.multiple }

// Values returns the option list.
func (m *Manager) Values() []Option { return slices.Clone(m.values) }

// SetValues replaces the option list and clears the selection.
func (m *Manager) SetValues(values []Option) {
	m.values = slices.Clone(values)
	m.selected = nil
}

// ClearValues empties the option list and the selection.
func (m *Manager) ClearValues() { m.SetValues(nil) }

// FindValue returns the option with id.
func (m *Manager) FindValue(id string) (Option, bool) {
	i := slices.IndexFunc(m.values, func(o Option) bool { return o.ID == id })
	if i < 0 {
		return Option{}, false
	}
	return m.values[i], true
}

// SelectedIDs returns the selected ids in selection order.
func (m *Manager) SelectedIDs() []string { return slices.Clone(m.selected) }

// SelectedID returns the selected id of a single-select manager, or "" when
// nothing is selected.
func (m *Manager) SelectedID() (string, error) {
	if m.multiple {
		return "", ErrMultipleSelect
	}
	if len(m.selected) == 0 {
		return "", nil
	}
	return m.selected[0], nil
}

// SetSelectedID selects id on a single-select manager. An empty id clears
// the selection.
func (m *Manager) SetSelectedID(id string) error {
	if m.multiple {
		return ErrMultipleSelect
	}
	if id == "" {
		m.selected = nil
		return nil
	}
	return m.SetSelectedIDs([]string{id})
}

// SetSelectedIDs replaces the selection. Nothing changes when an error is
// returned.
func (m *Manager) SetSelectedIDs(ids []string) error {
	if len(ids) > 1 && !m.multiple {
		return ErrSingleSelect
	}
	var unknown []string
	for _, id := range ids {
		if _, ok := m.FindValue(id); !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return &UnknownOptionError{IDs: unknown}
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	m.selected = out
	return nil
}

// ClearSelection drops every selected id.
func (m *Manager) ClearSelection() { m.selected = nil }

// HasSelectedItem reports whether anything is selected.
func (m *Manager) HasSelectedItem() bool { return len(m.selected) > 0 }

// SelectedValue returns the selected option of a single-select manager.
func (m *Manager) SelectedValue() (Option, bool) {
	id, err := m.SelectedID()
	if err != nil || id == "" {
		return Option{}, false
	}
	return m.FindValue(id)
}

// SelectedValues returns the selected options in option-list order.
func (m *Manager) SelectedValues() []Option {
	var out []Option
	for _, o := range m.values {
		if slices.Contains(m.selected, o.ID) {
			out = append(out, o)
		}
	}
	return out
}

// SetSelected selects from a field value: nil clears, a string or other
// scalar selects one id, a slice selects each of its items.
func (m *Manager) SetSelected(v any) error {
	ids, isList := IDsOf(v)
	if !isList && !m.multiple {
		if len(ids) == 0 {
			return m.SetSelectedID("")
		}
		return m.SetSelectedID(ids[0])
	}
	return m.SetSelectedIDs(ids)
}

// IDsOf converts a field value to option ids. isList reports whether v was a
// slice or array.
func IDsOf(v any) (ids []string, isList bool) {
	if v == nil {
		return nil, false
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil, false
		}
		return []string{t}, false
	case []string:
		return slices.Clone(t), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out = append(out, fmt.Sprint(rv.Index(i).Interface()))
		}
		return out, true
	}
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, false
	}
	return []string{fmt.Sprint(v)}, false
}
