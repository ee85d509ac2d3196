package goform

import (
	"fmt"
	"slices"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/reoring/goform/control"
	"github.com/reoring/goform/i18n"
)

// Report is a snapshot of a form's validation state.
type Report struct {
	Valid    bool           `json:"valid"`
	Status   string         `json:"status"`
	Errors   map[string]any `json:"errors,omitempty"`
	Warnings map[string]any `json:"warnings,omitempty"`
}

// Report captures the status and the aggregated error and warning trees.
func (f *Form) Report() Report {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	return Report{
		Valid:    f.root.Valid(),
		Status:   f.root.Status().String(),
		Errors:   f.aggregate(errorChannel),
		Warnings: f.aggregate(warningChannel),
	}
}

// Issues flattens the error and warning trees into a list addressed by
// JSON pointer paths ("/items/0/name"). Errors come before warnings; within
// a channel issues are ordered by path, then code.
func (r Report) Issues() Issues {
	var out Issues
	collect(&out, "", r.Errors, SeverityError)
	collect(&out, "", r.Warnings, SeverityWarning)
	return out
}

// JSON encodes the report.
func (r Report) JSON() ([]byte, error) { return json.Marshal(r) }

// Messages renders every issue as "path: message" with tr, or the current
// i18n translator when tr is nil.
func (r Report) Messages(tr i18n.Translator) []string {
	issues := r.Issues()
	out := make([]string, 0, len(issues))
	for _, is := range issues {
		out = append(out, pathOrRoot(is.Path)+": "+is.Text(tr))
	}
	return out
}

// Text is the message of the issue in tr (the current i18n translator when
// nil). A message carried by the validator payload wins.
func (is Issue) Text(tr i18n.Translator) string {
	if pm, ok := is.Params.(map[string]any); ok {
		if msg, ok := pm["errorMessage"].(string); ok && msg != "" {
			return msg
		}
	}
	if tr == nil {
		tr = i18n.Current()
	}
	return tr.Message(is.Code, messageData(is.Params))
}

func collect(out *Issues, path string, tree map[string]any, sev Severity) {
	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		switch k {
		case KeyGroupErrors, KeyGroupWarnings, KeyControlErrors, KeyControlWarnings:
			collectNode(out, path, tree[k], sev)
		case KeyArrayErrors, KeyArrayWarnings:
			perIndex, _ := tree[k].(map[int]any)
			idx := make([]int, 0, len(perIndex))
			for i := range perIndex {
				idx = append(idx, i)
			}
			slices.Sort(idx)
			for _, i := range idx {
				collectNode(out, path+"/"+strconv.Itoa(i), perIndex[i], sev)
			}
		default:
			collectNode(out, path+"/"+escapePointer(k), tree[k], sev)
		}
	}
}

func collectNode(out *Issues, path string, v any, sev Severity) {
	switch t := v.(type) {
	case control.Errors:
		appendFindings(out, path, t, sev)
	case control.Warnings:
		appendFindings(out, path, t, sev)
	case map[string]any:
		collect(out, path, t, sev)
	}
}

func appendFindings(out *Issues, path string, m map[string]any, sev Severity) {
	codes := make([]string, 0, len(m))
	for c := range m {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	for _, c := range codes {
		params := m[c]
		is := Issue{Path: path, Code: c, Severity: sev, Params: params}
		is.Message = is.Text(nil)
		*out = append(*out, is)
	}
}

func messageData(params any) map[string]string {
	pm, ok := params.(map[string]any)
	if !ok || len(pm) == 0 {
		return nil
	}
	data := make(map[string]string, len(pm))
	for k, v := range pm {
		data[k] = fmt.Sprint(v)
	}
	return data
}

// escapePointer escapes a JSON pointer reference token (RFC 6901).
func escapePointer(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '~':
			b = append(b, '~', '0')
		case '/':
			b = append(b, '~', '1')
		default:
			b = append(b, s[i])
		}
	}
	return string(b)
}
