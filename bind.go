package goform

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Bind decodes the form values into T through their JSON representation,
// so T's json tags name the fields. Disabled fields are left out unless
// includeDisabled is set.
func Bind[T any](f *Form, includeDisabled bool) (T, error) {
	var out T
	raw, err := json.Marshal(f.Values(includeDisabled))
	if err != nil {
		return out, fmt.Errorf("goform: bind: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("goform: bind: %w", err)
	}
	return out, nil
}

// MustBind is like Bind but panics on error.
func MustBind[T any](f *Form, includeDisabled bool) T {
	v, err := Bind[T](f, includeDisabled)
	if err != nil {
		panic(err)
	}
	return v
}
