// Package goform builds reactive form models: trees of controls whose
// values, validity and disabled state update synchronously as values
// change.
//
// A Form is built from a Schema. Each Field becomes a control (a leaf
// control.Control, a control.Array of elements or a nested Form) under one
// root control.Group. On top of the control tree the form wires:
//
//   - select models kept in sync with the field value (package selectmodel)
//   - disable rules, driven by external streams or by sibling values
//   - dependent validators that revalidate when the fields they read change
//   - array reconciliation when patched values change an array's length
//
// Validators live in package validators; conditions for rule-based
// validation and disabling live in package rules. Lifecycle events are
// emitted through capitan signals (see signals.go).
//
// Typical usage:
//
//	f := goform.MustNew(goform.Schema{Fields: []goform.Field{
//		{Name: "name", Validator: validators.Required},
//		{Name: "age", Initial: 0},
//		{Name: "memo", DisabledWhen: goform.DisabledWhen("age", func(v any) bool {
//			return rules.Compare(v, rules.Gt, 10)
//		})},
//	}})
//	defer f.Close()
//
//	f.PatchValues(map[string]any{"name": "Ann", "age": 12})
//	f.Flush()
//	report := f.Report()
//
// Schemas can also be declared with the fluent builder or loaded from YAML
// (package dsl), and checked from the command line with cmd/goform.
package goform
