package control_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/goform/control"
	"github.com/reoring/goform/rx"
)

func minLen(n int) *control.Validator {
	return control.NewValidator(func(c control.Node) control.Errors {
		s, _ := c.Value().(string)
		if len(s) < n {
			return control.Errors{"minlength": map[string]any{"requiredLength": n, "actualLength": len(s)}}
		}
		return nil
	})
}

func warnShort(n int) *control.Validator {
	return control.NewValidator(func(c control.Node) control.Errors {
		s, _ := c.Value().(string)
		if len(s) < n {
			c.AddWarning(control.Warnings{"short": true})
		}
		return nil
	})
}

func TestWarnable_AddSetClear(t *testing.T) {
	c := control.NewControl("x", nil, nil)
	require.Nil(t, c.Warnings())
	require.False(t, c.HasWarnings())

	c.AddWarning(control.Warnings{"a": 1, "b": 1})
	c.AddWarning(control.Warnings{"b": 2, "c": 3})
	assert.Equal(t, control.Warnings{"a": 1, "b": 2, "c": 3}, c.Warnings())

	c.SetWarning(control.Warnings{"z": true})
	assert.Equal(t, control.Warnings{"z": true}, c.Warnings())

	w := c.Warnings()
	w["mutated"] = true
	assert.False(t, c.Warnings().Has("mutated"), "Warnings returns a copy")

	c.ClearWarning()
	assert.Nil(t, c.Warnings())
	assert.False(t, c.HasWarnings())

	c.SetWarning(control.Warnings{})
	assert.Nil(t, c.Warnings(), "empty store surfaces as nil")
}

func TestControl_WarningsRecomputedOnValidity(t *testing.T) {
	c := control.NewControl("ab", warnShort(3), nil)
	require.True(t, c.HasWarnings())
	require.True(t, c.Valid(), "warnings never affect validity")

	c.AddWarning(control.Warnings{"manual": 1})
	require.NoError(t, c.SetValue("abcd"))
	assert.Nil(t, c.Warnings(), "stale warnings are dropped on recompute")

	require.NoError(t, c.SetValue("a"))
	assert.Equal(t, control.Warnings{"short": true}, c.Warnings())
}

func TestControl_DisableClearsWarningsAndErrors(t *testing.T) {
	c := control.NewControl("a", control.NewValidator(func(n control.Node) control.Errors {
		n.AddWarning(control.Warnings{"w": 1})
		return control.Errors{"e": 1}
	}), nil)
	require.True(t, c.Invalid())
	require.True(t, c.HasWarnings())

	c.Disable()
	assert.Equal(t, control.StatusDisabled, c.Status())
	assert.Nil(t, c.Errors())
	assert.False(t, c.HasWarnings())

	c.Enable()
	assert.True(t, c.Invalid())
	assert.True(t, c.HasWarnings(), "re-enabling reruns the validator")
}

func TestControl_ValueChanges(t *testing.T) {
	c := control.NewControl(1, nil, nil)
	var got []any
	c.ValueChanges().Subscribe(func(v any) { got = append(got, v) })

	require.NoError(t, c.SetValue(2))
	require.NoError(t, c.SetValue(3, control.Opts{NoEmit: true}))
	c.Disable()

	assert.Equal(t, []any{2, 3}, got)
}

func TestGroup_ValueExcludesDisabled(t *testing.T) {
	name := control.NewControl("n", nil, nil)
	age := control.NewControl(3, nil, nil)
	g := control.NewGroup([]string{"name", "age"}, map[string]control.Node{"name": name, "age": age}, nil, nil)

	assert.Equal(t, map[string]any{"name": "n", "age": 3}, g.Value())
	assert.Equal(t, []string{"name", "age"}, g.Keys())

	age.Disable()
	assert.Equal(t, map[string]any{"name": "n"}, g.Value())
	assert.Equal(t, map[string]any{"name": "n", "age": 3}, g.RawValue())
	assert.False(t, g.Contains("age"))
	assert.True(t, g.Has("age"))

	name.Disable()
	assert.Equal(t, control.StatusDisabled, g.Status(), "all children disabled disables the group")
	assert.Equal(t, map[string]any{"name": "n", "age": 3}, g.Value())
}

func TestGroup_StatusFollowsChildren(t *testing.T) {
	name := control.NewControl("n", minLen(3), nil)
	g := control.NewGroup([]string{"name"}, map[string]control.Node{"name": name}, nil, nil)
	require.True(t, g.Invalid())

	require.NoError(t, name.SetValue("long"))
	assert.True(t, g.Valid())
	assert.Same(t, g, name.Parent())
}

func TestGroup_SetValueShape(t *testing.T) {
	g := control.NewGroup(nil, map[string]control.Node{
		"a": control.NewControl(nil, nil, nil),
		"b": control.NewControl(nil, nil, nil),
	}, nil, nil)

	err := g.SetValue(map[string]any{"a": 1})
	var shape *control.ShapeError
	require.ErrorAs(t, err, &shape)
	assert.Equal(t, "b", shape.Path)

	err = g.SetValue(map[string]any{"a": 1, "b": 2, "c": 3})
	require.ErrorAs(t, err, &shape)
	assert.Equal(t, "c", shape.Path)

	require.NoError(t, g.SetValue(map[string]int{"a": 1, "b": 2}))
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, g.Value())

	g.PatchValue(map[string]any{"b": 5, "unknown": 1})
	assert.Equal(t, map[string]any{"a": 1, "b": 5}, g.Value())
}

func TestArray_PatchOnlyWritesExisting(t *testing.T) {
	a := control.NewArray([]control.Node{control.NewControl("x", nil, nil)}, nil, nil)
	a.PatchValue([]string{"y", "z"})
	assert.Equal(t, []any{"y"}, a.Value())
	assert.Equal(t, 1, a.Len())

	a.Push(control.NewControl("q", nil, nil))
	a.Insert(0, control.NewControl("first", nil, nil))
	assert.Equal(t, []any{"first", "y", "q"}, a.Value())

	a.RemoveAt(1)
	assert.Equal(t, []any{"first", "q"}, a.Value())

	require.Error(t, a.SetValue([]any{"only-one"}))
	require.NoError(t, a.SetValue([]any{"1", "2"}))
	assert.Equal(t, []any{"1", "2"}, a.RawValue())
}

func TestArray_StatusAndValueWithDisabledElement(t *testing.T) {
	bad := control.NewControl("", minLen(1), nil)
	a := control.NewArray([]control.Node{control.NewControl("ok", nil, nil), bad}, nil, nil)
	require.True(t, a.Invalid())

	bad.Disable()
	assert.True(t, a.Valid())
	assert.Equal(t, []any{"ok"}, a.Value())
}

func TestDirtyTouchedPropagation(t *testing.T) {
	leaf := control.NewControl(nil, nil, nil)
	arr := control.NewArray([]control.Node{leaf}, nil, nil)
	g := control.NewGroup([]string{"arr"}, map[string]control.Node{"arr": arr}, nil, nil)

	leaf.MarkAsDirty(control.Opts{OnlySelf: true})
	assert.True(t, leaf.Dirty())
	assert.True(t, arr.Pristine(), "OnlySelf does not bubble")

	leaf.MarkAsDirty()
	leaf.MarkAsTouched()
	assert.True(t, arr.Dirty())
	assert.True(t, g.Dirty())
	assert.True(t, g.Touched())

	leaf.MarkAsPristine()
	assert.True(t, arr.Pristine())
	assert.True(t, g.Pristine())

	g.MarkAsUntouched()
	assert.True(t, leaf.Untouched(), "untouched flows down")
}

func TestReset_MarksPristine(t *testing.T) {
	leaf := control.NewControl("a", nil, nil)
	g := control.NewGroup([]string{"a"}, map[string]control.Node{"a": leaf}, nil, nil)
	leaf.MarkAsDirty()
	leaf.MarkAsTouched()

	g.Reset(map[string]any{"a": "b"})
	assert.Equal(t, "b", leaf.Value())
	assert.True(t, leaf.Pristine())
	assert.True(t, g.Pristine())
	assert.False(t, g.Touched())

	g.Reset(nil)
	assert.Nil(t, leaf.Value())
}

func TestAsyncValidator_PendingThenResolved(t *testing.T) {
	results := rx.NewSubject[control.Errors]()
	calls := 0
	async := func(control.Node) rx.Observable[control.Errors] {
		calls++
		return results
	}
	c := control.NewControl("v", nil, async)
	require.Equal(t, control.StatusPending, c.Status())
	g := control.NewGroup([]string{"c"}, map[string]control.Node{"c": c}, nil, nil)
	require.Equal(t, control.StatusPending, g.Status())

	results.Next(control.Errors{"taken": true})
	assert.True(t, c.Invalid())
	assert.True(t, g.Invalid())

	require.NoError(t, c.SetValue("w"))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, results.Observers(), "previous subscription is cancelled")
	results.Next(nil)
	assert.True(t, c.Valid())
	assert.True(t, g.Valid())
}

func TestAsyncValidator_SkippedWhenSyncInvalid(t *testing.T) {
	calls := 0
	c := control.NewControl("", minLen(1), func(control.Node) rx.Observable[control.Errors] {
		calls++
		return rx.Of[control.Errors](nil)
	})
	assert.Equal(t, 0, calls)
	assert.True(t, c.Invalid())

	require.NoError(t, c.SetValue("x"))
	assert.Equal(t, 1, calls)
	assert.True(t, c.Valid())
}

func TestAsyncValidator_GroupWaitsForPendingChild(t *testing.T) {
	child := rx.NewSubject[control.Errors]()
	c := control.NewControl("v", nil, func(control.Node) rx.Observable[control.Errors] { return child })
	groupCalls := 0
	g := control.NewGroup([]string{"c"}, map[string]control.Node{"c": c}, nil, func(control.Node) rx.Observable[control.Errors] {
		groupCalls++
		return rx.Of[control.Errors](nil)
	})
	assert.Equal(t, control.StatusPending, g.Status())
	assert.Zero(t, groupCalls)

	child.Next(nil)
	g.UpdateValueAndValidity()
	assert.Equal(t, 1, groupCalls)
	assert.True(t, g.Valid())
}

type owner struct{ nodes map[string]control.Node }

func (o owner) Lookup(name string) (control.Node, bool) {
	n, ok := o.nodes[name]
	return n, ok
}

func TestEnclosingOwner_WalksParents(t *testing.T) {
	leaf := control.NewControl(nil, nil, nil)
	arr := control.NewArray([]control.Node{leaf}, nil, nil)
	g := control.NewGroup([]string{"arr"}, map[string]control.Node{"arr": arr}, nil, nil)
	assert.Nil(t, control.EnclosingOwner(leaf))

	o := owner{nodes: map[string]control.Node{"arr": arr}}
	g.SetOwner(o)
	assert.Equal(t, o, control.EnclosingOwner(leaf))
	assert.Len(t, control.Children(g), 1)
	assert.Nil(t, control.Children(leaf))
}

func TestValidator_DependenciesDeduplicated(t *testing.T) {
	v := control.NewValidator(nil, "a", "b", "a")
	assert.Equal(t, []string{"a", "b"}, v.Dependencies())
	assert.Nil(t, v.Validate(control.NewControl(nil, nil, nil)))

	var nilV *control.Validator
	assert.Nil(t, nilV.Dependencies())
	assert.Nil(t, nilV.Validate(nil))
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "VALID", control.StatusValid.String())
	assert.Equal(t, "DISABLED", control.StatusDisabled.String())
	assert.Equal(t, "UNKNOWN", control.Status(42).String())
}
