package goform_test

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/goform"
	"github.com/reoring/goform/control"
	"github.com/reoring/goform/i18n"
	v "github.com/reoring/goform/validators"
)

func reportForm(t *testing.T) *goform.Form {
	t.Helper()
	f := goform.MustNew(goform.Schema{Fields: []goform.Field{
		{Name: "name", Initial: "ab", Validator: v.Compose(v.Required, v.MinLength(3))},
		{Name: "nick", Initial: "x", Validator: v.Warning(v.MinLength(2), nil)},
		{Name: "items", Initial: []any{map[string]any{"name": "ok"}, map[string]any{}}, ElementSchema: itemSchema},
	}}, goform.WithGroupValidator(func(g *control.Group) control.Errors {
		return control.Errors{"incomplete": true}
	}))
	t.Cleanup(f.Close)
	return f
}

func TestReport_Issues(t *testing.T) {
	r := reportForm(t).Report()
	assert.False(t, r.Valid)
	assert.Equal(t, "INVALID", r.Status)

	issues := r.Issues()
	type pc struct{ path, code string }
	var errs []pc
	for _, is := range issues.Filter(goform.SeverityError) {
		errs = append(errs, pc{is.Path, is.Code})
	}
	assert.Equal(t, []pc{
		{"", "incomplete"},
		{"/items/1/name", v.KeyRequired},
		{"/name", v.KeyMinLength},
	}, errs)

	warns := issues.Filter(goform.SeverityWarning)
	require.Len(t, warns, 1)
	assert.Equal(t, "/nick", warns[0].Path)
	assert.Equal(t, v.KeyMinLength, warns[0].Code)
	assert.Equal(t, "must be at least 2 characters (got 1)", warns[0].Message)

	assert.Contains(t, issues.Error(), "incomplete at /")
}

func TestReport_JSON(t *testing.T) {
	raw, err := reportForm(t).Report().JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["valid"])
	assert.Equal(t, "INVALID", decoded["status"])
	assert.Contains(t, decoded["errors"], goform.KeyGroupErrors)
}

func TestReport_Messages(t *testing.T) {
	r := reportForm(t).Report()

	en := r.Messages(nil)
	assert.Contains(t, en, "/name: must be at least 3 characters (got 2)")
	assert.Contains(t, en, "/items/1/name: required")

	ja := r.Messages(i18n.Lang("ja"))
	assert.Contains(t, ja, "/items/1/name: 必須項目です")
}

func TestReport_ErrorMessagePayload(t *testing.T) {
	f := goform.MustNew(goform.Schema{Fields: []goform.Field{
		{Name: "a/b", Validator: v.Func(func(control.Node) control.Errors {
			return control.Errors{"custom": map[string]any{"errorMessage": "pick one"}}
		})},
	}})
	defer f.Close()

	issues := f.Report().Issues()
	require.Len(t, issues, 1)
	assert.Equal(t, "/a~1b", issues[0].Path)
	assert.Equal(t, "pick one", issues[0].Message)
}

func TestReport_Valid(t *testing.T) {
	f := goform.MustNew(nameSchema("Anna"))
	defer f.Close()

	r := f.Report()
	assert.True(t, r.Valid)
	assert.Empty(t, r.Issues())
	assert.Empty(t, r.Messages(nil))
}

type person struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Age     int    `json:"age"`
}

func TestBind(t *testing.T) {
	f := goform.MustNew(nameSchema("Anna"))
	defer f.Close()
	f.PatchValues(map[string]any{"surname": "Smith", "age": 41})

	p, err := goform.Bind[person](f, false)
	require.NoError(t, err)
	assert.Equal(t, person{Name: "Anna", Surname: "Smith", Age: 41}, p)

	assert.Panics(t, func() { goform.MustBind[person](f2(t), false) })
}

// f2 returns a form whose age cannot be decoded into an int.
func f2(t *testing.T) *goform.Form {
	f := goform.MustNew(goform.Schema{Fields: []goform.Field{{Name: "age", Initial: "old"}}})
	t.Cleanup(f.Close)
	return f
}
