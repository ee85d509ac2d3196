package dsl_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/goform"
	"github.com/reoring/goform/control"
	"github.com/reoring/goform/dsl"
	v "github.com/reoring/goform/validators"
)

func loadOrder(t *testing.T) *goform.Form {
	t.Helper()
	b, err := dsl.LoadYAMLFile("testdata/order.yaml")
	require.NoError(t, err)
	f, err := b.Build()
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

func TestLoadYAML_Order(t *testing.T) {
	f := loadOrder(t)

	assert.Equal(t, []string{"customer", "email", "age", "guardian", "coupon", "shipping", "items", "address"}, f.Keys())
	sel, ok := f.SelectValue("shipping")
	require.True(t, ok)
	assert.Equal(t, "Standard", sel.Name)

	errs := f.Errors()
	assert.True(t, errs["customer"].(control.Errors).Has(v.KeyRequired))
	assert.True(t, errs["address"].(map[string]any)["city"].(control.Errors).Has(v.KeyRequired))

	f.PatchValues(map[string]any{
		"customer": "bob",
		"email":    "bob@example.com",
		"items":    []any{map[string]any{"sku": "A1", "qty": 2}},
		"address":  map[string]any{"city": "Osaka", "zip": "5300001"},
	})
	assert.True(t, f.Valid())
	assert.True(t, f.Warnings()["customer"].(control.Warnings).Has(v.KeyPattern))
}

func TestLoadYAML_ConditionalRules(t *testing.T) {
	f := loadOrder(t)
	f.PatchValues(map[string]any{
		"customer": "Bob",
		"address":  map[string]any{"city": "Osaka"},
		"age":      70,
	})
	assert.True(t, f.Control("coupon").Disabled())

	f.PatchValues(map[string]any{"age": 12})
	f.Flush()
	assert.True(t, f.Control("coupon").Enabled())
	issues := f.Report().Issues().Filter(goform.SeverityError)
	require.Len(t, issues, 1)
	assert.Equal(t, "/guardian", issues[0].Path)
	assert.Equal(t, "guardian needed", issues[0].Message)
}

func TestLoadYAML_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "fields:\n  - name: a\n    requird: true\n",
		"bad op":        "fields:\n  - name: a\n  - name: b\n    disabledWhen: [{field: a, op: '~', value: 1}]\n",
		"bad join":      "fields:\n  - name: a\n    disableJoin: some\n",
		"bad pattern":   "fields:\n  - name: a\n    pattern: '('\n",
		"missing name":  "fields:\n  - required: true\n",
		"nested error":  "fields:\n  - name: a\n    elements:\n      fields:\n        - name: ''\n",
		"duplicate key": "fields:\n  - name: a\n    name: b\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := dsl.LoadYAML(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadYAML_Empty(t *testing.T) {
	b, err := dsl.LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	s, err := b.Schema()
	require.NoError(t, err)
	assert.Empty(t, s.Fields)
}
