package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeValues(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const validOrder = `
customer: Bob
email: bob@example.com
age: 30
items:
  - {sku: A1, qty: 2}
address:
  city: Osaka
`

func TestCheck_Valid(t *testing.T) {
	vals := writeValues(t, "order.yaml", validOrder)

	out, err := run(t, "check", "-s", "testdata/order.yaml", "-f", vals)
	require.NoError(t, err)
	assert.Contains(t, out, "VALID: no issues")
}

func TestCheck_Invalid(t *testing.T) {
	vals := writeValues(t, "order.json", `{"email": "nope", "age": 12, "bogus": 1, "address": {"city": "Osaka"}}`)

	out, err := run(t, "check", "-s", "testdata/order.yaml", "-f", vals)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, out, "/bogus: unknown field (unknown_field)")
	assert.Contains(t, out, "/customer: required (required)")
	assert.Contains(t, out, "/guardian: guardian needed")
	assert.Contains(t, out, "INVALID:")
}

func TestCheck_JapaneseMessages(t *testing.T) {
	vals := writeValues(t, "order.yaml", "address: {city: Osaka}\n")

	out, err := run(t, "check", "-s", "testdata/order.yaml", "-f", vals, "--lang", "ja")
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, out, "/customer: 必須項目です")
}

func TestCheck_JSON(t *testing.T) {
	vals := writeValues(t, "order.yaml", validOrder+"coupon: SAVE\n")

	out, err := run(t, "check", "-s", "testdata/order.yaml", "-f", vals, "--json")
	require.NoError(t, err)

	var res struct {
		Valid  bool           `json:"valid"`
		Status string         `json:"status"`
		Values map[string]any `json:"values"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Valid)
	assert.Equal(t, "VALID", res.Status)
	assert.Equal(t, "Bob", res.Values["customer"])
	assert.Equal(t, "SAVE", res.Values["coupon"])
}

func TestCheck_DisabledFieldsOmitted(t *testing.T) {
	vals := writeValues(t, "order.yaml", strings.Replace(validOrder, "age: 30", "age: 70", 1)+"coupon: SAVE\n")

	for _, tc := range []struct {
		name string
		args []string
		want bool
	}{
		{"default", nil, false},
		{"include", []string{"--include-disabled"}, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{"check", "-s", "testdata/order.yaml", "-f", vals, "--json"}, tc.args...)
			out, err := run(t, args...)
			require.NoError(t, err)

			var res struct {
				Values map[string]any `json:"values"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &res))
			_, ok := res.Values["coupon"]
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestCheck_Errors(t *testing.T) {
	_, err := run(t, "check")
	assert.Error(t, err)

	_, err = run(t, "check", "-s", "testdata/missing.yaml", "-f", writeValues(t, "v.yaml", "{}"))
	assert.Error(t, err)

	_, err = run(t, "check", "-s", "testdata/order.yaml", "-f", writeValues(t, "v.yaml", "a: 1\na: 2\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestDescribe(t *testing.T) {
	out, err := run(t, "describe", "-s", "testdata/order.yaml")
	require.NoError(t, err)

	assert.Regexp(t, `(?m)^FIELD\s+KIND\s+INITIAL\s+READS\s+DISABLED BY$`, out)
	assert.Regexp(t, `(?m)^/guardian\s+leaf\s+-\s+age\s+-$`, out)
	assert.Regexp(t, `(?m)^/coupon\s+leaf\s+-\s+-\s+age$`, out)
	assert.Regexp(t, `(?m)^/shipping\s+select\s+std\s`, out)
	assert.Regexp(t, `(?m)^/items\s+array\s`, out)
	assert.Regexp(t, `(?m)^/items/\*/qty\s+leaf\s+1\s`, out)
	assert.Regexp(t, `(?m)^/address/city\s+leaf\s`, out)
}
