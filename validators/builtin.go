package validators

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/reoring/goform/control"
	"github.com/reoring/goform/rules"
)

// Error keys produced by the built-in validators.
const (
	KeyRequired            = "required"
	KeyMinLength           = "minlength"
	KeyMaxLength           = "maxlength"
	KeyPattern             = "pattern"
	KeyMin                 = "min"
	KeyMax                 = "max"
	KeyEmail               = "email"
	KeyNumeric             = "numeric"
	KeyConditionalRequired = "conditionalRequired"
)

// IsEmpty reports whether v counts as "no value": nil, a nil pointer, or a
// string, slice, array or map of length zero. Zero numbers and false are
// values.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func length(v any) (int, bool) {
	if s, ok := v.(string); ok {
		return utf8.RuneCountInString(s), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	}
	return 0, false
}

// number reads v as a float. Numeric strings are accepted.
func number(v any) (float64, bool) {
	if f, ok := rules.ToFloat(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return 0, false
}

// Required fails on empty values.
var Required = Func(func(n control.Node) control.Errors {
	if IsEmpty(n.Value()) {
		return control.Errors{KeyRequired: true}
	}
	return nil
})

// RequiredTrue fails unless the value is the boolean true.
var RequiredTrue = Func(func(n control.Node) control.Errors {
	if b, ok := n.Value().(bool); ok && b {
		return nil
	}
	return control.Errors{KeyRequired: true}
})

// MinLength fails when a string (counted in runes), slice or map is shorter
// than min. Empty values pass; combine with Required to reject them.
func MinLength(min int) *control.Validator {
	return Func(func(n control.Node) control.Errors {
		v := n.Value()
		if IsEmpty(v) {
			return nil
		}
		l, ok := length(v)
		if !ok || l >= min {
			return nil
		}
		return control.Errors{KeyMinLength: map[string]any{"requiredLength": min, "actualLength": l}}
	})
}

// MaxLength fails when a string, slice or map is longer than max.
func MaxLength(max int) *control.Validator {
	return Func(func(n control.Node) control.Errors {
		l, ok := length(n.Value())
		if !ok || l <= max {
			return nil
		}
		return control.Errors{KeyMaxLength: map[string]any{"requiredLength": max, "actualLength": l}}
	})
}

// Pattern requires string values to match pattern in full. "^" and "$" are
// added unless already present. Empty values pass. Pattern panics on an
// invalid expression, like regexp.MustCompile.
func Pattern(pattern string) *control.Validator {
	src := pattern
	if !strings.HasPrefix(src, "^") {
		src = "^" + src
	}
	if !strings.HasSuffix(src, "$") {
		src += "$"
	}
	return PatternRegexp(regexp.MustCompile(src))
}

// PatternRegexp requires string values to match re. re is used as given, so
// an unanchored expression matches substrings.
func PatternRegexp(re *regexp.Regexp) *control.Validator {
	return Func(func(n control.Node) control.Errors {
		v := n.Value()
		if IsEmpty(v) {
			return nil
		}
		s, ok := v.(string)
		if !ok {
			s = strings.TrimSpace(toString(v))
		}
		if re.MatchString(s) {
			return nil
		}
		return control.Errors{KeyPattern: map[string]any{"requiredPattern": re.String(), "actualValue": v}}
	})
}

func toString(v any) string {
	if f, ok := rules.ToFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}

// Min fails when a numeric value is below min. Empty and non-numeric values
// pass.
func Min(min float64) *control.Validator {
	return Func(func(n control.Node) control.Errors {
		v := n.Value()
		f, ok := number(v)
		if IsEmpty(v) || !ok || f >= min {
			return nil
		}
		return control.Errors{KeyMin: map[string]any{"min": min, "actual": v}}
	})
}

// Max fails when a numeric value is above max.
func Max(max float64) *control.Validator {
	return Func(func(n control.Node) control.Errors {
		v := n.Value()
		f, ok := number(v)
		if IsEmpty(v) || !ok || f <= max {
			return nil
		}
		return control.Errors{KeyMax: map[string]any{"max": max, "actual": v}}
	})
}

// RequiredIf fails with conditionalRequired when the sibling field compares
// to want under op and the node has no value. It depends on field.
func RequiredIf(field string, op rules.Op, want any) *control.Validator {
	return RequiredWhen(rules.If(field, op, want), "")
}

// RequiredWhen is RequiredIf for an arbitrary condition. A non-empty message
// is carried in the error payload as errorMessage.
func RequiredWhen(cond rules.Condition, message string) *control.Validator {
	return Dependent(cond.Fields(), func(n control.Node) control.Errors {
		holds := cond.Eval(func(name string) (any, bool) {
			v, ok := Sibling(n, name)
			if !ok || IsEmpty(v) {
				return nil, false
			}
			return v, true
		})
		if !holds || !IsEmpty(n.Value()) {
			return nil
		}
		payload := map[string]any{}
		if message != "" {
			payload["errorMessage"] = message
		}
		return control.Errors{KeyConditionalRequired: payload}
	})
}
