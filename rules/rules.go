package rules

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Op defines simple comparison operators for If(...).
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

var opNames = [...]string{Eq: "==", Ne: "!=", Lt: "<", Le: "<=", Gt: ">", Ge: ">="}

// String returns the symbolic form of the operator.
func (o Op) String() string {
	if int(o) < 0 || int(o) >= len(opNames) {
		return "Op(" + strconv.Itoa(int(o)) + ")"
	}
	return opNames[o]
}

// ParseOp accepts both the symbolic ("==", ">=") and the short word ("eq",
// "ge") spellings.
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "==", "=", "eq":
		return Eq, nil
	case "!=", "ne":
		return Ne, nil
	case "<", "lt":
		return Lt, nil
	case "<=", "le", "lte":
		return Le, nil
	case ">", "gt":
		return Gt, nil
	case ">=", "ge", "gte":
		return Ge, nil
	}
	return 0, fmt.Errorf("rules: unknown operator %q", s)
}

// Condition compares the value of a form field against a constant. Field
// is a path whose first segment names the field; further segments navigate
// into the field's value ("address/city", "items/0").
type Condition struct {
	path string
	op   Op
	want any
	all  []Condition // composite AND
	any  []Condition // composite OR
}

// If builds a condition on the field addressed by path.
func If(path string, op Op, want any) Condition {
	return Condition{path: strings.Trim(path, "/"), op: op, want: want}
}

// IfAll builds a condition that requires all conditions to hold.
func IfAll(conds ...Condition) Condition { return Condition{all: conds} }

// IfAny builds a condition that requires any condition to hold.
func IfAny(conds ...Condition) Condition { return Condition{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Condition) And(others ...Condition) Condition {
	return IfAll(append([]Condition{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Condition) Or(others ...Condition) Condition {
	return IfAny(append([]Condition{c}, others...)...)
}

// Fields returns the field names the condition reads, without duplicates.
func (c Condition) Fields() []string {
	var out []string
	seen := map[string]struct{}{}
	c.walk(func(leaf Condition) {
		name, _, _ := strings.Cut(leaf.path, "/")
		if name == "" {
			return
		}
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			out = append(out, name)
		}
	})
	return out
}

func (c Condition) walk(fn func(Condition)) {
	switch {
	case len(c.all) > 0:
		for _, it := range c.all {
			it.walk(fn)
		}
	case len(c.any) > 0:
		for _, it := range c.any {
			it.walk(fn)
		}
	default:
		fn(c)
	}
}

// Eval resolves field values through lookup and evaluates the condition.
// A field lookup cannot resolve makes its predicate false.
func (c Condition) Eval(lookup func(field string) (any, bool)) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.Eval(lookup) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.Eval(lookup) {
				return true
			}
		}
		return false
	}
	name, rest, _ := strings.Cut(c.path, "/")
	root, ok := lookup(name)
	if !ok {
		return false
	}
	cur, ok := ValueAt(root, rest)
	if !ok {
		return false
	}
	return Compare(cur, c.op, c.want)
}

// String renders the condition for diagnostics.
func (c Condition) String() string {
	join := func(cs []Condition, sep string) string {
		parts := make([]string, len(cs))
		for i, it := range cs {
			parts[i] = it.String()
		}
		return "(" + strings.Join(parts, sep) + ")"
	}
	switch {
	case len(c.all) > 0:
		return join(c.all, " && ")
	case len(c.any) > 0:
		return join(c.any, " || ")
	}
	return fmt.Sprintf("%s %s %v", c.path, c.op, c.want)
}

// ValueAt navigates v (map, struct, slice) by a slash separated path. Struct
// fields match their json tag name or, failing that, their Go name.
func ValueAt(v any, path string) (any, bool) {
	rel := strings.Trim(path, "/")
	if rel == "" {
		return v, true
	}
	cur := reflect.ValueOf(v)
	for _, seg := range strings.Split(rel, "/") {
		for cur.IsValid() && (cur.Kind() == reflect.Pointer || cur.Kind() == reflect.Interface) {
			if cur.IsNil() {
				return nil, false
			}
			cur = cur.Elem()
		}
		if !cur.IsValid() {
			return nil, false
		}
		switch cur.Kind() {
		case reflect.Struct:
			f, ok := structField(cur, seg)
			if !ok {
				return nil, false
			}
			cur = f
		case reflect.Map:
			if cur.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			mv := cur.MapIndex(reflect.ValueOf(seg).Convert(cur.Type().Key()))
			if !mv.IsValid() {
				return nil, false
			}
			cur = mv
		case reflect.Slice, reflect.Array:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= cur.Len() {
				return nil, false
			}
			cur = cur.Index(idx)
		default:
			return nil, false
		}
	}
	if !cur.IsValid() {
		return nil, false
	}
	return cur.Interface(), true
}

func structField(v reflect.Value, seg string) (reflect.Value, bool) {
	rt := v.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("json"); ok {
			if n, _, _ := strings.Cut(tag, ","); n != "" && n != "-" {
				name = n
			}
		}
		if name == seg {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// Compare applies op to cur and want. Eq and Ne compare numbers by value
// (so int 3 equals float64 3) and everything else deeply. Ordering
// operators support numbers and strings; other kinds never order.
func Compare(cur any, op Op, want any) bool {
	switch op {
	case Eq:
		return equal(cur, want)
	case Ne:
		return !equal(cur, want)
	case Lt, Le, Gt, Ge:
		return compareOrdered(cur, op, want)
	default:
		return false
	}
}

func equal(a, b any) bool {
	if x, ok := ToFloat(a); ok {
		if y, ok := ToFloat(b); ok {
			return x == y
		}
	}
	return reflect.DeepEqual(a, b)
}

func compareOrdered(cur any, op Op, want any) bool {
	if a, ok := ToFloat(cur); ok {
		if b, ok := ToFloat(want); ok {
			return ordered(a, b, op)
		}
		return false
	}
	a, okA := cur.(string)
	b, okB := want.(string)
	if okA && okB {
		return ordered(strings.Compare(a, b), 0, op)
	}
	return false
}

func ordered[N int | float64](a, b N, op Op) bool {
	switch op {
	case Lt:
		return a < b
	case Le:
		return a <= b
	case Gt:
		return a > b
	case Ge:
		return a >= b
	}
	return false
}

// ToFloat converts any integer or float kind to float64.
func ToFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
