package dsl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/reoring/goform/control"
	"github.com/reoring/goform/rules"
	"github.com/reoring/goform/selectmodel"
	v "github.com/reoring/goform/validators"
)

// File is the YAML form of a schema:
//
//	fields:
//	  - name: age
//	    initial: 12
//	    numeric: true
//	  - name: name
//	    required: true
//	    minLength: 3
//	    warn: {pattern: "A.+"}
//	    disabledWhen: [{field: age, op: ">", value: 10}]
//	  - name: items
//	    elements:
//	      fields:
//	        - {name: sku, required: true}
type File struct {
	Fields []FileField `yaml:"fields"`
}

// FileField declares one field of a File.
type FileField struct {
	Name    string `yaml:"name"`
	Initial any    `yaml:"initial,omitempty"`

	Checks `yaml:",inline"`
	Warn   *Checks `yaml:"warn,omitempty"`

	RequiredIf   *Condition  `yaml:"requiredIf,omitempty"`
	DisabledWhen []Condition `yaml:"disabledWhen,omitempty"`
	// DisableJoin is "any" (default) or "all".
	DisableJoin string `yaml:"disableJoin,omitempty"`

	Options  []selectmodel.Option `yaml:"options,omitempty"`
	Multiple bool                 `yaml:"multiple,omitempty"`

	Array    bool  `yaml:"array,omitempty"`
	Elements *File `yaml:"elements,omitempty"`
	Group    *File `yaml:"group,omitempty"`
}

// Checks lists the built-in validators of a field.
type Checks struct {
	Required  bool     `yaml:"required,omitempty"`
	MinLength *int     `yaml:"minLength,omitempty"`
	MaxLength *int     `yaml:"maxLength,omitempty"`
	Pattern   string   `yaml:"pattern,omitempty"`
	Min       *float64 `yaml:"min,omitempty"`
	Max       *float64 `yaml:"max,omitempty"`
	Email     bool     `yaml:"email,omitempty"`
	Numeric   bool     `yaml:"numeric,omitempty"`
	Tag       string   `yaml:"tag,omitempty"`
}

// Condition compares a sibling field with Value.
type Condition struct {
	Field   string `yaml:"field"`
	Op      string `yaml:"op"`
	Value   any    `yaml:"value"`
	Message string `yaml:"message,omitempty"`
}

// LoadYAML decodes a File from r and returns a builder for it. Unknown keys
// are rejected.
func LoadYAML(r io.Reader) (*formBuilder, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("dsl: decode schema: %w", err)
	}
	return FromFile(f)
}

// LoadYAMLFile is LoadYAML for a path.
func LoadYAMLFile(path string) (*formBuilder, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return LoadYAML(fh)
}

// FromFile converts a decoded File into a builder.
func FromFile(f File) (*formBuilder, error) {
	b := Form()
	for _, ff := range f.Fields {
		if ff.Name == "" {
			return nil, errors.New("dsl: field without a name")
		}
		if err := applyField(b.Field(ff.Name), ff); err != nil {
			return nil, fmt.Errorf("dsl: field %q: %w", ff.Name, err)
		}
	}
	return b, nil
}

func applyField(s *fieldStep, ff FileField) error {
	if ff.Initial != nil {
		s.Initial(ff.Initial)
	}
	checks, err := ff.Checks.validators()
	if err != nil {
		return err
	}
	s.Validate(checks...)
	if ff.Warn != nil {
		warns, err := ff.Warn.validators()
		if err != nil {
			return fmt.Errorf("warn: %w", err)
		}
		s.Warn(warns...)
	}

	if c := ff.RequiredIf; c != nil {
		op, err := rules.ParseOp(c.Op)
		if err != nil {
			return err
		}
		s.RequiredWhen(rules.If(c.Field, op, c.Value), c.Message)
	}
	for _, c := range ff.DisabledWhen {
		op, err := rules.ParseOp(c.Op)
		if err != nil {
			return err
		}
		s.DisabledWhen(c.Field, op, c.Value)
	}
	switch ff.DisableJoin {
	case "", "any":
	case "all":
		s.AllConditions()
	default:
		return fmt.Errorf("disableJoin must be any or all, got %q", ff.DisableJoin)
	}

	if len(ff.Options) > 0 {
		s.Options(ff.Options...)
	}
	if ff.Multiple {
		s.Multiple()
	}
	if ff.Array {
		s.Array()
	}
	if ff.Elements != nil {
		sub, err := FromFile(*ff.Elements)
		if err != nil {
			return err
		}
		s.Elements(sub)
	}
	if ff.Group != nil {
		sub, err := FromFile(*ff.Group)
		if err != nil {
			return err
		}
		s.Group(sub)
	}
	return nil
}

func (c Checks) validators() ([]*control.Validator, error) {
	var out []*control.Validator
	if c.Required {
		out = append(out, v.Required)
	}
	if c.MinLength != nil {
		out = append(out, v.MinLength(*c.MinLength))
	}
	if c.MaxLength != nil {
		out = append(out, v.MaxLength(*c.MaxLength))
	}
	if c.Pattern != "" {
		re, err := regexp.Compile(anchor(c.Pattern))
		if err != nil {
			return nil, fmt.Errorf("pattern: %w", err)
		}
		out = append(out, v.PatternRegexp(re))
	}
	if c.Min != nil {
		out = append(out, v.Min(*c.Min))
	}
	if c.Max != nil {
		out = append(out, v.Max(*c.Max))
	}
	if c.Email {
		out = append(out, v.Email)
	}
	if c.Numeric {
		out = append(out, v.Numeric)
	}
	if c.Tag != "" {
		out = append(out, v.Tag(c.Tag))
	}
	return out, nil
}
