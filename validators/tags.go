package validators

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/reoring/goform/control"
)

var validate = validator.New()

// Tag checks the value against a go-playground/validator tag expression
// such as "email", "numeric" or "oneof=red green". Empty values pass. The
// error key is the name of the first failing tag; its payload carries the
// tag parameter and the offending value.
//
// Tag panics when the expression itself is malformed, since that is a
// mistake in the form definition rather than in the input.
func Tag(tag string) *control.Validator {
	return Func(func(n control.Node) control.Errors {
		v := n.Value()
		if IsEmpty(v) {
			return nil
		}
		err := validate.Var(v, tag)
		if err == nil {
			return nil
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			panic("validators: bad tag " + tag + ": " + err.Error())
		}
		fe := verrs[0]
		if fe.Param() == "" {
			return control.Errors{fe.Tag(): true}
		}
		return control.Errors{fe.Tag(): map[string]any{"param": fe.Param(), "actual": v}}
	})
}

// Email requires a syntactically valid e-mail address.
var Email = Tag("email")

// Numeric requires a number or a numeric string.
var Numeric = Tag("numeric")
