package request

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/birbparty/commerce-sdk/sdk"
)

var validate = validator.New()

func init() {
	// Report JSON field names so messages match what the platform calls them.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateValue checks struct tags on v. Non-struct values pass.
func validateValue(v any) error {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	err := validate.Struct(rv.Interface())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, len(verrs))
		for i, fe := range verrs {
			msgs[i] = fe.Namespace() + " failed on " + fe.Tag()
		}
		return sdk.InvalidArgument("%s", strings.Join(msgs, "; "))
	}
	return sdk.InvalidArgument("%v", err)
}
