package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names in error details.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Decode reads a JSON body into v and validates it. On failure it writes a 400
// response and returns false.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}

	return Validate(w, v)
}

// Validate runs struct validation on v. On failure it writes a 400 response
// with one detail per field and returns false.
func Validate(w http.ResponseWriter, v any) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		Error(w, http.StatusBadRequest, err.Error())
		return false
	}

	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = describe(fe)
	}

	ErrorDetails(w, http.StatusBadRequest, "validation failed", details)

	return false
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "datetime":
		return "must be a date formatted " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt", "gte", "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	}

	return fmt.Sprintf("failed on %q", fe.Tag())
}
