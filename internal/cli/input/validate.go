package input

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/yndnr/cricket-go/internal/core/domain"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(fieldName)
		_ = v.RegisterValidation("matchdate", func(fl validator.FieldLevel) bool {
			_, err := domain.ParseMatchDate(fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

// Validate checks v's validate tags.
func Validate(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := &domain.ValidationError{Fields: make([]domain.FieldError, 0, len(ve))}
	for _, fe := range ve {
		out.Fields = append(out.Fields, domain.FieldError{Field: fe.Field(), Reason: reason(fe)})
	}
	return out
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return domain.ReasonRequired
	case "email":
		return "must be a valid email"
	case "matchdate":
		return "must be a date like 2026-01-31 or 2026-01-31T14:30"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed validation (" + fe.Tag() + ")"
	}
}

// fieldName reports fields by JSON name. Fields hidden from JSON, such as
// path parameters, fall back to the Go name with a lower-case first letter.
func fieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		r := []rune(fld.Name)
		r[0] = unicode.ToLower(r[0])
		return string(r)
	}
	return name
}
