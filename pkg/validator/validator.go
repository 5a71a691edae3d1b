package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\(?\d{2}\)?\s?\d{4,5}-?\d{4}$`)
)

type CustomValidator struct {
	validator *validator.Validate
	now       func() time.Time
}

func NewValidator() *CustomValidator {
	return NewValidatorWithClock(time.Now)
}

// NewValidatorWithClock lets callers pin the instant used by the "future" rule.
func NewValidatorWithClock(now func() time.Time) *CustomValidator {
	cv := &CustomValidator{
		validator: validator.New(validator.WithRequiredStructEnabled()),
		now:       now,
	}

	cv.validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = cv.validator.RegisterValidation("notblank", notBlank)
	_ = cv.validator.RegisterValidation("contact", validContact)
	_ = cv.validator.RegisterValidation("future", cv.inFuture)

	return cv
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// IsContact reports whether s is an accepted email address or phone number.
func IsContact(s string) bool {
	s = strings.TrimSpace(s)
	return emailPattern.MatchString(s) || phonePattern.MatchString(s)
}

func notBlank(fl validator.FieldLevel) bool {
	s, ok := stringValue(fl.Field())
	return ok && strings.TrimSpace(s) != ""
}

func validContact(fl validator.FieldLevel) bool {
	s, ok := stringValue(fl.Field())
	return ok && IsContact(s)
}

func (cv *CustomValidator) inFuture(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return false
		}
		field = field.Elem()
	}
	t, ok := field.Interface().(time.Time)
	return ok && t.After(cv.now())
}

func stringValue(field reflect.Value) (string, bool) {
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return "", false
		}
		field = field.Elem()
	}
	if field.Kind() != reflect.String {
		return "", false
	}
	return field.String(), true
}

// FormatValidationErrors turns validator output into a field-keyed message map.
func (cv *CustomValidator) FormatValidationErrors(err error) map[string][]string {
	errs := make(map[string][]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["non_field_errors"] = []string{err.Error()}
		return errs
	}

	for _, e := range validationErrors {
		field := e.Field()
		errs[field] = append(errs[field], message(field, e))
	}

	return errs
}

func message(field string, e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return field + " is required."
	case "notblank":
		return field + " may not be blank."
	case "min":
		return field + " must be at least " + e.Param() + " characters."
	case "max":
		return field + " must be at most " + e.Param() + " characters."
	case "contact":
		return field + " must be a valid email address or phone number."
	case "future":
		return field + " must be in the future."
	case "gte":
		return field + " must be greater than or equal to " + e.Param() + "."
	case "gt":
		return field + " must be greater than " + e.Param() + "."
	default:
		return field + " is invalid."
	}
}
