package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// Register installs the custom "instant" tag and JSON/form field naming on
// gin's validator engine. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
		_ = v.RegisterValidation("instant", func(fl validator.FieldLevel) bool {
			return IsValidDateTime(fl.Field().String())
		})
	})
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// FieldErrors collects offending field names in order, without duplicates.
type FieldErrors struct {
	fields   []string
	messages []string
}

// Add records a failure for field with a human readable message.
func (f *FieldErrors) Add(field, message string) {
	for _, existing := range f.fields {
		if existing == field {
			return
		}
	}
	f.fields = append(f.fields, field)
	f.messages = append(f.messages, message)
}

// AddValidation folds go-playground validation errors into the collection.
// It reports false when err is not a validation error.
func (f *FieldErrors) AddValidation(err error) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		f.Add(fe.Field(), describe(fe))
	}
	return true
}

// Empty reports whether no failures were recorded.
func (f *FieldErrors) Empty() bool {
	return len(f.fields) == 0
}

// Fields returns the offending field names.
func (f *FieldErrors) Fields() []string {
	return f.fields
}

// Message returns the first failure message.
func (f *FieldErrors) Message() string {
	if len(f.messages) == 0 {
		return ""
	}
	return f.messages[0]
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "gte":
		return fe.Field() + " must be greater than or equal to " + fe.Param()
	case "lte":
		return fe.Field() + " must be less than or equal to " + fe.Param()
	case "instant":
		return fe.Field() + " must be a valid date-time string"
	case "email":
		return fe.Field() + " must be a valid email address"
	default:
		return fe.Field() + " is invalid"
	}
}
