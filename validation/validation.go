// Package validation checks request payloads against the rules declared in
// their `binding` struct tags and reports every violation as a FieldError.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldError is one violated rule, named by the JSON field it applies to.
type FieldError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Errors is returned by the binding validator when a payload breaks one or
// more rules. Order follows field declaration order.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Name+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator implements gin's binding.StructValidator.
type Validator struct {
	once     sync.Once
	validate *validator.Validate
}

var defaultValidator = &Validator{}

// Install makes the package validator the one gin runs on every bind.
func Install() {
	binding.Validator = defaultValidator
}

// Validate checks v and returns nil when it satisfies every rule.
func Validate(v any) []FieldError {
	var errs Errors
	if err := defaultValidator.ValidateStruct(v); err != nil && errors.As(err, &errs) {
		return errs
	}
	return nil
}

func (v *Validator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	value := reflect.ValueOf(obj)
	for value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil
	}

	v.lazyinit()
	err := v.validate.Struct(value.Interface())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{{Name: "body", Message: err.Error()}}
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Name: fe.Field(), Message: message(fe)})
	}
	return out
}

func (v *Validator) Engine() any {
	v.lazyinit()
	return v.validate
}

func (v *Validator) lazyinit() {
	v.once.Do(func() {
		v.validate = validator.New()
		v.validate.SetTagName("binding")
		v.validate.RegisterTagNameFunc(jsonName)
		_ = v.validate.RegisterValidation("notblank", notBlank)
	})
}

func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	}
	return name
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.String:
		return strings.TrimSpace(field.String()) != ""
	case reflect.Ptr:
		if field.IsNil() {
			return false
		}
		return field.Elem().Kind() != reflect.String || strings.TrimSpace(field.Elem().String()) != ""
	default:
		return !field.IsZero()
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be null"
	case "notblank":
		return "must not be blank"
	case "min":
		return fmt.Sprintf("size must be between %s and 2147483647", fe.Param())
	case "max":
		return fmt.Sprintf("size must be between 0 and %s", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}
