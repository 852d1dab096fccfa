package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// maxQuoteIDLength bounds ids accepted from clients.
const maxQuoteIDLength = 128

var (
	// ErrValidation wraps field failures from the `validate` tags.
	ErrValidation = errors.New("validation failed")

	// ErrBinding wraps bodies that are not the expected JSON object.
	ErrBinding = errors.New("binding failed")
)

// requests reports fields by their JSON name, the one clients send.
var requests = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	for tag, fn := range map[string]validator.Func{
		"quoteid":  isQuoteID,
		"notempty": isNotBlank,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("registering %s validation: %v", tag, err))
		}
	}

	return v
}

// Validate checks v against its `validate` tags.
func Validate(v any) error {
	if err := requests.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// BindAndValidate decodes the JSON body into v, then validates it.
func BindAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}
	return Validate(v)
}

// ValidationErrors maps each failing JSON field to a message for the
// error envelope's details. Errors without field failures give an empty map.
func ValidationErrors(err error) map[string]string {
	details := map[string]string{}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return details
	}
	for _, fe := range fieldErrs {
		details[fe.Field()] = fieldMessage(fe)
	}

	return details
}

func IsValidationError(err error) bool {
	var fieldErrs validator.ValidationErrors
	return errors.As(err, &fieldErrs)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "quoteid":
		return "must be a quote id without spaces"
	case "notempty":
		return "must not be empty"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min", "max":
		return minMaxMessage(fe.Tag(), fe.Param(), fe.Type().Kind())
	default:
		return "failed validation: " + fe.Tag()
	}
}

// minMaxMessage counts characters for strings and the value otherwise.
func minMaxMessage(tag, param string, kind reflect.Kind) string {
	bound := "at least"
	if tag == "max" {
		bound = "at most"
	}

	msg := "must be " + bound + " " + param
	if kind == reflect.String {
		msg += " characters"
	}
	return msg
}

// isQuoteID accepts ids from any quote provider: non-empty, bounded and
// free of whitespace or control characters.
func isQuoteID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	if id == "" || len(id) > maxQuoteIDLength {
		return false
	}

	return !strings.ContainsFunc(id, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
}

func isNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
