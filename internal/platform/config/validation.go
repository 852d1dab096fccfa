package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate reports fields by their koanf key, so messages read like the YAML
// files and APP_ variables that set them.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return v
}

// Validate validates the configuration and returns an error if invalid.
// Validation fails fast: neither binary starts with invalid config.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// formatValidationErrors lists one line per failing key.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	lines := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		key := configKey(e.Namespace())
		lines = append(lines, fmt.Sprintf("%s (%s)", describe(key, e), envVar(key)))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(lines, "\n  "))
}

func describe(key string, e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return key + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", key, requiredIfCondition(key, e.Param()))
	case "min":
		return fmt.Sprintf("%s must be at least %s", key, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", key, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", key, e.Param())
	case "url":
		return key + " must be a valid URL"
	case "startswith":
		return fmt.Sprintf("%s must start with %q", key, e.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", key, e.Tag())
	}
}

// requiredIfCondition turns "Enabled true" on storage.primary.path into
// "storage.primary.enabled is true".
func requiredIfCondition(key, param string) string {
	field, value, _ := strings.Cut(param, " ")

	sibling := strings.ToLower(field)
	if i := strings.LastIndex(key, "."); i >= 0 {
		sibling = key[:i+1] + sibling
	}

	return fmt.Sprintf("%s is %s", sibling, value)
}

// configKey drops the root struct name: "Config.storage.primary.path"
// becomes "storage.primary.path".
func configKey(namespace string) string {
	_, key, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return key
}

// envVar is the inverse of envKey: storage.primary.quota_bytes maps to
// APP_STORAGE_PRIMARY_QUOTA__BYTES.
func envVar(key string) string {
	name := strings.ReplaceAll(key, "_", "__")
	name = strings.ReplaceAll(name, ".", "_")

	return "APP_" + strings.ToUpper(name)
}
