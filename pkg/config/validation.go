package config

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Package-level validator used for options.
var validate *validator.Validate

// envPrefixRegex matches a usable environment variable prefix, e.g. "DOTCFG" or "my_app".
var envPrefixRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reservedNames are the accessor names of mapping-style config objects. A key
// with one of these names would be shadowed by the accessor in attribute-style
// consumers, so no level of a resolved configuration may use them.
var reservedNames = map[string]struct{}{
	"clear":      {},
	"copy":       {},
	"fromkeys":   {},
	"get":        {},
	"items":      {},
	"keys":       {},
	"pop":        {},
	"popitem":    {},
	"setdefault": {},
	"update":     {},
	"values":     {},
}

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	if err := validate.RegisterValidation("env_prefix", validateEnvPrefix); err != nil {
		panic(fmt.Errorf("register validator env_prefix: %w", err))
	}
}

// validateEnvPrefix implements the "env_prefix" tag.
func validateEnvPrefix(fl validator.FieldLevel) bool {
	return envPrefixRegex.MatchString(fl.Field().String())
}

// ReservedNames returns the reserved accessor names in sorted order.
func ReservedNames() []string {
	names := make([]string, 0, len(reservedNames))
	for name := range reservedNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks every key of tree, at every nesting level and inside list
// elements, against the reserved accessor names. The first collision found in
// sorted key order is returned as a *CollisionError.
func Validate(tree map[string]any) error {
	return validateValue("", tree)
}

func validateValue(path string, value any) error {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := validateEntry(path, k, v[k]); err != nil {
				return err
			}
		}
	case map[any]any:
		keys := make([]string, 0, len(v))
		byName := make(map[string]any, len(v))
		for k, elem := range v {
			name := fmt.Sprint(k)
			keys = append(keys, name)
			byName[name] = elem
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := validateEntry(path, k, byName[k]); err != nil {
				return err
			}
		}
	case []any:
		for i, elem := range v {
			if err := validateValue(joinPath(path, strconv.Itoa(i)), elem); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateEntry(path, name string, value any) error {
	full := joinPath(path, name)
	if _, reserved := reservedNames[name]; reserved {
		return &CollisionError{Path: full, Name: name}
	}
	return validateValue(full, value)
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// validateOptions runs tag-based validation on resolved options.
func validateOptions(o *options) error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, formatValidationError(err))
	}
	return nil
}

// formatValidationError renders go-playground/validator errors as concise, user-facing text.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	var errorMessages []string
	for _, fieldError := range validationErrors {
		errorMessages = append(errorMessages, formatFieldError(fieldError))
	}

	return fmt.Errorf("options validation failed:\n  - %s",
		strings.Join(errorMessages, "\n  - "))
}

// formatFieldError creates user-friendly error messages for field validation failures
func formatFieldError(fieldError validator.FieldError) string {
	fieldName := fieldError.Field()
	value := fieldError.Value()

	switch fieldError.Tag() {
	case "env_prefix":
		return fmt.Sprintf("'%s' must be a valid environment variable prefix (letters, digits, '_'), got '%v'", fieldName, value)
	case "oneof":
		return fmt.Sprintf("'%s' must be one of [%s], got '%v'", fieldName, fieldError.Param(), value)
	default:
		return fmt.Sprintf("'%s' failed validation '%s', got '%v'", fieldName, fieldError.Tag(), value)
	}
}
