package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ValidationError is a configuration error with file and field context.
type ValidationError struct {
	FilePath string
	Field    string
	Message  string
}

func (e *ValidationError) Error() string {
	switch {
	case e.FilePath != "" && e.Field != "":
		return fmt.Sprintf("%s: field '%s': %s", e.FilePath, e.Field, e.Message)
	case e.FilePath != "":
		return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
	case e.Field != "":
		return fmt.Sprintf("field '%s': %s", e.Field, e.Message)
	default:
		return e.Message
	}
}

// ValidateYAMLSyntax checks that a YAML file parses. A missing or empty
// file is not an error; defaults apply.
func ValidateYAMLSyntax(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &ValidationError{FilePath: filePath, Message: err.Error()}
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			return &ValidationError{FilePath: filePath, Message: strings.Join(typeErr.Errors, "; ")}
		}
		return &ValidationError{FilePath: filePath, Message: err.Error()}
	}
	return nil
}

// ValidateValues checks configuration values against the struct's
// validation tags.
func ValidateValues(cfg *Configuration) error {
	validate := validator.New()
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{
			Field:   toSnakeCase(fe.Field()),
			Message: describeFieldError(fe),
		}
	}
	return &ValidationError{Message: err.Error()}
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required value is missing"
	case "email":
		return fmt.Sprintf("%q is not a valid email address", fe.Value())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// toSnakeCase converts a Go field name to its config key form.
// Example: ChangelogOutput -> changelog_output
func toSnakeCase(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r + ('a' - 'A'))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
