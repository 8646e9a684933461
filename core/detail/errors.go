package detail

import (
	"fmt"
	"strings"
)

// FieldError is one validation message attached to a form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is a save rejection carrying field-level errors. It is the
// only collaborator failure the controller handles routinely.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// GroupByField groups field errors into a field-to-messages mapping,
// preserving message order within each field.
func GroupByField(fields []FieldError) map[string][]string {
	grouped := make(map[string][]string, len(fields))
	for _, f := range fields {
		grouped[f.Field] = append(grouped[f.Field], f.Message)
	}
	return grouped
}
