package schema

import (
	"fmt"

	"github.com/wolfeidau/tenantd/internal/models"
)

// Validate checks payload against the merged schema and returns a copy
// containing only defined fields. Every failing field is reported in one
// ValidationError; validation never stops at the first failure.
func (m *Merged) Validate(payload map[string]any) (map[string]any, error) {
	var fieldErrs []models.FieldError

	out := make(map[string]any, len(payload))

	for _, name := range m.ordered {
		spec := m.fields[name]
		value, present := payload[name]

		if !present || value == nil {
			if spec.Required {
				fieldErrs = append(fieldErrs, models.FieldError{Path: name, Message: "is required"})
			}
			continue
		}

		if errs := checkField(name, spec, value); len(errs) > 0 {
			fieldErrs = append(fieldErrs, errs...)
			continue
		}
		out[name] = value
	}

	for name := range payload {
		if _, ok := m.fields[name]; !ok {
			fieldErrs = append(fieldErrs, models.FieldError{Path: name, Message: "is not a known field"})
		}
	}

	if len(fieldErrs) > 0 {
		return nil, models.NewValidationError(fieldErrs)
	}
	return out, nil
}

func checkField(name string, spec Field, value any) []models.FieldError {
	switch spec.Type {
	case TypeString:
		s, ok := value.(string)
		if !ok {
			return []models.FieldError{{Path: name, Message: "must be a string"}}
		}
		var errs []models.FieldError
		if spec.MinLen > 0 && len(s) < spec.MinLen {
			errs = append(errs, models.FieldError{Path: name, Message: fmt.Sprintf("must be at least %d characters", spec.MinLen)})
		}
		if spec.MaxLen > 0 && len(s) > spec.MaxLen {
			errs = append(errs, models.FieldError{Path: name, Message: fmt.Sprintf("must be at most %d characters", spec.MaxLen)})
		}
		if len(spec.Enum) > 0 && !contains(spec.Enum, s) {
			errs = append(errs, models.FieldError{Path: name, Message: fmt.Sprintf("must be one of %v", spec.Enum)})
		}
		return errs

	case TypeNumber:
		// JSON decoding yields float64; accept Go integer types as well.
		switch value.(type) {
		case float64, float32, int, int32, int64:
			return nil
		}
		return []models.FieldError{{Path: name, Message: "must be a number"}}

	case TypeBool:
		if _, ok := value.(bool); !ok {
			return []models.FieldError{{Path: name, Message: "must be a boolean"}}
		}
		return nil

	default:
		return []models.FieldError{{Path: name, Message: fmt.Sprintf("has unknown type %q", spec.Type)}}
	}
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
