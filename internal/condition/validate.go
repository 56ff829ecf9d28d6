package condition

import (
	"fmt"

	"form-service/internal/models"
)

// ConditionError is one authoring-time violation found in a form's
// condition graph.
type ConditionError struct {
	FieldKey string `json:"field_key"`
	Message  string `json:"message"`
}

type ValidationResult struct {
	IsValid bool             `json:"is_valid"`
	Errors  []ConditionError `json:"errors"`
}

// HasCircularDependency walks the field's referenced condition keys depth
// first, recursing into each referenced field's own conditions. The visited
// set is cloned on every call so that it tracks only the current path;
// sharing one mutable set would flag diamond-shaped reference graphs that
// are not cycles.
func HasCircularDependency(field models.Field, all []models.Field, visited map[string]struct{}) bool {
	if _, seen := visited[field.Key]; seen {
		return true
	}
	path := make(map[string]struct{}, len(visited)+1)
	for k := range visited {
		path[k] = struct{}{}
	}
	path[field.Key] = struct{}{}

	for _, g := range field.ConditionGroups {
		for _, c := range g.Conditions {
			ref := findField(all, c.FieldKey)
			if ref == nil {
				continue
			}
			if HasCircularDependency(*ref, all, path) {
				return true
			}
		}
	}
	return false
}

// ValidateFormConditions checks every field's conditions for circular
// dependencies, references to nonexistent fields, and references to fields
// that do not appear strictly earlier in the form. It collects one error per
// violation and never fails hard; the runtime keeps working (fail-open) even
// on forms that would be rejected here.
func ValidateFormConditions(fields []models.Field) ValidationResult {
	var errs []ConditionError

	for _, f := range fields {
		if HasCircularDependency(f, fields, map[string]struct{}{}) {
			errs = append(errs, ConditionError{
				FieldKey: f.Key,
				Message:  fmt.Sprintf("Campo %q possui dependência circular em suas condições", f.Key),
			})
		}
		for _, g := range f.ConditionGroups {
			for _, c := range g.Conditions {
				ref := findField(fields, c.FieldKey)
				if ref == nil {
					errs = append(errs, ConditionError{
						FieldKey: f.Key,
						Message:  fmt.Sprintf("Campo %q possui condição referenciando campo inexistente %q", f.Key, c.FieldKey),
					})
					continue
				}
				if ref.Position >= f.Position {
					errs = append(errs, ConditionError{
						FieldKey: f.Key,
						Message:  fmt.Sprintf("Campo %q possui condição referenciando o campo %q, que não aparece antes dele", f.Key, c.FieldKey),
					})
				}
			}
		}
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

func findField(fields []models.Field, key string) *models.Field {
	for i := range fields {
		if fields[i].Key == key {
			return &fields[i]
		}
	}
	return nil
}
