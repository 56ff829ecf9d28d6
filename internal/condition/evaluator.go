package condition

import (
	"log"
	"strconv"
	"strings"

	"form-service/internal/models"
)

// Evaluate decides whether a single condition holds against the current
// answer set. Malformed input never panics: unresolvable conditions fail
// open elsewhere, and an unknown operator is treated as always true.
func Evaluate(cond models.Condition, answers map[string]models.Answer) bool {
	ans, ok := answers[cond.FieldKey]
	var value interface{}
	if ok {
		value = ans.Value
	}

	switch cond.Operator {
	case models.OpEquals:
		return equalsValue(value, cond.Value)
	case models.OpNotEquals:
		return !equalsValue(value, cond.Value)
	case models.OpContains:
		return containsValue(value, cond.Value)
	case models.OpNotContains:
		return !containsValue(value, cond.Value)
	case models.OpGreaterThan:
		a, b, ok := numericPair(value, cond.Value)
		return ok && a > b
	case models.OpLessThan:
		a, b, ok := numericPair(value, cond.Value)
		return ok && a < b
	case models.OpGreaterThanOrEquals:
		a, b, ok := numericPair(value, cond.Value)
		return ok && a >= b
	case models.OpLessThanOrEquals:
		a, b, ok := numericPair(value, cond.Value)
		return ok && a <= b
	case models.OpIsEmpty:
		return isEmptyValue(value)
	case models.OpIsNotEmpty:
		return !isEmptyValue(value)
	default:
		log.Printf("[CONDITION] unknown operator %q on field %q, treating as visible", cond.Operator, cond.FieldKey)
		return true
	}
}

// EvaluateGroup applies the group's own AND/OR logic. An empty condition
// list is vacuously true.
func EvaluateGroup(group models.ConditionGroup, answers map[string]models.Answer) bool {
	if len(group.Conditions) == 0 {
		return true
	}
	if group.Logic == models.LogicOr {
		for _, c := range group.Conditions {
			if Evaluate(c, answers) {
				return true
			}
		}
		return false
	}
	for _, c := range group.Conditions {
		if !Evaluate(c, answers) {
			return false
		}
	}
	return true
}

// IsFieldVisible is true when the field has no condition groups, or when
// every group evaluates true (groups are ANDed together regardless of each
// group's internal logic).
func IsFieldVisible(field models.Field, answers map[string]models.Answer) bool {
	for _, g := range field.ConditionGroups {
		if !EvaluateGroup(g, answers) {
			return false
		}
	}
	return true
}

// VisibleFields filters the ordered field list down to the currently visible
// fields, preserving relative order. Callers must re-derive this on every
// answer change: any upstream answer can affect any downstream field.
func VisibleFields(fields []models.Field, answers map[string]models.Answer) []models.Field {
	visible := make([]models.Field, 0, len(fields))
	for _, f := range fields {
		if IsFieldVisible(f, answers) {
			visible = append(visible, f)
		}
	}
	return visible
}

// equalsValue compares the string-coerced answer against the condition value.
// When the answer is a multi-select array, equals means "array contains it".
func equalsValue(value interface{}, want string) bool {
	if arr, ok := stringSlice(value); ok {
		for _, v := range arr {
			if v == want {
				return true
			}
		}
		return false
	}
	if value == nil {
		return false
	}
	return stringify(value) == want
}

// containsValue does a case-insensitive substring match; against an array it
// checks whether any element matches.
func containsValue(value interface{}, want string) bool {
	needle := strings.ToLower(want)
	if arr, ok := stringSlice(value); ok {
		for _, v := range arr {
			if strings.Contains(strings.ToLower(v), needle) {
				return true
			}
		}
		return false
	}
	if value == nil {
		return false
	}
	return strings.Contains(strings.ToLower(stringify(value)), needle)
}

// numericPair coerces both sides to numbers. A failed coercion makes every
// ordered comparison false; form configurations rely on that, so it is not
// surfaced as an error.
func numericPair(value interface{}, want string) (float64, float64, bool) {
	a, okA := toNumber(value)
	b, okB := toNumber(want)
	return a, b, okA && okB
}

func isEmptyValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []interface{}:
		return len(v) == 0
	}
	return false
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return ""
}

func toNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// stringSlice normalizes multi-select answers, which arrive as []string from
// the runtime but as []interface{} after a BSON/JSON round trip.
func stringSlice(value interface{}) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			out = append(out, stringify(e))
		}
		return out, true
	}
	return nil, false
}
