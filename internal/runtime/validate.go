package runtime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"form-service/internal/models"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[\d\s()+-]{8,20}$`)
)

// ValidateAnswer applies the field's type-specific rules and returns a
// localized message, or "" when the answer passes. Validation errors are
// data, never errors: they block only the one field's advance.
func ValidateAnswer(field models.Field, ans models.Answer, present bool) string {
	empty := !present || isEmptyAnswer(ans.Value)

	if empty {
		if field.Required {
			return "Este campo é obrigatório"
		}
		return ""
	}

	switch field.Type {
	case models.FieldEmail:
		if s, ok := ans.Value.(string); ok && !emailPattern.MatchString(strings.TrimSpace(s)) {
			return "Digite um e-mail válido"
		}
	case models.FieldPhone:
		if s, ok := ans.Value.(string); ok && !phonePattern.MatchString(strings.TrimSpace(s)) {
			return "Digite um telefone válido"
		}
	case models.FieldNumber:
		f, ok := answerNumber(ans.Value)
		if !ok {
			return "Digite um número válido"
		}
		if msg := checkNumericBounds(field.Validation, f); msg != "" {
			return msg
		}
	case models.FieldScale:
		f, ok := answerNumber(ans.Value)
		if !ok {
			return "Selecione um valor na escala"
		}
		min, max := scaleBounds(field)
		if f < float64(min) || f > float64(max) {
			return fmt.Sprintf("Selecione um valor entre %d e %d", min, max)
		}
	case models.FieldShortText, models.FieldLongText:
		if s, ok := ans.Value.(string); ok {
			if msg := checkLength(field.Validation, s); msg != "" {
				return msg
			}
		}
	}

	return checkPattern(field.Validation, ans.Value)
}

func checkNumericBounds(rules *models.ValidationRules, f float64) string {
	if rules == nil {
		return ""
	}
	if rules.Min != nil && f < *rules.Min {
		return fmt.Sprintf("O valor mínimo é %s", formatNumber(*rules.Min))
	}
	if rules.Max != nil && f > *rules.Max {
		return fmt.Sprintf("O valor máximo é %s", formatNumber(*rules.Max))
	}
	return ""
}

func checkLength(rules *models.ValidationRules, s string) string {
	if rules == nil {
		return ""
	}
	n := len([]rune(s))
	if rules.MinLength != nil && n < *rules.MinLength {
		return fmt.Sprintf("Digite pelo menos %d caracteres", *rules.MinLength)
	}
	if rules.MaxLength != nil && n > *rules.MaxLength {
		return fmt.Sprintf("Digite no máximo %d caracteres", *rules.MaxLength)
	}
	return ""
}

func checkPattern(rules *models.ValidationRules, value interface{}) string {
	if rules == nil || rules.Pattern == "" {
		return ""
	}
	s, ok := value.(string)
	if !ok {
		return ""
	}
	re, err := regexp.Compile(rules.Pattern)
	if err != nil {
		// Broken authoring-time pattern; fail open like the condition layer.
		return ""
	}
	if !re.MatchString(s) {
		if rules.Message != "" {
			return rules.Message
		}
		return "Formato inválido"
	}
	return ""
}

func scaleBounds(field models.Field) (int, int) {
	min, max := field.ScaleMin, field.ScaleMax
	if max == 0 && min == 0 {
		min, max = 0, 10
	}
	return min, max
}

func isEmptyAnswer(value interface{}) bool {
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

func answerNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
