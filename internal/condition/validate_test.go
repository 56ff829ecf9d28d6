package condition

import (
	"strings"
	"testing"

	"form-service/internal/models"
)

func refCondition(key string) []models.ConditionGroup {
	return []models.ConditionGroup{
		{Logic: models.LogicAnd, Conditions: []models.Condition{
			{FieldKey: key, Operator: models.OpIsNotEmpty},
		}},
	}
}

func TestDetectsCircularDependency(t *testing.T) {
	fields := []models.Field{
		{Key: "a", Position: 0, ConditionGroups: refCondition("b")},
		{Key: "b", Position: 1, ConditionGroups: refCondition("a")},
	}

	result := ValidateFormConditions(fields)
	if result.IsValid {
		t.Fatal("expected a -> b -> a to be invalid")
	}

	circular := 0
	for _, e := range result.Errors {
		if strings.Contains(e.Message, "circular") {
			circular++
		}
	}
	if circular < 2 {
		t.Errorf("expected both fields flagged as circular, got %d errors: %+v", circular, result.Errors)
	}
}

func TestDiamondReferencesAreNotCycles(t *testing.T) {
	// d depends on b and c, both of which depend on a. The shared ancestor is
	// visited once per path; a per-path visited set must not flag this.
	fields := []models.Field{
		{Key: "a", Position: 0},
		{Key: "b", Position: 1, ConditionGroups: refCondition("a")},
		{Key: "c", Position: 2, ConditionGroups: refCondition("a")},
		{Key: "d", Position: 3, ConditionGroups: []models.ConditionGroup{
			{Logic: models.LogicAnd, Conditions: []models.Condition{
				{FieldKey: "b", Operator: models.OpIsNotEmpty},
				{FieldKey: "c", Operator: models.OpIsNotEmpty},
			}},
		}},
	}

	if HasCircularDependency(fields[3], fields, map[string]struct{}{}) {
		t.Error("diamond-shaped reference graph falsely reported as a cycle")
	}
	if result := ValidateFormConditions(fields); !result.IsValid {
		t.Errorf("expected diamond graph to validate, got %+v", result.Errors)
	}
}

func TestFlagsDanglingReference(t *testing.T) {
	fields := []models.Field{
		{Key: "a", Position: 0},
		{Key: "b", Position: 1, ConditionGroups: refCondition("ghost")},
	}

	result := ValidateFormConditions(fields)
	if result.IsValid {
		t.Fatal("expected dangling reference to be invalid")
	}
	if len(result.Errors) != 1 || result.Errors[0].FieldKey != "b" {
		t.Errorf("expected one error on field b, got %+v", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Message, "inexistente") {
		t.Errorf("unexpected message: %s", result.Errors[0].Message)
	}
}

func TestFlagsForwardReference(t *testing.T) {
	// Field at position 2 referencing position 5: no cycle, still invalid.
	fields := []models.Field{
		{Key: "early", Position: 2, ConditionGroups: refCondition("late")},
		{Key: "late", Position: 5},
	}

	result := ValidateFormConditions(fields)
	if result.IsValid {
		t.Fatal("expected forward reference to be invalid")
	}
	if result.Errors[0].FieldKey != "early" {
		t.Errorf("expected error on field early, got %+v", result.Errors)
	}
}

func TestFlagsSelfReference(t *testing.T) {
	fields := []models.Field{
		{Key: "a", Position: 0, ConditionGroups: refCondition("a")},
	}

	result := ValidateFormConditions(fields)
	if result.IsValid {
		t.Fatal("expected self reference to be invalid")
	}
	// Self reference trips both the cycle walk and the ordering check.
	if len(result.Errors) < 2 {
		t.Errorf("expected circular and ordering errors, got %+v", result.Errors)
	}
}

func TestValidFormProducesNoErrors(t *testing.T) {
	fields := []models.Field{
		{Key: "contact_method", Position: 0},
		{Key: "phone", Position: 1, ConditionGroups: []models.ConditionGroup{
			{Logic: models.LogicAnd, Conditions: []models.Condition{
				{FieldKey: "contact_method", Operator: models.OpEquals, Value: "phone"},
			}},
		}},
	}

	result := ValidateFormConditions(fields)
	if !result.IsValid || len(result.Errors) != 0 {
		t.Errorf("expected valid form, got %+v", result.Errors)
	}
}
