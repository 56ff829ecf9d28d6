package models

type FieldType string

const (
	FieldShortText    FieldType = "short_text"
	FieldLongText     FieldType = "long_text"
	FieldEmail        FieldType = "email"
	FieldPhone        FieldType = "phone"
	FieldNumber       FieldType = "number"
	FieldDate         FieldType = "date"
	FieldSingleSelect FieldType = "single_select"
	FieldMultiSelect  FieldType = "multi_select"
	FieldDropdown     FieldType = "dropdown"
	FieldScale        FieldType = "scale"
	FieldStatement    FieldType = "statement"
	FieldFile         FieldType = "file"
)

// HasOptions reports whether the field type carries an option list.
func (t FieldType) HasOptions() bool {
	switch t {
	case FieldSingleSelect, FieldMultiSelect, FieldDropdown:
		return true
	}
	return false
}

type Option struct {
	Label        string   `bson:"label" json:"label"`
	Value        string   `bson:"value" json:"value"`
	NumericValue *float64 `bson:"numeric_value,omitempty" json:"numeric_value,omitempty"`
}

type Operator string

const (
	OpEquals              Operator = "equals"
	OpNotEquals           Operator = "not_equals"
	OpContains            Operator = "contains"
	OpNotContains         Operator = "not_contains"
	OpGreaterThan         Operator = "greater_than"
	OpLessThan            Operator = "less_than"
	OpGreaterThanOrEquals Operator = "greater_than_or_equals"
	OpLessThanOrEquals    Operator = "less_than_or_equals"
	OpIsEmpty             Operator = "is_empty"
	OpIsNotEmpty          Operator = "is_not_empty"
)

type GroupLogic string

const (
	LogicAnd GroupLogic = "and"
	LogicOr  GroupLogic = "or"
)

// Condition gates a field's visibility on another field's answer.
type Condition struct {
	FieldKey string   `bson:"field_key" json:"field_key"`
	Operator Operator `bson:"operator" json:"operator"`
	Value    string   `bson:"value" json:"value"`
}

// ConditionGroup bundles conditions under AND/OR logic. A field is visible
// only when every one of its groups evaluates true.
type ConditionGroup struct {
	Logic      GroupLogic  `bson:"logic" json:"logic"`
	Conditions []Condition `bson:"conditions" json:"conditions"`
}

type ValidationRules struct {
	MinLength *int     `bson:"min_length,omitempty" json:"min_length,omitempty"`
	MaxLength *int     `bson:"max_length,omitempty" json:"max_length,omitempty"`
	Min       *float64 `bson:"min,omitempty" json:"min,omitempty"`
	Max       *float64 `bson:"max,omitempty" json:"max,omitempty"`
	Pattern   string   `bson:"pattern,omitempty" json:"pattern,omitempty"`
	Message   string   `bson:"message,omitempty" json:"message,omitempty"`
}

type Field struct {
	Key             string           `bson:"key" json:"key"`
	Type            FieldType        `bson:"type" json:"type"`
	Label           string           `bson:"label" json:"label"`
	Description     string           `bson:"description,omitempty" json:"description,omitempty"`
	Required        bool             `bson:"required" json:"required"`
	Options         []Option         `bson:"options,omitempty" json:"options,omitempty"`
	ScaleMin        int              `bson:"scale_min,omitempty" json:"scale_min,omitempty"`
	ScaleMax        int              `bson:"scale_max,omitempty" json:"scale_max,omitempty"`
	ScaleStep       int              `bson:"scale_step,omitempty" json:"scale_step,omitempty"`
	Validation      *ValidationRules `bson:"validation,omitempty" json:"validation,omitempty"`
	ConditionGroups []ConditionGroup `bson:"condition_groups,omitempty" json:"condition_groups,omitempty"`
	ScoringWeight   float64          `bson:"scoring_weight,omitempty" json:"scoring_weight,omitempty"`
	Pillar          string           `bson:"pillar,omitempty" json:"pillar,omitempty"`
	Position        int              `bson:"position" json:"position"`
}
