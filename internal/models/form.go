package models

import "time"

type ScoreFormula string

const (
	FormulaSum             ScoreFormula = "sum"
	FormulaAverage         ScoreFormula = "average"
	FormulaWeightedAverage ScoreFormula = "weighted_average"
)

// Classification is a labeled score band. Bands are matched ascending by
// Position; min and max are both inclusive.
type Classification struct {
	Name     string  `bson:"name" json:"name"`
	MinScore float64 `bson:"min_score" json:"min_score"`
	MaxScore float64 `bson:"max_score" json:"max_score"`
	Color    string  `bson:"color,omitempty" json:"color,omitempty"`
	Emoji    string  `bson:"emoji,omitempty" json:"emoji,omitempty"`
	Message  string  `bson:"message,omitempty" json:"message,omitempty"`
	Position int     `bson:"position" json:"position"`
}

type ScoringConfig struct {
	Enabled bool         `bson:"enabled" json:"enabled"`
	Formula ScoreFormula `bson:"formula,omitempty" json:"formula,omitempty"`
	// FieldWeights overrides the per-field scoring_weight, keyed by field key.
	FieldWeights map[string]float64 `bson:"field_weights,omitempty" json:"field_weights,omitempty"`
}

type FormSettings struct {
	AllowBack    bool `bson:"allow_back" json:"allow_back"`
	ShowProgress bool `bson:"show_progress" json:"show_progress"`
}

type WelcomeScreen struct {
	Enabled      bool   `bson:"enabled" json:"enabled"`
	Title        string `bson:"title,omitempty" json:"title,omitempty"`
	Description  string `bson:"description,omitempty" json:"description,omitempty"`
	ButtonLabel  string `bson:"button_label,omitempty" json:"button_label,omitempty"`
	CollectEmail bool   `bson:"collect_email" json:"collect_email"`
}

type ThankYouScreen struct {
	Title       string `bson:"title,omitempty" json:"title,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	ShowScore   bool   `bson:"show_score" json:"show_score"`
}

type Form struct {
	ID              string           `bson:"_id,omitempty" json:"id"`
	OwnerID         string           `bson:"owner_id" json:"owner_id"`
	Title           string           `bson:"title" json:"title"`
	Description     string           `bson:"description,omitempty" json:"description,omitempty"`
	Status          string           `bson:"status" json:"status"`
	Fields          []Field          `bson:"fields" json:"fields"`
	Classifications []Classification `bson:"classifications,omitempty" json:"classifications,omitempty"`
	Scoring         ScoringConfig    `bson:"scoring" json:"scoring"`
	Settings        FormSettings     `bson:"settings" json:"settings"`
	Welcome         *WelcomeScreen   `bson:"welcome,omitempty" json:"welcome,omitempty"`
	ThankYou        *ThankYouScreen  `bson:"thank_you,omitempty" json:"thank_you,omitempty"`
	CreatedAt       time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `bson:"updated_at" json:"updated_at"`
}

// HasWelcomeScreen reports whether the respondent flow starts on a welcome step.
func (f *Form) HasWelcomeScreen() bool {
	return f.Welcome != nil && f.Welcome.Enabled
}
