package scoring

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"form-service/internal/models"
)

// ScoreResult is the reduction of one answer set against a form's fields.
// PillarScores are averages across the contributing fields, not sums.
type ScoreResult struct {
	TotalScore   float64            `json:"total_score"`
	PillarScores map[string]float64 `json:"pillar_scores"`
	FieldScores  map[string]float64 `json:"field_scores"`
}

// NumericValue resolves the scorable value of one answer. Resolution order:
// a matching option's numeric value, then the raw value for scale/number
// fields, then the answer's pre-resolved numeric value (multi-select sums
// arrive this way). Returns nil when the field contributes nothing; it never
// fails hard on unrecognized shapes.
func NumericValue(field models.Field, ans models.Answer) *float64 {
	if len(field.Options) > 0 {
		if s, ok := ans.Value.(string); ok {
			for _, opt := range field.Options {
				if opt.Value == s && opt.NumericValue != nil {
					v := *opt.NumericValue
					return &v
				}
			}
		}
	}

	if field.Type == models.FieldScale || field.Type == models.FieldNumber {
		if f, ok := rawNumber(ans.Value); ok {
			return &f
		}
	}

	if ans.NumericValue != nil {
		v := *ans.NumericValue
		return &v
	}
	return nil
}

// CalculateScore reduces the full answer map to weighted per-field scores,
// per-pillar averages and a total. The total formula comes from the form's
// scoring config:
//
//	sum              — sum of all weighted field scores
//	average          — mean of all weighted field scores
//	weighted_average — mean of the pillar averages when any pillar exists
//	                   (each pillar counts once regardless of how many fields
//	                   feed it), else the mean of the field scores
//
// weighted_average is the default. With zero scorable fields the total is
// exactly 0.
func CalculateScore(form *models.Form, answers map[string]models.Answer) *ScoreResult {
	fieldScores := make(map[string]float64)
	pillarSums := make(map[string]float64)
	pillarCounts := make(map[string]int)

	for _, f := range form.Fields {
		ans, ok := answers[f.Key]
		if !ok {
			continue
		}
		nv := NumericValue(f, ans)
		if nv == nil {
			continue
		}
		weighted := *nv * fieldWeight(form, f)
		fieldScores[f.Key] = weighted
		if f.Pillar != "" {
			pillarSums[f.Pillar] += weighted
			pillarCounts[f.Pillar]++
		}
	}

	result := &ScoreResult{
		PillarScores: make(map[string]float64),
		FieldScores:  fieldScores,
	}
	if len(fieldScores) == 0 {
		return result
	}

	for pillar, sum := range pillarSums {
		result.PillarScores[pillar] = sum / float64(pillarCounts[pillar])
	}

	var total float64
	switch form.Scoring.Formula {
	case models.FormulaSum:
		total = sumValues(fieldScores)
	case models.FormulaAverage:
		total = sumValues(fieldScores) / float64(len(fieldScores))
	default: // weighted_average
		if len(result.PillarScores) > 0 {
			total = sumValues(result.PillarScores) / float64(len(result.PillarScores))
		} else {
			total = sumValues(fieldScores) / float64(len(fieldScores))
		}
	}

	result.TotalScore = math.Round(total*100) / 100
	return result
}

// Classify resolves a score to its classification band. Bands are checked
// ascending by position and both bounds are inclusive; the first match wins.
// A score outside every band falls back to the last band, and a form with no
// bands yields nil.
func Classify(form *models.Form, score float64) *models.Classification {
	if len(form.Classifications) == 0 {
		return nil
	}
	sorted := make([]models.Classification, len(form.Classifications))
	copy(sorted, form.Classifications)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})
	for i := range sorted {
		if score >= sorted[i].MinScore && score <= sorted[i].MaxScore {
			return &sorted[i]
		}
	}
	return &sorted[len(sorted)-1]
}

func fieldWeight(form *models.Form, f models.Field) float64 {
	if w, ok := form.Scoring.FieldWeights[f.Key]; ok {
		return w
	}
	if f.ScoringWeight != 0 {
		return f.ScoringWeight
	}
	return 1
}

func sumValues(m map[string]float64) float64 {
	var s float64
	for _, v := range m {
		s += v
	}
	return s
}

func rawNumber(value interface{}) (float64, bool) {
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
