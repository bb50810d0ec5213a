package plan

import (
	"encoding/json"
	"strings"

	"github.com/fitforge/v1/internal/domain/plan"
)

// RejectReason classifies why a model response was refused
type RejectReason string

const (
	// RejectSchemaViolation marks structurally invalid output
	RejectSchemaViolation RejectReason = "schema_violation"
	// RejectOffTopic marks output the model flagged as off-topic
	RejectOffTopic RejectReason = "off_topic"
)

// Rejection is the refused half of a classification. Both reasons feed
// the same moderation path; the split exists for logging and so the
// two policies can diverge later.
type Rejection struct {
	Reason RejectReason
	Cause  error
}

// ClassifyDiet parses raw model output against the diet schema.
// Exactly one of the return values is non-nil.
func ClassifyDiet(raw string) (*plan.Diet, *Rejection) {
	// The off-topic marker wins regardless of structural validity.
	if strings.Contains(strings.ToLower(raw), "error") {
		return nil, &Rejection{Reason: RejectOffTopic}
	}

	body, ok := extractJSON(raw, "{", "}")
	if !ok {
		return nil, &Rejection{Reason: RejectSchemaViolation, Cause: plan.ErrMalformedJSON}
	}

	var diet plan.Diet
	if err := json.Unmarshal([]byte(body), &diet); err != nil {
		return nil, &Rejection{Reason: RejectSchemaViolation, Cause: err}
	}
	if err := diet.Validate(); err != nil {
		return nil, &Rejection{Reason: RejectSchemaViolation, Cause: err}
	}
	return &diet, nil
}

// ClassifyWorkout parses raw model output against the workout schema.
// Output that is not JSON at all is treated as the model declining the
// request and classified off-topic; parseable output that misses the
// schema is a violation.
func ClassifyWorkout(raw string) (*plan.Workout, *Rejection) {
	body, ok := extractJSON(raw, "[", "]")
	if !ok {
		return nil, &Rejection{Reason: RejectOffTopic}
	}

	var days []plan.WorkoutDay
	if err := json.Unmarshal([]byte(body), &days); err != nil {
		return nil, &Rejection{Reason: RejectOffTopic, Cause: err}
	}

	workout := plan.Workout{Days: days}
	if err := workout.Validate(); err != nil {
		return nil, &Rejection{Reason: RejectSchemaViolation, Cause: err}
	}
	return &workout, nil
}

// extractJSON cuts the candidate JSON document out of model output that
// sometimes wraps it in prose or markdown fences.
func extractJSON(raw, open, closing string) (string, bool) {
	start := strings.Index(raw, open)
	end := strings.LastIndex(raw, closing)
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}
