package plan

import (
	"context"
	"encoding/json"
	errs "errors"
	"time"

	"github.com/google/uuid"

	"github.com/fitforge/v1/internal/domain/conversation"
	domainplan "github.com/fitforge/v1/internal/domain/plan"
	"github.com/fitforge/v1/internal/ports/inbound"
	"github.com/fitforge/v1/internal/ports/outbound"
	"github.com/fitforge/v1/pkg/errors"
)

// CurrentDiet returns the most recent accepted diet plan of the given
// calendar day, recovered from the day's model messages. A zero date
// means today.
func (s *Service) CurrentDiet(ctx context.Context, userID uuid.UUID, date time.Time) (*inbound.DietResult, error) {
	if date.IsZero() {
		date = time.Now()
	}
	day, err := s.conversations.FindDietDay(ctx, userID, date)
	if err != nil {
		if errs.As(err, &outbound.ErrConversationNotFound{}) {
			return nil, errors.New(errors.CodeNotFound, "No diet plan for that day")
		}
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load diet conversation")
	}

	for i := len(day.History) - 1; i >= 0; i-- {
		msg := day.History[i]
		if msg.Role != conversation.RoleModel {
			continue
		}
		if diet, rejection := ClassifyDiet(msg.Content); rejection == nil {
			return &inbound.DietResult{Plan: diet, RawText: msg.Content}, nil
		}
	}
	return nil, errors.New(errors.CodeNotFound, "No diet plan for that day")
}

// CurrentWorkout returns the stored weekly plan of the training slot.
func (s *Service) CurrentWorkout(ctx context.Context, userID uuid.UUID) (*inbound.WorkoutResult, error) {
	session, err := s.conversations.FindTraining(ctx, userID)
	if err != nil {
		if errs.As(err, &outbound.ErrConversationNotFound{}) {
			return nil, errors.New(errors.CodeNotFound, "No workout plan yet")
		}
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load training slot")
	}
	if len(session.Plan) == 0 {
		return nil, errors.New(errors.CodeNotFound, "No workout plan yet")
	}

	var workout domainplan.Workout
	if err := json.Unmarshal(session.Plan, &workout.Days); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "stored workout plan is corrupt")
	}
	return &inbound.WorkoutResult{Plan: &workout}, nil
}
