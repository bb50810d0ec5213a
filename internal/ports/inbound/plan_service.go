// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fitforge/v1/internal/domain/plan"
)

// DietRequest is one diet generation or modification exchange
type DietRequest struct {
	Modifying         bool
	UserModifications string
}

// WorkoutRequest is one workout generation, modification or
// regeneration exchange
type WorkoutRequest struct {
	Modifying         bool
	Regenerate        bool
	UserModifications string
}

// DietResult carries the accepted plan plus the raw model text the
// caller renders verbatim
type DietResult struct {
	Plan    *plan.Diet
	RawText string
}

// WorkoutResult carries the accepted weekly plan
type WorkoutResult struct {
	Plan *plan.Workout
}

// PlanService drives AI plan generation for both coaching domains
type PlanService interface {
	GenerateDiet(ctx context.Context, userID uuid.UUID, req DietRequest) (*DietResult, error)
	GenerateWorkout(ctx context.Context, userID uuid.UUID, req WorkoutRequest) (*WorkoutResult, error)

	// CurrentDiet returns the last accepted diet plan of the given
	// calendar day (zero date means today); CurrentWorkout the stored
	// weekly plan.
	CurrentDiet(ctx context.Context, userID uuid.UUID, date time.Time) (*DietResult, error)
	CurrentWorkout(ctx context.Context, userID uuid.UUID) (*WorkoutResult, error)
}
