// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fitforge/v1/internal/domain/conversation"
	"github.com/fitforge/v1/internal/domain/moderation"
	"github.com/fitforge/v1/internal/domain/user"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *user.User) error
	Update(ctx context.Context, user *user.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error

	// UpdateModeration replaces the moderation state as one atomic
	// field write; mistake counter and ban never diverge.
	UpdateModeration(ctx context.Context, id uuid.UUID, state moderation.State) error

	// AddWorkoutRun appends one executed-day log entry.
	AddWorkoutRun(ctx context.Context, id uuid.UUID, run user.WorkoutRun) error
}

// ConversationRepository defines the interface for the per-user
// conversation event log: diet days keyed by calendar day, plus the
// single training slot. Histories are append-only; only the training
// slot is ever replaced wholesale.
type ConversationRepository interface {
	FindDietDay(ctx context.Context, userID uuid.UUID, date time.Time) (*conversation.DietDay, error)
	CreateDietDay(ctx context.Context, userID uuid.UUID, day *conversation.DietDay) error
	AppendDietTurn(ctx context.Context, userID uuid.UUID, date time.Time, messages ...conversation.Message) error

	FindTraining(ctx context.Context, userID uuid.UUID) (*conversation.TrainingSession, error)
	ReplaceTraining(ctx context.Context, userID uuid.UUID, session *conversation.TrainingSession) error
	AppendTrainingTurn(ctx context.Context, userID uuid.UUID, messages ...conversation.Message) error
	SetTrainingPlan(ctx context.Context, userID uuid.UUID, plan []byte) error
}

// ErrConversationNotFound is returned by the repository when the
// requested day or slot does not exist.
type ErrConversationNotFound struct {
	Domain conversation.Domain
}

func (e ErrConversationNotFound) Error() string {
	return string(e.Domain) + " conversation not found"
}

// CompletionClient defines the interface to the external language-model
// completion service: full conversation in, free text out.
type CompletionClient interface {
	Complete(ctx context.Context, messages []conversation.Message) (string, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
