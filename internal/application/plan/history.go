// Package plan provides the application layer orchestrating AI plan
// generation: conversation state, prompt contracts, response
// validation, moderation and persistence.
package plan

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fitforge/v1/internal/domain/conversation"
	"github.com/fitforge/v1/internal/ports/outbound"
)

// HistoryStore owns the append-only message log for each calendar day
// of diet conversation and for the single active training slot.
type HistoryStore struct {
	conversations outbound.ConversationRepository
	logger        *zap.Logger
}

// NewHistoryStore creates a new conversation history store
func NewHistoryStore(conversations outbound.ConversationRepository, logger *zap.Logger) *HistoryStore {
	return &HistoryStore{
		conversations: conversations,
		logger:        logger.Named("history-store"),
	}
}

// LoadOrCreateDietHistory returns the diet conversation for the
// calendar day containing date. When no day matches, a new one is
// created, seeded with the diet schema system message, and the seed is
// returned.
func (s *HistoryStore) LoadOrCreateDietHistory(ctx context.Context, userID uuid.UUID, date time.Time) ([]conversation.Message, error) {
	day, err := s.conversations.FindDietDay(ctx, userID, date)
	if err == nil && len(day.History) > 0 {
		return day.History, nil
	}
	if err != nil && !errors.As(err, &outbound.ErrConversationNotFound{}) {
		return nil, err
	}

	seeded := conversation.NewDietDay(date, conversation.NewMessage(conversation.RoleSystem, DietSystemSeed))
	if err := s.conversations.CreateDietDay(ctx, userID, seeded); err != nil {
		return nil, err
	}

	s.logger.Debug("Created diet day",
		zap.String("user_id", userID.String()),
		zap.Time("date", date),
	)

	return seeded.History, nil
}

// LoadOrCreateTrainingHistory returns the training slot history. A
// modification returns the existing slot untouched. Any other request
// replaces the slot wholesale with a freshly seeded one; regeneration
// additionally stamps the creation time consulted by the cooldown
// guard on the next regeneration.
func (s *HistoryStore) LoadOrCreateTrainingHistory(ctx context.Context, userID uuid.UUID, modifying, regenerate bool) ([]conversation.Message, error) {
	if modifying {
		session, err := s.conversations.FindTraining(ctx, userID)
		if err != nil {
			return nil, err
		}
		return session.History, nil
	}

	createdAt := time.Time{}
	if regenerate {
		createdAt = time.Now()
	}

	session := conversation.NewTrainingSession(createdAt, conversation.NewMessage(conversation.RoleSystem, WorkoutSystemSeed))
	if err := s.conversations.ReplaceTraining(ctx, userID, session); err != nil {
		return nil, err
	}

	s.logger.Debug("Replaced training slot",
		zap.String("user_id", userID.String()),
		zap.Bool("regenerate", regenerate),
	)

	return session.History, nil
}

// AppendTurn appends the user and model messages, in that order, to
// the day matching date (diet) or to the training slot (workout).
func (s *HistoryStore) AppendTurn(ctx context.Context, userID uuid.UUID, domain conversation.Domain, date time.Time, userMsg, modelMsg conversation.Message) error {
	switch domain {
	case conversation.DomainDiet:
		return s.conversations.AppendDietTurn(ctx, userID, date, userMsg, modelMsg)
	case conversation.DomainWorkout:
		return s.conversations.AppendTrainingTurn(ctx, userID, userMsg, modelMsg)
	default:
		return errors.New("unknown conversation domain")
	}
}
