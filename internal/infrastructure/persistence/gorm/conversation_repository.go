package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitforge/v1/internal/domain/conversation"
	"github.com/fitforge/v1/internal/ports/outbound"
)

// ConversationRepository implements the conversation event log using
// GORM: diet days keyed by user and calendar day, plus the single
// training slot per user.
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *gorm.DB) outbound.ConversationRepository {
	return &ConversationRepository{db: db}
}

// FindDietDay loads the diet conversation covering the given instant
func (r *ConversationRepository) FindDietDay(ctx context.Context, userID uuid.UUID, date time.Time) (*conversation.DietDay, error) {
	var model DietDayModel

	result := r.db.WithContext(ctx).
		First(&model, "user_id = ? AND date_key = ?", userID, dateKey(date))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, outbound.ErrConversationNotFound{Domain: conversation.DomainDiet}
		}
		return nil, result.Error
	}

	return ModelToDietDay(&model), nil
}

// CreateDietDay stores a new calendar-day conversation
func (r *ConversationRepository) CreateDietDay(ctx context.Context, userID uuid.UUID, day *conversation.DietDay) error {
	return r.db.WithContext(ctx).Create(DietDayToModel(userID, day)).Error
}

// AppendDietTurn appends messages to the day matching date inside a
// transaction; the history column is rewritten whole.
func (r *ConversationRepository) AppendDietTurn(ctx context.Context, userID uuid.UUID, date time.Time, messages ...conversation.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model DietDayModel
		result := tx.First(&model, "user_id = ? AND date_key = ?", userID, dateKey(date))
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return outbound.ErrConversationNotFound{Domain: conversation.DomainDiet}
			}
			return result.Error
		}

		model.History = append(model.History, messages...)
		return tx.Model(&model).Update("history", model.History).Error
	})
}

// FindTraining loads the user's training slot
func (r *ConversationRepository) FindTraining(ctx context.Context, userID uuid.UUID) (*conversation.TrainingSession, error) {
	var model TrainingSessionModel

	result := r.db.WithContext(ctx).First(&model, "user_id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, outbound.ErrConversationNotFound{Domain: conversation.DomainWorkout}
		}
		return nil, result.Error
	}

	return ModelToTrainingSession(&model), nil
}

// ReplaceTraining swaps the training slot wholesale
func (r *ConversationRepository) ReplaceTraining(ctx context.Context, userID uuid.UUID, session *conversation.TrainingSession) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&TrainingSessionModel{}).Error; err != nil {
			return err
		}
		return tx.Create(TrainingSessionToModel(userID, session)).Error
	})
}

// AppendTrainingTurn appends messages to the training slot
func (r *ConversationRepository) AppendTrainingTurn(ctx context.Context, userID uuid.UUID, messages ...conversation.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model TrainingSessionModel
		result := tx.First(&model, "user_id = ?", userID)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return outbound.ErrConversationNotFound{Domain: conversation.DomainWorkout}
			}
			return result.Error
		}

		model.History = append(model.History, messages...)
		return tx.Model(&model).Update("history", model.History).Error
	})
}

// SetTrainingPlan replaces the stored plan of the training slot
func (r *ConversationRepository) SetTrainingPlan(ctx context.Context, userID uuid.UUID, plan []byte) error {
	result := r.db.WithContext(ctx).Model(&TrainingSessionModel{}).
		Where("user_id = ?", userID).
		Update("plan", plan)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return outbound.ErrConversationNotFound{Domain: conversation.DomainWorkout}
	}
	return nil
}
