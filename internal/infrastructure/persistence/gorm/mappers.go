// Mapping between domain aggregates and GORM models
package gorm

import (
	"time"

	"github.com/google/uuid"

	"github.com/fitforge/v1/internal/domain/conversation"
	"github.com/fitforge/v1/internal/domain/moderation"
	"github.com/fitforge/v1/internal/domain/user"
)

// UserToModel converts a domain user to a GORM model
func UserToModel(u *user.User) *UserModel {
	model := &UserModel{
		ID:           u.ID(),
		Email:        u.Email(),
		Name:         u.Name(),
		PasswordHash: u.PasswordHash(),
		IsActive:     u.IsActive(),
		CreatedAt:    u.CreatedAt(),
		UpdatedAt:    u.UpdatedAt(),
		LastLoginAt:  u.LastLoginAt(),
	}

	if profile := u.Profile(); profile != nil {
		birth := profile.BirthDate
		model.Profile = &ProfileModel{
			HeightCm:      profile.HeightCm,
			WeightKg:      profile.WeightKg,
			BirthDate:     &birth,
			Sex:           string(profile.Sex),
			ActivityLevel: string(profile.ActivityLevel),
			Goal:          string(profile.Goal),
			Allergies:     profile.Allergies,
		}
	}

	mod := u.Moderation()
	model.ModerationMistakes = mod.Mistakes
	if mod.Ban != nil {
		issued := mod.Ban.IssuedAt
		model.ModerationBanIssued = &issued
		model.ModerationBanMinutes = mod.Ban.Minutes
	}

	return model
}

// ModelToUser converts a GORM model to a domain user
func ModelToUser(model *UserModel) *user.User {
	var profile *user.Profile
	if model.Profile != nil && model.Profile.BirthDate != nil {
		profile = &user.Profile{
			HeightCm:      model.Profile.HeightCm,
			WeightKg:      model.Profile.WeightKg,
			BirthDate:     *model.Profile.BirthDate,
			Sex:           user.Sex(model.Profile.Sex),
			ActivityLevel: user.ActivityLevel(model.Profile.ActivityLevel),
			Goal:          user.Goal(model.Profile.Goal),
			Allergies:     model.Profile.Allergies,
		}
	}

	mod := moderation.State{Mistakes: model.ModerationMistakes}
	if model.ModerationBanIssued != nil {
		mod.Ban = &moderation.Ban{
			IssuedAt: *model.ModerationBanIssued,
			Minutes:  model.ModerationBanMinutes,
		}
	}

	diets := make([]*conversation.DietDay, 0, len(model.DietDays))
	for i := range model.DietDays {
		diets = append(diets, ModelToDietDay(&model.DietDays[i]))
	}

	var training *conversation.TrainingSession
	if model.Training != nil {
		training = ModelToTrainingSession(model.Training)
	}

	workouts := make([]user.WorkoutRun, 0, len(model.WorkoutRuns))
	for _, run := range model.WorkoutRuns {
		workouts = append(workouts, user.WorkoutRun{
			ID:          run.ID,
			Day:         run.Day,
			Notes:       run.Notes,
			PerformedAt: run.PerformedAt,
		})
	}

	return user.Rehydrate(
		model.ID,
		model.Email,
		model.Name,
		model.PasswordHash,
		model.IsActive,
		profile,
		mod,
		diets,
		training,
		workouts,
		model.CreatedAt,
		model.UpdatedAt,
		model.LastLoginAt,
	)
}

// DietDayToModel converts a diet day conversation to a GORM model
func DietDayToModel(userID uuid.UUID, day *conversation.DietDay) *DietDayModel {
	return &DietDayModel{
		ID:      day.ID,
		UserID:  userID,
		DateKey: dateKey(day.Date),
		Date:    day.Date,
		History: MessageLog(day.History),
	}
}

// ModelToDietDay converts a GORM model to a diet day conversation
func ModelToDietDay(model *DietDayModel) *conversation.DietDay {
	return &conversation.DietDay{
		ID:      model.ID,
		Date:    model.Date,
		History: []conversation.Message(model.History),
	}
}

// TrainingSessionToModel converts the training slot to a GORM model
func TrainingSessionToModel(userID uuid.UUID, session *conversation.TrainingSession) *TrainingSessionModel {
	var stamp *time.Time
	if !session.CreatedAt.IsZero() {
		created := session.CreatedAt
		stamp = &created
	}
	return &TrainingSessionModel{
		ID:           session.ID,
		UserID:       userID,
		CreatedStamp: stamp,
		History:      MessageLog(session.History),
		Plan:         session.Plan,
	}
}

// ModelToTrainingSession converts a GORM model to the training slot
func ModelToTrainingSession(model *TrainingSessionModel) *conversation.TrainingSession {
	createdAt := time.Time{}
	if model.CreatedStamp != nil {
		createdAt = *model.CreatedStamp
	}
	return &conversation.TrainingSession{
		ID:        model.ID,
		CreatedAt: createdAt,
		History:   []conversation.Message(model.History),
		Plan:      model.Plan,
	}
}
