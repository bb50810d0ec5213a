package plan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fitforge/v1/internal/domain/conversation"
	"github.com/fitforge/v1/internal/domain/moderation"
	"github.com/fitforge/v1/internal/domain/user"
	"github.com/fitforge/v1/internal/ports/inbound"
	"github.com/fitforge/v1/internal/ports/outbound"
	"github.com/fitforge/v1/pkg/errors"
)

type serviceFixture struct {
	users         *MockUserRepository
	conversations *MockConversationRepository
	llm           *MockCompletionClient
	service       inbound.PlanService
}

func newServiceFixture(t *testing.T, now time.Time) *serviceFixture {
	logger := zaptest.NewLogger(t)
	users := &MockUserRepository{}
	conversations := &MockConversationRepository{}
	llm := &MockCompletionClient{}

	history := NewHistoryStore(conversations, logger)
	gate := NewModerationGate(users, moderation.DefaultPolicy(), logger)
	gate.now = func() time.Time { return now }
	cooldown := NewCooldownGuard(5 * time.Minute)
	cooldown.now = func() time.Time { return now }
	persister := NewPersister(history, gate, logger)

	return &serviceFixture{
		users:         users,
		conversations: conversations,
		llm:           llm,
		service:       NewService(users, conversations, llm, history, gate, cooldown, persister, time.Second, logger),
	}
}

func TestService_GenerateDiet(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("accepted response persists the exchange and resets moderation", func(t *testing.T) {
		f := newServiceFixture(t, now)
		u := newTestUser(t)
		u.SetModeration(moderation.State{Mistakes: 1})

		f.users.On("FindByID", mock.Anything, u.ID()).Return(u, nil)
		f.conversations.On("FindDietDay", mock.Anything, u.ID(), mock.AnythingOfType("time.Time")).
			Return(nil, outbound.ErrConversationNotFound{Domain: conversation.DomainDiet})
		f.conversations.On("CreateDietDay", mock.Anything, u.ID(), mock.AnythingOfType("*conversation.DietDay")).
			Return(nil)
		f.llm.On("Complete", mock.Anything, mock.AnythingOfType("[]conversation.Message")).
			Return(validDietJSON, nil)
		f.conversations.On("AppendDietTurn", mock.Anything, u.ID(), mock.AnythingOfType("time.Time"), mock.AnythingOfType("[]conversation.Message")).
			Return(nil)
		f.users.On("UpdateModeration", mock.Anything, u.ID(), moderation.State{}).Return(nil)

		result, err := f.service.GenerateDiet(context.Background(), u.ID(), inbound.DietRequest{})
		require.NoError(t, err)
		require.NotNil(t, result.Plan)
		assert.Equal(t, validDietJSON, result.RawText)
		assert.Equal(t, moderation.State{}, u.Moderation())

		sent := f.llm.Calls[0].Arguments.Get(1).([]conversation.Message)
		require.Len(t, sent, 2)
		assert.Equal(t, conversation.RoleSystem, sent[0].Role)
		assert.Equal(t, conversation.RoleUser, sent[1].Role)
		assert.Contains(t, sent[1].Content, "Create a one-day diet plan")

		appended := f.conversations.Calls[2].Arguments.Get(3).([]conversation.Message)
		require.Len(t, appended, 2)
		assert.Equal(t, conversation.RoleUser, appended[0].Role)
		assert.Equal(t, conversation.RoleModel, appended[1].Role)
		assert.Equal(t, validDietJSON, appended[1].Content)
	})

	t.Run("modification replays the existing day", func(t *testing.T) {
		f := newServiceFixture(t, now)
		u := newTestUser(t)

		day := conversation.NewDietDay(now, conversation.NewMessage(conversation.RoleSystem, DietSystemSeed))
		day.Append(
			conversation.NewMessage(conversation.RoleUser, "first request"),
			conversation.NewMessage(conversation.RoleModel, validDietJSON),
		)

		f.users.On("FindByID", mock.Anything, u.ID()).Return(u, nil)
		f.conversations.On("FindDietDay", mock.Anything, u.ID(), mock.AnythingOfType("time.Time")).Return(day, nil)
		f.llm.On("Complete", mock.Anything, mock.AnythingOfType("[]conversation.Message")).
			Return(validDietJSON, nil)
		f.conversations.On("AppendDietTurn", mock.Anything, u.ID(), mock.AnythingOfType("time.Time"), mock.AnythingOfType("[]conversation.Message")).
			Return(nil)
		f.users.On("UpdateModeration", mock.Anything, u.ID(), moderation.State{}).Return(nil)

		_, err := f.service.GenerateDiet(context.Background(), u.ID(), inbound.DietRequest{
			Modifying:         true,
			UserModifications: "more protein at breakfast",
		})
		require.NoError(t, err)

		sent := f.llm.Calls[0].Arguments.Get(1).([]conversation.Message)
		require.Len(t, sent, 4)
		assert.Contains(t, sent[3].Content, "more protein at breakfast")
		assert.Contains(t, sent[3].Content, "FULL updated plan")
		f.conversations.AssertNotCalled(t, "CreateDietDay")
	})

	t.Run("off-topic response charges one mistake", func(t *testing.T) {
		f := newServiceFixture(t, now)
		u := newTestUser(t)

		f.users.On("FindByID", mock.Anything, u.ID()).Return(u, nil)
		f.conversations.On("FindDietDay", mock.Anything, u.ID(), mock.AnythingOfType("time.Time")).
			Return(nil, outbound.ErrConversationNotFound{Domain: conversation.DomainDiet})
		f.conversations.On("CreateDietDay", mock.Anything, u.ID(), mock.AnythingOfType("*conversation.DietDay")).
			Return(nil)
		f.llm.On("Complete", mock.Anything, mock.AnythingOfType("[]conversation.Message")).
			Return("Error: I can only help with nutrition", nil)
		f.users.On("UpdateModeration", mock.Anything, u.ID(), moderation.State{Mistakes: 1}).Return(nil)

		_, err := f.service.GenerateDiet(context.Background(), u.ID(), inbound.DietRequest{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeOffTopic))
		assert.Contains(t, err.Error(), "Type only about diet")
		assert.Equal(t, 1, u.Moderation().Mistakes)
		f.conversations.AssertNotCalled(t, "AppendDietTurn")
	})

	t.Run("second rejection issues a five minute ban", func(t *testing.T) {
		f := newServiceFixture(t, now)
		u := newTestUser(t)
		u.SetModeration(moderation.State{Mistakes: 1})

		f.users.On("FindByID", mock.Anything, u.ID()).Return(u, nil)
		f.conversations.On("FindDietDay", mock.Anything, u.ID(), mock.AnythingOfType("time.Time")).
			Return(nil, outbound.ErrConversationNotFound{Domain: conversation.DomainDiet})
		f.conversations.On("CreateDietDay", mock.Anything, u.ID(), mock.AnythingOfType("*conversation.DietDay")).
			Return(nil)
		f.llm.On("Complete", mock.Anything, mock.AnythingOfType("[]conversation.Message")).
			Return("not json at all", nil)
		f.users.On("UpdateModeration", mock.Anything, u.ID(), mock.AnythingOfType("moderation.State")).Return(nil)

		_, err := f.service.GenerateDiet(context.Background(), u.ID(), inbound.DietRequest{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeBanActive))
		assert.Contains(t, err.Error(), "You are banned until")
		require.NotNil(t, u.Moderation().Ban)
		assert.Equal(t, 5, u.Moderation().Ban.Minutes)
		assert.Equal(t, 0, u.Moderation().Mistakes)
	})

	t.Run("active ban blocks before any model call", func(t *testing.T) {
		f := newServiceFixture(t, now)
		u := newTestUser(t)
		before := moderation.State{Ban: &moderation.Ban{IssuedAt: now.Add(-time.Minute), Minutes: 5}}
		u.SetModeration(before)

		f.users.On("FindByID", mock.Anything, u.ID()).Return(u, nil)

		_, err := f.service.GenerateDiet(context.Background(), u.ID(), inbound.DietRequest{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeBanActive))
		assert.Equal(t, before, u.Moderation())
		f.llm.AssertNotCalled(t, "Complete")
		f.users.AssertNotCalled(t, "UpdateModeration")
	})

	t.Run("upstream failure charges no offense", func(t *testing.T) {
		f := newServiceFixture(t, now)
		u := newTestUser(t)

		f.users.On("FindByID", mock.Anything, u.ID()).Return(u, nil)
		f.conversations.On("FindDietDay", mock.Anything, u.ID(), mock.AnythingOfType("time.Time")).
			Return(nil, outbound.ErrConversationNotFound{Domain: conversation.DomainDiet})
		f.conversations.On("CreateDietDay", mock.Anything, u.ID(), mock.AnythingOfType("*conversation.DietDay")).
			Return(nil)
		f.llm.On("Complete", mock.Anything, mock.AnythingOfType("[]conversation.Message")).
			Return("", assert.AnError)

		_, err := f.service.GenerateDiet(context.Background(), u.ID(), inbound.DietRequest{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeExternalServiceError))
		assert.Contains(t, err.Error(), "Something went wrong...")
		assert.Equal(t, 0, u.Moderation().Mistakes)
		f.users.AssertNotCalled(t, "UpdateModeration")
		f.conversations.AssertNotCalled(t, "AppendDietTurn")
	})

	t.Run("missing profile rejected before any model call", func(t *testing.T) {
		f := newServiceFixture(t, now)
		u, err := user.NewUser("bare@example.com", "Bare User", "supersecret")
		require.NoError(t, err)

		f.users.On("FindByID", mock.Anything, u.ID()).Return(u, nil)

		_, err = f.service.GenerateDiet(context.Background(), u.ID(), inbound.DietRequest{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeValidationFailed))
		f.llm.AssertNotCalled(t, "Complete")
	})
}

func TestService_GenerateWorkout(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("accepted response stores plan and resets moderation", func(t *testing.T) {
		f := newServiceFixture(t, now)
		u := newTestUser(t)

		f.users.On("FindByID", mock.Anything, u.ID()).Return(u, nil)
		f.conversations.On("ReplaceTraining", mock.Anything, u.ID(), mock.AnythingOfType("*conversation.TrainingSession")).
			Return(nil)
		f.llm.On("Complete", mock.Anything, mock.AnythingOfType("[]conversation.Message")).
			Return(validWorkoutJSON, nil)
		f.conversations.On("AppendTrainingTurn", mock.Anything, u.ID(), mock.AnythingOfType("[]conversation.Message")).
			Return(nil)
		f.conversations.On("SetTrainingPlan", mock.Anything, u.ID(), mock.AnythingOfType("[]uint8")).
			Return(nil)
		f.users.On("UpdateModeration", mock.Anything, u.ID(), moderation.State{}).Return(nil)

		result, err := f.service.GenerateWorkout(context.Background(), u.ID(), inbound.WorkoutRequest{})
		require.NoError(t, err)
		require.NotNil(t, result.Plan)
		assert.Len(t, result.Plan.Days, 7)

		replaced := f.conversations.Calls[0].Arguments.Get(2).(*conversation.TrainingSession)
		assert.True(t, replaced.CreatedAt.IsZero(), "plain generation must not arm the cooldown")
		f.conversations.AssertCalled(t, "SetTrainingPlan", mock.Anything, u.ID(), mock.AnythingOfType("[]uint8"))
		f.conversations.AssertNotCalled(t, "FindTraining")
	})

	t.Run("regeneration within the window is refused", func(t *testing.T) {
		f := newServiceFixture(t, now)
		u := newTestUser(t)

		session := conversation.NewTrainingSession(now.Add(-2*time.Minute), conversation.NewMessage(conversation.RoleSystem, WorkoutSystemSeed))
		f.users.On("FindByID", mock.Anything, u.ID()).Return(u, nil)
		f.conversations.On("FindTraining", mock.Anything, u.ID()).Return(session, nil)

		_, err := f.service.GenerateWorkout(context.Background(), u.ID(), inbound.WorkoutRequest{Regenerate: true})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeCooldownActive))

		retryAt := errors.FromError(err).Metadata["retry_at"].(time.Time)
		assert.Equal(t, session.CreatedAt.Add(5*time.Minute), retryAt)
		f.llm.AssertNotCalled(t, "Complete")
		f.conversations.AssertNotCalled(t, "ReplaceTraining")
	})

	t.Run("regeneration past the window replaces the slot with a fresh stamp", func(t *testing.T) {
		f := newServiceFixture(t, now)
		u := newTestUser(t)

		session := conversation.NewTrainingSession(now.Add(-time.Hour), conversation.NewMessage(conversation.RoleSystem, WorkoutSystemSeed))
		f.users.On("FindByID", mock.Anything, u.ID()).Return(u, nil)
		f.conversations.On("FindTraining", mock.Anything, u.ID()).Return(session, nil)
		f.conversations.On("ReplaceTraining", mock.Anything, u.ID(), mock.AnythingOfType("*conversation.TrainingSession")).
			Return(nil)
		f.llm.On("Complete", mock.Anything, mock.AnythingOfType("[]conversation.Message")).
			Return(validWorkoutJSON, nil)
		f.conversations.On("AppendTrainingTurn", mock.Anything, u.ID(), mock.AnythingOfType("[]conversation.Message")).
			Return(nil)
		f.conversations.On("SetTrainingPlan", mock.Anything, u.ID(), mock.AnythingOfType("[]uint8")).
			Return(nil)
		f.users.On("UpdateModeration", mock.Anything, u.ID(), moderation.State{}).Return(nil)

		_, err := f.service.GenerateWorkout(context.Background(), u.ID(), inbound.WorkoutRequest{Regenerate: true})
		require.NoError(t, err)

		replaced := f.conversations.Calls[1].Arguments.Get(2).(*conversation.TrainingSession)
		assert.False(t, replaced.CreatedAt.IsZero())
		assert.NotEqual(t, session.ID, replaced.ID)
	})

	t.Run("regeneration with no prior slot proceeds", func(t *testing.T) {
		f := newServiceFixture(t, now)
		u := newTestUser(t)

		f.users.On("FindByID", mock.Anything, u.ID()).Return(u, nil)
		f.conversations.On("FindTraining", mock.Anything, u.ID()).
			Return(nil, outbound.ErrConversationNotFound{Domain: conversation.DomainWorkout})
		f.conversations.On("ReplaceTraining", mock.Anything, u.ID(), mock.AnythingOfType("*conversation.TrainingSession")).
			Return(nil)
		f.llm.On("Complete", mock.Anything, mock.AnythingOfType("[]conversation.Message")).
			Return(validWorkoutJSON, nil)
		f.conversations.On("AppendTrainingTurn", mock.Anything, u.ID(), mock.AnythingOfType("[]conversation.Message")).
			Return(nil)
		f.conversations.On("SetTrainingPlan", mock.Anything, u.ID(), mock.AnythingOfType("[]uint8")).
			Return(nil)
		f.users.On("UpdateModeration", mock.Anything, u.ID(), moderation.State{}).Return(nil)

		_, err := f.service.GenerateWorkout(context.Background(), u.ID(), inbound.WorkoutRequest{Regenerate: true})
		assert.NoError(t, err)
	})

	t.Run("modification with no slot reports nothing to modify", func(t *testing.T) {
		f := newServiceFixture(t, now)
		u := newTestUser(t)

		f.users.On("FindByID", mock.Anything, u.ID()).Return(u, nil)
		f.conversations.On("FindTraining", mock.Anything, u.ID()).
			Return(nil, outbound.ErrConversationNotFound{Domain: conversation.DomainWorkout})

		_, err := f.service.GenerateWorkout(context.Background(), u.ID(), inbound.WorkoutRequest{Modifying: true})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeNotFound))
		f.llm.AssertNotCalled(t, "Complete")
	})

	t.Run("prose response charges a mistake with the workout warning", func(t *testing.T) {
		f := newServiceFixture(t, now)
		u := newTestUser(t)

		f.users.On("FindByID", mock.Anything, u.ID()).Return(u, nil)
		f.conversations.On("ReplaceTraining", mock.Anything, u.ID(), mock.AnythingOfType("*conversation.TrainingSession")).
			Return(nil)
		f.llm.On("Complete", mock.Anything, mock.AnythingOfType("[]conversation.Message")).
			Return("I cannot help with taxes", nil)
		f.users.On("UpdateModeration", mock.Anything, u.ID(), moderation.State{Mistakes: 1}).Return(nil)

		_, err := f.service.GenerateWorkout(context.Background(), u.ID(), inbound.WorkoutRequest{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeOffTopic))
		assert.Contains(t, err.Error(), "Type only about workout")
		f.conversations.AssertNotCalled(t, "SetTrainingPlan")
	})

	t.Run("rejection during an expired ban starts a fresh count", func(t *testing.T) {
		f := newServiceFixture(t, now)
		u := newTestUser(t)
		u.SetModeration(moderation.State{Ban: &moderation.Ban{IssuedAt: now.Add(-time.Hour), Minutes: 5}})

		f.users.On("FindByID", mock.Anything, u.ID()).Return(u, nil)
		f.conversations.On("ReplaceTraining", mock.Anything, u.ID(), mock.AnythingOfType("*conversation.TrainingSession")).
			Return(nil)
		f.llm.On("Complete", mock.Anything, mock.AnythingOfType("[]conversation.Message")).
			Return("plain refusal", nil)
		f.users.On("UpdateModeration", mock.Anything, u.ID(), mock.AnythingOfType("moderation.State")).Return(nil)

		_, err := f.service.GenerateWorkout(context.Background(), u.ID(), inbound.WorkoutRequest{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeOffTopic))
		assert.Equal(t, 1, u.Moderation().Mistakes)
		assert.Nil(t, u.Moderation().Ban)
	})
}
