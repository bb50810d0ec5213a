package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	gormLogger "gorm.io/gorm/logger"

	planapp "github.com/fitforge/v1/internal/application/plan"
	"github.com/fitforge/v1/internal/domain/moderation"
	"github.com/fitforge/v1/internal/domain/user"
	gormRepo "github.com/fitforge/v1/internal/infrastructure/persistence/gorm"
	"github.com/fitforge/v1/internal/infrastructure/persistence/sqlite"
	"github.com/fitforge/v1/internal/ports/inbound"
	"github.com/fitforge/v1/internal/ports/outbound"
	"github.com/fitforge/v1/pkg/errors"
	"github.com/fitforge/v1/test/testutils"

	"github.com/fitforge/v1/internal/domain/conversation"
)

// scriptedLLM replays canned responses in order
type scriptedLLM struct {
	responses []string
	calls     int
}

func (s *scriptedLLM) Complete(ctx context.Context, messages []conversation.Message) (string, error) {
	if s.calls >= len(s.responses) {
		return "", context.DeadlineExceeded
	}
	response := s.responses[s.calls]
	s.calls++
	return response, nil
}

type env struct {
	users         outbound.UserRepository
	conversations outbound.ConversationRepository
	llm           *scriptedLLM
	service       inbound.PlanService
}

func newEnv(t *testing.T, responses ...string) *env {
	t.Helper()

	db, err := sqlite.SetupDatabase("", gormLogger.Silent)
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	users := gormRepo.NewUserRepository(db)
	conversations := gormRepo.NewConversationRepository(db)
	llm := &scriptedLLM{responses: responses}

	history := planapp.NewHistoryStore(conversations, logger)
	gate := planapp.NewModerationGate(users, moderation.Policy{MistakeThreshold: 2, BanBaseMinutes: 5}, logger)
	cooldown := planapp.NewCooldownGuard(5 * time.Minute)
	persister := planapp.NewPersister(history, gate, logger)

	service := planapp.NewService(users, conversations, llm, history, gate, cooldown, persister, time.Second, logger)

	return &env{users: users, conversations: conversations, llm: llm, service: service}
}

func (e *env) seedUser(t *testing.T) *user.User {
	t.Helper()
	u := testutils.NewUserBuilder().WithAllergies("peanuts").MustBuild()
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func TestDietGenerationPersistsConversation(t *testing.T) {
	e := newEnv(t, testutils.ValidDietJSON(), testutils.ValidDietJSON())
	u := e.seedUser(t)
	ctx := context.Background()

	result, err := e.service.GenerateDiet(ctx, u.ID(), inbound.DietRequest{})
	require.NoError(t, err)
	require.NotNil(t, result.Plan)
	assert.Greater(t, result.Plan.Calories, 0.0)

	day, err := e.conversations.FindDietDay(ctx, u.ID(), time.Now())
	require.NoError(t, err)
	require.Len(t, day.History, 3)
	assert.Equal(t, conversation.RoleSystem, day.History[0].Role)
	assert.Equal(t, conversation.RoleModel, day.History[2].Role)

	_, err = e.service.GenerateDiet(ctx, u.ID(), inbound.DietRequest{
		Modifying:         true,
		UserModifications: "swap breakfast for eggs",
	})
	require.NoError(t, err)

	day, err = e.conversations.FindDietDay(ctx, u.ID(), time.Now())
	require.NoError(t, err)
	assert.Len(t, day.History, 5)

	current, err := e.service.CurrentDiet(ctx, u.ID(), time.Time{})
	require.NoError(t, err)
	assert.NotNil(t, current.Plan)
}

func TestRepeatedRejectionsEscalateToBan(t *testing.T) {
	e := newEnv(t, "I cannot help with that", "still not a plan")
	u := e.seedUser(t)
	ctx := context.Background()

	_, err := e.service.GenerateDiet(ctx, u.ID(), inbound.DietRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeOffTopic))

	_, err = e.service.GenerateDiet(ctx, u.ID(), inbound.DietRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeBanActive))

	reloaded, err := e.users.FindByID(ctx, u.ID())
	require.NoError(t, err)
	require.NotNil(t, reloaded.Moderation().Ban)
	assert.Equal(t, 5, reloaded.Moderation().Ban.Minutes)

	// still banned, blocked before the model is called
	calls := e.llm.calls
	_, err = e.service.GenerateDiet(ctx, u.ID(), inbound.DietRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeBanActive))
	assert.Equal(t, calls, e.llm.calls)
}

func TestWorkoutRegenerateCooldown(t *testing.T) {
	e := newEnv(t, testutils.ValidWorkoutJSON(), testutils.ValidWorkoutJSON())
	u := e.seedUser(t)
	ctx := context.Background()

	result, err := e.service.GenerateWorkout(ctx, u.ID(), inbound.WorkoutRequest{})
	require.NoError(t, err)
	require.Len(t, result.Plan.Days, 7)

	session, err := e.conversations.FindTraining(ctx, u.ID())
	require.NoError(t, err)
	assert.True(t, session.CreatedAt.IsZero())
	assert.NotEmpty(t, session.Plan)

	_, err = e.service.GenerateWorkout(ctx, u.ID(), inbound.WorkoutRequest{Regenerate: true})
	require.NoError(t, err)

	_, err = e.service.GenerateWorkout(ctx, u.ID(), inbound.WorkoutRequest{Regenerate: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeCooldownActive))

	current, err := e.service.CurrentWorkout(ctx, u.ID())
	require.NoError(t, err)
	assert.Len(t, current.Plan.Days, 7)
}

func TestWorkoutRunsPersist(t *testing.T) {
	e := newEnv(t)
	u := e.seedUser(t)
	ctx := context.Background()

	run := testutils.WorkoutRun("Tuesday", time.Now())
	require.NoError(t, e.users.AddWorkoutRun(ctx, u.ID(), run))

	reloaded, err := e.users.FindByID(ctx, u.ID())
	require.NoError(t, err)
	require.Len(t, reloaded.Workouts(), 1)
	assert.Equal(t, "Tuesday", reloaded.Workouts()[0].Day)
}
