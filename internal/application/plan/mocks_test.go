package plan

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fitforge/v1/internal/domain/conversation"
	"github.com/fitforge/v1/internal/domain/moderation"
	"github.com/fitforge/v1/internal/domain/user"
	"github.com/fitforge/v1/internal/ports/outbound"
)

// MockUserRepository is a mock implementation of the user repository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateModeration(ctx context.Context, id uuid.UUID, state moderation.State) error {
	args := m.Called(ctx, id, state)
	return args.Error(0)
}

func (m *MockUserRepository) AddWorkoutRun(ctx context.Context, id uuid.UUID, run user.WorkoutRun) error {
	args := m.Called(ctx, id, run)
	return args.Error(0)
}

// MockConversationRepository is a mock implementation of the
// conversation repository
type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) FindDietDay(ctx context.Context, userID uuid.UUID, date time.Time) (*conversation.DietDay, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*conversation.DietDay), args.Error(1)
}

func (m *MockConversationRepository) CreateDietDay(ctx context.Context, userID uuid.UUID, day *conversation.DietDay) error {
	args := m.Called(ctx, userID, day)
	return args.Error(0)
}

func (m *MockConversationRepository) AppendDietTurn(ctx context.Context, userID uuid.UUID, date time.Time, messages ...conversation.Message) error {
	args := m.Called(ctx, userID, date, messages)
	return args.Error(0)
}

func (m *MockConversationRepository) FindTraining(ctx context.Context, userID uuid.UUID) (*conversation.TrainingSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*conversation.TrainingSession), args.Error(1)
}

func (m *MockConversationRepository) ReplaceTraining(ctx context.Context, userID uuid.UUID, session *conversation.TrainingSession) error {
	args := m.Called(ctx, userID, session)
	return args.Error(0)
}

func (m *MockConversationRepository) AppendTrainingTurn(ctx context.Context, userID uuid.UUID, messages ...conversation.Message) error {
	args := m.Called(ctx, userID, messages)
	return args.Error(0)
}

func (m *MockConversationRepository) SetTrainingPlan(ctx context.Context, userID uuid.UUID, plan []byte) error {
	args := m.Called(ctx, userID, plan)
	return args.Error(0)
}

// MockCompletionClient is a mock implementation of the language-model
// completion client
type MockCompletionClient struct {
	mock.Mock
}

func (m *MockCompletionClient) Complete(ctx context.Context, messages []conversation.Message) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

var _ outbound.UserRepository = (*MockUserRepository)(nil)
var _ outbound.ConversationRepository = (*MockConversationRepository)(nil)
var _ outbound.CompletionClient = (*MockCompletionClient)(nil)

// newTestUser builds a user with a complete biometric profile
func newTestUser(t interface {
	Fatalf(format string, args ...interface{})
}) *user.User {
	u, err := user.NewUser("coach@example.com", "Test User", "supersecret")
	if err != nil {
		t.Fatalf("failed to build test user: %v", err)
	}
	err = u.UpdateProfile(&user.Profile{
		HeightCm:      180,
		WeightKg:      82,
		BirthDate:     time.Date(1994, time.May, 2, 0, 0, 0, 0, time.UTC),
		Sex:           user.SexMale,
		ActivityLevel: user.ActivityModerate,
		Goal:          user.GoalGainMuscle,
		Allergies:     []string{"peanuts"},
	})
	if err != nil {
		t.Fatalf("failed to set test profile: %v", err)
	}
	return u
}
