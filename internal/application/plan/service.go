package plan

import (
	"context"
	"encoding/json"
	errs "errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fitforge/v1/internal/domain/conversation"
	"github.com/fitforge/v1/internal/domain/user"
	"github.com/fitforge/v1/internal/ports/inbound"
	"github.com/fitforge/v1/internal/ports/outbound"
	"github.com/fitforge/v1/pkg/errors"
)

// Rejected-response warnings surfaced when no ban was issued
const (
	dietOffTopicWarning    = "Type only about diet"
	workoutOffTopicWarning = "Type only about workout"
)

// Service orchestrates AI plan generation for both coaching domains
type Service struct {
	users         outbound.UserRepository
	conversations outbound.ConversationRepository
	llm           outbound.CompletionClient
	history       *HistoryStore
	gate          *ModerationGate
	cooldown      *CooldownGuard
	persister     *Persister
	llmTimeout    time.Duration
	logger        *zap.Logger
}

// NewService creates the plan generation service
func NewService(
	users outbound.UserRepository,
	conversations outbound.ConversationRepository,
	llm outbound.CompletionClient,
	history *HistoryStore,
	gate *ModerationGate,
	cooldown *CooldownGuard,
	persister *Persister,
	llmTimeout time.Duration,
	logger *zap.Logger,
) inbound.PlanService {
	if llmTimeout <= 0 {
		llmTimeout = 30 * time.Second
	}
	return &Service{
		users:         users,
		conversations: conversations,
		llm:           llm,
		history:       history,
		gate:          gate,
		cooldown:      cooldown,
		persister:     persister,
		llmTimeout:    llmTimeout,
		logger:        logger.Named("plan-service"),
	}
}

// GenerateDiet runs one diet generation or modification exchange
func (s *Service) GenerateDiet(ctx context.Context, userID uuid.UUID, req inbound.DietRequest) (*inbound.DietResult, error) {
	u, profile, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CheckBan(u); err != nil {
		return nil, err
	}

	now := time.Now()
	history, err := s.history.LoadOrCreateDietHistory(ctx, userID, now)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load diet conversation")
	}

	var prompt string
	if req.Modifying {
		prompt = BuildModifyDietPrompt(req.UserModifications)
	} else {
		prompt = BuildDietPrompt(SnapshotProfile(profile, now))
	}
	userMsg := conversation.NewMessage(conversation.RoleUser, prompt)

	raw, err := s.complete(ctx, append(history, userMsg))
	if err != nil {
		return nil, err
	}

	diet, rejection := ClassifyDiet(raw)
	if rejection != nil {
		return nil, s.handleRejection(ctx, u, conversation.DomainDiet, rejection)
	}

	modelMsg := conversation.NewMessage(conversation.RoleModel, raw)
	if err := s.persister.Commit(ctx, u, conversation.DomainDiet, now, userMsg, modelMsg, nil); err != nil {
		return nil, err
	}

	s.logger.Info("Diet plan accepted",
		zap.String("user_id", userID.String()),
		zap.Bool("modifying", req.Modifying),
	)
	return &inbound.DietResult{Plan: diet, RawText: raw}, nil
}

// GenerateWorkout runs one workout generation, modification or
// regeneration exchange
func (s *Service) GenerateWorkout(ctx context.Context, userID uuid.UUID, req inbound.WorkoutRequest) (*inbound.WorkoutResult, error) {
	u, profile, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CheckBan(u); err != nil {
		return nil, err
	}

	if req.Regenerate {
		session, err := s.conversations.FindTraining(ctx, userID)
		if err != nil && !errs.As(err, &outbound.ErrConversationNotFound{}) {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load training slot")
		}
		if err := s.cooldown.CheckRegenerate(session); err != nil {
			return nil, err
		}
	}

	history, err := s.history.LoadOrCreateTrainingHistory(ctx, userID, req.Modifying, req.Regenerate)
	if err != nil {
		if errs.As(err, &outbound.ErrConversationNotFound{}) {
			return nil, errors.New(errors.CodeNotFound, "No active workout plan to modify")
		}
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load training conversation")
	}

	now := time.Now()
	var prompt string
	if req.Modifying {
		prompt = BuildModifyWorkoutPrompt(req.UserModifications)
	} else {
		prompt = BuildWorkoutPrompt(SnapshotProfile(profile, now))
	}
	userMsg := conversation.NewMessage(conversation.RoleUser, prompt)

	raw, err := s.complete(ctx, append(history, userMsg))
	if err != nil {
		return nil, err
	}

	workout, rejection := ClassifyWorkout(raw)
	if rejection != nil {
		return nil, s.handleRejection(ctx, u, conversation.DomainWorkout, rejection)
	}

	planJSON, err := json.Marshal(workout.Days)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to serialize workout plan")
	}

	modelMsg := conversation.NewMessage(conversation.RoleModel, raw)
	if err := s.persister.Commit(ctx, u, conversation.DomainWorkout, now, userMsg, modelMsg, planJSON); err != nil {
		return nil, err
	}

	s.logger.Info("Workout plan accepted",
		zap.String("user_id", userID.String()),
		zap.Bool("modifying", req.Modifying),
		zap.Bool("regenerate", req.Regenerate),
	)
	return &inbound.WorkoutResult{Plan: workout}, nil
}

func (s *Service) loadUser(ctx context.Context, userID uuid.UUID) (*user.User, *user.Profile, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errs.Is(err, user.ErrUserNotFound) {
			return nil, nil, errors.New(errors.CodeUserNotFound, "user not found")
		}
		return nil, nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load user")
	}
	profile := u.Profile()
	if profile == nil {
		return nil, nil, errors.New(errors.CodeValidationFailed, "Complete your biometric profile before requesting a plan")
	}
	return u, profile, nil
}

// complete awaits the model synchronously under an explicit timeout.
// Upstream failure, including timeout, never charges an offense.
func (s *Service) complete(ctx context.Context, messages []conversation.Message) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()

	raw, err := s.llm.Complete(callCtx, messages)
	if err != nil {
		s.logger.Error("Completion call failed", zap.Error(err))
		return "", errors.Wrap(err, errors.CodeExternalServiceError, "Something went wrong...")
	}
	return raw, nil
}

// handleRejection records the offense and builds the surfaced error:
// the concrete ban message when this offense issued one, the generic
// stay-on-topic warning otherwise.
func (s *Service) handleRejection(ctx context.Context, u *user.User, domain conversation.Domain, rejection *Rejection) error {
	s.logger.Warn("Model response rejected",
		zap.String("user_id", u.ID().String()),
		zap.String("domain", string(domain)),
		zap.String("reason", string(rejection.Reason)),
		zap.Error(rejection.Cause),
	)

	issued, err := s.gate.RecordOffense(ctx, u)
	if err != nil {
		return err
	}
	if issued != nil {
		return banError(issued)
	}

	warning := dietOffTopicWarning
	if domain == conversation.DomainWorkout {
		warning = workoutOffTopicWarning
	}
	code := errors.CodeOffTopic
	if rejection.Reason == RejectSchemaViolation {
		code = errors.CodeSchemaViolation
	}
	return errors.New(code, warning)
}
