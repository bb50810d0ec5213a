package plan

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fitforge/v1/internal/domain/conversation"
	"github.com/fitforge/v1/internal/domain/user"
	"github.com/fitforge/v1/pkg/errors"
)

// Persister writes an accepted plan back to the store: the two new
// conversation turns, the stored plan (workout only), then the
// moderation reset. The steps are not atomic, but the ordering
// guarantees a crash leaves history consistent and at worst the plan
// stale, never the reverse.
type Persister struct {
	history *HistoryStore
	gate    *ModerationGate
	logger  *zap.Logger
}

// NewPersister creates a plan persister
func NewPersister(history *HistoryStore, gate *ModerationGate, logger *zap.Logger) *Persister {
	return &Persister{
		history: history,
		gate:    gate,
		logger:  logger.Named("plan-persister"),
	}
}

// Commit persists one accepted exchange. planJSON is only consulted for
// the workout domain, where it replaces the slot's stored plan
// wholesale.
func (p *Persister) Commit(
	ctx context.Context,
	u *user.User,
	domain conversation.Domain,
	date time.Time,
	userMsg, modelMsg conversation.Message,
	planJSON []byte,
) error {
	if err := p.history.AppendTurn(ctx, u.ID(), domain, date, userMsg, modelMsg); err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to append conversation turn")
	}

	if domain == conversation.DomainWorkout {
		if err := p.history.conversations.SetTrainingPlan(ctx, u.ID(), planJSON); err != nil {
			return errors.Wrap(err, errors.CodeDatabaseError, "failed to store workout plan")
		}
	}

	if err := p.gate.Reset(ctx, u); err != nil {
		return err
	}

	p.logger.Debug("Plan committed",
		zap.String("user_id", u.ID().String()),
		zap.String("domain", string(domain)),
	)
	return nil
}
