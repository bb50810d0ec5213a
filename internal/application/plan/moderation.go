package plan

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fitforge/v1/internal/domain/moderation"
	"github.com/fitforge/v1/internal/domain/user"
	"github.com/fitforge/v1/internal/ports/outbound"
	"github.com/fitforge/v1/pkg/errors"
)

// ModerationGate decides whether a generation request may proceed and
// escalates punishment on repeated rejected responses. State
// transitions are pure (domain/moderation); the gate persists each
// successor state as a single atomic field write.
type ModerationGate struct {
	users  outbound.UserRepository
	policy moderation.Policy
	now    func() time.Time
	logger *zap.Logger
}

// NewModerationGate creates a moderation gate with the given policy
func NewModerationGate(users outbound.UserRepository, policy moderation.Policy, logger *zap.Logger) *ModerationGate {
	return &ModerationGate{
		users:  users,
		policy: policy,
		now:    time.Now,
		logger: logger.Named("moderation-gate"),
	}
}

// CheckBan returns a BanActive error while a ban is in force. No state
// is changed either way.
func (g *ModerationGate) CheckBan(u *user.User) error {
	ban := u.Moderation().ActiveBan(g.now())
	if ban == nil {
		return nil
	}
	return banError(ban)
}

// RecordOffense applies one offense to the user's moderation state and
// persists the result. The returned error is what the caller surfaces:
// a ban message when this offense issued one, nil otherwise (the caller
// then surfaces its domain-specific off-topic warning).
func (g *ModerationGate) RecordOffense(ctx context.Context, u *user.User) (*moderation.Ban, error) {
	next, issued := u.Moderation().RecordOffense(g.now(), g.policy)
	if err := g.users.UpdateModeration(ctx, u.ID(), next); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to persist moderation state")
	}
	u.SetModeration(next)

	if issued != nil {
		g.logger.Warn("Ban issued",
			zap.String("user_id", u.ID().String()),
			zap.Int("minutes", issued.Minutes),
			zap.Time("expires_at", issued.ExpiresAt()),
		)
	} else {
		g.logger.Info("Offense recorded",
			zap.String("user_id", u.ID().String()),
			zap.Int("mistakes", next.Mistakes),
		)
	}
	return issued, nil
}

// Reset clears mistakes and ban after an accepted response
func (g *ModerationGate) Reset(ctx context.Context, u *user.User) error {
	next := u.Moderation().Reset()
	if err := g.users.UpdateModeration(ctx, u.ID(), next); err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to reset moderation state")
	}
	u.SetModeration(next)
	return nil
}

func banError(ban *moderation.Ban) error {
	return errors.New(errors.CodeBanActive,
		"You are banned until "+ban.ExpiresAt().Format(time.RFC1123)).
		WithMetadata("banned_until", ban.ExpiresAt()).
		WithMetadata("minutes", ban.Minutes)
}
