package plan

import (
	"time"

	"github.com/fitforge/v1/internal/domain/conversation"
	"github.com/fitforge/v1/pkg/errors"
)

// DefaultRegenerateCooldown is the minimum elapsed time between workout
// plan regenerations. Overridable through configuration; diet
// generation has no equivalent.
const DefaultRegenerateCooldown = 5 * time.Minute

// CooldownGuard enforces the regeneration window, independent of
// moderation state.
type CooldownGuard struct {
	window time.Duration
	now    func() time.Time
}

// NewCooldownGuard creates a cooldown guard with the given window
func NewCooldownGuard(window time.Duration) *CooldownGuard {
	if window <= 0 {
		window = DefaultRegenerateCooldown
	}
	return &CooldownGuard{window: window, now: time.Now}
}

// CheckRegenerate compares now against the creation stamp of the
// current training slot plus the window. A missing or unstamped slot
// never blocks.
func (g *CooldownGuard) CheckRegenerate(session *conversation.TrainingSession) error {
	if session == nil || session.CreatedAt.IsZero() {
		return nil
	}
	retryAt := session.CreatedAt.Add(g.window)
	if g.now().Before(retryAt) {
		return errors.New(errors.CodeCooldownActive,
			"You can regenerate your workout plan after "+retryAt.Format(time.RFC1123)).
			WithMetadata("retry_at", retryAt)
	}
	return nil
}
