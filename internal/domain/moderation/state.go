// Package moderation implements the abuse-moderation state machine
// governing AI plan generation requests.
package moderation

import "time"

// Default policy values; both are overridable through configuration.
const (
	DefaultMistakeThreshold = 2
	DefaultBanBaseMinutes   = 5
)

// Ban is a time-boxed block on all generation requests for a user.
// Minutes records the magnitude used to compute the next escalation.
type Ban struct {
	IssuedAt time.Time `json:"issued_at"`
	Minutes  int       `json:"minutes"`
}

// ExpiresAt returns the instant the ban lifts
func (b Ban) ExpiresAt() time.Time {
	return b.IssuedAt.Add(time.Duration(b.Minutes) * time.Minute)
}

// ActiveAt reports whether the ban is still in force at the given instant
func (b Ban) ActiveAt(now time.Time) bool {
	return b.ExpiresAt().After(now)
}

// State is the per-user moderation value object. It is persisted as a
// single atomic field so concurrent offenses cannot interleave partial
// mistake/ban updates.
type State struct {
	Mistakes int  `json:"mistakes"`
	Ban      *Ban `json:"ban,omitempty"`
}

// Policy carries the configurable knobs of the state machine
type Policy struct {
	MistakeThreshold int
	BanBaseMinutes   int
}

// DefaultPolicy returns the stock two-strikes policy
func DefaultPolicy() Policy {
	return Policy{
		MistakeThreshold: DefaultMistakeThreshold,
		BanBaseMinutes:   DefaultBanBaseMinutes,
	}
}

// ActiveBan returns the ban currently in force, or nil. An expired ban
// object that was never cleared counts as no ban.
func (s State) ActiveBan(now time.Time) *Ban {
	if s.Ban == nil || !s.Ban.ActiveAt(now) {
		return nil
	}
	return s.Ban
}

// RecordOffense applies one rejected-response offense and returns the
// successor state plus the ban issued by this transition, if any.
//
// While a ban is in force the penalty doubles and re-anchors to now.
// Otherwise the mistake counter advances; reaching the threshold issues
// a fresh ban at the base magnitude and resets the counter.
func (s State) RecordOffense(now time.Time, policy Policy) (State, *Ban) {
	if active := s.ActiveBan(now); active != nil {
		escalated := &Ban{IssuedAt: now, Minutes: active.Minutes * 2}
		return State{Mistakes: 0, Ban: escalated}, escalated
	}

	mistakes := s.Mistakes + 1
	if mistakes >= policy.MistakeThreshold {
		issued := &Ban{IssuedAt: now, Minutes: policy.BanBaseMinutes}
		return State{Mistakes: 0, Ban: issued}, issued
	}
	return State{Mistakes: mistakes}, nil
}

// Reset returns the clean state. Applied after every accepted response.
func (s State) Reset() State {
	return State{}
}
