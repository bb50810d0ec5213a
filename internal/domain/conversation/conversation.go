// Package conversation defines the per-user coaching conversation aggregates
package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a chat message
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
	RoleModel  Role = "model"
)

// Domain identifies which assistant a conversation belongs to
type Domain string

const (
	DomainDiet    Domain = "diet"
	DomainWorkout Domain = "workout"
)

// Message is a single conversation turn. Immutable once appended;
// ordering is conversation order and is replayed verbatim to the model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewMessage creates a message with the given role and content
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// DietDay holds the diet conversation for one calendar day.
// At most one exists per day; history is append-only.
type DietDay struct {
	ID      uuid.UUID
	Date    time.Time
	History []Message
}

// NewDietDay creates a day seeded with the given system message
func NewDietDay(date time.Time, seed Message) *DietDay {
	return &DietDay{
		ID:      uuid.New(),
		Date:    date,
		History: []Message{seed},
	}
}

// Matches reports whether the day covers the given timestamp,
// compared by calendar day (year, month, day), not by instant.
func (d *DietDay) Matches(t time.Time) bool {
	return SameCalendarDay(d.Date, t)
}

// Append adds messages to the day's history in order
func (d *DietDay) Append(messages ...Message) {
	d.History = append(d.History, messages...)
}

// TrainingSession is the single mutable "current" workout conversation slot.
// A fresh generation replaces it wholesale; a modification extends it in place.
type TrainingSession struct {
	ID        uuid.UUID
	CreatedAt time.Time
	History   []Message
	Plan      []byte // serialized accepted plan, nil until first acceptance
}

// NewTrainingSession creates a session seeded with the given system message
func NewTrainingSession(createdAt time.Time, seed Message) *TrainingSession {
	return &TrainingSession{
		ID:        uuid.New(),
		CreatedAt: createdAt,
		History:   []Message{seed},
	}
}

// Append adds messages to the session's history in order
func (s *TrainingSession) Append(messages ...Message) {
	s.History = append(s.History, messages...)
}

// SetPlan replaces the stored plan (remove-then-set, never a merge)
func (s *TrainingSession) SetPlan(plan []byte) {
	s.Plan = plan
}

// SameCalendarDay reports whether two instants fall on the same
// year, month and day.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
