// Package gorm provides GORM model definitions and repository
// implementations for the application
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitforge/v1/internal/domain/conversation"
)

// UserModel represents the GORM model for users
type UserModel struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name         string    `gorm:"type:varchar(255);not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	IsActive     bool      `gorm:"default:true"`

	Profile *ProfileModel `gorm:"embedded;embeddedPrefix:profile_"`

	// Moderation state, written as one atomic row update
	ModerationMistakes   int `gorm:"default:0"`
	ModerationBanIssued  *time.Time
	ModerationBanMinutes int `gorm:"default:0"`

	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time

	// Relationships
	DietDays    []DietDayModel        `gorm:"foreignKey:UserID"`
	Training    *TrainingSessionModel `gorm:"foreignKey:UserID"`
	WorkoutRuns []WorkoutRunModel     `gorm:"foreignKey:UserID"`
}

// ProfileModel represents the embedded biometric profile
type ProfileModel struct {
	HeightCm      float64     `gorm:"default:0"`
	WeightKg      float64     `gorm:"default:0"`
	BirthDate     *time.Time  `gorm:"type:date"`
	Sex           string      `gorm:"type:varchar(20)"`
	ActivityLevel string      `gorm:"type:varchar(30)"`
	Goal          string      `gorm:"type:varchar(30)"`
	Allergies     StringSlice `gorm:"type:json"`
}

// DietDayModel holds one calendar day of diet conversation
type DietDayModel struct {
	ID      uuid.UUID  `gorm:"type:char(36);primaryKey"`
	UserID  uuid.UUID  `gorm:"type:char(36);not null;uniqueIndex:idx_user_diet_day,priority:1"`
	DateKey string     `gorm:"type:varchar(10);not null;uniqueIndex:idx_user_diet_day,priority:2"`
	Date    time.Time  `gorm:"not null"`
	History MessageLog `gorm:"type:json"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TrainingSessionModel is the single current workout conversation slot
type TrainingSessionModel struct {
	ID     uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex"`

	// Nil until a regeneration stamps the slot
	CreatedStamp *time.Time
	History      MessageLog `gorm:"type:json"`
	Plan         []byte     `gorm:"type:blob"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkoutRunModel logs one executed day of the current plan
type WorkoutRunModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID      uuid.UUID `gorm:"type:char(36);not null;index"`
	Day         string    `gorm:"type:varchar(20);not null"`
	Notes       string    `gorm:"type:text"`
	PerformedAt time.Time `gorm:"not null;index"`
}

// StringSlice custom type for handling string slices as JSON
type StringSlice []string

func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	encoded, err := json.Marshal(s)
	return string(encoded), err
}

// MessageLog custom type for handling conversation histories as JSON
type MessageLog []conversation.Message

func (m *MessageLog) Scan(value interface{}) error {
	if value == nil {
		*m = MessageLog{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot scan %T into MessageLog", value)
	}
}

func (m MessageLog) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	encoded, err := json.Marshal(m)
	return string(encoded), err
}

// BeforeCreate hook for UserModel
func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for DietDayModel
func (d *DietDayModel) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for TrainingSessionModel
func (t *TrainingSessionModel) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for WorkoutRunModel
func (w *WorkoutRunModel) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// TableName overrides
func (UserModel) TableName() string            { return "users" }
func (DietDayModel) TableName() string         { return "diet_days" }
func (TrainingSessionModel) TableName() string { return "training_sessions" }
func (WorkoutRunModel) TableName() string      { return "workout_runs" }

// dateKey normalizes an instant to its calendar-day lookup key
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
