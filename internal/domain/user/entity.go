// Package user defines the user domain entity
package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fitforge/v1/internal/domain/conversation"
	"github.com/fitforge/v1/internal/domain/moderation"
)

// User represents a coached user in the system. It is the root
// aggregate for biometrics, moderation state and the AI conversations.
type User struct {
	id           uuid.UUID
	email        string
	name         string
	passwordHash string
	isActive     bool
	profile      *Profile
	moderation   moderation.State
	diets        []*conversation.DietDay
	training     *conversation.TrainingSession
	workouts     []WorkoutRun
	createdAt    time.Time
	updatedAt    time.Time
	lastLoginAt  *time.Time
}

// Profile contains the biometrics the prompt builder reads
type Profile struct {
	HeightCm      float64
	WeightKg      float64
	BirthDate     time.Time
	Sex           Sex
	ActivityLevel ActivityLevel
	Goal          Goal
	Allergies     []string
}

// WorkoutRun logs one executed day of the current plan. Sibling
// aggregate to the plan conversations; not touched by plan generation.
type WorkoutRun struct {
	ID          uuid.UUID
	Day         string
	Notes       string
	PerformedAt time.Time
}

// Sex for basal-rate phrasing in prompts
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

// ActivityLevel describes habitual activity
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// Describe returns the activity descriptor embedded in prompts
func (a ActivityLevel) Describe() string {
	switch a {
	case ActivitySedentary:
		return "sedentary (little to no exercise)"
	case ActivityLight:
		return "lightly active (1-3 sessions per week)"
	case ActivityModerate:
		return "moderately active (3-5 sessions per week)"
	case ActivityActive:
		return "active (6-7 sessions per week)"
	case ActivityVeryActive:
		return "very active (hard daily training)"
	default:
		return string(a)
	}
}

// Goal describes the coaching objective
type Goal string

const (
	GoalLoseWeight   Goal = "lose_weight"
	GoalMaintain     Goal = "maintain"
	GoalGainMuscle   Goal = "gain_muscle"
	GoalGainStrength Goal = "gain_strength"
)

// Describe returns the goal descriptor embedded in prompts
func (g Goal) Describe() string {
	switch g {
	case GoalLoseWeight:
		return "lose body fat"
	case GoalMaintain:
		return "maintain current weight"
	case GoalGainMuscle:
		return "build muscle mass"
	case GoalGainStrength:
		return "gain strength"
	default:
		return string(g)
	}
}

// NewUser creates a new user with validation
func NewUser(email, name, password string) (*User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrPasswordHashing
	}

	now := time.Now()
	return &User{
		id:           uuid.New(),
		email:        strings.ToLower(email),
		name:         name,
		passwordHash: string(hashedPassword),
		isActive:     true,
		moderation:   moderation.State{},
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Rehydrate reconstructs a user from persisted state
func Rehydrate(
	id uuid.UUID,
	email, name, passwordHash string,
	isActive bool,
	profile *Profile,
	mod moderation.State,
	diets []*conversation.DietDay,
	training *conversation.TrainingSession,
	workouts []WorkoutRun,
	createdAt, updatedAt time.Time,
	lastLoginAt *time.Time,
) *User {
	return &User{
		id:           id,
		email:        email,
		name:         name,
		passwordHash: passwordHash,
		isActive:     isActive,
		profile:      profile,
		moderation:   mod,
		diets:        diets,
		training:     training,
		workouts:     workouts,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		lastLoginAt:  lastLoginAt,
	}
}

func (u *User) ID() uuid.UUID           { return u.id }
func (u *User) Email() string           { return u.email }
func (u *User) Name() string            { return u.name }
func (u *User) PasswordHash() string    { return u.passwordHash }
func (u *User) IsActive() bool          { return u.isActive }
func (u *User) Profile() *Profile       { return u.profile }
func (u *User) CreatedAt() time.Time    { return u.createdAt }
func (u *User) UpdatedAt() time.Time    { return u.updatedAt }
func (u *User) LastLoginAt() *time.Time { return u.lastLoginAt }

// Moderation returns the current moderation state snapshot
func (u *User) Moderation() moderation.State { return u.moderation }

// SetModeration replaces the moderation state wholesale
func (u *User) SetModeration(s moderation.State) {
	u.moderation = s
	u.updatedAt = time.Now()
}

// Diets returns the per-day diet conversations, oldest first
func (u *User) Diets() []*conversation.DietDay { return u.diets }

// Training returns the current training slot, nil when none exists
func (u *User) Training() *conversation.TrainingSession { return u.training }

// Workouts returns the logged plan executions
func (u *User) Workouts() []WorkoutRun { return u.workouts }

// AddDietDay appends a new calendar day conversation
func (u *User) AddDietDay(day *conversation.DietDay) {
	u.diets = append(u.diets, day)
	u.updatedAt = time.Now()
}

// DietDayFor finds the diet conversation covering the given instant,
// matched by calendar day
func (u *User) DietDayFor(t time.Time) *conversation.DietDay {
	for _, day := range u.diets {
		if day.Matches(t) {
			return day
		}
	}
	return nil
}

// ReplaceTraining swaps the training slot wholesale
func (u *User) ReplaceTraining(session *conversation.TrainingSession) {
	u.training = session
	u.updatedAt = time.Now()
}

// LogWorkout records an executed plan day
func (u *User) LogWorkout(run WorkoutRun) {
	u.workouts = append(u.workouts, run)
	u.updatedAt = time.Now()
}

// CheckPassword verifies if the provided password matches
func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password))
}

// UpdateProfile updates the user's biometrics
func (u *User) UpdateProfile(profile *Profile) error {
	if err := validateProfile(profile); err != nil {
		return err
	}
	u.profile = profile
	u.updatedAt = time.Now()
	return nil
}

// RecordLogin records a login timestamp
func (u *User) RecordLogin() {
	now := time.Now()
	u.lastLoginAt = &now
	u.updatedAt = now
}

// Age returns the user's age in completed years at the given instant
func (p *Profile) Age(now time.Time) int {
	years := now.Year() - p.BirthDate.Year()
	anniversary := p.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

// Validation functions
func validateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if !strings.Contains(email, "@") || len(email) > 255 {
		return ErrEmailInvalid
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return ErrNameRequired
	}
	if len(name) < 2 || len(name) > 100 {
		return ErrNameLength
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 || len(password) > 128 {
		return ErrPasswordLength
	}
	return nil
}

func validateProfile(p *Profile) error {
	if p == nil {
		return ErrProfileRequired
	}
	if p.HeightCm < 50 || p.HeightCm > 280 {
		return ErrHeightOutOfRange
	}
	if p.WeightKg < 20 || p.WeightKg > 400 {
		return ErrWeightOutOfRange
	}
	if p.BirthDate.IsZero() || p.BirthDate.After(time.Now()) {
		return ErrBirthDateInvalid
	}
	return nil
}
