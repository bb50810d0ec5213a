// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/fitforge/v1/internal/domain/conversation"
	"github.com/fitforge/v1/internal/domain/plan"
	"github.com/fitforge/v1/internal/domain/user"
)

// UserBuilder provides a fluent interface for building test users
type UserBuilder struct {
	faker    *gofakeit.Faker
	email    string
	name     string
	password string
	profile  *user.Profile
}

// NewUserBuilder creates a user builder with randomized defaults
func NewUserBuilder() *UserBuilder {
	faker := gofakeit.New(time.Now().UnixNano())

	return &UserBuilder{
		faker:    faker,
		email:    faker.Email(),
		name:     faker.Name(),
		password: "test-password-123",
		profile: &user.Profile{
			HeightCm:      float64(faker.Number(150, 200)),
			WeightKg:      float64(faker.Number(50, 120)),
			BirthDate:     time.Date(faker.Number(1960, 2005), time.Month(faker.Number(1, 12)), faker.Number(1, 28), 0, 0, 0, 0, time.UTC),
			Sex:           user.SexFemale,
			ActivityLevel: user.ActivityModerate,
			Goal:          user.GoalGainMuscle,
			Allergies:     nil,
		},
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithProfile sets the biometric profile
func (b *UserBuilder) WithProfile(profile *user.Profile) *UserBuilder {
	b.profile = profile
	return b
}

// WithoutProfile builds a user that has not completed onboarding
func (b *UserBuilder) WithoutProfile() *UserBuilder {
	b.profile = nil
	return b
}

// WithAllergies sets the allergy list
func (b *UserBuilder) WithAllergies(allergies ...string) *UserBuilder {
	b.profile.Allergies = allergies
	return b
}

// Build creates the user entity
func (b *UserBuilder) Build() (*user.User, error) {
	u, err := user.NewUser(b.email, b.name, b.password)
	if err != nil {
		return nil, err
	}
	if b.profile != nil {
		if err := u.UpdateProfile(b.profile); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// MustBuild creates the user entity and panics on invalid input
func (b *UserBuilder) MustBuild() *user.User {
	u, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("testutils: building user: %v", err))
	}
	return u
}

// ValidDietJSON returns a model response that passes diet classification
func ValidDietJSON() string {
	faker := gofakeit.New(time.Now().UnixNano())

	diet := plan.Diet{
		Calories:      float64(faker.Number(1600, 3200)),
		Protein:       float64(faker.Number(100, 220)),
		Fat:           float64(faker.Number(40, 110)),
		Carbohydrates: float64(faker.Number(120, 380)),
		Meals: []plan.Meal{
			{
				Name: "Breakfast",
				Foods: []plan.Food{
					{Name: faker.Food(), Serving: "1 bowl", Calories: 420, Protein: 28, Fat: 12, Carbohydrates: 48},
				},
			},
			{
				Name: "Dinner",
				Foods: []plan.Food{
					{Name: faker.Food(), Serving: "1 plate", Calories: 680, Protein: 42, Fat: 22, Carbohydrates: 60},
				},
			},
		},
	}

	raw, _ := json.Marshal(diet)
	return string(raw)
}

// ValidWorkoutJSON returns a model response that passes workout
// classification: a bare seven element day array.
func ValidWorkoutJSON() string {
	days := make([]plan.WorkoutDay, 0, len(plan.Weekdays))
	for i, name := range plan.Weekdays {
		if i%3 == 2 {
			days = append(days, plan.WorkoutDay{Day: name, Rest: true})
			continue
		}
		days = append(days, plan.WorkoutDay{
			Day:     name,
			Muscles: []string{"chest", "triceps"},
			Exercises: []plan.Exercise{
				{Name: "Bench Press", Sets: 4, Reps: "8-10", Instructions: "Controlled descent", Video: "https://example.com/bench"},
				{Name: "Dips", Sets: 3, Reps: "12", Instructions: "Full range", Video: "https://example.com/dips"},
			},
		})
	}

	raw, _ := json.Marshal(days)
	return string(raw)
}

// DietDayWithHistory creates a diet day carrying a seed plus the given
// number of user and model turn pairs
func DietDayWithHistory(date time.Time, turns int) *conversation.DietDay {
	day := conversation.NewDietDay(date, conversation.NewMessage(conversation.RoleSystem, "You are a diet planning assistant"))
	for i := 0; i < turns; i++ {
		day.Append(
			conversation.NewMessage(conversation.RoleUser, fmt.Sprintf("request %d", i+1)),
			conversation.NewMessage(conversation.RoleModel, ValidDietJSON()),
		)
	}
	return day
}

// TrainingSessionWithPlan creates a training slot holding an accepted plan
func TrainingSessionWithPlan(createdAt time.Time) *conversation.TrainingSession {
	session := conversation.NewTrainingSession(createdAt, conversation.NewMessage(conversation.RoleSystem, "You are a workout planning assistant"))
	session.Append(
		conversation.NewMessage(conversation.RoleUser, "Generate my plan"),
		conversation.NewMessage(conversation.RoleModel, ValidWorkoutJSON()),
	)
	session.SetPlan([]byte(ValidWorkoutJSON()))
	return session
}

// WorkoutRun creates one logged plan execution
func WorkoutRun(day string, performedAt time.Time) user.WorkoutRun {
	faker := gofakeit.New(time.Now().UnixNano())
	return user.WorkoutRun{
		ID:          uuid.New(),
		Day:         day,
		Notes:       faker.Sentence(6),
		PerformedAt: performedAt,
	}
}
