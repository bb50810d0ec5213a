package plan

import (
	"fmt"
	"strings"
	"time"

	"github.com/fitforge/v1/internal/domain/user"
)

// The model must echo these contracts exactly; any drift is rejected
// by the validator and charged as an offense.

// DietSystemSeed seeds every new diet day conversation
const DietSystemSeed = `You are a professional nutrition coach. You answer only questions about diet and nutrition. You MUST respond with ONLY a valid JSON object in the declared schema. Do not include any explanatory text, markdown formatting, or other content outside the JSON. If the request is not about diet, respond with the single word: error`

// WorkoutSystemSeed seeds every new training slot conversation
const WorkoutSystemSeed = `You are a professional strength and conditioning coach. You answer only questions about workout programming. You MUST respond with ONLY a valid JSON array in the declared schema. Do not include any explanatory text, markdown formatting, or other content outside the JSON. If the request is not about training, respond with plain text instead of JSON.`

const dietSchemaContract = `Required JSON format:
{
  "calories": 2200,
  "protein": 160,
  "fat": 70,
  "carbohydrates": 220,
  "meals": [
    {
      "name": "Breakfast",
      "foods": [
        {
          "name": "food name",
          "serving": "80g",
          "calories": 300,
          "protein": 10,
          "fat": 6,
          "carbohydrates": 50
        }
      ]
    }
  ]
}

All calories, protein, fat and carbohydrates values must be plain numbers without units. Respond with ONLY valid JSON.`

const workoutSchemaContract = `Required JSON format: an array of exactly seven day objects covering Monday through Sunday, in order:
[
  {
    "day": "Monday",
    "rest": false,
    "muscles": ["chest", "triceps"],
    "exercises": [
      {
        "name": "exercise name",
        "sets": 4,
        "reps": "8-10",
        "instructions": "short form cue",
        "video": "https://example.com/video"
      }
    ]
  }
]

Rest days must have "rest": true and an empty "exercises" array. Respond with ONLY valid JSON.`

// ProfileSnapshot is the frozen view of the biometrics a prompt embeds
type ProfileSnapshot struct {
	Age       int
	HeightCm  float64
	WeightKg  float64
	Sex       string
	Activity  string
	Goal      string
	Allergies []string
}

// SnapshotProfile freezes a user profile for prompt rendering
func SnapshotProfile(p *user.Profile, now time.Time) ProfileSnapshot {
	return ProfileSnapshot{
		Age:       p.Age(now),
		HeightCm:  p.HeightCm,
		WeightKg:  p.WeightKg,
		Sex:       string(p.Sex),
		Activity:  p.ActivityLevel.Describe(),
		Goal:      p.Goal.Describe(),
		Allergies: p.Allergies,
	}
}

func (p ProfileSnapshot) allergiesList() string {
	if len(p.Allergies) == 0 {
		return "empty"
	}
	return strings.Join(p.Allergies, ", ")
}

func (p ProfileSnapshot) describe() string {
	return fmt.Sprintf(
		"I am a %d year old %s, %.0f cm tall, weighing %.0f kg. My activity level is %s and my goal is to %s. Allergies: %s.",
		p.Age, p.Sex, p.HeightCm, p.WeightKg, p.Activity, p.Goal, p.allergiesList(),
	)
}

// BuildDietPrompt renders the generate-intent diet prompt
func BuildDietPrompt(profile ProfileSnapshot) string {
	return fmt.Sprintf(
		"%s Create a one-day diet plan tailored to me.\n\n%s",
		profile.describe(), dietSchemaContract,
	)
}

// BuildModifyDietPrompt renders the modify-intent diet prompt. The
// model must return the full updated plan, never a diff.
func BuildModifyDietPrompt(userFreeText string) string {
	return fmt.Sprintf(
		"Apply the following change to my current diet plan: %s\n\nReturn the FULL updated plan, not just the changes, in the same JSON schema as before.",
		userFreeText,
	)
}

// BuildWorkoutPrompt renders the generate-intent workout prompt
func BuildWorkoutPrompt(profile ProfileSnapshot) string {
	return fmt.Sprintf(
		"%s Create a weekly workout plan tailored to me.\n\n%s",
		profile.describe(), workoutSchemaContract,
	)
}

// BuildModifyWorkoutPrompt renders the modify-intent workout prompt
func BuildModifyWorkoutPrompt(userFreeText string) string {
	return fmt.Sprintf(
		"Apply the following change to my current workout plan: %s\n\nReturn the FULL updated plan covering all seven days, not just the changes, in the same JSON schema as before.",
		userFreeText,
	)
}
