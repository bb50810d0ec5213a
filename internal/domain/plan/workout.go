package plan

import "strings"

// Weekdays is the canonical day set a workout plan must cover, in order.
var Weekdays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Exercise is a single movement within a training day
type Exercise struct {
	Name         string `json:"name"`
	Sets         int    `json:"sets"`
	Reps         string `json:"reps"`
	Instructions string `json:"instructions"`
	Video        string `json:"video"`
}

// WorkoutDay is one day of the weekly plan. Rest days carry an empty
// exercise list.
type WorkoutDay struct {
	Day       string     `json:"day"`
	Rest      bool       `json:"rest"`
	Muscles   []string   `json:"muscles"`
	Exercises []Exercise `json:"exercises"`
}

// Workout is the accepted shape of a generated workout plan: exactly
// seven day objects covering Monday through Sunday.
type Workout struct {
	Days []WorkoutDay `json:"days"`
}

// Validate enforces the workout schema contract
func (w *Workout) Validate() error {
	if len(w.Days) != len(Weekdays) {
		return ErrNotSevenDays
	}
	seen := make(map[string]bool, len(Weekdays))
	for _, day := range w.Days {
		name := canonicalDay(day.Day)
		if name == "" {
			return ErrUnknownDay
		}
		if seen[name] {
			return ErrDuplicateDay
		}
		seen[name] = true

		if day.Rest && len(day.Exercises) > 0 {
			return ErrRestDayHasExercises
		}
		for _, ex := range day.Exercises {
			if ex.Name == "" || ex.Sets <= 0 || ex.Reps == "" {
				return ErrExerciseIncomplete
			}
		}
	}
	return nil
}

func canonicalDay(name string) string {
	for _, day := range Weekdays {
		if strings.EqualFold(day, strings.TrimSpace(name)) {
			return day
		}
	}
	return ""
}
