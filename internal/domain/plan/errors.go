package plan

import "errors"

// Domain errors for plan schema validation

var (
	// Shared
	ErrMalformedJSON = errors.New("plan output is not valid JSON")

	// Diet schema
	ErrMissingMacros  = errors.New("diet plan must carry numeric calories, protein, fat and carbohydrates")
	ErrNoMeals        = errors.New("diet plan must have at least one meal")
	ErrMealNoFoods    = errors.New("diet meal must have at least one food")
	ErrFoodIncomplete = errors.New("diet food entry is missing required fields")

	// Workout schema
	ErrNotSevenDays        = errors.New("workout plan must cover exactly seven days")
	ErrUnknownDay          = errors.New("workout day name is not a canonical weekday")
	ErrDuplicateDay        = errors.New("workout plan repeats a weekday")
	ErrRestDayHasExercises = errors.New("rest day must carry an empty exercise list")
	ErrExerciseIncomplete  = errors.New("workout exercise entry is missing required fields")
)
