// Package plan defines the typed plan schemas a model response must
// satisfy to be accepted.
package plan

// Food is a single item inside a meal. Macro fields are numeric; a
// unit-suffixed string in the model output is a schema violation.
type Food struct {
	Name          string  `json:"name"`
	Serving       string  `json:"serving"`
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Fat           float64 `json:"fat"`
	Carbohydrates float64 `json:"carbohydrates"`
}

// Meal groups foods under a named sitting
type Meal struct {
	Name  string `json:"name"`
	Foods []Food `json:"foods"`
}

// Diet is the accepted shape of a generated diet plan
type Diet struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Fat           float64 `json:"fat"`
	Carbohydrates float64 `json:"carbohydrates"`
	Meals         []Meal  `json:"meals"`
}

// Validate enforces the diet schema contract
func (d *Diet) Validate() error {
	if d.Calories <= 0 || d.Protein < 0 || d.Fat < 0 || d.Carbohydrates < 0 {
		return ErrMissingMacros
	}
	if len(d.Meals) == 0 {
		return ErrNoMeals
	}
	for _, meal := range d.Meals {
		if len(meal.Foods) == 0 {
			return ErrMealNoFoods
		}
		for _, food := range meal.Foods {
			if food.Name == "" || food.Serving == "" {
				return ErrFoodIncomplete
			}
		}
	}
	return nil
}
