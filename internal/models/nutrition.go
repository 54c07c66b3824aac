package models

import (
	"time"
)

// Food is a reference entry with nutrient values per 100g.
type Food struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Calories  float64   `json:"calories"`
	Protein   float64   `json:"protein"`
	Carbs     float64   `json:"carbs"`
	Fat       float64   `json:"fat"`
	CreatedAt time.Time `json:"created_at"`
}

// DailyGoal holds target nutrient totals for one calendar date.
// At most one goal exists per date; setting again overwrites.
type DailyGoal struct {
	Date           string  `json:"date"`
	TargetCalories float64 `json:"target_calories"`
	TargetProtein  float64 `json:"target_protein"`
	TargetCarbs    float64 `json:"target_carbs"`
	TargetFat      float64 `json:"target_fat"`
}

// IntakeEntry is one logged portion with absolute nutrient totals.
// Entries are append-only.
type IntakeEntry struct {
	ID                 string    `json:"id"`
	Date               string    `json:"date"`
	FoodName           string    `json:"food_name"`
	PortionDescription string    `json:"portion_description"`
	Calories           float64   `json:"calories"`
	Protein            float64   `json:"protein"`
	Carbs              float64   `json:"carbs"`
	Fat                float64   `json:"fat"`
	MealType           MealType  `json:"meal_type"`
	CreatedAt          time.Time `json:"created_at"`
}

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
	MealOther     MealType = "other"
)

// ParseMealType maps a raw string onto the fixed meal type set.
// An empty string defaults to "other".
func ParseMealType(s string) (MealType, bool) {
	switch MealType(s) {
	case "":
		return MealOther, true
	case MealBreakfast, MealLunch, MealDinner, MealSnack, MealOther:
		return MealType(s), true
	}
	return "", false
}

// NutrientTotals is a sum of absolute nutrient amounts.
type NutrientTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Add accumulates one entry's totals.
func (t *NutrientTotals) Add(e *IntakeEntry) {
	t.Calories += e.Calories
	t.Protein += e.Protein
	t.Carbs += e.Carbs
	t.Fat += e.Fat
}

// DayReview is everything logged for a date, with running totals and the
// day's goal when one was set. Totals and goal comparisons are omitted when
// nothing was logged.
type DayReview struct {
	Date      string          `json:"date"`
	NoEntries bool            `json:"no_entries"`
	Entries   []IntakeEntry   `json:"entries"`
	Totals    *NutrientTotals `json:"totals,omitempty"`
	Goal      *DailyGoal      `json:"goal,omitempty"`
	Remaining *NutrientTotals `json:"remaining,omitempty"`
}

// DatabaseInfo describes the backing store file and its row counts.
type DatabaseInfo struct {
	Path        string `json:"path"`
	Exists      bool   `json:"exists"`
	SizeBytes   int64  `json:"size_bytes"`
	Size        string `json:"size"`
	FoodCount   int64  `json:"food_count"`
	IntakeCount int64  `json:"intake_count"`
	GoalDays    int64  `json:"goal_days"`
}
