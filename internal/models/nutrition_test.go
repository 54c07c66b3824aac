package models

import "testing"

func TestParseMealType(t *testing.T) {
	cases := []struct {
		in   string
		want MealType
		ok   bool
	}{
		{"breakfast", MealBreakfast, true},
		{"lunch", MealLunch, true},
		{"dinner", MealDinner, true},
		{"snack", MealSnack, true},
		{"other", MealOther, true},
		{"", MealOther, true},
		{"brunch", "", false},
		{"Breakfast", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseMealType(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseMealType(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNutrientTotalsAdd(t *testing.T) {
	var totals NutrientTotals
	totals.Add(&IntakeEntry{Calories: 330, Protein: 62, Carbs: 0, Fat: 7.2})
	totals.Add(&IntakeEntry{Calories: 120, Protein: 24, Carbs: 3, Fat: 1.5})

	if totals.Calories != 450 {
		t.Errorf("Calories = %v, want 450", totals.Calories)
	}
	if totals.Protein != 86 {
		t.Errorf("Protein = %v, want 86", totals.Protein)
	}
	if totals.Carbs != 3 {
		t.Errorf("Carbs = %v, want 3", totals.Carbs)
	}
}
