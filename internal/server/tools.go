package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"mcp-macro-tracker/internal/models"
	"mcp-macro-tracker/internal/storage"
)

type SetDailyGoalsParams struct {
	Date           string  `json:"date,omitempty" description:"Date in YYYY-MM-DD format (defaults to today)"`
	TargetCalories float64 `json:"target_calories" description:"Target calories for the day"`
	TargetProtein  float64 `json:"target_protein" description:"Target protein in grams"`
	TargetCarbs    float64 `json:"target_carbs" description:"Target carbohydrates in grams"`
	TargetFat      float64 `json:"target_fat" description:"Target fat in grams"`
}

type AddFoodParams struct {
	Name     string  `json:"name" description:"Name of the food"`
	Calories float64 `json:"calories" description:"Calories per 100g"`
	Protein  float64 `json:"protein" description:"Protein in grams per 100g"`
	Carbs    float64 `json:"carbs" description:"Carbohydrates in grams per 100g"`
	Fat      float64 `json:"fat" description:"Fat in grams per 100g"`
}

type LookupFoodParams struct {
	Query string `json:"query,omitempty" description:"Substring to match food names against (empty returns all foods)"`
}

// LogFoodIntakeParams resolves nutrient totals one of two ways: quantity_grams
// scales a reference food's per-100g values, or the caller supplies all four
// absolute totals directly. Explicit totals win when both are present.
type LogFoodIntakeParams struct {
	Date               string   `json:"date,omitempty" description:"Date in YYYY-MM-DD format (defaults to today)"`
	FoodName           string   `json:"food_name" description:"Name of the food eaten"`
	PortionDescription string   `json:"portion_description,omitempty" description:"Portion eaten (e.g. \"200g\", \"1 cup\", \"1 medium apple\")"`
	MealType           string   `json:"meal_type,omitempty" description:"One of breakfast, lunch, dinner, snack, other (defaults to other)"`
	QuantityGrams      *float64 `json:"quantity_grams,omitempty" description:"Portion weight in grams, scaled against the food database"`
	Calories           *float64 `json:"calories,omitempty" description:"Total calories for this portion"`
	Protein            *float64 `json:"protein,omitempty" description:"Total protein in grams for this portion"`
	Carbs              *float64 `json:"carbs,omitempty" description:"Total carbs in grams for this portion"`
	Fat                *float64 `json:"fat,omitempty" description:"Total fat in grams for this portion"`
}

type ReviewMealsParams struct {
	Date string `json:"date,omitempty" description:"Date in YYYY-MM-DD format (defaults to today)"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return &storage.ValidationError{Field: "arguments", Reason: err.Error()}
	}

	return nil
}

func today() string {
	return time.Now().Format("2006-01-02")
}

func (s *MacroTrackerServer) handleSetDailyGoals(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SetDailyGoalsParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if params.Date == "" {
		params.Date = today()
	}

	goal := &models.DailyGoal{
		Date:           params.Date,
		TargetCalories: params.TargetCalories,
		TargetProtein:  params.TargetProtein,
		TargetCarbs:    params.TargetCarbs,
		TargetFat:      params.TargetFat,
	}
	if err := s.store.SetDailyGoals(ctx, goal); err != nil {
		return nil, err
	}

	s.log.Info().Str("date", goal.Date).Msg("daily goals set")
	return s.createJSONResponse(goal)
}

func (s *MacroTrackerServer) handleAddFood(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params AddFoodParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	food := &models.Food{
		Name:     params.Name,
		Calories: params.Calories,
		Protein:  params.Protein,
		Carbs:    params.Carbs,
		Fat:      params.Fat,
	}
	if err := s.store.AddFood(ctx, food); err != nil {
		return nil, err
	}

	s.log.Info().Str("name", food.Name).Msg("food added to database")
	return s.createJSONResponse(food)
}

func (s *MacroTrackerServer) handleLookupFood(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LookupFoodParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	foods, err := s.store.LookupFood(ctx, params.Query)
	if err != nil {
		return nil, err
	}

	return s.createJSONResponse(map[string]interface{}{
		"count": len(foods),
		"foods": foods,
	})
}

func (s *MacroTrackerServer) handleLogFoodIntake(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LogFoodIntakeParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if params.Date == "" {
		params.Date = today()
	}

	entry, err := s.store.LogIntake(ctx, &storage.LogIntakeRequest{
		Date:               params.Date,
		FoodName:           params.FoodName,
		PortionDescription: params.PortionDescription,
		MealType:           params.MealType,
		QuantityGrams:      params.QuantityGrams,
		Calories:           params.Calories,
		Protein:            params.Protein,
		Carbs:              params.Carbs,
		Fat:                params.Fat,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("date", entry.Date).
		Str("food", entry.FoodName).
		Str("meal_type", string(entry.MealType)).
		Msg("intake logged")
	return s.createJSONResponse(entry)
}

func (s *MacroTrackerServer) handleReviewMeals(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ReviewMealsParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if params.Date == "" {
		params.Date = today()
	}

	review, err := s.store.ReviewMeals(ctx, params.Date)
	if err != nil {
		return nil, err
	}

	return s.createJSONResponse(review)
}

func (s *MacroTrackerServer) handleGetDatabaseInfo(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	info, err := s.store.Info(ctx)
	if err != nil {
		return nil, err
	}

	return s.createJSONResponse(info)
}

// registerTools logs the tool surface. Dispatch itself happens in handleHTTP.
func (s *MacroTrackerServer) registerTools() {
	tools := []string{
		"set_daily_goals",
		"add_food_to_database",
		"lookup_food",
		"log_food_intake",
		"review_meals",
		"get_database_info",
	}
	for _, name := range tools {
		s.log.Debug().Str("tool", name).Msg("registered tool")
	}
}
