package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"mcp-macro-tracker/internal/models"
)

// SQLiteStore owns the single macro-tracker database file. All six tracker
// operations run against it directly; there is no caching layer in front.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS foods (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL COLLATE NOCASE UNIQUE,
        calories REAL NOT NULL,
        protein REAL NOT NULL,
        carbs REAL NOT NULL,
        fat REAL NOT NULL,
        created_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS daily_goals (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        date TEXT UNIQUE NOT NULL,
        target_calories REAL NOT NULL,
        target_protein REAL NOT NULL,
        target_carbs REAL NOT NULL,
        target_fat REAL NOT NULL,
        created_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS daily_intake (
        id TEXT PRIMARY KEY,
        date TEXT NOT NULL,
        food_name TEXT NOT NULL,
        portion_description TEXT NOT NULL,
        calories REAL NOT NULL,
        protein REAL NOT NULL,
        carbs REAL NOT NULL,
        fat REAL NOT NULL,
        meal_type TEXT NOT NULL DEFAULT 'other',
        created_at DATETIME NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_daily_intake_date ON daily_intake(date);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return s.migrateLegacyIntake()
}

// migrateLegacyIntake upgrades databases written before portion descriptions
// existed: an old daily_intake table carried a numeric serving_size_g column
// instead. The column is kept; portion_description is added and backfilled
// from it.
func (s *SQLiteStore) migrateLegacyIntake() error {
	rows, err := s.db.Query(`PRAGMA table_info(daily_intake)`)
	if err != nil {
		return fmt.Errorf("failed to inspect daily_intake: %w", err)
	}
	defer rows.Close()

	var hasServingSize, hasPortion bool
	for rows.Next() {
		var (
			cid         int
			name, ctype string
			notNull     int
			dflt        sql.NullString
			pk          int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("failed to scan column info: %w", err)
		}
		switch name {
		case "serving_size_g":
			hasServingSize = true
		case "portion_description":
			hasPortion = true
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if !hasServingSize || hasPortion {
		return nil
	}

	if _, err := s.db.Exec(
		`ALTER TABLE daily_intake ADD COLUMN portion_description TEXT DEFAULT 'unknown portion'`); err != nil {
		return fmt.Errorf("failed to add portion_description: %w", err)
	}
	if _, err := s.db.Exec(
		`UPDATE daily_intake SET portion_description = serving_size_g || 'g'
		 WHERE portion_description = 'unknown portion'`); err != nil {
		return fmt.Errorf("failed to backfill portion_description: %w", err)
	}
	return nil
}

func validDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return validationErrorf("date", "%q is not a valid YYYY-MM-DD date", date)
	}
	return nil
}

func validNonNegative(field string, v float64) error {
	if v < 0 {
		return validationErrorf(field, "must be non-negative, got %v", v)
	}
	return nil
}

// SetDailyGoals upserts the goal row for goal.Date. Setting goals twice for
// the same date overwrites; exactly one row exists per date.
func (s *SQLiteStore) SetDailyGoals(ctx context.Context, goal *models.DailyGoal) error {
	if err := validDate(goal.Date); err != nil {
		return err
	}
	for _, c := range []struct {
		field string
		value float64
	}{
		{"target_calories", goal.TargetCalories},
		{"target_protein", goal.TargetProtein},
		{"target_carbs", goal.TargetCarbs},
		{"target_fat", goal.TargetFat},
	} {
		if err := validNonNegative(c.field, c.value); err != nil {
			return err
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_goals (date, target_calories, target_protein, target_carbs, target_fat, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
		     target_calories = excluded.target_calories,
		     target_protein  = excluded.target_protein,
		     target_carbs    = excluded.target_carbs,
		     target_fat      = excluded.target_fat`,
		goal.Date, goal.TargetCalories, goal.TargetProtein, goal.TargetCarbs, goal.TargetFat,
		time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert daily goals: %w", err)
	}
	return nil
}

// AddFood inserts one reference food with per-100g values. A name collision,
// compared case-insensitively, returns ErrDuplicateFood rather than
// overwriting.
func (s *SQLiteStore) AddFood(ctx context.Context, food *models.Food) error {
	food.Name = strings.TrimSpace(food.Name)
	if food.Name == "" {
		return validationErrorf("name", "must not be empty")
	}
	for _, c := range []struct {
		field string
		value float64
	}{
		{"calories", food.Calories},
		{"protein", food.Protein},
		{"carbs", food.Carbs},
		{"fat", food.Fat},
	} {
		if err := validNonNegative(c.field, c.value); err != nil {
			return err
		}
	}

	existing, err := s.GetFoodByName(ctx, food.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%q: %w", food.Name, ErrDuplicateFood)
	}

	food.CreatedAt = time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO foods (name, calories, protein, carbs, fat, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		food.Name, food.Calories, food.Protein, food.Carbs, food.Fat,
		food.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert food: %w", err)
	}
	if food.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read food id: %w", err)
	}
	return nil
}

// GetFoodByName returns the food whose name matches exactly, ignoring case,
// or nil when no such food exists.
func (s *SQLiteStore) GetFoodByName(ctx context.Context, name string) (*models.Food, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, calories, protein, carbs, fat, created_at
		 FROM foods WHERE name = ?`, name)

	food, err := scanFood(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query food: %w", err)
	}
	return food, nil
}

// LookupFood returns all foods whose name contains query, case-insensitively,
// ordered by name. An empty query lists the whole database. No match is an
// empty slice, not an error.
func (s *SQLiteStore) LookupFood(ctx context.Context, query string) ([]models.Food, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if query == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, name, calories, protein, carbs, fat, created_at
			 FROM foods ORDER BY name`)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, name, calories, protein, carbs, fat, created_at
			 FROM foods WHERE name LIKE '%' || ? || '%' ORDER BY name`, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query foods: %w", err)
	}
	defer rows.Close()

	foods := []models.Food{}
	for rows.Next() {
		food, err := scanFood(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan food: %w", err)
		}
		foods = append(foods, *food)
	}
	return foods, rows.Err()
}

func scanFood(scan func(...interface{}) error) (*models.Food, error) {
	food := &models.Food{}
	var createdAt string
	if err := scan(&food.ID, &food.Name, &food.Calories, &food.Protein,
		&food.Carbs, &food.Fat, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if food.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return food, nil
}

// LogIntakeRequest carries one log_food_intake call. Nutrient totals are
// resolved one of two ways: explicit absolute totals (all four of Calories,
// Protein, Carbs, Fat set), or QuantityGrams scaling a reference food's
// per-100g values. Explicit totals win when both are supplied.
type LogIntakeRequest struct {
	Date               string
	FoodName           string
	PortionDescription string
	MealType           string
	QuantityGrams      *float64
	Calories           *float64
	Protein            *float64
	Carbs              *float64
	Fat                *float64
}

func (r *LogIntakeRequest) explicitCount() int {
	n := 0
	for _, v := range []*float64{r.Calories, r.Protein, r.Carbs, r.Fat} {
		if v != nil {
			n++
		}
	}
	return n
}

// LogIntake appends one intake entry. Entries are never updated or deleted.
func (s *SQLiteStore) LogIntake(ctx context.Context, req *LogIntakeRequest) (*models.IntakeEntry, error) {
	if err := validDate(req.Date); err != nil {
		return nil, err
	}
	req.FoodName = strings.TrimSpace(req.FoodName)
	if req.FoodName == "" {
		return nil, validationErrorf("food_name", "must not be empty")
	}
	mealType, ok := models.ParseMealType(req.MealType)
	if !ok {
		return nil, validationErrorf("meal_type",
			"%q is not one of breakfast, lunch, dinner, snack, other", req.MealType)
	}

	totals, portion, err := s.resolveTotals(ctx, req)
	if err != nil {
		return nil, err
	}

	entry := &models.IntakeEntry{
		ID:                 uuid.NewString(),
		Date:               req.Date,
		FoodName:           req.FoodName,
		PortionDescription: portion,
		Calories:           totals.Calories,
		Protein:            totals.Protein,
		Carbs:              totals.Carbs,
		Fat:                totals.Fat,
		MealType:           mealType,
		CreatedAt:          time.Now(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO daily_intake (id, date, food_name, portion_description, calories, protein, carbs, fat, meal_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Date, entry.FoodName, entry.PortionDescription,
		entry.Calories, entry.Protein, entry.Carbs, entry.Fat,
		string(entry.MealType), entry.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to insert intake entry: %w", err)
	}
	return entry, nil
}

func (s *SQLiteStore) resolveTotals(ctx context.Context, req *LogIntakeRequest) (models.NutrientTotals, string, error) {
	portion := strings.TrimSpace(req.PortionDescription)

	switch n := req.explicitCount(); {
	case n == 4:
		totals := models.NutrientTotals{
			Calories: *req.Calories,
			Protein:  *req.Protein,
			Carbs:    *req.Carbs,
			Fat:      *req.Fat,
		}
		for _, c := range []struct {
			field string
			value float64
		}{
			{"calories", totals.Calories},
			{"protein", totals.Protein},
			{"carbs", totals.Carbs},
			{"fat", totals.Fat},
		} {
			if err := validNonNegative(c.field, c.value); err != nil {
				return models.NutrientTotals{}, "", err
			}
		}
		if portion == "" {
			return models.NutrientTotals{}, "", validationErrorf("portion_description", "must not be empty")
		}
		return totals, portion, nil

	case n > 0:
		return models.NutrientTotals{}, "", validationErrorf("nutrients",
			"explicit totals require all of calories, protein, carbs and fat")
	}

	if req.QuantityGrams == nil {
		return models.NutrientTotals{}, "", validationErrorf("quantity_grams",
			"either quantity_grams or explicit nutrient totals are required")
	}
	grams := *req.QuantityGrams
	if grams <= 0 {
		return models.NutrientTotals{}, "", validationErrorf("quantity_grams",
			"must be positive, got %v", grams)
	}

	food, err := s.GetFoodByName(ctx, req.FoodName)
	if err != nil {
		return models.NutrientTotals{}, "", err
	}
	if food == nil {
		return models.NutrientTotals{}, "", validationErrorf("food_name",
			"%q is not in the food database; supply explicit nutrient totals", req.FoodName)
	}

	scale := grams / 100
	if portion == "" {
		portion = fmt.Sprintf("%gg", grams)
	}
	return models.NutrientTotals{
		Calories: food.Calories * scale,
		Protein:  food.Protein * scale,
		Carbs:    food.Carbs * scale,
		Fat:      food.Fat * scale,
	}, portion, nil
}

// ReviewMeals returns everything logged for a date in meal order, the date's
// goal when one is set, and running totals. A date with nothing logged is an
// explicit empty review, not an error, and carries no totals.
func (s *SQLiteStore) ReviewMeals(ctx context.Context, date string) (*models.DayReview, error) {
	if err := validDate(date); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, food_name, portion_description, calories, protein, carbs, fat, meal_type, created_at
		 FROM daily_intake
		 WHERE date = ?
		 ORDER BY CASE meal_type
		     WHEN 'breakfast' THEN 0
		     WHEN 'lunch' THEN 1
		     WHEN 'dinner' THEN 2
		     WHEN 'snack' THEN 3
		     ELSE 4 END, created_at`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query intake entries: %w", err)
	}
	defer rows.Close()

	review := &models.DayReview{Date: date, Entries: []models.IntakeEntry{}}
	totals := models.NutrientTotals{}
	for rows.Next() {
		entry := models.IntakeEntry{Date: date}
		var mealType, createdAt string
		if err := rows.Scan(&entry.ID, &entry.FoodName, &entry.PortionDescription,
			&entry.Calories, &entry.Protein, &entry.Carbs, &entry.Fat,
			&mealType, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan intake entry: %w", err)
		}
		entry.MealType = models.MealType(mealType)
		if entry.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		totals.Add(&entry)
		review.Entries = append(review.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	goal, err := s.getDailyGoal(ctx, date)
	if err != nil {
		return nil, err
	}
	review.Goal = goal

	if len(review.Entries) == 0 {
		review.NoEntries = true
		return review, nil
	}

	review.Totals = &totals
	if goal != nil {
		review.Remaining = &models.NutrientTotals{
			Calories: goal.TargetCalories - totals.Calories,
			Protein:  goal.TargetProtein - totals.Protein,
			Carbs:    goal.TargetCarbs - totals.Carbs,
			Fat:      goal.TargetFat - totals.Fat,
		}
	}
	return review, nil
}

func (s *SQLiteStore) getDailyGoal(ctx context.Context, date string) (*models.DailyGoal, error) {
	goal := &models.DailyGoal{}
	err := s.db.QueryRowContext(ctx,
		`SELECT date, target_calories, target_protein, target_carbs, target_fat
		 FROM daily_goals WHERE date = ?`, date).
		Scan(&goal.Date, &goal.TargetCalories, &goal.TargetProtein,
			&goal.TargetCarbs, &goal.TargetFat)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query daily goal: %w", err)
	}
	return goal, nil
}

// Info reports the database file location, size and per-table row counts.
// Read-only.
func (s *SQLiteStore) Info(ctx context.Context) (*models.DatabaseInfo, error) {
	info := &models.DatabaseInfo{Path: s.path}

	if stat, err := os.Stat(s.path); err == nil {
		info.Exists = true
		info.SizeBytes = stat.Size()
		info.Size = humanize.Bytes(uint64(stat.Size()))
	}

	for _, c := range []struct {
		query string
		dest  *int64
	}{
		{`SELECT COUNT(*) FROM foods`, &info.FoodCount},
		{`SELECT COUNT(*) FROM daily_intake`, &info.IntakeCount},
		{`SELECT COUNT(DISTINCT date) FROM daily_goals`, &info.GoalDays},
	} {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count rows: %w", err)
		}
	}
	return info, nil
}

// parseTimestamp accepts RFC3339 plus the bare format SQLite's
// CURRENT_TIMESTAMP default wrote in pre-migration databases.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}
