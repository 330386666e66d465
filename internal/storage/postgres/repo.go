package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"hydropulse/internal/domain"
)

var (
	_ domain.ProfileRepository = (*Store)(nil)
	_ domain.LogRepository     = (*Store)(nil)
)

// GetProfile returns the user's profile, or nil when absent.
func (s *Store) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var p domain.UserProfile
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, weight_kg, height_cm, age_years, activity_minutes, city, custom_calorie_goal, updated_at
		FROM profiles WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.WeightKG, &p.HeightCM, &p.AgeYears, &p.ActivityMinutes, &p.City, &p.CustomCalorieGoal, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select profile: %w", err)
	}
	return &p, nil
}

// PutProfile inserts or replaces the user's profile.
func (s *Store) PutProfile(ctx context.Context, p *domain.UserProfile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO profiles (user_id, weight_kg, height_cm, age_years, activity_minutes, city, custom_calorie_goal, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			weight_kg = EXCLUDED.weight_kg,
			height_cm = EXCLUDED.height_cm,
			age_years = EXCLUDED.age_years,
			activity_minutes = EXCLUDED.activity_minutes,
			city = EXCLUDED.city,
			custom_calorie_goal = EXCLUDED.custom_calorie_goal,
			updated_at = EXCLUDED.updated_at`,
		p.UserID, p.WeightKG, p.HeightCM, p.AgeYears, p.ActivityMinutes, p.City, p.CustomCalorieGoal, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// GetLog returns the user's daily log, opening one on first use.
func (s *Store) GetLog(ctx context.Context, userID string) (*domain.DailyLog, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	l, err := logForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return l, nil
}

// UpdateLog applies fn to the user's log inside a transaction. The row lock
// taken by SELECT ... FOR UPDATE serializes concurrent updates per user.
func (s *Store) UpdateLog(ctx context.Context, userID string, fn func(*domain.DailyLog) error) (*domain.DailyLog, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	l, err := logForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(l); err != nil {
		return nil, err
	}

	foodJSON, err := json.Marshal(l.FoodLog)
	if err != nil {
		return nil, fmt.Errorf("marshal food log: %w", err)
	}
	workoutJSON, err := json.Marshal(l.WorkoutLog)
	if err != nil {
		return nil, fmt.Errorf("marshal workout log: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE daily_logs SET
			water_intake_ml = $2,
			calorie_intake = $3,
			calorie_burned_exercise = $4,
			calorie_burned_bmr = $5,
			food_log = $6,
			workout_log = $7,
			last_bmr_update = $8
		WHERE user_id = $1`,
		l.UserID, l.WaterIntakeML, l.CalorieIntake, l.CalorieBurnedExercise, l.CalorieBurnedBMR,
		foodJSON, workoutJSON, l.LastBMRUpdate)
	if err != nil {
		return nil, fmt.Errorf("update log: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return l, nil
}

// logForUpdate loads the user's log row with a row lock, inserting an empty
// log first when the user has none.
func logForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.DailyLog, error) {
	now := time.Now()
	_, err := tx.Exec(ctx, `
		INSERT INTO daily_logs (user_id, log_date, last_bmr_update)
		VALUES ($1, $2, $2)
		ON CONFLICT (user_id) DO NOTHING`, userID, now)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	var (
		l           domain.DailyLog
		foodJSON    []byte
		workoutJSON []byte
	)
	err = tx.QueryRow(ctx, `
		SELECT user_id, log_date, water_intake_ml, calorie_intake, calorie_burned_exercise,
		       calorie_burned_bmr, food_log, workout_log, last_bmr_update
		FROM daily_logs WHERE user_id = $1 FOR UPDATE`, userID).
		Scan(&l.UserID, &l.Date, &l.WaterIntakeML, &l.CalorieIntake, &l.CalorieBurnedExercise,
			&l.CalorieBurnedBMR, &foodJSON, &workoutJSON, &l.LastBMRUpdate)
	if err != nil {
		return nil, fmt.Errorf("select log: %w", err)
	}

	if err := json.Unmarshal(foodJSON, &l.FoodLog); err != nil {
		return nil, fmt.Errorf("decode food log: %w", err)
	}
	if err := json.Unmarshal(workoutJSON, &l.WorkoutLog); err != nil {
		return nil, fmt.Errorf("decode workout log: %w", err)
	}
	return &l, nil
}
