// Package domain holds the tracker's data model: user profiles, the daily
// log and its entries, validation, and the norm calculators consumed by both
// the profile and log contexts.
package domain

import (
	"context"
	"fmt"
	"time"
)

// Validation ranges, matching the profile-setup and logging flows.
const (
	MaxWeightKG        = 300
	MaxHeightCM        = 250
	MaxAgeYears        = 120
	MaxActivityMinutes = 1440
	MaxWaterML         = 5000
	MaxWorkoutMinutes  = 480
)

// ValidationError reports a caller-supplied value outside its accepted range.
// It propagates to the transport layer so the user can correct the input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// UserProfile describes one user. A zero CustomCalorieGoal means "not set";
// the computed norm applies.
type UserProfile struct {
	UserID            string    `json:"user_id"`
	WeightKG          float64   `json:"weight_kg"`
	HeightCM          float64   `json:"height_cm"`
	AgeYears          int       `json:"age_years"`
	ActivityMinutes   int       `json:"activity_minutes"`
	City              string    `json:"city"`
	CustomCalorieGoal float64   `json:"custom_calorie_goal,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Validate checks every profile attribute against its accepted range.
func (p *UserProfile) Validate() error {
	switch {
	case p.UserID == "":
		return &ValidationError{Field: "user_id", Message: "must not be empty"}
	case p.WeightKG <= 0 || p.WeightKG > MaxWeightKG:
		return &ValidationError{Field: "weight_kg", Message: fmt.Sprintf("must be in (0, %d]", MaxWeightKG)}
	case p.HeightCM <= 0 || p.HeightCM > MaxHeightCM:
		return &ValidationError{Field: "height_cm", Message: fmt.Sprintf("must be in (0, %d]", MaxHeightCM)}
	case p.AgeYears <= 0 || p.AgeYears > MaxAgeYears:
		return &ValidationError{Field: "age_years", Message: fmt.Sprintf("must be in (0, %d]", MaxAgeYears)}
	case p.ActivityMinutes < 0 || p.ActivityMinutes > MaxActivityMinutes:
		return &ValidationError{Field: "activity_minutes", Message: fmt.Sprintf("must be in [0, %d]", MaxActivityMinutes)}
	case p.City == "":
		return &ValidationError{Field: "city", Message: "must not be empty"}
	case p.CustomCalorieGoal < 0:
		return &ValidationError{Field: "custom_calorie_goal", Message: "must not be negative"}
	}
	return nil
}

// FoodEntry is one logged meal. Entries are append-only and never edited.
type FoodEntry struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Calories    float64   `json:"calories"`
	Explanation string    `json:"explanation"`
	Timestamp   time.Time `json:"timestamp"`
}

// WorkoutEntry is one logged workout. Calories are already weather-adjusted.
type WorkoutEntry struct {
	ID          string    `json:"id"`
	WorkoutType string    `json:"workout_type"`
	Minutes     float64   `json:"minutes"`
	Calories    float64   `json:"calories"`
	Explanation string    `json:"explanation"`
	Timestamp   time.Time `json:"timestamp"`
}

// DailyLog accumulates one user's intake and burn. There is no automatic day
// rollover; Date records when the log was opened and resetting is the
// caller's decision.
type DailyLog struct {
	UserID                string         `json:"user_id"`
	Date                  time.Time      `json:"date"`
	WaterIntakeML         float64        `json:"water_intake_ml"`
	CalorieIntake         float64        `json:"calorie_intake"`
	CalorieBurnedExercise float64        `json:"calorie_burned_exercise"`
	CalorieBurnedBMR      float64        `json:"calorie_burned_bmr"`
	FoodLog               []FoodEntry    `json:"food_log"`
	WorkoutLog            []WorkoutEntry `json:"workout_log"`
	LastBMRUpdate         time.Time      `json:"last_bmr_update"`
}

// NewDailyLog opens a log for the user at the given instant.
func NewDailyLog(userID string, now time.Time) *DailyLog {
	return &DailyLog{
		UserID:        userID,
		Date:          now,
		LastBMRUpdate: now,
	}
}

// CalorieBurned is the day's total burn, exercise plus basal metabolism.
func (l *DailyLog) CalorieBurned() float64 {
	return l.CalorieBurnedExercise + l.CalorieBurnedBMR
}

// CalorieBalance is intake minus total burn.
func (l *DailyLog) CalorieBalance() float64 {
	return l.CalorieIntake - l.CalorieBurned()
}

// ProfileRepository stores user profiles keyed by the opaque user key.
// Get returns (nil, nil) when the user has no profile.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)
	PutProfile(ctx context.Context, profile *UserProfile) error
}

// LogRepository stores daily logs. Update loads (or opens) the user's log,
// runs fn on it, and persists the result; implementations serialize Update
// calls for the same user key so concurrent commands cannot lose writes.
type LogRepository interface {
	GetLog(ctx context.Context, userID string) (*DailyLog, error)
	UpdateLog(ctx context.Context, userID string, fn func(*DailyLog) error) (*DailyLog, error)
}
