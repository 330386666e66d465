// Package tracker composes the estimation engine, weather oracle, norms,
// and repositories into the use cases the transport layer exposes.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hydropulse/internal/domain"
	"hydropulse/internal/weather"
)

// ErrProfileNotFound is returned when an operation requires a profile the
// user has not set up yet.
var ErrProfileNotFound = errors.New("profile not found")

// Estimator is the slice of the estimation engine the tracker consumes.
type Estimator interface {
	ParseWorkout(ctx context.Context, description string) (workoutType string, minutes float64, explanation string)
	EstimateFoodCalories(ctx context.Context, food string) (calories float64, explanation string)
	EstimateWorkoutCalories(ctx context.Context, workoutType string, minutes, weightKG float64) (calories float64, explanation string)
}

// WeatherOracle is the slice of the weather service the tracker consumes.
type WeatherOracle interface {
	Current(ctx context.Context, city string) (weather.Info, error)
}

// Service implements the tracking use cases.
type Service struct {
	profiles domain.ProfileRepository
	logs     domain.LogRepository
	weather  WeatherOracle
	engine   Estimator
	log      zerolog.Logger

	now   func() time.Time
	newID func() string
}

// New wires a Service.
func New(profiles domain.ProfileRepository, logs domain.LogRepository, oracle WeatherOracle, engine Estimator, logger zerolog.Logger) *Service {
	return &Service{
		profiles: profiles,
		logs:     logs,
		weather:  oracle,
		engine:   engine,
		log:      logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// SetProfile validates and stores a profile. The city must resolve against
// the weather oracle; an unresolvable city propagates as ErrUnavailable so
// the user can correct it.
func (s *Service) SetProfile(ctx context.Context, profile *domain.UserProfile) (weather.Info, error) {
	if err := profile.Validate(); err != nil {
		return weather.Info{}, err
	}
	info, err := s.weather.Current(ctx, profile.City)
	if err != nil {
		return weather.Info{}, fmt.Errorf("verify city %q: %w", profile.City, err)
	}

	profile.UpdatedAt = s.now()
	if err := s.profiles.PutProfile(ctx, profile); err != nil {
		return weather.Info{}, fmt.Errorf("store profile: %w", err)
	}
	s.log.Info().Str("user_id", profile.UserID).Str("city", profile.City).Msg("profile stored")
	return info, nil
}

// Profile returns the user's profile or ErrProfileNotFound.
func (s *Service) Profile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// WaterSummary reports a water logging result. NormML is zero and
// WeatherOK false when the norm could not be computed because the weather
// fetch failed; the intake is recorded regardless.
type WaterSummary struct {
	AmountML   float64 `json:"amount_ml"`
	TotalML    float64 `json:"total_ml"`
	NormML     float64 `json:"norm_ml,omitempty"`
	HotWeather bool    `json:"hot_weather"`
	WeatherOK  bool    `json:"weather_ok"`
}

// LogWater records a drink and reports progress against the water norm.
func (s *Service) LogWater(ctx context.Context, userID string, amountML float64) (WaterSummary, error) {
	if amountML <= 0 || amountML > domain.MaxWaterML {
		return WaterSummary{}, &domain.ValidationError{
			Field:   "amount_ml",
			Message: fmt.Sprintf("must be in (0, %d]", domain.MaxWaterML),
		}
	}
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return WaterSummary{}, err
	}

	updated, err := s.logs.UpdateLog(ctx, userID, func(l *domain.DailyLog) error {
		l.WaterIntakeML += amountML
		return nil
	})
	if err != nil {
		return WaterSummary{}, fmt.Errorf("update log: %w", err)
	}

	summary := WaterSummary{AmountML: amountML, TotalML: updated.WaterIntakeML}
	info, err := s.weather.Current(ctx, profile.City)
	if err != nil {
		// the intake is already recorded; only the norm is missing
		s.log.Warn().Err(err).Str("user_id", userID).Msg("water norm unavailable without weather")
		return summary, nil
	}
	summary.WeatherOK = true
	summary.NormML = domain.WaterNorm(profile, info.TemperatureC)
	summary.HotWeather = info.TemperatureC > 25
	return summary, nil
}

// FoodSummary reports a food logging result.
type FoodSummary struct {
	Entry       domain.FoodEntry `json:"entry"`
	TotalIntake float64          `json:"total_intake"`
	CalorieNorm float64          `json:"calorie_norm"`
	Balance     float64          `json:"balance"`
}

// LogFood estimates calories for the description and appends a food entry.
// Estimation never fails; the entry's explanation says how the number was
// produced.
func (s *Service) LogFood(ctx context.Context, userID, description string) (FoodSummary, error) {
	if description == "" {
		return FoodSummary{}, &domain.ValidationError{Field: "description", Message: "must not be empty"}
	}
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return FoodSummary{}, err
	}

	calories, explanation := s.engine.EstimateFoodCalories(ctx, description)
	entry := domain.FoodEntry{
		ID:          s.newID(),
		Description: description,
		Calories:    calories,
		Explanation: explanation,
		Timestamp:   s.now(),
	}

	updated, err := s.logs.UpdateLog(ctx, userID, func(l *domain.DailyLog) error {
		l.CalorieIntake += entry.Calories
		l.FoodLog = append(l.FoodLog, entry)
		l.AccrueBMR(profile, s.now())
		return nil
	})
	if err != nil {
		return FoodSummary{}, fmt.Errorf("update log: %w", err)
	}

	s.log.Info().Str("user_id", userID).Str("food", description).Float64("calories", calories).Msg("food logged")
	return FoodSummary{
		Entry:       entry,
		TotalIntake: updated.CalorieIntake,
		CalorieNorm: domain.CalorieNorm(profile),
		Balance:     updated.CalorieBalance(),
	}, nil
}

// WorkoutSummary reports a workout logging result.
type WorkoutSummary struct {
	Entry           domain.WorkoutEntry `json:"entry"`
	Adjustment      string              `json:"adjustment"`
	OutdoorFriendly bool                `json:"outdoor_friendly"`
	BurnedExercise  float64             `json:"burned_exercise"`
	BurnedBMR       float64             `json:"burned_bmr"`
	BurnedTotal     float64             `json:"burned_total"`
}

// LogWorkout parses the description, estimates the burn, applies the
// weather adjustment, and appends a workout entry. Weather failure
// propagates: without conditions there is no adjustment to apply and
// nothing is recorded.
func (s *Service) LogWorkout(ctx context.Context, userID, description string) (WorkoutSummary, error) {
	if description == "" {
		return WorkoutSummary{}, &domain.ValidationError{Field: "description", Message: "must not be empty"}
	}
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return WorkoutSummary{}, err
	}

	workoutType, minutes, parseExplanation := s.engine.ParseWorkout(ctx, description)
	if minutes <= 0 || minutes > domain.MaxWorkoutMinutes {
		return WorkoutSummary{}, &domain.ValidationError{
			Field:   "minutes",
			Message: fmt.Sprintf("must be in (0, %d]", domain.MaxWorkoutMinutes),
		}
	}

	info, err := s.weather.Current(ctx, profile.City)
	if err != nil {
		return WorkoutSummary{}, fmt.Errorf("weather for adjustment: %w", err)
	}
	multiplier, adjustment := weather.WorkoutAdjustment(info)

	calories, explanation := s.engine.EstimateWorkoutCalories(ctx, workoutType, minutes, profile.WeightKG)
	adjusted := calories * multiplier

	entry := domain.WorkoutEntry{
		ID:          s.newID(),
		WorkoutType: workoutType,
		Minutes:     minutes,
		Calories:    adjusted,
		Explanation: fmt.Sprintf("%s (%s)", explanation, adjustment),
		Timestamp:   s.now(),
	}

	updated, err := s.logs.UpdateLog(ctx, userID, func(l *domain.DailyLog) error {
		l.CalorieBurnedExercise += entry.Calories
		l.WorkoutLog = append(l.WorkoutLog, entry)
		l.AccrueBMR(profile, s.now())
		return nil
	})
	if err != nil {
		return WorkoutSummary{}, fmt.Errorf("update log: %w", err)
	}

	s.log.Info().
		Str("user_id", userID).
		Str("workout_type", workoutType).
		Float64("minutes", minutes).
		Float64("calories", adjusted).
		Str("duration_source", parseExplanation).
		Msg("workout logged")

	return WorkoutSummary{
		Entry:           entry,
		Adjustment:      adjustment,
		OutdoorFriendly: info.OutdoorFriendly,
		BurnedExercise:  updated.CalorieBurnedExercise,
		BurnedBMR:       updated.CalorieBurnedBMR,
		BurnedTotal:     updated.CalorieBurned(),
	}, nil
}

// StatusSummary is the day's progress snapshot.
type StatusSummary struct {
	Log         domain.DailyLog `json:"log"`
	WaterNormML float64         `json:"water_norm_ml,omitempty"`
	CalorieNorm float64         `json:"calorie_norm"`
	Balance     float64         `json:"balance"`
	Weather     *weather.Info   `json:"weather,omitempty"`
	Advice      string          `json:"advice,omitempty"`
}

// Status accrues BMR and reports totals, norms, and weather advice. A
// weather failure degrades the snapshot (no water norm, no advice) rather
// than failing it.
func (s *Service) Status(ctx context.Context, userID string) (StatusSummary, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return StatusSummary{}, err
	}

	updated, err := s.logs.UpdateLog(ctx, userID, func(l *domain.DailyLog) error {
		l.AccrueBMR(profile, s.now())
		return nil
	})
	if err != nil {
		return StatusSummary{}, fmt.Errorf("update log: %w", err)
	}

	summary := StatusSummary{
		Log:         *updated,
		CalorieNorm: domain.CalorieNorm(profile),
		Balance:     updated.CalorieBalance(),
	}

	info, err := s.weather.Current(ctx, profile.City)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("status without weather")
		return summary, nil
	}
	summary.Weather = &info
	summary.WaterNormML = domain.WaterNorm(profile, info.TemperatureC)
	switch {
	case info.TemperatureC > 25:
		summary.Advice = "Hot weather: drink more water"
	case !info.OutdoorFriendly:
		summary.Advice = "Weather is not suitable for outdoor workouts"
	}
	return summary, nil
}

// WeatherReport pairs current conditions with the workout adjustment.
type WeatherReport struct {
	Info       weather.Info `json:"info"`
	Multiplier float64      `json:"multiplier"`
	Adjustment string       `json:"adjustment"`
}

// Weather returns conditions for the user's city plus the intensity
// adjustment.
func (s *Service) Weather(ctx context.Context, userID string) (WeatherReport, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return WeatherReport{}, err
	}
	info, err := s.weather.Current(ctx, profile.City)
	if err != nil {
		return WeatherReport{}, err
	}
	multiplier, adjustment := weather.WorkoutAdjustment(info)
	return WeatherReport{Info: info, Multiplier: multiplier, Adjustment: adjustment}, nil
}
