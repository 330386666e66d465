// Package estimator turns free-text food and workout descriptions into
// numbers. It orchestrates the inference client, the text heuristics, and
// deterministic formulas; every failure path resolves to a usable estimate
// with an explanation of its provenance, never an error.
package estimator

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"hydropulse/internal/inference"
	"hydropulse/internal/textparse"
)

const (
	defaultWorkoutMinutes = 30
	fallbackFoodCalories  = 250
	fallbackBurnPerMinute = 7
)

// InferenceAPI is the slice of the inference client the engine consumes.
type InferenceAPI interface {
	ParseWorkout(ctx context.Context, description string) (inference.Payload, error)
	EstimateFoodCalories(ctx context.Context, food string) (inference.Payload, error)
	EstimateWorkoutRate(ctx context.Context, workoutType string, weightKG float64) (inference.Payload, error)
}

// Engine is the estimation engine.
type Engine struct {
	ai  InferenceAPI
	log zerolog.Logger
}

// New builds an Engine on top of the given inference client.
func New(ai InferenceAPI, logger zerolog.Logger) *Engine {
	return &Engine{ai: ai, log: logger}
}

// ParseWorkout extracts workout type and duration from a description. When
// inference fails or returns an unusable reply, the description itself
// becomes the type and the duration comes from the text heuristics, or the
// conservative default.
func (e *Engine) ParseWorkout(ctx context.Context, description string) (workoutType string, minutes float64, explanation string) {
	result, err := e.ai.ParseWorkout(ctx, description)
	if err != nil || result.WorkoutType == nil {
		e.log.Warn().Err(err).Str("description", description).Msg("workout parse fell back to heuristics")
		return description, durationOrDefault(description), "Approximate duration estimate"
	}

	minutes = durationOrDefault(description)
	if result.Minutes != nil {
		minutes = *result.Minutes
	}
	explanation = result.Explanation
	if explanation == "" {
		explanation = "Estimated from the description"
	}
	return *result.WorkoutType, minutes, explanation
}

func durationOrDefault(description string) float64 {
	if m, ok := textparse.DurationMinutes(description); ok {
		return m
	}
	return defaultWorkoutMinutes
}

// EstimateFoodCalories estimates calories for a food description. The
// inference client already retries once with a stricter prompt; when that
// still fails, or the service is down, a fixed fallback applies. The
// explanation names the food and which failure happened.
func (e *Engine) EstimateFoodCalories(ctx context.Context, food string) (calories float64, explanation string) {
	result, err := e.ai.EstimateFoodCalories(ctx, food)
	switch {
	case err == nil && result.Calories != nil:
		return *result.Calories, result.Explanation
	case errors.Is(err, inference.ErrUnavailable):
		e.log.Error().Err(err).Str("food", food).Msg("food estimate fell back: service unavailable")
		return fallbackFoodCalories, fmt.Sprintf("Rough estimate for %q (service unavailable)", food)
	default:
		e.log.Error().Err(err).Str("food", food).Msg("food estimate fell back: unusable reply")
		return fallbackFoodCalories, fmt.Sprintf("Rough estimate for %q (unusable model reply)", food)
	}
}

// EstimateWorkoutCalories estimates total calories burned for a workout.
// An unusable model reply falls back to the MET table with fuzzy activity
// matching; total service unavailability falls back further to a flat
// per-minute rate.
func (e *Engine) EstimateWorkoutCalories(ctx context.Context, workoutType string, minutes, weightKG float64) (calories float64, explanation string) {
	result, err := e.ai.EstimateWorkoutRate(ctx, workoutType, weightKG)
	switch {
	case err == nil && result.CaloriesPerMinute != nil:
		return *result.CaloriesPerMinute * minutes, result.Explanation
	case errors.Is(err, inference.ErrUnavailable):
		e.log.Error().Err(err).Str("workout_type", workoutType).Msg("workout estimate fell back: service unavailable")
		return minutes * fallbackBurnPerMinute, "Standard calorie burn estimate (service unavailable)"
	default:
		e.log.Warn().Err(err).Str("workout_type", workoutType).Msg("workout estimate fell back to MET table")
		return e.metEstimate(workoutType, minutes, weightKG)
	}
}

func (e *Engine) metEstimate(workoutType string, minutes, weightKG float64) (float64, string) {
	met := defaultMET
	label := "average activity"
	if match, ok := closestActivity(workoutType); ok {
		met = metValues[match]
		label = match
	}
	calories := metCaloriesPerMinute(met, weightKG) * minutes
	return calories, fmt.Sprintf("MET (metabolic equivalent of task) estimate for %q", label)
}
