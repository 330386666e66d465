package estimator_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydropulse/internal/estimator"
	"hydropulse/internal/inference"
)

type fakeInference struct {
	parseWorkoutFn func(ctx context.Context, description string) (inference.Payload, error)
	foodFn         func(ctx context.Context, food string) (inference.Payload, error)
	rateFn         func(ctx context.Context, workoutType string, weightKG float64) (inference.Payload, error)
}

func (f *fakeInference) ParseWorkout(ctx context.Context, description string) (inference.Payload, error) {
	return f.parseWorkoutFn(ctx, description)
}

func (f *fakeInference) EstimateFoodCalories(ctx context.Context, food string) (inference.Payload, error) {
	return f.foodFn(ctx, food)
}

func (f *fakeInference) EstimateWorkoutRate(ctx context.Context, workoutType string, weightKG float64) (inference.Payload, error) {
	return f.rateFn(ctx, workoutType, weightKG)
}

func ptr[T any](v T) *T { return &v }

func newEngine(ai estimator.InferenceAPI) *estimator.Engine {
	return estimator.New(ai, zerolog.Nop())
}

func TestParseWorkout_Success(t *testing.T) {
	e := newEngine(&fakeInference{
		parseWorkoutFn: func(_ context.Context, _ string) (inference.Payload, error) {
			return inference.Payload{
				WorkoutType: ptr("бег"),
				Minutes:     ptr(25.0),
				Explanation: "from description",
			}, nil
		},
	})

	typ, minutes, explanation := e.ParseWorkout(context.Background(), "бегал в парке 25 минут")
	assert.Equal(t, "бег", typ)
	assert.Equal(t, 25.0, minutes)
	assert.Equal(t, "from description", explanation)
}

func TestParseWorkout_MissingMinutesUsesTextExtractor(t *testing.T) {
	e := newEngine(&fakeInference{
		parseWorkoutFn: func(_ context.Context, _ string) (inference.Payload, error) {
			return inference.Payload{WorkoutType: ptr("бег")}, nil
		},
	})

	_, minutes, _ := e.ParseWorkout(context.Background(), "бегал 10 минут и 1 час")
	assert.Equal(t, 70.0, minutes)
}

func TestParseWorkout_MissingMinutesDefaultsTo30(t *testing.T) {
	e := newEngine(&fakeInference{
		parseWorkoutFn: func(_ context.Context, _ string) (inference.Payload, error) {
			return inference.Payload{WorkoutType: ptr("плавание")}, nil
		},
	})

	_, minutes, _ := e.ParseWorkout(context.Background(), "поплавал")
	assert.Equal(t, 30.0, minutes)
}

func TestParseWorkout_FallbackOnFailure(t *testing.T) {
	for _, err := range []error{inference.ErrUnavailable, inference.ErrMalformed} {
		t.Run(err.Error(), func(t *testing.T) {
			e := newEngine(&fakeInference{
				parseWorkoutFn: func(_ context.Context, _ string) (inference.Payload, error) {
					return inference.Payload{}, fmt.Errorf("wrapped: %w", err)
				},
			})

			typ, minutes, explanation := e.ParseWorkout(context.Background(), "побегал 10 минут")
			assert.Equal(t, "побегал 10 минут", typ)
			assert.Equal(t, 10.0, minutes)
			assert.Equal(t, "Approximate duration estimate", explanation)
		})
	}
}

func TestEstimateFoodCalories_Success(t *testing.T) {
	e := newEngine(&fakeInference{
		foodFn: func(_ context.Context, _ string) (inference.Payload, error) {
			return inference.Payload{Calories: ptr(105.0), Explanation: "one banana"}, nil
		},
	})

	calories, explanation := e.EstimateFoodCalories(context.Background(), "банан")
	assert.Equal(t, 105.0, calories)
	assert.Equal(t, "one banana", explanation)
}

func TestEstimateFoodCalories_FallbackNamesFoodAndFailureMode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"service failure", inference.ErrUnavailable, "service unavailable"},
		{"parse failure", inference.ErrMalformed, "unusable model reply"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newEngine(&fakeInference{
				foodFn: func(_ context.Context, _ string) (inference.Payload, error) {
					return inference.Payload{}, fmt.Errorf("wrapped: %w", tc.err)
				},
			})

			calories, explanation := e.EstimateFoodCalories(context.Background(), "борщ")
			assert.Equal(t, 250.0, calories)
			assert.Contains(t, explanation, "борщ")
			assert.Contains(t, explanation, tc.want)
		})
	}
}

func TestEstimateWorkoutCalories_Success(t *testing.T) {
	e := newEngine(&fakeInference{
		rateFn: func(_ context.Context, _ string, _ float64) (inference.Payload, error) {
			return inference.Payload{CaloriesPerMinute: ptr(9.0), Explanation: "vigorous pace"}, nil
		},
	})

	calories, explanation := e.EstimateWorkoutCalories(context.Background(), "running", 30, 70)
	assert.Equal(t, 270.0, calories)
	assert.Equal(t, "vigorous pace", explanation)
}

func TestEstimateWorkoutCalories_METFallbackExactMatch(t *testing.T) {
	e := newEngine(&fakeInference{
		rateFn: func(_ context.Context, _ string, _ float64) (inference.Payload, error) {
			return inference.Payload{}, inference.ErrMalformed
		},
	})

	// MET 8.0 for running: 8.0*3.5*70/200*30 = 294
	calories, explanation := e.EstimateWorkoutCalories(context.Background(), "бег", 30, 70)
	assert.InDelta(t, 294.0, calories, 1e-9)
	assert.Contains(t, explanation, "MET")
	assert.Contains(t, explanation, "бег")
}

func TestEstimateWorkoutCalories_METFallbackFuzzyMatch(t *testing.T) {
	e := newEngine(&fakeInference{
		rateFn: func(_ context.Context, _ string, _ float64) (inference.Payload, error) {
			return inference.Payload{}, inference.ErrMalformed
		},
	})

	// misspelling resolves to a running-family token (MET 8.0)
	calories, _ := e.EstimateWorkoutCalories(context.Background(), "бегалл", 10, 70)
	assert.InDelta(t, 8.0*3.5*70/200*10, calories, 1e-9)
}

func TestEstimateWorkoutCalories_METFallbackDefault(t *testing.T) {
	e := newEngine(&fakeInference{
		rateFn: func(_ context.Context, _ string, _ float64) (inference.Payload, error) {
			return inference.Payload{}, inference.ErrMalformed
		},
	})

	// nothing close to any known token: default MET 4.0
	calories, explanation := e.EstimateWorkoutCalories(context.Background(), "жонглирование шарами у стены", 20, 80)
	assert.InDelta(t, 4.0*3.5*80/200*20, calories, 1e-9)
	assert.Contains(t, explanation, "average activity")
}

func TestEstimateWorkoutCalories_ServiceUnavailableFlatRate(t *testing.T) {
	e := newEngine(&fakeInference{
		rateFn: func(_ context.Context, _ string, _ float64) (inference.Payload, error) {
			return inference.Payload{}, inference.ErrUnavailable
		},
	})

	calories, explanation := e.EstimateWorkoutCalories(context.Background(), "бег", 30, 70)
	assert.Equal(t, 210.0, calories)
	assert.Contains(t, explanation, "service unavailable")
}

func TestParseWorkout_NilTypeFallsBackToHeuristics(t *testing.T) {
	e := newEngine(&fakeInference{
		parseWorkoutFn: func(_ context.Context, _ string) (inference.Payload, error) {
			return inference.Payload{Minutes: ptr(15.0)}, nil
		},
	})

	typ, minutes, explanation := e.ParseWorkout(context.Background(), "погулял 20 минут")
	assert.Equal(t, "погулял 20 минут", typ)
	assert.Equal(t, 20.0, minutes)
	assert.Equal(t, "Approximate duration estimate", explanation)
}

func TestEstimateFoodCalories_NilCaloriesFallsBack(t *testing.T) {
	e := newEngine(&fakeInference{
		foodFn: func(_ context.Context, _ string) (inference.Payload, error) {
			return inference.Payload{Explanation: "no number"}, nil
		},
	})

	calories, explanation := e.EstimateFoodCalories(context.Background(), "суп")
	assert.Equal(t, 250.0, calories)
	assert.Contains(t, explanation, "unusable model reply")
}

func TestEstimateWorkoutCalories_NilRateFallsBackToMET(t *testing.T) {
	e := newEngine(&fakeInference{
		rateFn: func(_ context.Context, _ string, _ float64) (inference.Payload, error) {
			return inference.Payload{Explanation: "no number"}, nil
		},
	})

	calories, explanation := e.EstimateWorkoutCalories(context.Background(), "бег", 30, 70)
	assert.InDelta(t, 8.0*3.5*70/200*30, calories, 1e-9)
	assert.Contains(t, explanation, "MET")
}

func TestEstimateWorkoutCalories_RequireCaloriesForSuccessPath(t *testing.T) {
	// guard against the fake returning a nil rate on the success path
	f := &fakeInference{
		rateFn: func(_ context.Context, _ string, _ float64) (inference.Payload, error) {
			return inference.Payload{CaloriesPerMinute: ptr(7.0)}, nil
		},
	}
	require.NotNil(t, f)
	e := newEngine(f)
	calories, _ := e.EstimateWorkoutCalories(context.Background(), "walk", 10, 50)
	assert.Equal(t, 70.0, calories)
}
