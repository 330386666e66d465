package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydropulse/internal/server"
	"hydropulse/internal/storage/memory"
	"hydropulse/internal/tracker"
	"hydropulse/internal/weather"
)

type fakeOracle struct {
	current func(ctx context.Context, city string) (weather.Info, error)
}

func (f *fakeOracle) Current(ctx context.Context, city string) (weather.Info, error) {
	return f.current(ctx, city)
}

type fakeEngine struct{}

func (fakeEngine) ParseWorkout(context.Context, string) (string, float64, string) {
	return "running", 30, "model"
}

func (fakeEngine) EstimateFoodCalories(context.Context, string) (float64, string) {
	return 400, "model estimate"
}

func (fakeEngine) EstimateWorkoutCalories(context.Context, string, float64, float64) (float64, string) {
	return 300, "model estimate"
}

func newTestHandler(oracle tracker.WeatherOracle) http.Handler {
	if oracle == nil {
		oracle = &fakeOracle{current: func(_ context.Context, city string) (weather.Info, error) {
			return weather.Info{City: city, TemperatureC: 20, HumidityPct: 50, Description: "clear sky", OutdoorFriendly: true}, nil
		}}
	}
	store := memory.New()
	svc := tracker.New(store, store, oracle, fakeEngine{}, zerolog.Nop())
	app := server.NewServer(server.Config{Port: 0, Tracker: svc, Logger: zerolog.Nop()})
	return app.Handler
}

func doJSON(t *testing.T, h http.Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func putProfile(t *testing.T, h http.Handler, userID string) {
	t.Helper()
	rec := doJSON(t, h, http.MethodPut, "/profile", userID, map[string]any{
		"weight_kg": 70, "height_cm": 175, "age_years": 30,
		"activity_minutes": 60, "city": "Berlin",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHealth(t *testing.T) {
	h := newTestHandler(nil)
	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "up", body["status"])
}

func TestMissingUserID(t *testing.T) {
	h := newTestHandler(nil)
	rec := doJSON(t, h, http.MethodGet, "/status", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPutProfile_ReturnsNorms(t *testing.T) {
	h := newTestHandler(nil)
	rec := doJSON(t, h, http.MethodPut, "/profile", "u1", map[string]any{
		"weight_kg": 70, "height_cm": 175, "age_years": 30,
		"activity_minutes": 60, "city": "Berlin",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(3100), body["water_norm"])
	assert.Equal(t, 2063.75, body["calorie_norm"])
}

func TestPutProfile_InvalidField(t *testing.T) {
	h := newTestHandler(nil)
	rec := doJSON(t, h, http.MethodPut, "/profile", "u1", map[string]any{
		"weight_kg": -1, "height_cm": 175, "age_years": 30, "city": "Berlin",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "weight_kg")
}

func TestGetProfile_NotFound(t *testing.T) {
	h := newTestHandler(nil)
	rec := doJSON(t, h, http.MethodGet, "/profile", "stranger", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogWater(t *testing.T) {
	h := newTestHandler(nil)
	putProfile(t, h, "u1")

	rec := doJSON(t, h, http.MethodPost, "/log/water", "u1", map[string]any{"amount_ml": 250})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary tracker.WaterSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, float64(250), summary.TotalML)
	assert.Equal(t, float64(3100), summary.NormML)
}

func TestLogWater_OutOfRange(t *testing.T) {
	h := newTestHandler(nil)
	putProfile(t, h, "u1")

	rec := doJSON(t, h, http.MethodPost, "/log/water", "u1", map[string]any{"amount_ml": 9000})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogFoodAndStatus(t *testing.T) {
	h := newTestHandler(nil)
	putProfile(t, h, "u1")

	rec := doJSON(t, h, http.MethodPost, "/log/food", "u1", map[string]any{"description": "pizza"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/status", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status tracker.StatusSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, float64(400), status.Log.CalorieIntake)
	require.NotNil(t, status.Weather)
}

func TestLogWorkout_WeatherDown(t *testing.T) {
	calls := 0
	oracle := &fakeOracle{current: func(_ context.Context, city string) (weather.Info, error) {
		calls++
		if calls == 1 { // let profile setup resolve the city
			return weather.Info{City: city, TemperatureC: 20, OutdoorFriendly: true}, nil
		}
		return weather.Info{}, weather.ErrUnavailable
	}}
	h := newTestHandler(oracle)
	putProfile(t, h, "u1")

	rec := doJSON(t, h, http.MethodPost, "/log/workout", "u1", map[string]any{"description": "ran 30 minutes"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestLogWorkout_AdjustedCalories(t *testing.T) {
	oracle := &fakeOracle{current: func(_ context.Context, city string) (weather.Info, error) {
		return weather.Info{City: city, TemperatureC: 32, HumidityPct: 40, Description: "sunny", OutdoorFriendly: false}, nil
	}}
	h := newTestHandler(oracle)
	putProfile(t, h, "u1")

	rec := doJSON(t, h, http.MethodPost, "/log/workout", "u1", map[string]any{"description": "ran 30 minutes"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary tracker.WorkoutSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	// 300 * 0.8 at 32C
	assert.InDelta(t, 240, summary.Entry.Calories, 1e-9)
	assert.False(t, summary.OutdoorFriendly)
}

func TestWeatherEndpoint(t *testing.T) {
	h := newTestHandler(nil)
	putProfile(t, h, "u1")

	rec := doJSON(t, h, http.MethodGet, "/weather", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report tracker.WeatherReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1.0, report.Multiplier)
	assert.Equal(t, "Berlin", report.Info.City)
}

func TestRequestIDPropagated(t *testing.T) {
	h := newTestHandler(nil)
	putProfile(t, h, "u1")

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("X-User-ID", "u1")
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}
