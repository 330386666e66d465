package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"hydropulse/internal/domain"
	"hydropulse/internal/tracker"
	"hydropulse/internal/weather"
)

type profileRequest struct {
	WeightKG          float64 `json:"weight_kg"`
	HeightCM          float64 `json:"height_cm"`
	AgeYears          int     `json:"age_years"`
	ActivityMinutes   int     `json:"activity_minutes"`
	City              string  `json:"city"`
	CustomCalorieGoal float64 `json:"custom_calorie_goal"`
}

type waterRequest struct {
	AmountML float64 `json:"amount_ml"`
}

type descriptionRequest struct {
	Description string `json:"description"`
}

// translateErr maps domain errors onto HTTP responses. Validation problems
// and missing profiles are the caller's to fix; an unavailable weather
// provider is reported as a bad gateway so the chat adapter can tell the
// user to retry later.
func translateErr(err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr.Error())
	case errors.Is(err, tracker.ErrProfileNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "profile not found; set it up first")
	case errors.Is(err, weather.ErrUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, "weather service unavailable")
	default:
		return err
	}
}

func (s *Server) putProfileHandler(c echo.Context) error {
	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	profile := &domain.UserProfile{
		UserID:            userID(c),
		WeightKG:          req.WeightKG,
		HeightCM:          req.HeightCM,
		AgeYears:          req.AgeYears,
		ActivityMinutes:   req.ActivityMinutes,
		City:              req.City,
		CustomCalorieGoal: req.CustomCalorieGoal,
	}
	info, err := s.tracker.SetProfile(c.Request().Context(), profile)
	if err != nil {
		return translateErr(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"profile":      profile,
		"city_weather": info,
		"water_norm":   domain.WaterNorm(profile, info.TemperatureC),
		"calorie_norm": domain.CalorieNorm(profile),
	})
}

func (s *Server) getProfileHandler(c echo.Context) error {
	profile, err := s.tracker.Profile(c.Request().Context(), userID(c))
	if err != nil {
		return translateErr(err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (s *Server) statusHandler(c echo.Context) error {
	status, err := s.tracker.Status(c.Request().Context(), userID(c))
	if err != nil {
		return translateErr(err)
	}
	return c.JSON(http.StatusOK, status)
}

func (s *Server) weatherHandler(c echo.Context) error {
	report, err := s.tracker.Weather(c.Request().Context(), userID(c))
	if err != nil {
		return translateErr(err)
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) logWaterHandler(c echo.Context) error {
	var req waterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	summary, err := s.tracker.LogWater(c.Request().Context(), userID(c), req.AmountML)
	if err != nil {
		return translateErr(err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (s *Server) logFoodHandler(c echo.Context) error {
	var req descriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	summary, err := s.tracker.LogFood(c.Request().Context(), userID(c), req.Description)
	if err != nil {
		return translateErr(err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (s *Server) logWorkoutHandler(c echo.Context) error {
	var req descriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	summary, err := s.tracker.LogWorkout(c.Request().Context(), userID(c), req.Description)
	if err != nil {
		return translateErr(err)
	}
	return c.JSON(http.StatusOK, summary)
}
