package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

// RegisterRoutes builds the echo router with the API surface.
func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"https://*", "http://*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Accept", "Content-Type", "X-User-ID", "X-Request-ID"},
		MaxAge:       300,
	}))

	e.GET("/health", s.healthHandler)

	e.Use(LoggerMiddleware)

	api := e.Group("", requireUserID)
	api.PUT("/profile", s.putProfileHandler)
	api.GET("/profile", s.getProfileHandler)
	api.GET("/status", s.statusHandler)
	api.GET("/weather", s.weatherHandler)
	api.POST("/log/water", s.logWaterHandler)
	api.POST("/log/food", s.logFoodHandler)
	api.POST("/log/workout", s.logWorkoutHandler)

	return e
}

// LoggerMiddleware attaches a request-scoped logger carrying the request id.
func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().Str("request_id", requestID).Logger()

		c.Set("logger", &logger)

		return next(c)
	}
}

// requireUserID rejects requests without the opaque user key. The key is
// whatever the fronting chat adapter uses to identify a conversation.
func requireUserID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := c.Request().Header.Get("X-User-ID")
		if userID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "X-User-ID header is required")
		}
		c.Set("user_id", userID)
		return next(c)
	}
}

func userID(c echo.Context) string {
	id, _ := c.Get("user_id").(string)
	return id
}
