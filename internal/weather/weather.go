// Package weather fetches and caches current conditions per city and
// derives outdoor-friendliness and workout-intensity adjustments from them.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	defaultBaseURL = "http://api.openweathermap.org/data/2.5/weather"
	defaultTTL     = 30 * time.Minute
	defaultSize    = 4096
	requestTimeout = 10 * time.Second
)

// ErrUnavailable marks transport, status, or response-shape failures from
// the weather provider. It propagates to the caller; the user can fix a
// misspelled city, the engine cannot.
var ErrUnavailable = errors.New("weather service unavailable")

// Info is one cached weather observation.
type Info struct {
	City            string    `json:"city"`
	TemperatureC    float64   `json:"temperature_c"`
	HumidityPct     float64   `json:"humidity_pct"`
	Description     string    `json:"description"`
	OutdoorFriendly bool      `json:"outdoor_friendly"`
	FetchedAt       time.Time `json:"fetched_at"`
}

// Config carries the oracle's settings. Zero values take production
// defaults. NormalizeCityKeys folds case and whitespace in cache keys;
// it is off by default so "Paris" and "paris" stay distinct entries.
type Config struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	CacheTTL          time.Duration
	CacheSize         int
	NormalizeCityKeys bool
	Logger            zerolog.Logger
}

// Service is the weather oracle. The cache is safe for concurrent use and
// entries expire after the staleness window; concurrent fetches for the
// same city collapse into one upstream call.
type Service struct {
	apiKey    string
	baseURL   string
	normalize bool
	client    *http.Client
	cache     *expirable.LRU[string, Info]
	group     singleflight.Group
	log       zerolog.Logger
}

// New builds a Service from the config.
func New(cfg Config) *Service {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = requestTimeout
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = defaultTTL
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = defaultSize
	}
	return &Service{
		apiKey:    cfg.APIKey,
		baseURL:   cfg.BaseURL,
		normalize: cfg.NormalizeCityKeys,
		client:    &http.Client{Timeout: cfg.Timeout},
		cache:     expirable.NewLRU[string, Info](cfg.CacheSize, nil, cfg.CacheTTL),
		log:       cfg.Logger,
	}
}

func (s *Service) cacheKey(city string) string {
	if s.normalize {
		return strings.ToLower(strings.TrimSpace(city))
	}
	return city
}

// Current returns the weather for the city, served from cache when the
// entry is younger than the staleness window.
func (s *Service) Current(ctx context.Context, city string) (Info, error) {
	key := s.cacheKey(city)
	if info, ok := s.cache.Get(key); ok {
		return info, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		if info, ok := s.cache.Get(key); ok {
			return info, nil
		}
		// coalesced callers share this fetch; it must not die with the
		// first caller's context, the client timeout still bounds it
		info, err := s.fetch(context.WithoutCancel(ctx), city)
		if err != nil {
			return Info{}, err
		}
		s.cache.Add(key, info)
		return info, nil
	})
	if err != nil {
		return Info{}, err
	}
	return v.(Info), nil
}

type apiResponse struct {
	Main struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"weather"`
}

func (s *Service) fetch(ctx context.Context, city string) (Info, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", s.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Info{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error().Err(err).Str("city", city).Msg("weather request failed")
		return Info{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		s.log.Error().Int("status", resp.StatusCode).Str("city", city).Bytes("body", body).Msg("weather API error")
		return Info{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var data apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Info{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if data.Main.Temp == nil || data.Main.Humidity == nil || len(data.Weather) == 0 {
		return Info{}, fmt.Errorf("%w: incomplete response for %q", ErrUnavailable, city)
	}

	info := Info{
		City:            city,
		TemperatureC:    *data.Main.Temp,
		HumidityPct:     *data.Main.Humidity,
		Description:     data.Weather[0].Description,
		OutdoorFriendly: outdoorFriendly(data.Weather[0].ID, *data.Main.Temp),
		FetchedAt:       time.Now(),
	}
	s.log.Info().Str("city", city).Float64("temp_c", info.TemperatureC).Str("description", info.Description).Msg("fetched weather")
	return info, nil
}

// outdoorFriendly classifies conditions. Condition ids 200-699 cover
// thunderstorm, drizzle, rain, and snow.
func outdoorFriendly(conditionID int, tempC float64) bool {
	if tempC < 0 || tempC > 35 {
		return false
	}
	if conditionID >= 200 && conditionID < 700 {
		return false
	}
	return true
}
