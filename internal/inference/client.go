// Package inference wraps the external chat-completions API that turns
// free-text food and workout descriptions into structured estimates.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// --- API configuration ---
const (
	defaultBaseURL = "https://api.deepseek.com/v1/chat/completions"
	defaultModel   = "deepseek-chat"
	requestTimeout = 30 * time.Second
	temperature    = 0.7
	maxTokens      = 150
)

var (
	// ErrUnavailable marks transport-level or non-success HTTP failures.
	ErrUnavailable = errors.New("inference service unavailable")
	// ErrMalformed marks a reply that could not be reduced to an expected
	// payload shape, even after extraction fallbacks.
	ErrMalformed = errors.New("inference reply not parseable")
)

// Message is one role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Client issues estimation requests against a chat-completions endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	log     zerolog.Logger
}

// Config carries the client's settings. BaseURL, Model, and Timeout default
// to the production endpoint when zero.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// New builds a Client from the config.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = requestTimeout
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
		log:     cfg.Logger,
	}
}

// complete sends one round trip and returns the raw completion text.
func (c *Client) complete(ctx context.Context, messages []Message) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Error().Err(err).Msg("inference request failed")
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.log.Error().Int("status", resp.StatusCode).Bytes("body", body).Msg("inference API error")
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrMalformed, err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("%w: no completion in response", ErrMalformed)
	}
	return cr.Choices[0].Message.Content, nil
}

// ParseWorkout asks the model to split a workout description into type,
// duration, and explanation. Returns ErrMalformed when the reply lacks a
// workout type.
func (c *Client) ParseWorkout(ctx context.Context, description string) (Payload, error) {
	messages := []Message{
		{Role: "system", Content: workoutParsePrompt},
		{Role: "user", Content: "Parse this workout description: " + description},
	}
	content, err := c.complete(ctx, messages)
	if err != nil {
		return Payload{}, err
	}
	result, err := ExtractPayload(content)
	if err != nil {
		return Payload{}, err
	}
	if result.WorkoutType == nil {
		return Payload{}, fmt.Errorf("%w: missing workout_type", ErrMalformed)
	}
	return result, nil
}

// EstimateFoodCalories asks the model for a calorie estimate. When the first
// reply cannot be parsed, the malformed reply and a corrective instruction
// are appended to the conversation and the request is re-issued once.
func (c *Client) EstimateFoodCalories(ctx context.Context, food string) (Payload, error) {
	messages := []Message{
		{Role: "system", Content: foodCaloriesPrompt},
		{Role: "user", Content: "Estimate calories for this food: " + food},
	}
	content, err := c.complete(ctx, messages)
	if err != nil {
		return Payload{}, err
	}

	result, perr := parseCalories(content)
	if perr == nil {
		return result, nil
	}
	c.log.Warn().Str("food", food).Str("reply", content).Msg("unparseable calorie reply, retrying with stricter prompt")

	messages = append(messages,
		Message{Role: "assistant", Content: content},
		Message{Role: "user", Content: fmt.Sprintf(
			"Please provide the calorie estimate for %q in EXACT JSON format: {\"calories\": number, \"explanation\": \"string\"}", food)},
	)
	content, err = c.complete(ctx, messages)
	if err != nil {
		return Payload{}, err
	}
	return parseCalories(content)
}

func parseCalories(content string) (Payload, error) {
	result, err := ExtractPayload(content)
	if err != nil {
		return Payload{}, err
	}
	if result.Calories == nil {
		return Payload{}, fmt.Errorf("%w: missing calories", ErrMalformed)
	}
	return result, nil
}

// EstimateWorkoutRate asks the model for a calories-per-minute figure for
// the given activity and body weight.
func (c *Client) EstimateWorkoutRate(ctx context.Context, workoutType string, weightKG float64) (Payload, error) {
	messages := []Message{
		{Role: "system", Content: workoutRatePrompt},
		{Role: "user", Content: fmt.Sprintf(
			"Estimate calories burned per minute for a %s workout for a person weighing %.0fkg", workoutType, weightKG)},
	}
	content, err := c.complete(ctx, messages)
	if err != nil {
		return Payload{}, err
	}
	result, err := ExtractPayload(content)
	if err != nil {
		return Payload{}, err
	}
	if result.CaloriesPerMinute == nil {
		return Payload{}, fmt.Errorf("%w: missing calories_per_minute", ErrMalformed)
	}
	return result, nil
}
