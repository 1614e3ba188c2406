package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"
)

// CostPerSecond is the synthesis price used for estimates, in USD.
const CostPerSecond = 0.05

// ErrNoAPIKey is returned when the client was built without a credential.
var ErrNoAPIKey = errors.New("video synthesis API key not configured")

// Generator produces a video from a text prompt, polling the remote job to
// completion. A "" result with nil error never occurs; failures are errors.
type Generator interface {
	Generate(ctx context.Context, prompt string, duration float64, aspectRatio string) (string, error)
	EstimateCost(duration float64) float64
}

// Client drives a Runway-style asynchronous text-to-video API.
type Client struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
	sleep        func(time.Duration)
}

// NewClient creates a synthesis client with fixed-interval polling.
func NewClient(apiKey, baseURL string, pollInterval, pollTimeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.dev.runwayml.com/v1"
	}
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	if pollTimeout <= 0 {
		pollTimeout = 180 * time.Second
	}
	return &Client{
		apiKey:       apiKey,
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		sleep:        time.Sleep,
	}
}

type generateRequest struct {
	PromptText string `json:"promptText"`
	Model      string `json:"model"`
	Ratio      string `json:"ratio"`
	Duration   int    `json:"duration"`
}

type taskStatus struct {
	ID      string   `json:"id"`
	Status  string   `json:"status"`
	Output  []string `json:"output"`
	Failure string   `json:"failure"`
}

// Generate submits a synthesis task and polls until it succeeds, fails, or
// the poll timeout elapses. A timed-out remote task is abandoned, not
// cancelled.
func (c *Client) Generate(ctx context.Context, prompt string, duration float64, aspectRatio string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	taskID, err := c.submit(ctx, prompt, duration, aspectRatio)
	if err != nil {
		return "", err
	}
	log.Printf("[synth] task %s submitted (%.0fs, %s)", taskID, duration, aspectRatio)

	deadline := time.Now().Add(c.pollTimeout)
	for time.Now().Before(deadline) {
		task, err := c.poll(ctx, taskID)
		if err != nil {
			return "", err
		}
		switch task.Status {
		case "SUCCEEDED":
			if len(task.Output) == 0 {
				return "", errors.New("synthesis succeeded but returned no output")
			}
			return task.Output[0], nil
		case "FAILED":
			return "", fmt.Errorf("synthesis failed: %s", task.Failure)
		}
		c.sleep(c.pollInterval)
	}
	return "", fmt.Errorf("synthesis timed out after %s", c.pollTimeout)
}

// EstimateCost returns the projected price of generating one clip.
func (c *Client) EstimateCost(duration float64) float64 {
	return duration * CostPerSecond
}

func (c *Client) submit(ctx context.Context, prompt string, duration float64, aspectRatio string) (string, error) {
	body, err := json.Marshal(generateRequest{
		PromptText: prompt,
		Model:      "veo3.1_fast",
		Ratio:      mapRatio(aspectRatio),
		Duration:   snapDuration(duration),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/text_to_video", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("synthesis submit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("synthesis submit status %d", resp.StatusCode)
	}

	var task taskStatus
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return "", fmt.Errorf("parse synthesis submit response: %w", err)
	}
	if task.ID == "" {
		return "", errors.New("synthesis submit returned no task id")
	}
	return task.ID, nil
}

func (c *Client) poll(ctx context.Context, taskID string) (taskStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/tasks/"+taskID, nil)
	if err != nil {
		return taskStatus{}, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return taskStatus{}, fmt.Errorf("synthesis poll: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return taskStatus{}, fmt.Errorf("synthesis poll status %d", resp.StatusCode)
	}

	var task taskStatus
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return taskStatus{}, fmt.Errorf("parse synthesis poll response: %w", err)
	}
	return task, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Runway-Version", "2024-11-06")
}

// mapRatio converts a display aspect ratio to the provider's pixel ratios.
func mapRatio(aspectRatio string) string {
	switch aspectRatio {
	case "16:9":
		return "1280:720"
	case "1:1", "9:16":
		return "720:1280"
	default:
		return "720:1280"
	}
}

// snapDuration clamps to the provider's supported clip lengths (4, 6, 8s).
func snapDuration(duration float64) int {
	valid := []int{4, 6, 8}
	best := valid[0]
	for _, v := range valid {
		if math.Abs(float64(v)-duration) < math.Abs(float64(best)-duration) {
			best = v
		}
	}
	return best
}
