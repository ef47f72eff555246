package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/posekit/internal/domain/model"
)

// Client is a thin JSON client for the posekit API.
type Client struct {
	base   string
	client *http.Client
}

// NewClient creates a client against the given base URL.
func NewClient(base string, timeout time.Duration) *Client {
	return &Client{
		base:   base,
		client: &http.Client{Timeout: timeout},
	}
}

// StartSession creates a tracking session and returns its id.
func (c *Client) StartSession(ctx context.Context, userID, exerciseID string) (string, error) {
	var out struct {
		SessionID string `json:"session_id"`
	}
	err := c.post(ctx, "/sessions", map[string]string{
		"user_id":     userID,
		"exercise_id": exerciseID,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}
	return out.SessionID, nil
}

// SendFrame posts one landmark frame to a session.
func (c *Client) SendFrame(ctx context.Context, sessionID string, lms []model.Landmark) error {
	err := c.post(ctx, "/sessions/"+sessionID+"/frames", map[string]any{
		"landmarks": lms,
	}, nil)
	if err != nil {
		return fmt.Errorf("send frame: %w", err)
	}
	return nil
}

// Finish finalizes a session and returns its summary.
func (c *Client) Finish(ctx context.Context, sessionID string) (model.ExerciseResult, error) {
	var out model.ExerciseResult
	if err := c.post(ctx, "/sessions/"+sessionID+"/finish", nil, &out); err != nil {
		return model.ExerciseResult{}, fmt.Errorf("finish session: %w", err)
	}
	return out, nil
}

// Results fetches the user's completed session summaries.
func (c *Client) Results(ctx context.Context, userID string) ([]model.ExerciseResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/results?user_id="+userID, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("/results returned %d", resp.StatusCode)
	}
	var out struct {
		Results []model.ExerciseResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Results, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
