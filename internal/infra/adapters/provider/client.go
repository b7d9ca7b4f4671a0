package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ai-content-scheduler/internal/config"
	"ai-content-scheduler/internal/domain/ports/adapter"
)

// Compile-time assurance this client satisfies the port
var _ adapter.GenerationProvider = (*Client)(nil)

// Client talks to the async generation provider: submit returns a job id,
// results are fetched later via the status endpoint.
type Client struct {
	base   string
	apiKey string
	client *http.Client
}

func NewClient(cfg config.ProviderConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("provider base url empty")
	}
	return &Client{
		base:   cfg.BaseURL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (c *Client) SubmitImage(ctx context.Context, req adapter.ImageRequest) (string, error) {
	return c.submit(ctx, "/v1/images", req)
}

func (c *Client) SubmitCombine(ctx context.Context, req adapter.CombineRequest) (string, error) {
	return c.submit(ctx, "/v1/combinations", req)
}

func (c *Client) SubmitVideo(ctx context.Context, req adapter.VideoRequest) (string, error) {
	return c.submit(ctx, "/v1/videos", req)
}

func (c *Client) submit(ctx context.Context, path string, body any) (string, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("provider http %d", resp.StatusCode)
	}

	var payload struct {
		ID    string `json:"id"`
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	id := payload.ID
	if id == "" {
		id = payload.JobID
	}
	if id == "" {
		return "", errors.New("provider returned no job id")
	}
	return id, nil
}

func (c *Client) Status(ctx context.Context, jobID string) (*adapter.JobStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v1/jobs/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider http %d", resp.StatusCode)
	}

	var payload struct {
		Status    string `json:"status"`
		OutputURL string `json:"output_url"`
		Output    string `json:"output"`
		Error     string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	out := payload.OutputURL
	if out == "" {
		out = payload.Output
	}
	return &adapter.JobStatus{
		State:     mapState(payload.Status),
		OutputURL: out,
		Error:     payload.Error,
	}, nil
}

// mapState folds the provider's status vocabulary into the closed JobState
// set; anything unrecognized is treated as still in flight.
func mapState(s string) adapter.JobState {
	switch s {
	case "queued", "pending":
		return adapter.JobStateQueued
	case "succeeded", "completed", "success":
		return adapter.JobStateSucceeded
	case "failed", "error", "cancelled":
		return adapter.JobStateFailed
	default:
		return adapter.JobStateProcessing
	}
}
