package adapter

import "context"

// JobState is the provider-side lifecycle of an async generation job.
type JobState string

const (
	JobStateQueued     JobState = "queued"
	JobStateProcessing JobState = "processing"
	JobStateSucceeded  JobState = "succeeded"
	JobStateFailed     JobState = "failed"
)

// Terminal reports whether the state will not change on further polling.
func (s JobState) Terminal() bool {
	return s == JobStateSucceeded || s == JobStateFailed
}

// ImageRequest submits a single text-to-image job.
type ImageRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	AspectRatio    string `json:"aspect_ratio,omitempty"`
}

// CombineRequest submits one multi-image combination job (one pair).
type CombineRequest struct {
	Prompt      string   `json:"prompt"`
	ImageURLs   []string `json:"image_urls"`
	AspectRatio string   `json:"aspect_ratio,omitempty"`
}

// VideoRequest submits an image/text-to-video job.
type VideoRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	StartImageURL  string `json:"start_image_url,omitempty"`
	Mode           string `json:"mode,omitempty"`
	DurationSecs   int    `json:"duration_seconds,omitempty"`
}

// JobStatus is the provider's answer for one job id.
type JobStatus struct {
	State     JobState
	OutputURL string
	Error     string
}

// GenerationProvider is the port for the async generation APIs. Submit
// calls return the provider's job id; results are fetched later through
// Status.
type GenerationProvider interface {
	SubmitImage(ctx context.Context, req ImageRequest) (string, error)
	SubmitCombine(ctx context.Context, req CombineRequest) (string, error)
	SubmitVideo(ctx context.Context, req VideoRequest) (string, error)
	Status(ctx context.Context, jobID string) (*JobStatus, error)
}
