//go:build !integration

package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-content-scheduler/internal/config"
	"ai-content-scheduler/internal/domain/ports/adapter"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(config.ProviderConfig{BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestClient_SubmitImage(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody adapter.ImageRequest
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "job-42"})
	}))

	id, err := c.SubmitImage(context.Background(), adapter.ImageRequest{Prompt: "a fox", AspectRatio: "1:1"})
	if err != nil {
		t.Fatalf("SubmitImage: %v", err)
	}
	if id != "job-42" {
		t.Errorf("job id %q, want job-42", id)
	}
	if gotPath != "/v1/images" {
		t.Errorf("path %q, want /v1/images", gotPath)
	}
	if gotAuth != "Bearer k" {
		t.Errorf("auth header %q, want bearer key", gotAuth)
	}
	if gotBody.Prompt != "a fox" || gotBody.AspectRatio != "1:1" {
		t.Errorf("request body %+v not forwarded", gotBody)
	}
}

func TestClient_SubmitAcceptsJobIDField(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"job_id": "alt-7"})
	}))
	id, err := c.SubmitCombine(context.Background(), adapter.CombineRequest{Prompt: "p", ImageURLs: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("SubmitCombine: %v", err)
	}
	if id != "alt-7" {
		t.Errorf("job id %q, want alt-7", id)
	}
}

func TestClient_SubmitErrors(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		if _, err := c.SubmitVideo(context.Background(), adapter.VideoRequest{Prompt: "p"}); err == nil {
			t.Fatal("expected error on 502")
		}
	})
	t.Run("missing job id", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{})
		}))
		if _, err := c.SubmitImage(context.Background(), adapter.ImageRequest{Prompt: "p"}); err == nil {
			t.Fatal("expected error on empty job id")
		}
	})
}

func TestClient_Status(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/jobs/job-42" {
			t.Errorf("path %q, want /v1/jobs/job-42", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":     "completed",
			"output_url": "https://provider/out.png",
		})
	}))

	st, err := c.Status(context.Background(), "job-42")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.State != adapter.JobStateSucceeded {
		t.Errorf("state %q, want succeeded", st.State)
	}
	if st.OutputURL != "https://provider/out.png" {
		t.Errorf("output url %q", st.OutputURL)
	}
}

func TestClient_StatusAcceptsOutputField(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "succeeded", "output": "https://provider/alt.png"})
	}))
	st, err := c.Status(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if st.OutputURL != "https://provider/alt.png" {
		t.Errorf("output url %q, want alt field value", st.OutputURL)
	}
}

func TestMapState(t *testing.T) {
	cases := map[string]adapter.JobState{
		"queued":    adapter.JobStateQueued,
		"pending":   adapter.JobStateQueued,
		"succeeded": adapter.JobStateSucceeded,
		"completed": adapter.JobStateSucceeded,
		"success":   adapter.JobStateSucceeded,
		"failed":    adapter.JobStateFailed,
		"error":     adapter.JobStateFailed,
		"cancelled": adapter.JobStateFailed,
		"rendering": adapter.JobStateProcessing,
		"":          adapter.JobStateProcessing,
	}
	for in, want := range cases {
		if got := mapState(in); got != want {
			t.Errorf("mapState(%q) = %q, want %q", in, got, want)
		}
	}
}
