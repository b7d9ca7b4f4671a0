//go:build !integration

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ai-content-scheduler/internal/domain"
	"ai-content-scheduler/internal/usecase"
)

type stubDispatch struct {
	res *usecase.DispatchPassResult
	err error
}

func (s *stubDispatch) RunPass(context.Context) (*usecase.DispatchPassResult, error) {
	return s.res, s.err
}

type stubCompletion struct {
	res *usecase.CompletionPassResult
	err error
}

func (s *stubCompletion) RunPass(context.Context) (*usecase.CompletionPassResult, error) {
	return s.res, s.err
}

func newTestServer(t *testing.T, d *stubDispatch, c *stubCompletion) (*httptest.Server, *ServiceAuth) {
	t.Helper()
	log := zerolog.Nop()
	auth := NewServiceAuth("test-secret", time.Minute)
	srv := httptest.NewServer(NewServer(d, c, auth, &log).Routes())
	t.Cleanup(srv.Close)
	return srv, auth
}

func authedRequest(t *testing.T, auth *ServiceAuth, method, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	tok, err := auth.Mint()
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	return req
}

func TestServer_DispatchPass(t *testing.T) {
	d := &stubDispatch{res: &usecase.DispatchPassResult{ProcessedCount: 2, TotalConsidered: 3}}
	srv, auth := newTestServer(t, d, &stubCompletion{res: &usecase.CompletionPassResult{}})

	resp, err := http.DefaultClient.Do(authedRequest(t, auth, http.MethodPost, srv.URL+"/api/v1/passes/dispatch"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}

	var body struct {
		ProcessedCount  int `json:"processed_count"`
		TotalConsidered int `json:"total_considered"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.ProcessedCount != 2 || body.TotalConsidered != 3 {
		t.Errorf("body %+v, want processed=2 considered=3", body)
	}
}

func TestServer_CompletionPass(t *testing.T) {
	c := &stubCompletion{res: &usecase.CompletionPassResult{CompletedCount: 1, FailedCount: 1, TotalChecked: 4}}
	srv, auth := newTestServer(t, &stubDispatch{res: &usecase.DispatchPassResult{}}, c)

	resp, err := http.DefaultClient.Do(authedRequest(t, auth, http.MethodPost, srv.URL+"/api/v1/passes/completion"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}

	var body struct {
		CompletedCount int `json:"completed_count"`
		TotalChecked   int `json:"total_checked"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.CompletedCount != 1 || body.TotalChecked != 4 {
		t.Errorf("body %+v, want completed=1 checked=4", body)
	}
}

func TestServer_RejectsMissingToken(t *testing.T) {
	srv, _ := newTestServer(t, &stubDispatch{}, &stubCompletion{})

	resp, err := http.Post(srv.URL+"/api/v1/passes/dispatch", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", resp.StatusCode)
	}
}

func TestServer_RejectsForgedToken(t *testing.T) {
	srv, _ := newTestServer(t, &stubDispatch{}, &stubCompletion{})
	forged := NewServiceAuth("wrong-secret", time.Minute)

	resp, err := http.DefaultClient.Do(authedRequest(t, forged, http.MethodPost, srv.URL+"/api/v1/passes/dispatch"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", resp.StatusCode)
	}
}

func TestServer_ConflictWhilePassRunning(t *testing.T) {
	d := &stubDispatch{err: domain.ErrPassInProgress}
	srv, auth := newTestServer(t, d, &stubCompletion{})

	resp, err := http.DefaultClient.Do(authedRequest(t, auth, http.MethodPost, srv.URL+"/api/v1/passes/dispatch"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status %d, want 409", resp.StatusCode)
	}
}

func TestServer_PassErrorIsInternal(t *testing.T) {
	d := &stubDispatch{err: errors.New("db unreachable")}
	srv, auth := newTestServer(t, d, &stubCompletion{})

	resp, err := http.DefaultClient.Do(authedRequest(t, auth, http.MethodPost, srv.URL+"/api/v1/passes/dispatch"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", resp.StatusCode)
	}
}

func TestServer_Healthz(t *testing.T) {
	srv, _ := newTestServer(t, &stubDispatch{}, &stubCompletion{})

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}
}
