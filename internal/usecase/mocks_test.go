//go:build !integration

package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ai-content-scheduler/internal/domain"
	"ai-content-scheduler/internal/domain/model"
	"ai-content-scheduler/internal/domain/ports/adapter"
	"ai-content-scheduler/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// ===== transaction manager stub =====
//
// Runs the unit of work immediately without a real transaction; the
// in-memory repositories ignore the tx handle anyway.

type mockTxManager struct {
	err error
}

var _ repository.TransactionManager = (*mockTxManager)(nil)

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.err != nil {
		return m.err
	}
	return fn(ctx, nil)
}

// ===== in-memory schedule repository =====

type memScheduleRepo struct {
	mu        sync.Mutex
	schedules map[string]*model.Schedule

	pauseErr   error
	advanceErr error
	findDueErr error
}

var _ repository.ScheduleRepository = (*memScheduleRepo)(nil)

func newMemScheduleRepo() *memScheduleRepo {
	return &memScheduleRepo{schedules: make(map[string]*model.Schedule)}
}

func (r *memScheduleRepo) Save(_ context.Context, _ repository.Tx, s *model.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.schedules[s.ID] = &cp
	return nil
}

func (r *memScheduleRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memScheduleRepo) FindDue(_ context.Context, _ repository.Tx, now time.Time, limit int, contentType model.ContentType) ([]*model.Schedule, error) {
	if r.findDueErr != nil {
		return nil, r.findDueErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*model.Schedule
	for _, s := range r.schedules {
		if !s.IsDue(now) {
			continue
		}
		if contentType != "" && s.ContentType != contentType {
			continue
		}
		cp := *s
		due = append(due, &cp)
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextRun.Before(*due[j].NextRun) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r *memScheduleRepo) MarkPaused(_ context.Context, _ repository.Tx, id string) error {
	if r.pauseErr != nil {
		return r.pauseErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Status = model.ScheduleStatusPaused
	s.NextRun = nil
	return nil
}

func (r *memScheduleRepo) AdvanceRun(_ context.Context, _ repository.Tx, id string, lastRun, nextRun time.Time) error {
	if r.advanceErr != nil {
		return r.advanceErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[id]
	if !ok {
		return domain.ErrNotFound
	}
	lr, nr := lastRun, nextRun
	s.LastRun = &lr
	s.NextRun = &nr
	return nil
}

func (r *memScheduleRepo) get(id string) *model.Schedule {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.schedules[id]
}

// ===== in-memory content repository =====

type memContentRepo struct {
	mu      sync.Mutex
	records []*model.ContentRecord
	nextID  int

	saveErr error
}

var _ repository.ContentRepository = (*memContentRepo)(nil)

func newMemContentRepo() *memContentRepo {
	return &memContentRepo{}
}

func (r *memContentRepo) Save(_ context.Context, _ repository.Tx, rec *model.ContentRecord) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	if cp.ID == "" {
		r.nextID++
		cp.ID = fmt.Sprintf("rec-%d", r.nextID)
	}
	r.records = append(r.records, &cp)
	return nil
}

func (r *memContentRepo) CountBySchedule(_ context.Context, _ repository.Tx, scheduleID string, kind model.ContentKind, since *time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.records {
		if rec.ScheduleID != scheduleID || rec.Kind != kind {
			continue
		}
		if rec.GenerationStatus == model.GenerationStatusFailed {
			continue
		}
		if since != nil && rec.CreatedAt.Before(*since) {
			continue
		}
		n++
	}
	return n, nil
}

func (r *memContentRepo) ListProcessing(_ context.Context, _ repository.Tx, limit int) ([]*model.ContentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.ContentRecord
	for _, rec := range r.records {
		if rec.GenerationStatus != model.GenerationStatusProcessing || rec.ExternalJobID == "" {
			continue
		}
		cp := *rec
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memContentRepo) MarkCompleted(_ context.Context, _ repository.Tx, id, contentURL, storagePath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID != id {
			continue
		}
		if rec.GenerationStatus != model.GenerationStatusProcessing {
			return nil
		}
		rec.GenerationStatus = model.GenerationStatusCompleted
		rec.ContentURL = contentURL
		rec.StoragePath = storagePath
		return nil
	}
	return domain.ErrNotFound
}

func (r *memContentRepo) MarkFailed(_ context.Context, _ repository.Tx, id, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID != id {
			continue
		}
		if rec.GenerationStatus != model.GenerationStatusProcessing {
			return nil
		}
		rec.GenerationStatus = model.GenerationStatusFailed
		if rec.Metadata == nil {
			rec.Metadata = map[string]string{}
		}
		rec.Metadata[model.MetaError] = reason
		return nil
	}
	return domain.ErrNotFound
}

func (r *memContentRepo) all() []*model.ContentRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.ContentRecord, 0, len(r.records))
	for _, rec := range r.records {
		cp := *rec
		out = append(out, &cp)
	}
	return out
}

func (r *memContentRepo) byID(id string) *model.ContentRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			cp := *rec
			return &cp
		}
	}
	return nil
}

func (r *memContentRepo) seed(rec *model.ContentRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.records = append(r.records, &cp)
}

// ===== fake generation provider =====

type fakeProvider struct {
	mu       sync.Mutex
	images   []adapter.ImageRequest
	combines []adapter.CombineRequest
	videos   []adapter.VideoRequest

	submitErr error
	statuses  map[string]*adapter.JobStatus
	statusErr error
	nextJob   int
}

var _ adapter.GenerationProvider = (*fakeProvider)(nil)

func newFakeProvider() *fakeProvider {
	return &fakeProvider{statuses: make(map[string]*adapter.JobStatus)}
}

func (p *fakeProvider) jobID() string {
	p.nextJob++
	return fmt.Sprintf("job-%d", p.nextJob)
}

func (p *fakeProvider) SubmitImage(_ context.Context, req adapter.ImageRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.submitErr != nil {
		return "", p.submitErr
	}
	p.images = append(p.images, req)
	return p.jobID(), nil
}

func (p *fakeProvider) SubmitCombine(_ context.Context, req adapter.CombineRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.submitErr != nil {
		return "", p.submitErr
	}
	p.combines = append(p.combines, req)
	return p.jobID(), nil
}

func (p *fakeProvider) SubmitVideo(_ context.Context, req adapter.VideoRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.submitErr != nil {
		return "", p.submitErr
	}
	p.videos = append(p.videos, req)
	return p.jobID(), nil
}

func (p *fakeProvider) Status(_ context.Context, jobID string) (*adapter.JobStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.statusErr != nil {
		return nil, p.statusErr
	}
	if st, ok := p.statuses[jobID]; ok {
		cp := *st
		return &cp, nil
	}
	return &adapter.JobStatus{State: adapter.JobStateProcessing}, nil
}

func (p *fakeProvider) setStatus(jobID string, st adapter.JobStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses[jobID] = &st
}

// ===== fake asset fetcher / object store =====

type fakeFetcher struct {
	data        []byte
	contentType string
	ext         string
	err         error
}

var _ adapter.AssetFetcher = (*fakeFetcher)(nil)

func (f *fakeFetcher) Fetch(context.Context, string) ([]byte, string, string, error) {
	if f.err != nil {
		return nil, "", "", f.err
	}
	return f.data, f.contentType, f.ext, nil
}

type fakeStore struct {
	mu    sync.Mutex
	paths []string
	err   error
}

var _ adapter.ObjectStore = (*fakeStore)(nil)

func (s *fakeStore) Upload(_ context.Context, path string, _ []byte, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, path)
	return "https://cdn.example/" + path, nil
}

// ===== fake notifier / enhancer / locker =====

type fakeNotifier struct {
	mu     sync.Mutex
	paused []string
	failed []string
}

var _ adapter.AlertNotifier = (*fakeNotifier)(nil)

func (n *fakeNotifier) SchedulePaused(_ context.Context, scheduleID, reason string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paused = append(n.paused, scheduleID+": "+reason)
	return nil
}

func (n *fakeNotifier) PassFailed(_ context.Context, pass string, err error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, pass+": "+err.Error())
	return nil
}

type fakeEnhancer struct {
	prefix string
	err    error
}

var _ adapter.PromptEnhancer = (*fakeEnhancer)(nil)

func (e *fakeEnhancer) Enhance(_ context.Context, prompt string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return e.prefix + prompt, nil
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]string
}

var _ adapter.PassLocker = (*fakeLocker)(nil)

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]string)}
}

func (l *fakeLocker) TryLock(_ context.Context, key string, _ time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return "", domain.ErrPassInProgress
	}
	token := fmt.Sprintf("tok-%s", key)
	l.held[key] = token
	return token, nil
}

func (l *fakeLocker) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] != token {
		return errors.New("lock not held")
	}
	delete(l.held, key)
	return nil
}
