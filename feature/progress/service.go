package progress

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"sync"
	"time"

	"catalog-bootstrapper/core/database"
	"catalog-bootstrapper/core/logger"
	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/status"
	"catalog-bootstrapper/feature/bootstrap"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrTooManyRuns is returned when every run slot is taken.
	ErrTooManyRuns = errors.New("too many concurrent runs")
	// ErrNoSpec is returned when a run request carries neither a spec nor a spec key.
	ErrNoSpec = errors.New("no spec given")
	// ErrNoInstance is returned when no target instance is known.
	ErrNoInstance = errors.New("no instance given")
	// ErrNoDocuments is returned when a spec key is given but no document store is configured.
	ErrNoDocuments = errors.New("document store not configured")
)

// Journal persists runs. *database.Journal implements it.
type Journal interface {
	StartRun(ctx context.Context, instance, specKey string) (*database.Run, error)
	RecordSnapshot(ctx context.Context, runID string, snap status.Snapshot) error
	FinishRun(ctx context.Context, runID string, finishedAt time.Time, duration time.Duration, runErr error) error
	ListRuns(ctx context.Context, limit int) ([]database.Run, error)
	GetRun(ctx context.Context, runID string) (*database.Run, error)
}

// Documents reads specs and stores reports. *storage.Documents implements it.
type Documents interface {
	ReadSpec(ctx context.Context, key string) (*spec.Spec, error)
	WriteReport(ctx context.Context, key string, v any) error
	ListSpecs(ctx context.Context, prefix string) ([]string, error)
}

// RunRequest starts a run.
type RunRequest struct {
	// Instance overrides the configured instance identifier.
	Instance string `json:"instance"`
	// SpecKey is the document key of the spec in storage.
	SpecKey string `json:"specKey"`
	// Spec is an inline spec. It wins over SpecKey.
	Spec *spec.Spec `json:"spec,omitempty"`
	// AccessTokenID and AccessTokenSecret override the configured credentials.
	AccessTokenID     string `json:"accessTokenId,omitempty"`
	AccessTokenSecret string `json:"accessTokenSecret,omitempty"`
}

// RunView is the public state of a run.
type RunView struct {
	ID         string                            `json:"id"`
	Instance   string                            `json:"instance"`
	SpecKey    string                            `json:"specKey,omitempty"`
	Status     string                            `json:"status"`
	StartedAt  time.Time                         `json:"startedAt"`
	FinishedAt *time.Time                        `json:"finishedAt,omitempty"`
	DurationMs int64                             `json:"durationMs"`
	Error      string                            `json:"error,omitempty"`
	Areas      map[status.Area]status.AreaStatus `json:"areas,omitempty"`
}

type run struct {
	mu         sync.Mutex
	id         string
	instance   string
	specKey    string
	startedAt  time.Time
	finishedAt *time.Time
	err        error
	boot       *bootstrap.Bootstrapper
}

func (r *run) view() RunView {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := RunView{
		ID:        r.id,
		Instance:  r.instance,
		SpecKey:   r.specKey,
		Status:    runStatus(r.boot.State()),
		StartedAt: r.startedAt,
		Areas:     r.boot.Status().Areas(),
	}
	if r.finishedAt != nil {
		at := *r.finishedAt
		v.FinishedAt = &at
		v.DurationMs = at.Sub(r.startedAt).Milliseconds()
	}
	if r.err != nil {
		v.Error = r.err.Error()
	}
	return v
}

func runStatus(s bootstrap.State) string {
	switch s {
	case bootstrap.StateDone:
		return database.RunDone
	case bootstrap.StateFailed:
		return database.RunFailed
	default:
		return database.RunRunning
	}
}

// Service starts bootstrap runs in the background and tracks their progress.
type Service struct {
	opts         bootstrap.Options
	journal      Journal
	docs         Documents
	logger       *zap.Logger
	reportPrefix string
	slots        *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu           sync.Mutex
	runs         map[string]*run
	finished     map[string]RunView
	finishedIDs  []string
	keepFinished int
}

// Options configures a Service. Journal and Documents are optional.
type Options struct {
	Bootstrap    bootstrap.Options
	Journal      Journal
	Documents    Documents
	Logger       *zap.Logger
	MaxRuns      int
	ReportPrefix string

	// KeepFinished bounds the finished runs kept in memory (default: 100).
	KeepFinished int
}

// NewService creates a run service.
func NewService(opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxRuns < 1 {
		opts.MaxRuns = 1
	}
	if opts.KeepFinished < 1 {
		opts.KeepFinished = 100
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		opts:         opts.Bootstrap,
		journal:      opts.Journal,
		docs:         opts.Documents,
		logger:       opts.Logger,
		reportPrefix: opts.ReportPrefix,
		slots:        semaphore.NewWeighted(int64(opts.MaxRuns)),
		ctx:          ctx,
		cancel:       cancel,
		runs:         make(map[string]*run),
		finished:     make(map[string]RunView),
		keepFinished: opts.KeepFinished,
	}
}

// Start validates req, takes a run slot and runs the bootstrap in the background.
func (s *Service) Start(ctx context.Context, req RunRequest) (RunView, error) {
	instance := req.Instance
	if instance == "" {
		instance = s.opts.API.Instance
	}
	if instance == "" {
		return RunView{}, ErrNoInstance
	}

	doc, err := s.loadSpec(ctx, req)
	if err != nil {
		return RunView{}, err
	}

	if !s.slots.TryAcquire(1) {
		return RunView{}, ErrTooManyRuns
	}

	r, err := s.newRun(ctx, instance, req.SpecKey)
	if err != nil {
		s.slots.Release(1)
		return RunView{}, err
	}

	opts := s.opts
	opts.API.Instance = instance
	if req.AccessTokenID != "" || req.AccessTokenSecret != "" {
		opts.API.AccessTokenID = req.AccessTokenID
		opts.API.AccessTokenSecret = req.AccessTokenSecret
	}
	opts.Logger = logger.WithRun(s.logger, r.id, instance)
	opts.Cache = nil
	r.boot = bootstrap.New(opts)
	r.boot.SetSpec(doc)

	s.mu.Lock()
	s.runs[r.id] = r
	s.mu.Unlock()

	runsActive.Inc()
	s.wg.Add(1)
	go s.execute(r)

	return r.view(), nil
}

func (s *Service) loadSpec(ctx context.Context, req RunRequest) (*spec.Spec, error) {
	if req.Spec != nil {
		return req.Spec, nil
	}
	if req.SpecKey == "" {
		return nil, ErrNoSpec
	}
	if s.docs == nil {
		return nil, ErrNoDocuments
	}
	return s.docs.ReadSpec(ctx, req.SpecKey)
}

func (s *Service) newRun(ctx context.Context, instance, specKey string) (*run, error) {
	if s.journal == nil {
		return &run{id: uuid.NewString(), instance: instance, specKey: specKey, startedAt: time.Now()}, nil
	}
	row, err := s.journal.StartRun(ctx, instance, specKey)
	if err != nil {
		return nil, err
	}
	return &run{id: row.ID, instance: instance, specKey: specKey, startedAt: row.StartedAt}, nil
}

func (s *Service) execute(r *run) {
	defer s.wg.Done()
	defer s.slots.Release(1)
	defer runsActive.Dec()

	l := logger.WithRun(s.logger, r.id, r.instance)
	l.Info("Run started")

	snaps, stop := r.boot.SubscribeStatus(4)
	pumped := make(chan struct{})
	go func() {
		defer close(pumped)
		for snap := range snaps {
			s.record(l, r.id, snap)
		}
	}()

	runErr := r.boot.Start(s.ctx)
	finished := time.Now()
	stop()
	<-pumped

	r.mu.Lock()
	r.finishedAt = &finished
	r.err = runErr
	r.mu.Unlock()

	final := r.boot.Status()
	s.record(l, r.id, final)

	outcome := database.RunDone
	if runErr != nil {
		outcome = database.RunFailed
	}
	runsFinished.WithLabelValues(outcome).Inc()

	if s.journal != nil {
		if err := s.journal.FinishRun(context.Background(), r.id, finished, finished.Sub(r.startedAt), runErr); err != nil {
			l.Warn("Failed to finish run in journal", zap.Error(err))
		}
	}
	s.writeReport(l, r)

	l.Info("Run finished",
		zap.String("status", outcome),
		zap.Duration("duration", finished.Sub(r.startedAt)),
		zap.Int("warnings", final.WarningCount()),
	)
	s.retire(r)
}

// retire swaps a finished run for its final view, releasing the bootstrapper.
// Only the newest keepFinished views stay in memory.
func (s *Service) retire(r *run) {
	view := r.view()

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, r.id)
	s.finished[r.id] = view
	s.finishedIDs = append(s.finishedIDs, r.id)
	for len(s.finishedIDs) > s.keepFinished {
		delete(s.finished, s.finishedIDs[0])
		s.finishedIDs = s.finishedIDs[1:]
	}
}

func (s *Service) record(l *zap.Logger, runID string, snap status.Snapshot) {
	if s.journal == nil {
		return
	}
	if err := s.journal.RecordSnapshot(context.Background(), runID, snap); err != nil {
		l.Warn("Failed to record snapshot", zap.Error(err))
	}
}

func (s *Service) writeReport(l *zap.Logger, r *run) {
	if s.docs == nil {
		return
	}
	key := path.Join(s.reportPrefix, r.id+".json")
	if err := s.docs.WriteReport(context.Background(), key, r.view()); err != nil {
		l.Warn("Failed to write run report", zap.String("key", key), zap.Error(err))
		return
	}
	l.Debug("Run report written", zap.String("key", key))
}

// Get returns a run. Runs of this process win over journal rows.
func (s *Service) Get(ctx context.Context, id string) (RunView, error) {
	s.mu.Lock()
	r, ok := s.runs[id]
	view, done := s.finished[id]
	s.mu.Unlock()
	if ok {
		return r.view(), nil
	}
	if done {
		return view, nil
	}

	if s.journal == nil {
		return RunView{}, database.ErrRunNotFound
	}
	row, err := s.journal.GetRun(ctx, id)
	if err != nil {
		return RunView{}, err
	}
	return fromRow(*row), nil
}

// List returns the latest runs, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]RunView, error) {
	byID := make(map[string]RunView)

	if s.journal != nil {
		rows, err := s.journal.ListRuns(ctx, limit)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			byID[row.ID] = fromRow(row)
		}
	}

	s.mu.Lock()
	for id, v := range s.finished {
		byID[id] = v
	}
	for id, r := range s.runs {
		byID[id] = r.view()
	}
	s.mu.Unlock()

	out := make([]RunView, 0, len(byID))
	for _, v := range byID {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Specs lists the spec documents under prefix.
func (s *Service) Specs(ctx context.Context, prefix string) ([]string, error) {
	if s.docs == nil {
		return nil, ErrNoDocuments
	}
	keys, err := s.docs.ListSpecs(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list specs: %w", err)
	}
	return keys, nil
}

// Wait blocks until every started run finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Close cancels running runs and waits for them.
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}

func fromRow(row database.Run) RunView {
	v := RunView{
		ID:         row.ID,
		Instance:   row.Instance,
		SpecKey:    row.SpecKey,
		Status:     row.Status,
		StartedAt:  row.StartedAt,
		FinishedAt: row.FinishedAt,
		DurationMs: row.DurationMs,
		Error:      row.Error,
	}
	if len(row.Areas) == 0 && len(row.Warnings) == 0 {
		return v
	}
	v.Areas = make(map[status.Area]status.AreaStatus, len(row.Areas))
	for _, a := range row.Areas {
		v.Areas[status.Area(a.Area)] = status.AreaStatus{Progress: a.Progress, Warnings: []status.Warning{}}
	}
	for _, w := range row.Warnings {
		st := v.Areas[status.Area(w.Area)]
		st.Warnings = append(st.Warnings, status.Warning{Message: w.Message, Cause: w.Cause})
		v.Areas[status.Area(w.Area)] = st
	}
	return v
}
