package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rmtl/internal/assignment"
	"rmtl/internal/domain"
	"rmtl/internal/metrics"
	"rmtl/internal/port"
	"rmtl/internal/rowstore"
	"rmtl/internal/validator"
)

// OpenRequest opens a workspace for one batch-entry screen.
type OpenRequest struct {
	ReportType domain.ReportType       `json:"report_type" binding:"required"`
	Context    domain.OperatingContext `json:"context"`
}

// Snapshot is a consistent copy of a workspace's state.
type Snapshot struct {
	ID             uuid.UUID                    `json:"id"`
	ReportType     domain.ReportType            `json:"report_type"`
	Profile        domain.ReportProfile         `json:"profile"`
	Context        domain.OperatingContext      `json:"context"`
	Header         domain.BatchHeader           `json:"header"`
	Rows           []domain.TestRow             `json:"rows"`
	RowCount       int                          `json:"row_count"`
	Warnings       []rowstore.ResolutionWarning `json:"warnings"`
	Assignments    []assignment.Entry           `json:"assignments"`
	Enums          *domain.EnumSet              `json:"enums,omitempty"`
	Generation     uint64                       `json:"generation"`
	SubmitInFlight bool                         `json:"submit_in_flight"`
	UpdatedAt      time.Time                    `json:"updated_at"`
}

// SubmitResult pairs the submission outcome with the reset workspace.
type SubmitResult struct {
	Outcome   *SubmitOutcome `json:"outcome"`
	Workspace *Snapshot      `json:"workspace"`
}

// WorkspaceService manages the live batch-entry workspaces. All mutations of
// one workspace are serialized; network calls run outside its lock.
type WorkspaceService interface {
	Open(ctx context.Context, req OpenRequest) (*Snapshot, error)
	Get(ctx context.Context, id uuid.UUID) (*Snapshot, error)
	Close(ctx context.Context, id uuid.UUID) error
	Reload(ctx context.Context, id uuid.UUID) (*Snapshot, error)
	SetHeader(ctx context.Context, id uuid.UUID, h domain.BatchHeader) (*Snapshot, error)
	AppendRow(ctx context.Context, id uuid.UUID) (*Snapshot, error)
	GetRow(ctx context.Context, id uuid.UUID, pos int) (*domain.TestRow, error)
	RemoveRow(ctx context.Context, id uuid.UUID, pos int) (*Snapshot, error)
	UpdateRow(ctx context.Context, id uuid.UUID, pos int, edit domain.RowEdit) (*Snapshot, error)
	SetSerial(ctx context.Context, id uuid.UUID, pos int, serial string) (*Snapshot, error)
	Pick(ctx context.Context, id uuid.UUID, assignmentIDs []int64) (*Snapshot, error)
	Validate(ctx context.Context, id uuid.UUID) error
	Clear(ctx context.Context, id uuid.UUID) (*Snapshot, error)
	Submit(ctx context.Context, id uuid.UUID) (*SubmitResult, error)
}

// WorkspaceOptions tunes the workspace service.
type WorkspaceOptions struct {
	// MaxIdle evicts workspaces untouched for longer. Zero disables eviction.
	MaxIdle time.Duration
	Store   rowstore.Options
}

type workspace struct {
	mu sync.Mutex

	id         uuid.UUID
	octx       domain.OperatingContext
	store      *rowstore.Store
	index      *assignment.Index
	enums      *domain.EnumSet
	generation uint64
	fetchSeq   uint64
	inFlight   bool
	closed     bool
	lastUsed   time.Time
}

type workspaceService struct {
	assignments port.AssignmentSource
	enums       EnumService
	submissions SubmissionController
	validator   *validator.Engine
	opts        WorkspaceOptions
	logger      *zap.Logger
	now         func() time.Time

	mu         sync.RWMutex
	workspaces map[uuid.UUID]*workspace
}

// NewWorkspaceService creates a new WorkspaceService implementation.
func NewWorkspaceService(
	assignments port.AssignmentSource,
	enums EnumService,
	submissions SubmissionController,
	engine *validator.Engine,
	opts WorkspaceOptions,
	logger *zap.Logger,
) WorkspaceService {
	return &workspaceService{
		assignments: assignments,
		enums:       enums,
		submissions: submissions,
		validator:   engine,
		opts:        opts,
		logger:      logger,
		now:         time.Now,
		workspaces:  make(map[uuid.UUID]*workspace),
	}
}

func (s *workspaceService) Open(ctx context.Context, req OpenRequest) (*Snapshot, error) {
	profile, ok := domain.ProfileFor(req.ReportType)
	if !ok {
		return nil, fmt.Errorf("service.Open %q: %w", req.ReportType, domain.ErrUnknownReportType)
	}
	if req.Context.UserID <= 0 {
		return nil, &domain.ContextError{Field: "user_id"}
	}
	if req.Context.LabID <= 0 {
		return nil, &domain.ContextError{Field: "lab_id"}
	}

	s.sweep()

	var (
		records []domain.AssignmentRecord
		enums   *domain.EnumSet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.fetchAssignments(gctx, req.Context)
		return err
	})
	g.Go(func() error {
		var err error
		enums, err = s.enums.GetEnums(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("service.Open: %w", err)
	}

	w := &workspace{
		id:       uuid.New(),
		octx:     req.Context,
		store:    rowstore.New(profile, s.opts.Store),
		index:    assignment.Build(records),
		enums:    enums,
		lastUsed: s.now(),
	}

	s.mu.Lock()
	s.workspaces[w.id] = w
	n := len(s.workspaces)
	s.mu.Unlock()
	metrics.SetOpenWorkspaces(n)

	s.logger.Info("workspace opened",
		zap.String("workspace_id", w.id.String()),
		zap.String("report_type", string(profile.Type)),
		zap.Int64("user_id", req.Context.UserID),
		zap.Int64("lab_id", req.Context.LabID),
		zap.Int("assignments", w.index.Len()),
	)

	w.mu.Lock()
	defer w.mu.Unlock()
	return s.snapshot(w), nil
}

func (s *workspaceService) Get(_ context.Context, id uuid.UUID) (*Snapshot, error) {
	w, err := s.get(id)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastUsed = s.now()
	return s.snapshot(w), nil
}

func (s *workspaceService) Close(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	w, ok := s.workspaces[id]
	if ok {
		delete(s.workspaces, id)
	}
	n := len(s.workspaces)
	s.mu.Unlock()
	if !ok {
		return domain.ErrWorkspaceNotFound
	}
	metrics.SetOpenWorkspaces(n)

	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return nil
}

// Reload refetches assignments and swaps in the new index. The result is
// discarded with ErrStaleFetch when the workspace was cleared, submitted or
// reloaded again while the fetch was running.
func (s *workspaceService) Reload(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	w, err := s.get(id)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	if w.inFlight {
		w.mu.Unlock()
		return nil, domain.ErrSubmitInFlight
	}
	w.fetchSeq++
	gen, seq, octx := w.generation, w.fetchSeq, w.octx
	w.mu.Unlock()

	records, err := s.fetchAssignments(ctx, octx)
	if err != nil {
		return nil, fmt.Errorf("service.Reload: %w", err)
	}
	idx := assignment.Build(records)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, domain.ErrWorkspaceNotFound
	}
	if w.generation != gen || w.fetchSeq != seq || w.inFlight {
		metrics.ObserveFetch("assignments", metrics.ResultStale, 0)
		s.logger.Debug("discarding stale assignment fetch", zap.String("workspace_id", id.String()))
		return nil, domain.ErrStaleFetch
	}
	w.index = idx
	w.store.Reresolve(idx)
	w.lastUsed = s.now()
	return s.snapshot(w), nil
}

func (s *workspaceService) SetHeader(_ context.Context, id uuid.UUID, h domain.BatchHeader) (*Snapshot, error) {
	return s.mutate(id, func(w *workspace) error {
		w.store.SetHeader(h)
		return nil
	})
}

func (s *workspaceService) AppendRow(_ context.Context, id uuid.UUID) (*Snapshot, error) {
	return s.mutate(id, func(w *workspace) error {
		w.store.AppendEmpty()
		return nil
	})
}

func (s *workspaceService) GetRow(_ context.Context, id uuid.UUID, pos int) (*domain.TestRow, error) {
	w, err := s.get(id)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	row, err := w.store.Row(pos)
	if err != nil {
		return nil, err
	}
	w.lastUsed = s.now()
	return &row, nil
}

func (s *workspaceService) RemoveRow(_ context.Context, id uuid.UUID, pos int) (*Snapshot, error) {
	return s.mutate(id, func(w *workspace) error {
		return w.store.Remove(pos)
	})
}

func (s *workspaceService) UpdateRow(_ context.Context, id uuid.UUID, pos int, edit domain.RowEdit) (*Snapshot, error) {
	return s.mutate(id, func(w *workspace) error {
		return w.store.UpdateRow(pos, edit)
	})
}

func (s *workspaceService) SetSerial(_ context.Context, id uuid.UUID, pos int, serial string) (*Snapshot, error) {
	return s.mutate(id, func(w *workspace) error {
		return w.store.OnSerialChanged(pos, serial, w.index)
	})
}

func (s *workspaceService) Pick(_ context.Context, id uuid.UUID, assignmentIDs []int64) (*Snapshot, error) {
	return s.mutate(id, func(w *workspace) error {
		w.store.Pick(w.index, assignmentIDs)
		return nil
	})
}

func (s *workspaceService) Clear(_ context.Context, id uuid.UUID) (*Snapshot, error) {
	return s.mutate(id, func(w *workspace) error {
		w.store.Clear()
		w.generation++
		return nil
	})
}

func (s *workspaceService) Validate(ctx context.Context, id uuid.UUID) error {
	w, err := s.get(id)
	if err != nil {
		return err
	}
	w.mu.Lock()
	batch := w.store.Batch(w.octx)
	w.lastUsed = s.now()
	w.mu.Unlock()

	if err := s.validator.Validate(ctx, batch); err != nil {
		metrics.IncValidationFailure(validationCode(err))
		return err
	}
	return nil
}

// Submit posts the workspace's batch. While it runs every other mutation is
// refused, so a failed submission leaves the rows exactly as they were.
func (s *workspaceService) Submit(ctx context.Context, id uuid.UUID) (*SubmitResult, error) {
	w, err := s.get(id)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	if w.inFlight {
		w.mu.Unlock()
		return nil, domain.ErrSubmitInFlight
	}
	w.inFlight = true
	batch := w.store.Batch(w.octx)
	w.mu.Unlock()

	outcome, err := s.submissions.Submit(ctx, batch)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false
	w.lastUsed = s.now()
	if err != nil {
		return nil, err
	}
	w.store.Reset()
	w.generation++
	return &SubmitResult{Outcome: outcome, Workspace: s.snapshot(w)}, nil
}

func (s *workspaceService) mutate(id uuid.UUID, fn func(w *workspace) error) (*Snapshot, error) {
	w, err := s.get(id)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, domain.ErrWorkspaceNotFound
	}
	if w.inFlight {
		return nil, domain.ErrSubmitInFlight
	}
	if err := fn(w); err != nil {
		return nil, err
	}
	w.lastUsed = s.now()
	return s.snapshot(w), nil
}

func (s *workspaceService) get(id uuid.UUID) (*workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workspaces[id]
	if !ok {
		return nil, domain.ErrWorkspaceNotFound
	}
	return w, nil
}

func (s *workspaceService) fetchAssignments(ctx context.Context, octx domain.OperatingContext) ([]domain.AssignmentRecord, error) {
	start := time.Now()
	records, err := s.assignments.ListAssigned(ctx, port.AssignmentQuery{
		Status:     domain.AssignmentStatusAssigned,
		UserID:     octx.UserID,
		LabID:      octx.LabID,
		Purpose:    octx.TestingPurpose,
		DeviceType: octx.DeviceType,
	})
	if err != nil {
		metrics.ObserveFetch("assignments", metrics.ResultError, time.Since(start))
		return nil, err
	}
	metrics.ObserveFetch("assignments", metrics.ResultSuccess, time.Since(start))
	return records, nil
}

// sweep evicts idle workspaces. It runs on Open rather than on a timer.
func (s *workspaceService) sweep() {
	if s.opts.MaxIdle <= 0 {
		return
	}
	cutoff := s.now().Add(-s.opts.MaxIdle)

	s.mu.Lock()
	var evicted []uuid.UUID
	for id, w := range s.workspaces {
		w.mu.Lock()
		if !w.inFlight && w.lastUsed.Before(cutoff) {
			w.closed = true
			delete(s.workspaces, id)
			evicted = append(evicted, id)
		}
		w.mu.Unlock()
	}
	n := len(s.workspaces)
	s.mu.Unlock()

	if len(evicted) > 0 {
		metrics.SetOpenWorkspaces(n)
		s.logger.Info("evicted idle workspaces", zap.Int("count", len(evicted)))
	}
}

// snapshot copies the workspace state. Caller holds w.mu.
func (s *workspaceService) snapshot(w *workspace) *Snapshot {
	profile := w.store.Profile()
	return &Snapshot{
		ID:             w.id,
		ReportType:     profile.Type,
		Profile:        profile,
		Context:        w.octx,
		Header:         w.store.Header(),
		Rows:           w.store.Rows(),
		RowCount:       w.store.Len(),
		Warnings:       w.store.Warnings(),
		Assignments:    w.index.Entries(),
		Enums:          w.enums,
		Generation:     w.generation,
		SubmitInFlight: w.inFlight,
		UpdatedAt:      w.lastUsed,
	}
}
