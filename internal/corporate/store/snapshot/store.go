// Package snapshot loads the corporate structure and asset metrics documents
// once and serves them read-only for the life of the process.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"equityshield/internal/corporate/models"
	"equityshield/internal/platform/metrics"
	dErrors "equityshield/pkg/domain-errors"
	"equityshield/pkg/platform/audit"
	"equityshield/pkg/requestcontext"
)

const (
	datasetStructure = "corporate_structure"
	datasetMetrics   = "asset_metrics"
)

// Store reads snapshot files from fsys. Concurrent cold loads of a dataset
// share one read; a successful load is kept forever and a failed one is
// retried by the next caller.
type Store struct {
	fsys          fs.FS
	structureFile string
	metricsFile   string

	group singleflight.Group

	mu        sync.RWMutex
	structure *models.CorporateStructure
	table     models.MetricsTable

	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor audit.Emitter
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

func WithAuditor(a audit.Emitter) Option {
	return func(s *Store) {
		s.auditor = a
	}
}

func New(fsys fs.FS, structureFile, metricsFile string, opts ...Option) *Store {
	s := &Store{
		fsys:          fsys,
		structureFile: structureFile,
		metricsFile:   metricsFile,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Structure returns the corporate structure, loading it on first use.
// A missing or malformed file yields data_unavailable.
func (s *Store) Structure(ctx context.Context) (*models.CorporateStructure, error) {
	if cs := s.cachedStructure(); cs != nil {
		return cs, nil
	}
	v, err := s.load(ctx, datasetStructure, func() (any, error) {
		if cs := s.cachedStructure(); cs != nil {
			return cs, nil
		}
		cs, err := s.readStructure()
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.structure = cs
		s.mu.Unlock()
		return cs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.CorporateStructure), nil
}

// Metrics returns the ticker metrics table. A missing file is an empty
// table; a malformed one yields data_unavailable.
func (s *Store) Metrics(ctx context.Context) (models.MetricsTable, error) {
	if t := s.cachedTable(); t != nil {
		return t, nil
	}
	v, err := s.load(ctx, datasetMetrics, func() (any, error) {
		if t := s.cachedTable(); t != nil {
			return t, nil
		}
		t, err := s.readMetrics()
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.table = t
		s.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(models.MetricsTable), nil
}

func (s *Store) cachedStructure() *models.CorporateStructure {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.structure
}

func (s *Store) cachedTable() models.MetricsTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// load runs fn at most once per dataset at a time. Callers stop waiting when
// ctx ends; the load itself runs to completion for the others.
func (s *Store) load(ctx context.Context, dataset string, fn func() (any, error)) (any, error) {
	loadCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(dataset, func() (any, error) {
		start := time.Now()
		v, err := fn()
		s.observe(loadCtx, dataset, start, err)
		return v, err
	})

	select {
	case <-ctx.Done():
		return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeInternal, "request cancelled while loading data")
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (s *Store) observe(ctx context.Context, dataset string, start time.Time, err error) {
	requestID := requestcontext.RequestID(ctx)
	if err != nil {
		s.metrics.IncrementSnapshotLoad(dataset, "error")
		s.logger.ErrorContext(ctx, "snapshot load failed",
			"dataset", dataset,
			"request_id", requestID,
			"error", err,
		)
		return
	}

	s.metrics.IncrementSnapshotLoad(dataset, "success")
	s.logger.InfoContext(ctx, "snapshot loaded",
		"dataset", dataset,
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if s.auditor == nil {
		return
	}
	event := audit.NewEvent(audit.EventSnapshotLoaded, requestcontext.Now(ctx))
	event.Subject = dataset
	event.RequestID = requestID
	if emitErr := s.auditor.Emit(ctx, event); emitErr != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", emitErr)
	}
}

func (s *Store) readStructure() (*models.CorporateStructure, error) {
	raw, err := fs.ReadFile(s.fsys, s.structureFile)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeDataUnavailable, "Corporate structure data is unavailable")
	}
	if !isObject(raw) {
		return nil, dErrors.New(dErrors.CodeDataUnavailable, "Corporate structure data is malformed")
	}
	var cs models.CorporateStructure
	if err := json.Unmarshal(raw, &cs); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeDataUnavailable, "Corporate structure data is malformed")
	}
	return &cs, nil
}

func (s *Store) readMetrics() (models.MetricsTable, error) {
	raw, err := fs.ReadFile(s.fsys, s.metricsFile)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("asset metrics file not found, serving an empty table", "file", s.metricsFile)
		return models.MetricsTable{}, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeDataUnavailable, "Asset metrics data is unavailable")
	}
	if !isObject(raw) {
		return nil, dErrors.New(dErrors.CodeDataUnavailable, "Asset metrics data is malformed")
	}
	table := models.MetricsTable{}
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeDataUnavailable, "Asset metrics data is malformed")
	}
	return table, nil
}

func isObject(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
