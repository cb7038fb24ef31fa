// Package store holds the working record sequence, its transform options and
// the chart configuration for one dashboard.
//
// The Store is the only writer of the sequence. Readers always receive
// copies. Every change recomputes the derived sequence (sort, then normalize)
// and is written through the Persistence port. Mutations log and count
// persistence failures instead of returning them, so the in-memory state stays
// authoritative for the running process; Sync reports them.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/JonMunkholm/ChartDash/internal/core"
	"github.com/JonMunkholm/ChartDash/internal/logging"
	"github.com/JonMunkholm/ChartDash/internal/metrics"
)

// DefaultSaveTimeout bounds a single persistence write.
const DefaultSaveTimeout = 5 * time.Second

// Store is the dataset store. It is safe for concurrent use.
type Store struct {
	persist     Persistence
	saveTimeout time.Duration

	mu      sync.RWMutex
	records []core.DataRecord
	opts    core.TransformOptions
	derived []core.DataRecord
	chart   core.ChartConfig

	// version counts changes; dataVersion and chartVersion record the
	// change that last touched each persisted key.
	version      uint64
	dataVersion  uint64
	chartVersion uint64

	saveMu sync.Mutex
	saved  map[string]uint64
}

// Option configures a Store.
type Option func(*Store)

// WithSaveTimeout overrides DefaultSaveTimeout.
func WithSaveTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.saveTimeout = d
		}
	}
}

// New creates a Store backed by p and loads any previously saved state.
// A nil p means nothing is persisted. Load failures leave the store empty.
func New(ctx context.Context, p Persistence, opts ...Option) *Store {
	if p == nil {
		p = NewMemoryKV()
	}
	s := &Store{
		persist:     p,
		saveTimeout: DefaultSaveTimeout,
		records:     []core.DataRecord{},
		derived:     []core.DataRecord{},
		chart:       core.DefaultChartConfig(),
		saved:       make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	logger := logging.FromContext(ctx)

	var rows []core.Row
	if ok := s.loadKey(ctx, KeyChartData, &rows); ok && len(rows) > 0 {
		records, err := core.Records(rows)
		if err != nil {
			metrics.PersistenceFailure("load")
			logger.Warn("ignoring persisted dataset", "rows", len(rows), "error", err)
		} else {
			s.records = records
		}
	}

	var chart core.ChartConfig
	if ok := s.loadKey(ctx, KeyChartConfig, &chart); ok {
		if err := chart.Validate(); err != nil {
			logger.Warn("ignoring persisted chart config", "error", err)
		} else {
			s.chart = chart
		}
	}

	s.derived = core.Apply(s.records, s.opts)
	metrics.SetDatasetSize(len(s.records))
	logger.Debug("dataset loaded", "records", len(s.records))
}

func (s *Store) loadKey(ctx context.Context, key string, dst any) bool {
	ctx, cancel := context.WithTimeout(ctx, s.saveTimeout)
	defer cancel()

	data, ok, err := s.persist.Load(ctx, key)
	if err != nil {
		metrics.PersistenceFailure("load")
		logging.FromContext(ctx).Error("failed to load persisted state", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		metrics.PersistenceFailure("load")
		logging.FromContext(ctx).Error("failed to decode persisted state", "key", key, "error", err)
		return false
	}
	return true
}

// Records returns a copy of the working sequence.
func (s *Store) Records() []core.DataRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Clone(s.records)
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Derived returns a copy of the sequence with sort and normalize applied.
func (s *Store) Derived() []core.DataRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Clone(s.derived)
}

// Options returns the current transform options.
func (s *Store) Options() core.TransformOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

// ChartConfig returns the current chart configuration.
func (s *Store) ChartConfig() core.ChartConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chart
}

// Replace swaps the whole working sequence.
func (s *Store) Replace(ctx context.Context, records []core.DataRecord) {
	s.mutateRecords(ctx, "replace", func(cur []core.DataRecord) ([]core.DataRecord, error) {
		return core.Clone(records), nil
	})
}

// Append adds records to the end of the sequence. Every record must pass
// core.ValidateRecord; if one fails nothing is added and the error wraps
// core.ErrInvalidRecord.
func (s *Store) Append(ctx context.Context, records ...core.DataRecord) error {
	for i, rec := range records {
		if err := core.ValidateRecord(rec); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	if len(records) == 0 {
		return nil
	}
	return s.mutateRecords(ctx, "append", func(cur []core.DataRecord) ([]core.DataRecord, error) {
		return append(cur, records...), nil
	})
}

// Update applies patch to the record at index.
// Returns core.ErrIndexOutOfRange for an index outside the sequence.
func (s *Store) Update(ctx context.Context, index int, patch core.RecordPatch) error {
	return s.mutateRecords(ctx, "update", func(cur []core.DataRecord) ([]core.DataRecord, error) {
		if index < 0 || index >= len(cur) {
			return nil, core.ErrIndexOutOfRange
		}
		if patch.Category != nil {
			cur[index].Category = *patch.Category
		}
		if patch.Value != nil {
			cur[index].Value = *patch.Value
		}
		return cur, nil
	})
}

// Remove deletes the record at index.
// Returns core.ErrIndexOutOfRange for an index outside the sequence.
func (s *Store) Remove(ctx context.Context, index int) error {
	return s.mutateRecords(ctx, "remove", func(cur []core.DataRecord) ([]core.DataRecord, error) {
		if index < 0 || index >= len(cur) {
			return nil, core.ErrIndexOutOfRange
		}
		return append(cur[:index], cur[index+1:]...), nil
	})
}

// Clear empties the sequence.
func (s *Store) Clear(ctx context.Context) {
	s.mutateRecords(ctx, "clear", func([]core.DataRecord) ([]core.DataRecord, error) {
		return []core.DataRecord{}, nil
	})
}

// SetOptions replaces the transform options and recomputes the derived sequence.
func (s *Store) SetOptions(ctx context.Context, opts core.TransformOptions) {
	s.mu.Lock()
	s.opts = opts
	s.derived = core.Apply(s.records, s.opts)
	s.mu.Unlock()

	logging.FromContext(ctx).Debug("transform options changed",
		"sort", opts.Sort, "normalize", opts.Normalize, "aggregate", opts.Aggregate)
}

// SetOption changes a single transform option by name: "sort", "normalize"
// or "aggregate".
func (s *Store) SetOption(ctx context.Context, name, value string) error {
	opts := s.Options()
	switch name {
	case "sort":
		dir, err := core.ParseSortDirection(value)
		if err != nil {
			return err
		}
		opts.Sort = dir
	case "normalize":
		opts.Normalize = value == "true" || value == "on" || value == "1"
	case "aggregate":
		method, err := core.ParseAggregateMethod(value)
		if err != nil {
			return err
		}
		opts.Aggregate = method
	default:
		return core.ValidationError{Field: name, Message: "unknown transform option"}
	}
	s.SetOptions(ctx, opts)
	return nil
}

// Aggregate groups the working sequence with method. When apply is true the
// result replaces the working sequence; otherwise the store is unchanged.
func (s *Store) Aggregate(ctx context.Context, method core.AggregateMethod, apply bool) []core.DataRecord {
	timer := metrics.TransformTimer("aggregate")
	out := core.Aggregate(s.Records(), method)
	timer.ObserveDuration()

	if apply {
		s.Replace(ctx, out)
	}
	return out
}

// SetChartConfig validates and stores cfg.
func (s *Store) SetChartConfig(ctx context.Context, cfg core.ChartConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.chart = cfg
	s.version++
	s.chartVersion = s.version
	version := s.version
	s.mu.Unlock()

	s.save(ctx, KeyChartConfig, version, cfg)
	return nil
}

// Chart builds the chart payload from the derived sequence.
func (s *Store) Chart() (core.Chart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.BuildChart(s.derived, s.chart)
}

// ExportCSV renders the working sequence as CSV; "" when empty.
func (s *Store) ExportCSV() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.ToCSV(s.records)
}

// mutateRecords runs fn on a private copy of the sequence and, if it succeeds,
// installs the result, recomputes the derived sequence and persists.
func (s *Store) mutateRecords(ctx context.Context, op string, fn func([]core.DataRecord) ([]core.DataRecord, error)) error {
	s.mu.Lock()
	next, err := fn(core.Clone(s.records))
	if err != nil {
		s.mu.Unlock()
		return err
	}

	timer := metrics.TransformTimer("derive")
	s.records = next
	s.derived = core.Apply(s.records, s.opts)
	timer.ObserveDuration()

	s.version++
	s.dataVersion = s.version
	version := s.version
	snapshot := core.Clone(s.records)
	s.mu.Unlock()

	metrics.SetDatasetSize(len(snapshot))
	logging.FromContext(ctx).Debug("dataset changed",
		"op", op, "records", len(snapshot), "source", core.SourceFromContext(ctx))

	s.save(ctx, KeyChartData, version, snapshot)
	return nil
}

// Sync writes any state whose last save failed and returns the first error.
// Mutations only log persistence failures; callers whose job is to persist,
// such as the CLI, call Sync to find out whether the write landed.
func (s *Store) Sync(ctx context.Context) error {
	s.mu.RLock()
	dataVersion, records := s.dataVersion, core.Clone(s.records)
	chartVersion, chart := s.chartVersion, s.chart
	s.mu.RUnlock()

	if err := s.write(ctx, KeyChartData, dataVersion, records); err != nil {
		return err
	}
	return s.write(ctx, KeyChartConfig, chartVersion, chart)
}

// save writes v under key and logs and counts any failure.
func (s *Store) save(ctx context.Context, key string, version uint64, v any) {
	if err := s.write(ctx, key, version, v); err != nil {
		metrics.PersistenceFailure("save")
		logging.FromContext(ctx).Error("failed to persist state", "key", key, "error", err)
	}
}

// write stores v under key unless the same or a newer version is already
// saved. Version 0 is the loaded state and is never written back.
func (s *Store) write(ctx context.Context, key string, version uint64, v any) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if s.saved[key] >= version {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.saveTimeout)
	defer cancel()

	if err := s.persist.Save(saveCtx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	s.saved[key] = version
	return nil
}

// Close releases the persistence backend.
func (s *Store) Close() error {
	return s.persist.Close()
}
