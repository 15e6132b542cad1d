package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"costmanager/internal/core"
	applog "costmanager/internal/log"

	_ "modernc.org/sqlite"
)

// handle is a shared database connection for one store file. Stores opened
// on the same file share a handle; the last Close releases it.
type handle struct {
	path    string
	version uint
	db      *sql.DB
	queries *Queries
	refs    int
}

var registry = struct {
	mu      sync.Mutex
	handles map[string]*handle
	group   singleflight.Group
}{handles: map[string]*handle{}}

// SQLiteStore is the durable cost store. It must be obtained from Open; a
// zero value or a closed store fails every operation with StoreNotOpen.
type SQLiteStore struct {
	mu  sync.RWMutex
	h   *handle
	now func() time.Time
}

type Option func(*SQLiteStore)

// WithClock overrides the clock used to stamp new records.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens (creating on first use) the store name inside dir and upgrades
// its schema to version. Opening the same file again at the same version
// reuses the existing connection.
func Open(ctx context.Context, dir, name string, version uint, opts ...Option) (*SQLiteStore, error) {
	if name == "" {
		return nil, core.StoreUnavailable("open", errors.New("store name is required"))
	}
	if version == 0 {
		return nil, core.StoreUnavailable("open", errors.New("store version must be positive"))
	}
	if dir == "" {
		dir = "."
	}
	path, err := filepath.Abs(filepath.Join(dir, name+".db"))
	if err != nil {
		return nil, core.StoreUnavailable("open", err)
	}

	h, err := acquire(ctx, path, version)
	if err != nil {
		return nil, core.StoreUnavailable("open", err)
	}

	s := &SQLiteStore{h: h, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func acquire(ctx context.Context, path string, version uint) (*handle, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		registry.mu.Lock()
		if h, ok := registry.handles[path]; ok && h.version >= version {
			if h.version > version {
				registry.mu.Unlock()
				return nil, fmt.Errorf("open at version %d (stored %d): %w", version, h.version, ErrVersionDowngrade)
			}
			h.refs++
			registry.mu.Unlock()
			return h, nil
		}
		registry.mu.Unlock()

		// Concurrent callers share one open+migrate, then loop to take their
		// own reference.
		if _, err, _ := registry.group.Do(path, func() (any, error) {
			return nil, openHandle(path, version)
		}); err != nil {
			return nil, err
		}
	}
}

func dsn(path string) string {
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func openHandle(path string, version uint) error {
	registry.mu.Lock()
	existing := registry.handles[path]
	registry.mu.Unlock()

	if existing != nil {
		if err := RunMigrations(dsn(path), version); err != nil {
			return err
		}
		registry.mu.Lock()
		if existing.version < version {
			existing.version = version
		}
		registry.mu.Unlock()
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY
	// between our own goroutines.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn(path), version); err != nil {
		db.Close()
		return err
	}

	registry.mu.Lock()
	registry.handles[path] = &handle{path: path, version: version, db: db, queries: New(db)}
	registry.mu.Unlock()

	slog.Info("Opened cost store", applog.FieldComponent, applog.ComponentStorage, "path", path, "version", version)
	return nil
}

func release(h *handle) error {
	registry.mu.Lock()
	h.refs--
	if h.refs > 0 {
		registry.mu.Unlock()
		return nil
	}
	delete(registry.handles, h.path)
	registry.mu.Unlock()
	return h.db.Close()
}

// Close releases the store. Further operations fail with StoreNotOpen.
// Closing twice is a no-op.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.h == nil {
		return nil
	}
	h := s.h
	s.h = nil
	return release(h)
}

func (s *SQLiteStore) queries(op string) (*Queries, error) {
	if s == nil {
		return nil, core.StoreNotOpen(op)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.h == nil {
		return nil, core.StoreNotOpen(op)
	}
	return s.h.queries, nil
}

// InsertCost persists draft stamped with the current instant and returns the
// stored record.
func (s *SQLiteStore) InsertCost(ctx context.Context, draft core.CostDraft) (core.CostRecord, error) {
	q, err := s.queries("add cost")
	if err != nil {
		return core.CostRecord{}, err
	}
	if err := draft.Validate(); err != nil {
		return core.CostRecord{}, err
	}

	rec := core.NewCostRecord(draft, s.now())
	row, err := q.CreateCost(ctx, CreateCostParams{
		Sum:         rec.Sum,
		Currency:    string(rec.Currency),
		Category:    rec.Category,
		Description: rec.Description,
		Date:        rec.Date.Format(time.RFC3339Nano),
		Year:        int64(rec.Year),
		Month:       int64(rec.Month),
	})
	if err != nil {
		return core.CostRecord{}, core.StoreUnavailable("add cost", err)
	}

	slog.DebugContext(ctx, "Cost saved to SQLite",
		applog.FieldComponent, applog.ComponentStorage,
		"id", row.ID,
		"currency", row.Currency,
		"year", row.Year,
		"month", row.Month)

	return toRecord(row)
}

// AddCost implements CostWriter.
func (s *SQLiteStore) AddCost(ctx context.Context, draft core.CostDraft) (core.CostDraft, error) {
	rec, err := s.InsertCost(ctx, draft)
	if err != nil {
		return core.CostDraft{}, err
	}
	return rec.Draft(), nil
}

// QueryByPeriod implements PeriodReader.
func (s *SQLiteStore) QueryByPeriod(ctx context.Context, year int, month *int) ([]core.CostRecord, error) {
	q, err := s.queries("query by period")
	if err != nil {
		return nil, err
	}

	var rows []Cost
	if month == nil {
		rows, err = q.ListCostsByYear(ctx, int64(year))
	} else {
		rows, err = q.ListCostsByMonth(ctx, ListCostsByMonthParams{Year: int64(year), Month: int64(*month)})
	}
	if err != nil {
		return nil, core.StoreUnavailable("query by period", err)
	}

	out := make([]core.CostRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := toRecord(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// PutSetting implements SettingsStore.
func (s *SQLiteStore) PutSetting(ctx context.Context, key, value string) error {
	q, err := s.queries("put setting")
	if err != nil {
		return err
	}
	if err := q.UpsertSetting(ctx, UpsertSettingParams{Key: key, Value: value}); err != nil {
		return core.StoreUnavailable("put setting", err)
	}
	return nil
}

// GetSetting implements SettingsStore.
func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, bool, error) {
	q, err := s.queries("get setting")
	if err != nil {
		return "", false, err
	}
	row, err := q.GetSetting(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, core.StoreUnavailable("get setting", err)
	}
	return row.Value, true, nil
}

func toRecord(row Cost) (core.CostRecord, error) {
	date, err := time.Parse(time.RFC3339Nano, row.Date)
	if err != nil {
		return core.CostRecord{}, core.StoreUnavailable("decode cost", fmt.Errorf("cost %d: %w", row.ID, err))
	}
	return core.CostRecord{
		ID:          row.ID,
		Sum:         row.Sum,
		Currency:    core.Currency(row.Currency),
		Category:    row.Category,
		Description: row.Description,
		Date:        date,
		Year:        int(row.Year),
		Month:       int(row.Month),
	}, nil
}

var _ CostStore = (*SQLiteStore)(nil)
