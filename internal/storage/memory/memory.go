// Package memory is an in-process cost store for tests and ephemeral runs.
package memory

import (
	"context"
	"sync"
	"time"

	"costmanager/internal/core"
	"costmanager/internal/storage"
)

type Store struct {
	mu       sync.Mutex
	closed   bool
	nextID   int64
	items    []core.CostRecord
	settings map[string]string
	now      func() time.Time
}

func New() *Store {
	return &Store{settings: map[string]string{}, now: time.Now}
}

// NewWithClock returns a store that stamps records with now.
func NewWithClock(now func() time.Time) *Store {
	s := New()
	if now != nil {
		s.now = now
	}
	return s
}

// InsertCost stores the draft and returns the full record.
func (s *Store) InsertCost(_ context.Context, d core.CostDraft) (core.CostRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.CostRecord{}, core.StoreNotOpen("add cost")
	}
	if err := d.Validate(); err != nil {
		return core.CostRecord{}, err
	}
	s.nextID++
	rec := core.NewCostRecord(d, s.now())
	rec.ID = s.nextID
	s.items = append(s.items, rec)
	return rec, nil
}

func (s *Store) AddCost(ctx context.Context, d core.CostDraft) (core.CostDraft, error) {
	rec, err := s.InsertCost(ctx, d)
	if err != nil {
		return core.CostDraft{}, err
	}
	return rec.Draft(), nil
}

// QueryByPeriod returns matching records in insertion order.
func (s *Store) QueryByPeriod(_ context.Context, year int, month *int) ([]core.CostRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, core.StoreNotOpen("query by period")
	}
	out := make([]core.CostRecord, 0)
	for _, r := range s.items {
		if r.Year != year {
			continue
		}
		if month != nil && r.Month != *month {
			continue
		}
		if r.Month < 1 || r.Month > 12 {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) PutSetting(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.StoreNotOpen("put setting")
	}
	s.settings[key] = value
	return nil
}

func (s *Store) GetSetting(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, core.StoreNotOpen("get setting")
	}
	v, ok := s.settings[key]
	return v, ok, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

var _ storage.CostStore = (*Store)(nil)
