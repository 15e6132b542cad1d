package services

import (
	"context"
	"fmt"
	"log/slog"

	"costmanager/internal/core"
	applog "costmanager/internal/log"
	"costmanager/internal/storage"
)

// Publisher announces stored costs to other processes.
type Publisher interface {
	PublishCostRecorded(ctx context.Context, rec core.CostRecord) error
	Close() error
}

// CostService stores costs and publishes a cost.recorded event for each.
type CostService struct {
	store     storage.CostStore
	publisher Publisher
}

// NewCostService wires store and an optional publisher. A nil publisher
// disables events.
func NewCostService(store storage.CostStore, publisher Publisher) *CostService {
	return &CostService{
		store:     store,
		publisher: publisher,
	}
}

// AddCost saves the draft and returns the confirmed fields. Publishing is
// best effort: the cost is already stored when it runs.
func (s *CostService) AddCost(ctx context.Context, draft core.CostDraft) (core.CostDraft, error) {
	rec, err := s.store.InsertCost(ctx, draft)
	if err != nil {
		return core.CostDraft{}, fmt.Errorf("save cost: %w", err)
	}

	slog.InfoContext(ctx, "Cost recorded",
		applog.FieldComponent, applog.ComponentCost,
		"id", rec.ID,
		"currency", rec.Currency,
		"category", rec.Category,
		"year", rec.Year,
		"month", rec.Month)

	if err := s.publish(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "Failed to publish cost recorded message",
			applog.FieldComponent, applog.ComponentCost,
			"id", rec.ID, "error", err)
	}

	return rec.Draft(), nil
}

func (s *CostService) publish(ctx context.Context, rec core.CostRecord) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping cost event", applog.FieldComponent, applog.ComponentCost)
		return nil
	}
	return s.publisher.PublishCostRecorded(ctx, rec)
}

// Close closes both the store and the publisher.
func (s *CostService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close cost service: %v", errs)
	}

	return nil
}
