package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"costmanager/internal/core"
	"costmanager/internal/storage/memory"
)

// MockPublisher is a mock implementation of Publisher for testing
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishCostRecorded(ctx context.Context, rec core.CostRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

var lunch = core.CostDraft{Sum: 10, Currency: core.USD, Category: "Food", Description: "lunch"}

func TestCostService_AddCostPublishes(t *testing.T) {
	ctx := context.Background()
	pub := new(MockPublisher)
	pub.On("PublishCostRecorded", ctx, mock.MatchedBy(func(r core.CostRecord) bool {
		return r.ID == 1 && r.Sum == 10 && r.Category == "Food"
	})).Return(nil).Once()

	svc := NewCostService(memory.New(), pub)
	got, err := svc.AddCost(ctx, lunch)

	require.NoError(t, err)
	assert.Equal(t, lunch, got)
	pub.AssertExpectations(t)
}

func TestCostService_PublishFailureDoesNotFailAdd(t *testing.T) {
	ctx := context.Background()
	pub := new(MockPublisher)
	pub.On("PublishCostRecorded", ctx, mock.Anything).Return(errors.New("broker down"))

	store := memory.New()
	svc := NewCostService(store, pub)
	_, err := svc.AddCost(ctx, lunch)
	require.NoError(t, err)

	recs, err := store.QueryByPeriod(ctx, time.Now().Year(), nil)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
	pub.AssertExpectations(t)
}

func TestCostService_InvalidDraftIsNotPublished(t *testing.T) {
	ctx := context.Background()
	pub := new(MockPublisher)

	svc := NewCostService(memory.New(), pub)
	_, err := svc.AddCost(ctx, core.CostDraft{Sum: -1, Currency: core.USD})

	assert.ErrorIs(t, err, core.ErrInvalidCostInput)
	pub.AssertNotCalled(t, "PublishCostRecorded", mock.Anything, mock.Anything)
}

func TestCostService_WithoutPublisher(t *testing.T) {
	svc := NewCostService(memory.New(), nil)
	_, err := svc.AddCost(context.Background(), lunch)
	require.NoError(t, err)
	require.NoError(t, svc.Close())
}

func TestCostService_Close(t *testing.T) {
	t.Run("nil components", func(t *testing.T) {
		svc := &CostService{}
		assert.NoError(t, svc.Close())
	})

	t.Run("collects errors", func(t *testing.T) {
		pub := new(MockPublisher)
		pub.On("Close").Return(errors.New("channel closed"))

		store := memory.New()
		svc := NewCostService(store, pub)
		err := svc.Close()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "amqp")
		_, err = store.QueryByPeriod(context.Background(), 2024, nil)
		assert.ErrorIs(t, err, core.ErrStoreNotOpen)
	})
}
