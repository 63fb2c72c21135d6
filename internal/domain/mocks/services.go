package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"clusterflow/internal/domain/entities"
)

// MockRangeTradeSource is a mock implementation of RangeTradeSource
type MockRangeTradeSource struct {
	mock.Mock
	Name entities.Exchange
}

func (m *MockRangeTradeSource) Exchange() entities.Exchange {
	return m.Name
}

func (m *MockRangeTradeSource) FetchRange(ctx context.Context, symbol string, start, end time.Time, limit int) ([]*entities.Trade, error) {
	args := m.Called(ctx, symbol, start, end, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Trade), args.Error(1)
}

// MockRecentTradeSource is a mock implementation of RecentTradeSource
type MockRecentTradeSource struct {
	mock.Mock
	Name entities.Exchange
}

func (m *MockRecentTradeSource) Exchange() entities.Exchange {
	return m.Name
}

func (m *MockRecentTradeSource) FetchRecent(ctx context.Context, symbol string, limit int) ([]*entities.Trade, error) {
	args := m.Called(ctx, symbol, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Trade), args.Error(1)
}
