package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"clusterflow/internal/domain/entities"
)

// MockTradeRepository is a mock implementation of TradeRepository
type MockTradeRepository struct {
	mock.Mock
}

func (m *MockTradeRepository) Save(ctx context.Context, trade *entities.Trade) error {
	args := m.Called(ctx, trade)
	return args.Error(0)
}

func (m *MockTradeRepository) SaveBatch(ctx context.Context, trades []*entities.Trade) error {
	args := m.Called(ctx, trades)
	return args.Error(0)
}

func (m *MockTradeRepository) GetByID(ctx context.Context, id string) (*entities.Trade, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Trade), args.Error(1)
}

func (m *MockTradeRepository) GetSince(ctx context.Context, symbol string, exchange entities.Exchange, since time.Time) ([]*entities.Trade, error) {
	args := m.Called(ctx, symbol, exchange, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Trade), args.Error(1)
}

func (m *MockTradeRepository) CountBySymbol(ctx context.Context, symbol string, exchange entities.Exchange) (int64, error) {
	args := m.Called(ctx, symbol, exchange)
	return args.Get(0).(int64), args.Error(1)
}
