package mocks

import (
	"context"

	"github.com/cinex/cinema-ticketing/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockConcessionRepo struct {
	mock.Mock
	domain.ConcessionRepository
}

func (m *MockConcessionRepo) GetAvailable(ctx context.Context) ([]*domain.Concession, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Concession), args.Error(1)
}

func (m *MockConcessionRepo) CreateOrder(ctx context.Context, bookingID int, lines []domain.ConcessionLine) (*domain.ConcessionOrder, error) {
	args := m.Called(ctx, bookingID, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConcessionOrder), args.Error(1)
}

func (m *MockConcessionRepo) GetOrdersByUserId(ctx context.Context, userID int) ([]*domain.ConcessionOrder, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ConcessionOrder), args.Error(1)
}
