package mocks

import (
	"context"

	"github.com/cinex/cinema-ticketing/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepo struct {
	mock.Mock
	domain.BookingRepository
}

func (m *MockBookingRepo) Create(ctx context.Context, booking *domain.Booking, showtime *domain.Showtime) error {
	args := m.Called(ctx, booking, showtime)
	return args.Error(0)
}

func (m *MockBookingRepo) UpdateWithShowtime(
	ctx context.Context,
	booking *domain.Booking,
	from domain.BookingStatus,
	showtime *domain.Showtime) error {

	args := m.Called(ctx, booking, from, showtime)
	return args.Error(0)
}

func (m *MockBookingRepo) GetById(ctx context.Context, id int) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) GetSummariesByUserId(ctx context.Context, userID int) ([]domain.BookingSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingSummary), args.Error(1)
}

func (m *MockBookingRepo) ExistsForShowtime(ctx context.Context, showtimeID int) (bool, error) {
	args := m.Called(ctx, showtimeID)
	return args.Bool(0), args.Error(1)
}
