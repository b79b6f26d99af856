package mocks

import (
	"context"

	"github.com/cinex/cinema-ticketing/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockSeatBooker struct {
	mock.Mock
	domain.SeatBooker
}

func (m *MockSeatBooker) BookSeats(ctx context.Context, showtimeID, userID int, seatIndices []int) (*domain.Booking, error) {
	args := m.Called(ctx, showtimeID, userID, seatIndices)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockSeatBooker) BookTickets(ctx context.Context, showtimeID, userID, count int) (*domain.Booking, error) {
	args := m.Called(ctx, showtimeID, userID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockBookingCanceller struct {
	mock.Mock
	domain.BookingCanceller
}

func (m *MockBookingCanceller) Cancel(ctx context.Context, bookingID, userID int) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingCanceller) ReleaseSeats(ctx context.Context, bookingID int) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
