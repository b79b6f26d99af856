package mocks

import (
	"context"

	"github.com/cinex/cinema-ticketing/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockPaymentProvider struct {
	mock.Mock
	domain.PaymentProvider
}

func (m *MockPaymentProvider) Charge(ctx context.Context, booking *domain.Booking, method string) (string, error) {
	args := m.Called(ctx, booking, method)
	return args.String(0), args.Error(1)
}
