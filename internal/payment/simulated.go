// Package payment holds the payment collaborator. There is no gateway: a
// charge always succeeds and yields a fresh transaction id.
package payment

import (
	"context"
	"fmt"
	"slices"

	"github.com/cinex/cinema-ticketing/internal/domain"
	"github.com/google/uuid"
)

type SimulatedProvider struct {
	newID func() uuid.UUID
}

func NewSimulatedProvider() *SimulatedProvider {
	return &SimulatedProvider{newID: uuid.New}
}

func (p *SimulatedProvider) Charge(ctx context.Context, booking *domain.Booking, method string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if !slices.Contains(domain.PaymentMethods, method) {
		return "", fmt.Errorf("%w: unsupported payment method %q", domain.ErrInvalidRequest, method)
	}

	if booking.TotalAmount.IsNegative() {
		return "", fmt.Errorf("%w: negative amount", domain.ErrInvalidRequest)
	}

	return p.newID().String(), nil
}
