package domain

import "context"

type PaymentProvider interface {
	Charge(ctx context.Context, booking *Booking, method string) (transactionID string, err error)
}
