package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusFailed    PaymentStatus = "Failed"
	PaymentStatusRefunded  PaymentStatus = "Refunded"
)

var PaymentMethods = []string{"Credit Card", "Debit Card", "PayPal", "Online Banking"}

type Payment struct {
	ID            int
	BookingID     int
	Amount        decimal.Decimal
	Method        string
	TransactionID string
	Status        PaymentStatus
	Notes         string
	PaymentDate   time.Time
}

type PaymentRepository interface {
	// Complete stores a completed payment for the booking. It returns
	// ErrAlreadyPaid if the booking already has one.
	Complete(ctx context.Context, payment *Payment) error
	// Refund flips the booking's completed payment and the booking itself to
	// Refunded. Seats are left untouched.
	Refund(ctx context.Context, bookingID int, notes string) (*Payment, error)
}
