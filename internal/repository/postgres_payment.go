package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/cinex/cinema-ticketing/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPostgresPaymentRepository(db *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		db: db,
	}
}

// Complete records a completed payment for a Confirmed booking. The amount
// is taken from the booking row, which stays locked until the payment is
// stored.
func (p *PostgresPaymentRepository) Complete(ctx context.Context, payment *domain.Payment) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		status, amount, err := lockBooking(ctx, tx, payment.BookingID)
		if err != nil {
			return err
		}

		if status != domain.BookingStatusConfirmed {
			return fmt.Errorf("%w: booking %d is %s", domain.ErrInvalidState, payment.BookingID, status)
		}

		query := `
			INSERT INTO payments (
				booking_id,
				amount,
				method,
				transaction_id,
				status,
				notes
			)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, payment_date
		`

		err = tx.QueryRow(
			ctx,
			query,
			payment.BookingID,
			amount,
			payment.Method,
			payment.TransactionID,
			domain.PaymentStatusCompleted,
			payment.Notes,
		).Scan(&payment.ID, &payment.PaymentDate)

		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrAlreadyPaid
			}

			return err
		}

		payment.Amount = amount
		payment.Status = domain.PaymentStatusCompleted

		return nil
	})
}

// Refund moves the completed payment of a Confirmed booking and the booking
// itself to Refunded. Seats stay occupied.
func (p *PostgresPaymentRepository) Refund(ctx context.Context, bookingID int, notes string) (*domain.Payment, error) {
	var payment domain.Payment

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		status, _, err := lockBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		if status != domain.BookingStatusConfirmed {
			return fmt.Errorf("%w: booking %d is %s", domain.ErrInvalidState, bookingID, status)
		}

		query := `
			UPDATE payments
			SET status = $1, notes = $2
			WHERE booking_id = $3 AND status = $4
			RETURNING id, booking_id, amount, method, transaction_id, status, notes, payment_date
		`

		err = tx.QueryRow(
			ctx,
			query,
			domain.PaymentStatusRefunded,
			notes,
			bookingID,
			domain.PaymentStatusCompleted,
		).Scan(
			&payment.ID,
			&payment.BookingID,
			&payment.Amount,
			&payment.Method,
			&payment.TransactionID,
			&payment.Status,
			&payment.Notes,
			&payment.PaymentDate,
		)

		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: booking %d has no completed payment", domain.ErrInvalidState, bookingID)
			}

			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2`,
			domain.BookingStatusRefunded,
			bookingID,
		)

		return err
	})

	if err != nil {
		return nil, err
	}

	return &payment, nil
}
