package repository

import (
	"context"
	"errors"

	"github.com/cinex/cinema-ticketing/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

func (p *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking, showtime *domain.Showtime) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		err := updateSeatMap(ctx, tx, showtime)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO bookings (
				user_id,
				showtime_id,
				seat_indices,
				ticket_count,
				total_amount,
				status
			)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at
		`

		return tx.QueryRow(
			ctx,
			query,
			booking.UserID,
			booking.ShowtimeID,
			booking.SeatIndices,
			booking.TicketCount,
			booking.TotalAmount,
			booking.Status,
		).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	})
}

func (p *PostgresBookingRepository) UpdateWithShowtime(
	ctx context.Context,
	booking *domain.Booking,
	from domain.BookingStatus,
	showtime *domain.Showtime) error {

	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		err := updateSeatMap(ctx, tx, showtime)
		if err != nil {
			return err
		}

		query := `
			UPDATE bookings
			SET status = $1, seats_released = $2, updated_at = NOW()
			WHERE id = $3 AND status = $4 AND NOT seats_released
			RETURNING updated_at
		`

		err = tx.QueryRow(ctx, query, booking.Status, booking.SeatsReleased, booking.ID, from).Scan(&booking.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrEditConflict
			}

			return err
		}

		return nil
	})
}

// lockBooking reads a booking's status and amount and holds its row lock
// until tx ends, so status checks stay valid for the rest of tx.
func lockBooking(ctx context.Context, tx pgx.Tx, id int) (domain.BookingStatus, decimal.Decimal, error) {
	var (
		status domain.BookingStatus
		amount decimal.Decimal
	)

	err := tx.QueryRow(ctx, `SELECT status, total_amount FROM bookings WHERE id = $1 FOR UPDATE`, id).
		Scan(&status, &amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", decimal.Decimal{}, domain.ErrRecordNotFound
		}

		return "", decimal.Decimal{}, err
	}

	return status, amount, nil
}

// updateSeatMap writes the showtime's seat state if nobody changed the row
// since it was read, and moves showtime.Version forward.
func updateSeatMap(ctx context.Context, tx pgx.Tx, showtime *domain.Showtime) error {
	query := `
		UPDATE showtimes
		SET seat_map = $1, available_seats = $2, version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`

	err := tx.QueryRow(
		ctx,
		query,
		showtime.SeatMap.String(),
		showtime.AvailableSeats,
		showtime.ID,
		showtime.Version,
	).Scan(&showtime.Version)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrEditConflict
		}

		return err
	}

	return nil
}

func (p *PostgresBookingRepository) GetById(ctx context.Context, id int) (*domain.Booking, error) {
	query := `
		SELECT
			b.id,
			b.user_id,
			b.showtime_id,
			b.seat_indices,
			b.ticket_count,
			b.total_amount,
			b.status,
			b.seats_released,
			s.seats_per_row,
			b.created_at,
			b.updated_at
		FROM bookings b
		JOIN showtimes s ON b.showtime_id = s.id
		WHERE b.id = $1
	`

	var booking domain.Booking

	err := p.db.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ShowtimeID,
		&booking.SeatIndices,
		&booking.TicketCount,
		&booking.TotalAmount,
		&booking.Status,
		&booking.SeatsReleased,
		&booking.SeatsPerRow,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &booking, nil
}

func (p *PostgresBookingRepository) GetSummariesByUserId(ctx context.Context, userID int) ([]domain.BookingSummary, error) {
	query := `
		SELECT
			b.id,
			m.title,
			c.name,
			s.start_time,
			b.seat_indices,
			s.seats_per_row,
			b.ticket_count,
			b.total_amount,
			b.status,
			b.created_at
		FROM bookings b
		JOIN showtimes s ON b.showtime_id = s.id
		JOIN movies m ON s.movie_id = m.id
		JOIN cinemas c ON s.cinema_id = c.id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
	`

	rows, err := p.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.BookingSummary, 0)

	for rows.Next() {
		var booking domain.BookingSummary

		err := rows.Scan(
			&booking.BookingID,
			&booking.MovieTitle,
			&booking.CinemaName,
			&booking.StartTime,
			&booking.SeatIndices,
			&booking.SeatsPerRow,
			&booking.TicketCount,
			&booking.TotalAmount,
			&booking.Status,
			&booking.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		bookings = append(bookings, booking)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (p *PostgresBookingRepository) ExistsForShowtime(ctx context.Context, showtimeID int) (bool, error) {
	var exists bool

	err := p.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE showtime_id = $1)`, showtimeID).
		Scan(&exists)

	return exists, err
}
