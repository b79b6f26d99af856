package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/cinex/cinema-ticketing/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresConcessionRepository struct {
	db *pgxpool.Pool
}

func NewPostgresConcessionRepository(db *pgxpool.Pool) *PostgresConcessionRepository {
	return &PostgresConcessionRepository{
		db: db,
	}
}

func (p *PostgresConcessionRepository) GetAvailable(ctx context.Context) ([]*domain.Concession, error) {
	query := `
		SELECT
			id,
			name,
			description,
			category,
			price,
			stock_quantity,
			is_available,
			is_vegetarian,
			is_vegan,
			contains_nuts,
			contains_dairy
		FROM concessions
		WHERE is_available
		ORDER BY category, name
	`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	concessions := make([]*domain.Concession, 0)

	for rows.Next() {
		var c domain.Concession

		err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Description,
			&c.Category,
			&c.Price,
			&c.StockQuantity,
			&c.IsAvailable,
			&c.IsVegetarian,
			&c.IsVegan,
			&c.ContainsNuts,
			&c.ContainsDairy,
		)
		if err != nil {
			return nil, err
		}

		concessions = append(concessions, &c)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return concessions, nil
}

// CreateOrder holds the booking row lock for the whole order, so a
// concurrent cancel or refund either waits for it or makes it fail. Stock
// rows are locked in concession id order.
func (p *PostgresConcessionRepository) CreateOrder(
	ctx context.Context,
	bookingID int,
	lines []domain.ConcessionLine) (*domain.ConcessionOrder, error) {

	order := domain.NewConcessionOrder(bookingID)

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		status, _, err := lockBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		if status != domain.BookingStatusConfirmed {
			return fmt.Errorf("%w: booking %d is %s", domain.ErrInvalidState, bookingID, status)
		}

		for _, line := range lines {
			concession, err := takeStock(ctx, tx, line)
			if err != nil {
				return err
			}

			order.Add(concession, line.Quantity)
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO concession_orders (booking_id, total_amount, status)
			VALUES ($1, $2, $3)
			RETURNING id, order_date`,
			order.BookingID,
			order.TotalAmount,
			order.Status,
		).Scan(&order.ID, &order.OrderDate)
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, item := range order.Items {
			batch.Queue(`
				INSERT INTO concession_order_items (order_id, concession_id, name, quantity, unit_price, total_price)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				order.ID, item.ConcessionID, item.Name, item.Quantity, item.UnitPrice, item.TotalPrice)
		}

		return tx.SendBatch(ctx, batch).Close()
	})

	if err != nil {
		return nil, err
	}

	return &order, nil
}

// takeStock removes line.Quantity units from an available concession and
// returns it with its current price.
func takeStock(ctx context.Context, tx pgx.Tx, line domain.ConcessionLine) (*domain.Concession, error) {
	query := `
		UPDATE concessions
		SET stock_quantity = stock_quantity - $1
		WHERE id = $2 AND is_available AND stock_quantity >= $1
		RETURNING id, name, price, stock_quantity
	`

	var c domain.Concession

	err := tx.QueryRow(ctx, query, line.Quantity, line.ConcessionID).
		Scan(&c.ID, &c.Name, &c.Price, &c.StockQuantity)
	if err == nil {
		return &c, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var stock int

	err = tx.QueryRow(ctx, `SELECT stock_quantity FROM concessions WHERE id = $1 AND is_available`, line.ConcessionID).
		Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: concession %d is not on sale", domain.ErrInvalidRequest, line.ConcessionID)
		}

		return nil, err
	}

	return nil, &domain.OutOfStockError{ConcessionID: line.ConcessionID, Requested: line.Quantity, Available: stock}
}

func (p *PostgresConcessionRepository) GetOrdersByUserId(ctx context.Context, userID int) ([]*domain.ConcessionOrder, error) {
	query := `
		SELECT o.id, o.booking_id, o.total_amount, o.status, o.order_date
		FROM concession_orders o
		JOIN bookings b ON o.booking_id = b.id
		WHERE b.user_id = $1
		ORDER BY o.order_date DESC, o.id DESC
	`

	rows, err := p.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*domain.ConcessionOrder, 0)
	byId := make(map[int]*domain.ConcessionOrder)

	for rows.Next() {
		order := domain.NewConcessionOrder(0)

		err := rows.Scan(&order.ID, &order.BookingID, &order.TotalAmount, &order.Status, &order.OrderDate)
		if err != nil {
			return nil, err
		}

		orders = append(orders, &order)
		byId[order.ID] = &order
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	itemRows, err := p.db.Query(ctx, `
		SELECT order_id, concession_id, name, quantity, unit_price, total_price
		FROM concession_order_items
		WHERE order_id = ANY($1)
		ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			orderId int
			item    domain.ConcessionOrderItem
		)

		err := itemRows.Scan(&orderId, &item.ConcessionID, &item.Name, &item.Quantity, &item.UnitPrice, &item.TotalPrice)
		if err != nil {
			return nil, err
		}

		byId[orderId].Items = append(byId[orderId].Items, item)
	}

	if err = itemRows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
