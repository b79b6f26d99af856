package domain

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

var ErrOutOfStock = errors.New("concession is out of stock")

type ConcessionCategory string

const (
	ConcessionCategoryPopcorn ConcessionCategory = "Popcorn"
	ConcessionCategoryDrinks  ConcessionCategory = "Drinks"
	ConcessionCategoryCandy   ConcessionCategory = "Candy"
	ConcessionCategorySnacks  ConcessionCategory = "Snacks"
	ConcessionCategoryCombo   ConcessionCategory = "Combo"
)

type ConcessionOrderStatus string

const (
	ConcessionOrderPending   ConcessionOrderStatus = "Pending"
	ConcessionOrderPrepared  ConcessionOrderStatus = "Prepared"
	ConcessionOrderCompleted ConcessionOrderStatus = "Completed"
)

type Concession struct {
	ID            int
	Name          string
	Description   string
	Category      ConcessionCategory
	Price         decimal.Decimal
	StockQuantity int
	IsAvailable   bool
	IsVegetarian  bool
	IsVegan       bool
	ContainsNuts  bool
	ContainsDairy bool
}

// ConcessionLine is one requested item of an order before it is priced.
type ConcessionLine struct {
	ConcessionID int
	Quantity     int
}

type ConcessionOrderItem struct {
	ConcessionID int
	Name         string
	Quantity     int
	UnitPrice    decimal.Decimal
	TotalPrice   decimal.Decimal
}

type ConcessionOrder struct {
	ID          int
	BookingID   int
	Items       []ConcessionOrderItem
	TotalAmount decimal.Decimal
	Status      ConcessionOrderStatus
	OrderDate   time.Time
}

// NewConcessionOrder starts an empty pending order for a booking.
func NewConcessionOrder(bookingID int) ConcessionOrder {
	return ConcessionOrder{
		BookingID:   bookingID,
		Items:       make([]ConcessionOrderItem, 0),
		TotalAmount: decimal.Zero,
		Status:      ConcessionOrderPending,
	}
}

// Add prices quantity units of c at its current price and adds the line to
// the order total.
func (o *ConcessionOrder) Add(c *Concession, quantity int) {
	total := c.Price.Mul(decimal.NewFromInt(int64(quantity)))

	o.Items = append(o.Items, ConcessionOrderItem{
		ConcessionID: c.ID,
		Name:         c.Name,
		Quantity:     quantity,
		UnitPrice:    c.Price,
		TotalPrice:   total,
	})
	o.TotalAmount = o.TotalAmount.Add(total)
}

// MergeConcessionLines sums quantities of repeated items and orders the
// result by concession id. It rejects empty orders and non-positive
// quantities.
func MergeConcessionLines(lines []ConcessionLine) ([]ConcessionLine, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: select at least one concession item", ErrInvalidRequest)
	}

	quantities := make(map[int]int, len(lines))
	ids := make([]int, 0, len(lines))

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity of concession %d must be positive", ErrInvalidRequest, line.ConcessionID)
		}

		if _, seen := quantities[line.ConcessionID]; !seen {
			ids = append(ids, line.ConcessionID)
		}
		quantities[line.ConcessionID] += line.Quantity
	}

	slices.Sort(ids)

	merged := make([]ConcessionLine, len(ids))
	for i, id := range ids {
		merged[i] = ConcessionLine{ConcessionID: id, Quantity: quantities[id]}
	}

	return merged, nil
}

// OutOfStockError names the concession that cannot cover the requested
// quantity.
type OutOfStockError struct {
	ConcessionID int
	Requested    int
	Available    int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("%s: concession %d has %d left, %d requested", ErrOutOfStock, e.ConcessionID, e.Available, e.Requested)
}

func (e *OutOfStockError) Is(target error) bool {
	return target == ErrOutOfStock
}

type ConcessionRepository interface {
	// GetAvailable lists concessions on sale, by category then name.
	GetAvailable(ctx context.Context) ([]*Concession, error)
	// CreateOrder prices lines at current prices, takes them from stock and
	// stores the order against a Confirmed booking. Lines must be merged.
	CreateOrder(ctx context.Context, bookingID int, lines []ConcessionLine) (*ConcessionOrder, error)
	// GetOrdersByUserId lists the orders of all bookings of a user, newest first.
	GetOrdersByUserId(ctx context.Context, userID int) ([]*ConcessionOrder, error)
}
