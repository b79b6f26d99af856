// Package api holds the JSON request and response bodies of the HTTP API.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

// SeatUnavailableResponse is returned with 409 when requested seats are taken.
// UnavailableSeats is empty when the request asked for a ticket count.
type SeatUnavailableResponse struct {
	Message          string    `json:"message"`
	RequestId        string    `json:"requestId"`
	Timestamp        time.Time `json:"timestamp"`
	UnavailableSeats []int     `json:"unavailableSeats"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AlreadyLoggedInResponse struct {
	Message string `json:"message"`
}

type ShowtimeSummary struct {
	Id             int             `json:"id"`
	MovieTitle     string          `json:"movieTitle"`
	CinemaName     string          `json:"cinemaName"`
	StartTime      time.Time       `json:"startTime"`
	EndTime        time.Time       `json:"endTime"`
	Price          decimal.Decimal `json:"price"`
	AvailableSeats int             `json:"availableSeats"`
	TotalSeats     int             `json:"totalSeats"`
}

type ShowtimesResponse struct {
	Showtimes []ShowtimeSummary `json:"showtimes"`
}

type Seat struct {
	Index     int    `json:"index"`
	Label     string `json:"label"`
	Available bool   `json:"available"`
}

type SeatMapResponse struct {
	ShowtimeId     int    `json:"showtimeId"`
	TotalSeats     int    `json:"totalSeats"`
	AvailableSeats int    `json:"availableSeats"`
	SeatsPerRow    int    `json:"seatsPerRow"`
	SeatMap        string `json:"seatMap"`
	Seats          []Seat `json:"seats"`
}

// CreateBookingRequest carries either explicit seat indices or a ticket
// count, never both.
type CreateBookingRequest struct {
	Seats       []int `json:"seats" validate:"max=50"`
	TicketCount *int  `json:"ticketCount" validate:"omitempty,min=1,max=50"`
}

type BookingResponse struct {
	Id          int             `json:"id"`
	ShowtimeId  int             `json:"showtimeId"`
	Seats       []int           `json:"seats"`
	SeatLabels  []string        `json:"seatLabels"`
	TicketCount int             `json:"ticketCount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type BookingSummary struct {
	BookingId   int             `json:"bookingId"`
	MovieTitle  string          `json:"movie"`
	CinemaName  string          `json:"cinema"`
	StartTime   time.Time       `json:"showtime"`
	Seats       []string        `json:"seats"`
	TicketCount int             `json:"tickets"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      string          `json:"status"`
	BookingDate time.Time       `json:"bookingDate"`
}

type BookingsResponse struct {
	Bookings []BookingSummary `json:"bookings"`
}

type PaymentRequest struct {
	Method string `json:"method" validate:"required,payment_method"`
}

type PaymentResponse struct {
	Id            int             `json:"id"`
	BookingId     int             `json:"bookingId"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	TransactionId string          `json:"transactionId"`
	Status        string          `json:"status"`
	Notes         string          `json:"notes,omitempty"`
	PaymentDate   time.Time       `json:"paymentDate"`
}

type CreateShowtimeRequest struct {
	MovieId    int             `json:"movieId" validate:"required,min=1"`
	CinemaId   int             `json:"cinemaId" validate:"required,min=1"`
	StartTime  time.Time       `json:"startTime" validate:"required"`
	Price      decimal.Decimal `json:"price" validate:"price"`
	TotalSeats int             `json:"totalSeats" validate:"required,min=1,max=1000"`
}

type ShowtimeResponse struct {
	Id             int             `json:"id"`
	MovieId        int             `json:"movieId"`
	CinemaId       int             `json:"cinemaId"`
	StartTime      time.Time       `json:"startTime"`
	EndTime        time.Time       `json:"endTime"`
	Price          decimal.Decimal `json:"price"`
	TotalSeats     int             `json:"totalSeats"`
	AvailableSeats int             `json:"availableSeats"`
}

type RefundResponse struct {
	Payment       PaymentResponse `json:"payment"`
	SeatsReleased bool            `json:"seatsReleased"`
}

type Concession struct {
	Id            int             `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	IsVegetarian  bool            `json:"isVegetarian"`
	IsVegan       bool            `json:"isVegan"`
	ContainsNuts  bool            `json:"containsNuts"`
	ContainsDairy bool            `json:"containsDairy"`
}

type ConcessionsResponse struct {
	Concessions []Concession `json:"concessions"`
}

type ConcessionOrderLine struct {
	ConcessionId int `json:"concessionId" validate:"required,min=1"`
	Quantity     int `json:"quantity" validate:"required,min=1,max=20"`
}

type CreateConcessionOrderRequest struct {
	Items []ConcessionOrderLine `json:"items" validate:"required,min=1,max=20,dive"`
}

type ConcessionOrderItem struct {
	ConcessionId int             `json:"concessionId"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
}

type ConcessionOrderResponse struct {
	Id          int                   `json:"id"`
	BookingId   int                   `json:"bookingId"`
	Items       []ConcessionOrderItem `json:"items"`
	TotalAmount decimal.Decimal       `json:"totalAmount"`
	Status      string                `json:"status"`
	OrderDate   time.Time             `json:"orderDate"`
}

type ConcessionOrdersResponse struct {
	Orders []ConcessionOrderResponse `json:"orders"`
}
