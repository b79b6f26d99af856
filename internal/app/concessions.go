package app

import (
	"fmt"
	"net/http"

	"github.com/cinex/cinema-ticketing/api"
	"github.com/cinex/cinema-ticketing/internal/domain"
)

func (app *Application) GetConcessions(w http.ResponseWriter, r *http.Request) {
	concessions, err := app.concessionRepo.GetAvailable(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ConcessionsResponse{Concessions: make([]api.Concession, len(concessions))}
	for i, c := range concessions {
		resp.Concessions[i] = api.Concession{
			Id:            c.ID,
			Name:          c.Name,
			Description:   c.Description,
			Category:      string(c.Category),
			Price:         c.Price,
			StockQuantity: c.StockQuantity,
			IsVegetarian:  c.IsVegetarian,
			IsVegan:       c.IsVegan,
			ContainsNuts:  c.ContainsNuts,
			ContainsDairy: c.ContainsDairy,
		}
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// CreateConcessionOrder adds snacks to a Confirmed booking of the current
// user, priced at today's prices.
func (app *Application) CreateConcessionOrder(w http.ResponseWriter, r *http.Request, bookingID int) {
	logger := app.contextGetLogger(r)

	var input api.CreateConcessionOrderRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	lines := make([]domain.ConcessionLine, len(input.Items))
	for i, item := range input.Items {
		lines[i] = domain.ConcessionLine{ConcessionID: item.ConcessionId, Quantity: item.Quantity}
	}

	lines, err = domain.MergeConcessionLines(lines)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	booking, err := app.bookingRepo.GetById(r.Context(), bookingID)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	if booking.UserID != app.contextGetUserId(r) {
		logger.Warn("concession order for a booking of another user", "booking_id", bookingID)
		app.notFoundResponse(w, r)
		return
	}

	if booking.Status != domain.BookingStatusConfirmed {
		app.conflictResponse(w, r, fmt.Errorf("%w: booking is %s", domain.ErrInvalidState, booking.Status))
		return
	}

	order, err := app.concessionRepo.CreateOrder(r.Context(), booking.ID, lines)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	logger.Info("concession order created", "booking_id", booking.ID, "order_id", order.ID, "total", order.TotalAmount.StringFixed(2))

	err = app.writeJSON(w, http.StatusCreated, toConcessionOrderResponse(order), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetConcessionOrdersOfUser(w http.ResponseWriter, r *http.Request) {
	orders, err := app.concessionRepo.GetOrdersByUserId(r.Context(), app.contextGetUserId(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ConcessionOrdersResponse{Orders: make([]api.ConcessionOrderResponse, len(orders))}
	for i, o := range orders {
		resp.Orders[i] = toConcessionOrderResponse(o)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toConcessionOrderResponse(o *domain.ConcessionOrder) api.ConcessionOrderResponse {
	items := make([]api.ConcessionOrderItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = api.ConcessionOrderItem{
			ConcessionId: item.ConcessionID,
			Name:         item.Name,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			TotalPrice:   item.TotalPrice,
		}
	}

	return api.ConcessionOrderResponse{
		Id:          o.ID,
		BookingId:   o.BookingID,
		Items:       items,
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
		OrderDate:   o.OrderDate,
	}
}
