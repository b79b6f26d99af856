package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cinex/cinema-ticketing/api"
	"github.com/cinex/cinema-ticketing/internal/domain"
)

// ProcessPayment charges a Confirmed booking of the current user. The
// booking stays Confirmed; a completed payment is recorded next to it and a
// confirmation email goes out once it is stored.
func (app *Application) ProcessPayment(w http.ResponseWriter, r *http.Request, bookingID int) {
	logger := app.contextGetLogger(r)

	var input api.PaymentRequest

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

	userId := app.contextGetUserId(r)

	booking, err := app.bookingRepo.GetById(r.Context(), bookingID)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	if booking.UserID != userId {
		logger.Warn("payment attempt for a booking of another user", "booking_id", bookingID)
		app.notFoundResponse(w, r)
		return
	}

	if booking.Status != domain.BookingStatusConfirmed {
		app.conflictResponse(w, r, fmt.Errorf("%w: booking is %s", domain.ErrInvalidState, booking.Status))
		return
	}

	transactionID, err := app.paymentProvider.Charge(r.Context(), booking, input.Method)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	payment := &domain.Payment{
		BookingID:     booking.ID,
		Method:        input.Method,
		TransactionID: transactionID,
		Notes:         "Payment processed successfully",
	}

	err = app.paymentRepo.Complete(r.Context(), payment)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	logger.Info("payment completed", "booking_id", booking.ID, "payment_id", payment.ID)

	app.background(r, func(ctx context.Context, logger *slog.Logger) {
		app.sendBookingMail(ctx, logger, booking, "booking_paid.tmpl", map[string]any{
			"transactionId": payment.TransactionID,
			"amount":        payment.Amount.StringFixed(2),
		})
	})

	err = app.writeJSON(w, http.StatusCreated, toPaymentResponse(payment), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toPaymentResponse(p *domain.Payment) api.PaymentResponse {
	return api.PaymentResponse{
		Id:            p.ID,
		BookingId:     p.BookingID,
		Amount:        p.Amount,
		Method:        p.Method,
		TransactionId: p.TransactionID,
		Status:        string(p.Status),
		Notes:         p.Notes,
		PaymentDate:   p.PaymentDate,
	}
}
