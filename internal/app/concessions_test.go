package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/cinex/cinema-ticketing/api"
	"github.com/cinex/cinema-ticketing/internal/domain"
	"github.com/cinex/cinema-ticketing/internal/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ConcessionsTestSuite struct {
	suite.Suite
	app            *Application
	bookingRepo    *mocks.MockBookingRepo
	concessionRepo *mocks.MockConcessionRepo
}

func (s *ConcessionsTestSuite) SetupTest() {
	s.bookingRepo = new(mocks.MockBookingRepo)
	s.concessionRepo = new(mocks.MockConcessionRepo)

	s.app = newTestApplication(func(a *Application) {
		a.bookingRepo = s.bookingRepo
		a.concessionRepo = s.concessionRepo
	})
}

func TestConcessionsSuite(t *testing.T) {
	suite.Run(t, new(ConcessionsTestSuite))
}

func testConcession(id int, name, price string) *domain.Concession {
	return &domain.Concession{
		ID:            id,
		Name:          name,
		Category:      domain.ConcessionCategoryPopcorn,
		Price:         decimal.RequireFromString(price),
		StockQuantity: 100,
		IsAvailable:   true,
	}
}

func (s *ConcessionsTestSuite) TestGetConcessions() {
	s.Run("should list available concessions", func() {
		s.SetupTest()

		popcorn := testConcession(1, "Small Popcorn", "6.99")
		popcorn.ContainsDairy = true
		s.concessionRepo.On("GetAvailable", mock.Anything).Return([]*domain.Concession{popcorn}, nil)

		w, r := executeRequest(s.T(), http.MethodGet, "/concessions", nil)
		s.app.GetConcessions(w, r)

		s.Equal(http.StatusOK, w.Code)

		var resp api.ConcessionsResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.Require().Len(resp.Concessions, 1)
		s.Equal("Small Popcorn", resp.Concessions[0].Name)
		s.Equal("Popcorn", resp.Concessions[0].Category)
		s.True(resp.Concessions[0].ContainsDairy)
		s.True(decimal.RequireFromString("6.99").Equal(resp.Concessions[0].Price))
	})

	s.Run("should fail when the catalog cannot be read", func() {
		s.SetupTest()

		s.concessionRepo.On("GetAvailable", mock.Anything).Return(nil, errors.New("connection reset"))

		w, r := executeRequest(s.T(), http.MethodGet, "/concessions", nil)
		s.app.GetConcessions(w, r)

		s.Equal(http.StatusInternalServerError, w.Code)
	})
}

func (s *ConcessionsTestSuite) TestCreateConcessionOrder() {
	orderedAt := time.Date(2026, 10, 15, 12, 10, 0, 0, time.UTC)

	tests := []struct {
		name           string
		body           any
		setupMocks     func()
		wantStatus     int
		wantErrMessage string
		wantResponse   *api.ConcessionOrderResponse
	}{
		{
			name:           "should fail validation without items",
			body:           api.CreateConcessionOrderRequest{},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "is required",
		},
		{
			name:           "should fail validation with an empty item list",
			body:           `{"items":[]}`,
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "must contain at least 1 items",
		},
		{
			name: "should fail validation when quantity is too large",
			body: api.CreateConcessionOrderRequest{Items: []api.ConcessionOrderLine{
				{ConcessionId: 1, Quantity: 21},
			}},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "must be at most 20",
		},
		{
			name: "should hide bookings of other users",
			body: api.CreateConcessionOrderRequest{Items: []api.ConcessionOrderLine{{ConcessionId: 1, Quantity: 1}}},
			setupMocks: func() {
				b := testBooking(1)
				b.UserID = 99
				s.bookingRepo.On("GetById", mock.Anything, 11).Return(b, nil)
			},
			wantStatus:     http.StatusNotFound,
			wantErrMessage: ErrNotFound,
		},
		{
			name: "should refuse cancelled bookings",
			body: api.CreateConcessionOrderRequest{Items: []api.ConcessionOrderLine{{ConcessionId: 1, Quantity: 1}}},
			setupMocks: func() {
				b := testBooking(1)
				b.Status = domain.BookingStatusCancelled
				s.bookingRepo.On("GetById", mock.Anything, 11).Return(b, nil)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "should report missing stock",
			body: api.CreateConcessionOrderRequest{Items: []api.ConcessionOrderLine{{ConcessionId: 1, Quantity: 5}}},
			setupMocks: func() {
				s.bookingRepo.On("GetById", mock.Anything, 11).Return(testBooking(1), nil)
				s.concessionRepo.On("CreateOrder", mock.Anything, 11, []domain.ConcessionLine{{ConcessionID: 1, Quantity: 5}}).
					Return(nil, &domain.OutOfStockError{ConcessionID: 1, Requested: 5, Available: 2})
			},
			wantStatus:     http.StatusConflict,
			wantErrMessage: "concession is out of stock: concession 1 has 2 left, 5 requested",
		},
		{
			name: "should lose to a concurrent cancel",
			body: api.CreateConcessionOrderRequest{Items: []api.ConcessionOrderLine{{ConcessionId: 1, Quantity: 1}}},
			setupMocks: func() {
				s.bookingRepo.On("GetById", mock.Anything, 11).Return(testBooking(1), nil)
				s.concessionRepo.On("CreateOrder", mock.Anything, 11, mock.Anything).
					Return(nil, domain.ErrInvalidState)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "should merge repeated items and price the order",
			body: api.CreateConcessionOrderRequest{Items: []api.ConcessionOrderLine{
				{ConcessionId: 3, Quantity: 1},
				{ConcessionId: 1, Quantity: 2},
				{ConcessionId: 3, Quantity: 1},
			}},
			setupMocks: func() {
				s.bookingRepo.On("GetById", mock.Anything, 11).Return(testBooking(1), nil)

				order := domain.NewConcessionOrder(11)
				order.Add(testConcession(1, "Small Popcorn", "6.99"), 2)
				order.Add(testConcession(3, "Medium Drink", "5.99"), 2)
				order.ID = 4
				order.OrderDate = orderedAt

				s.concessionRepo.On("CreateOrder", mock.Anything, 11, []domain.ConcessionLine{
					{ConcessionID: 1, Quantity: 2},
					{ConcessionID: 3, Quantity: 2},
				}).Return(&order, nil)
			},
			wantStatus: http.StatusCreated,
			wantResponse: &api.ConcessionOrderResponse{
				Id:        4,
				BookingId: 11,
				Items: []api.ConcessionOrderItem{
					{ConcessionId: 1, Name: "Small Popcorn", Quantity: 2, UnitPrice: decimal.RequireFromString("6.99"), TotalPrice: decimal.RequireFromString("13.98")},
					{ConcessionId: 3, Name: "Medium Drink", Quantity: 2, UnitPrice: decimal.RequireFromString("5.99"), TotalPrice: decimal.RequireFromString("11.98")},
				},
				TotalAmount: decimal.RequireFromString("25.96"),
				Status:      "Pending",
				OrderDate:   orderedAt,
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			w, r := executeRequest(s.T(), http.MethodPost, "/bookings/11/concessions", tt.body)
			r = withUser(r, testUserId, domain.RoleUser)

			s.app.CreateConcessionOrder(w, r, 11)

			s.Equal(tt.wantStatus, w.Code)
			s.bookingRepo.AssertExpectations(s.T())
			s.concessionRepo.AssertExpectations(s.T())

			if tt.wantResponse == nil {
				checkErrorResponse(s.T(), w, struct {
					wantStatus     int
					wantErrMessage string
				}{
					wantStatus:     tt.wantStatus,
					wantErrMessage: tt.wantErrMessage,
				})
				return
			}

			var resp api.ConcessionOrderResponse
			s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
			s.Equal(tt.wantResponse.Id, resp.Id)
			s.Equal(tt.wantResponse.Status, resp.Status)
			s.True(tt.wantResponse.OrderDate.Equal(resp.OrderDate))
			s.True(tt.wantResponse.TotalAmount.Equal(resp.TotalAmount))
			s.Require().Len(resp.Items, len(tt.wantResponse.Items))
			for i, want := range tt.wantResponse.Items {
				s.Equal(want.ConcessionId, resp.Items[i].ConcessionId)
				s.Equal(want.Quantity, resp.Items[i].Quantity)
				s.True(want.TotalPrice.Equal(resp.Items[i].TotalPrice), "item %d total", i)
			}
		})
	}
}

func (s *ConcessionsTestSuite) TestGetConcessionOrdersOfUser() {
	s.SetupTest()

	order := domain.NewConcessionOrder(11)
	order.Add(testConcession(1, "Small Popcorn", "6.99"), 1)
	order.ID = 2

	s.concessionRepo.On("GetOrdersByUserId", mock.Anything, testUserId).Return([]*domain.ConcessionOrder{&order}, nil)

	w, r := executeRequest(s.T(), http.MethodGet, "/users/me/concession-orders", nil)
	r = withUser(r, testUserId, domain.RoleUser)

	s.app.GetConcessionOrdersOfUser(w, r)

	s.Equal(http.StatusOK, w.Code)

	var resp api.ConcessionOrdersResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	s.Require().Len(resp.Orders, 1)
	s.Equal(11, resp.Orders[0].BookingId)
	s.Require().Len(resp.Orders[0].Items, 1)
	s.Equal("Small Popcorn", resp.Orders[0].Items[0].Name)
}
