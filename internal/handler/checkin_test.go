package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdesk/doorlist/internal/model"
	"github.com/eventdesk/doorlist/internal/repository"
	"github.com/eventdesk/doorlist/internal/service"
	"github.com/eventdesk/doorlist/internal/ticket"
)

// memStore is an in-memory TicketStore for handler tests.
type memStore struct {
	tickets map[string]model.Ticket
}

func (s *memStore) Find(_ context.Context, number string) (model.Ticket, error) {
	t, ok := s.tickets[ticket.Normalize(number)]
	if !ok {
		return model.Ticket{}, repository.ErrTicketNotFound
	}
	return t, nil
}

func (s *memStore) SetPaid(_ context.Context, number string, paid bool) error {
	key := ticket.Normalize(number)
	t, ok := s.tickets[key]
	if !ok {
		return repository.ErrTicketNotFound
	}
	t.Paid = paid
	s.tickets[key] = t
	return nil
}

func (s *memStore) CheckIn(_ context.Context, number string) error {
	key := ticket.Normalize(number)
	t, ok := s.tickets[key]
	if !ok {
		return repository.ErrTicketNotFound
	}
	t.CheckedIn = true
	s.tickets[key] = t
	return nil
}

func (s *memStore) PayAndCheckIn(_ context.Context, number string) error {
	key := ticket.Normalize(number)
	t, ok := s.tickets[key]
	if !ok {
		return repository.ErrTicketNotFound
	}
	t.Paid = true
	t.CheckedIn = true
	s.tickets[key] = t
	return nil
}

func newCheckInTest(tickets ...model.Ticket) (*CheckInHandler, *memStore) {
	store := &memStore{tickets: map[string]model.Ticket{}}
	for _, t := range tickets {
		store.tickets[ticket.Normalize(t.Number)] = t
	}
	return NewCheckInHandler(service.NewReconciler(store)), store
}

func doRequest(t *testing.T, method, target, body string, number string, h echo.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("number")
	c.SetParamValues(number)
	require.NoError(t, h(c))

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func TestCheckInPaidTicket(t *testing.T) {
	h, store := newCheckInTest(model.Ticket{Number: "001", Name: "Ada", Paid: true})

	rec, out := doRequest(t, http.MethodPost, "/v1/tickets/001/checkin", "", "001", h.CheckIn)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, store.tickets["001"].CheckedIn)
	assert.NotNil(t, out["ticket"])
}

func TestCheckInUnpaidTicketRefused(t *testing.T) {
	h, store := newCheckInTest(model.Ticket{Number: "001", Name: "Ada", Paid: false})

	rec, out := doRequest(t, http.MethodPost, "/v1/tickets/1/checkin", "", "1", h.CheckIn)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	// The operator needs the guest name to ask for payment.
	assert.Equal(t, "Ada", out["name"])
	assert.Equal(t, "001", out["ticketNumber"])
	assert.False(t, store.tickets["001"].CheckedIn)
}

func TestCheckInTwiceConflicts(t *testing.T) {
	h, _ := newCheckInTest(model.Ticket{Number: "001", Name: "Ada", Paid: true, CheckedIn: true})

	rec, out := doRequest(t, http.MethodPost, "/v1/tickets/001/checkin", "", "001", h.CheckIn)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Ada", out["name"])
}

func TestCheckInUnknownTicket(t *testing.T) {
	h, _ := newCheckInTest()

	rec, _ := doRequest(t, http.MethodPost, "/v1/tickets/999/checkin", "", "999", h.CheckIn)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPayAndCheckInUnpaidTicket(t *testing.T) {
	h, store := newCheckInTest(model.Ticket{Number: "042", Name: "Ada"})

	rec, _ := doRequest(t, http.MethodPost, "/v1/tickets/42/pay-checkin", "", "42", h.PayAndCheckIn)
	assert.Equal(t, http.StatusOK, rec.Code)
	got := store.tickets["042"]
	assert.True(t, got.Paid)
	assert.True(t, got.CheckedIn)
}

func TestSetPaymentRequiresFlag(t *testing.T) {
	h, _ := newCheckInTest(model.Ticket{Number: "001", Name: "Ada"})

	rec, _ := doRequest(t, http.MethodPost, "/v1/tickets/001/payment", `{}`, "001", h.SetPayment)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetPaymentBothWays(t *testing.T) {
	h, store := newCheckInTest(model.Ticket{Number: "001", Name: "Ada", CheckedIn: true})

	rec, out := doRequest(t, http.MethodPost, "/v1/tickets/001/payment", `{"paid":true}`, "001", h.SetPayment)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["paid"])
	assert.True(t, store.tickets["001"].Paid)
	// Check-in state is untouched by payment updates.
	assert.True(t, store.tickets["001"].CheckedIn)

	rec, _ = doRequest(t, http.MethodPost, "/v1/tickets/001/payment", `{"paid":false}`, "001", h.SetPayment)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, store.tickets["001"].Paid)
	assert.True(t, store.tickets["001"].CheckedIn)
}
