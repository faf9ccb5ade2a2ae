package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdesk/doorlist/internal/config"
)

func postJSON(t *testing.T, h echo.HandlerFunc, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

// Validation failures never reach the store, so a nil repo is safe here.

func TestCreateRequiresAllFields(t *testing.T) {
	h := NewTicketHandler(config.Config{}, nil)

	rec, out := postJSON(t, h.Create, "/v1/tickets", `{"ticketNumber":"42"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["error"], "required")
}

func TestCreateBatchRejectsEmptyExpression(t *testing.T) {
	h := NewTicketHandler(config.Config{BatchMax: 50}, nil)

	// An inverted range and a non-numeric range both expand to nothing.
	rec, out := postJSON(t, h.CreateBatch, "/v1/tickets/batch",
		`{"numbers":"9-5, x-y, ","name":"Ada","phoneNumber":"647"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["error"], "no valid ticket numbers")
}

func TestCreateBatchEnforcesLimit(t *testing.T) {
	h := NewTicketHandler(config.Config{BatchMax: 10}, nil)

	rec, out := postJSON(t, h.CreateBatch, "/v1/tickets/batch",
		`{"numbers":"1-11","name":"Ada","phoneNumber":"647"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["error"], "batch too large")
}

func TestSearchRequiresQuery(t *testing.T) {
	h := NewTicketHandler(config.Config{}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/tickets", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Search(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchRejectsUnknownMode(t *testing.T) {
	h := NewTicketHandler(config.Config{}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/tickets?q=1&mode=email", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Search(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
