package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eventdesk/doorlist/internal/repository"
)

// getUserID extracts the operator id stored in the context by the JWT
// middleware. JWT numeric claims decode as float64, so several stored types
// are tolerated.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("no user in context")
}

// sheetError maps store adapter failures to HTTP responses. Remote error
// text is surfaced verbatim — the operator at the door is the person best
// placed to act on it, and there is no automatic retry.
func sheetError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrTicketNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Ticket not found"})
	case errors.Is(err, repository.ErrTicketExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "Ticket number already exists"})
	}
	var transport *repository.TransportError
	if errors.As(err, &transport) {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": transport.Error()})
	}
	var remote *repository.RemoteError
	if errors.As(err, &remote) {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": remote.Message})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
