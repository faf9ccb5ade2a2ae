package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eventdesk/doorlist/internal/config"
	"github.com/eventdesk/doorlist/internal/repository"
)

// StatsHandler aggregates counters off the full guest list.
type StatsHandler struct {
	Cfg     config.Config
	Tickets *repository.TicketRepo
}

func NewStatsHandler(cfg config.Config, tickets *repository.TicketRepo) *StatsHandler {
	return &StatsHandler{Cfg: cfg, Tickets: tickets}
}

// Summary returns sale/attendance totals. Revenue is paid count times the
// flat ticket price.
func (h *StatsHandler) Summary(c echo.Context) error {
	tickets, err := h.Tickets.Tickets(c.Request().Context())
	if err != nil {
		return sheetError(c, err)
	}
	var paid, checkedIn, expected int
	for _, t := range tickets {
		if t.Paid {
			paid++
		}
		if t.CheckedIn {
			checkedIn++
		}
		if t.Expected {
			expected++
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total":     len(tickets),
		"paid":      paid,
		"unpaid":    len(tickets) - paid,
		"checkedIn": checkedIn,
		"expected":  expected,
		"revenue":   paid * h.Cfg.TicketPrice,
	})
}
