package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eventdesk/doorlist/internal/config"
	"github.com/eventdesk/doorlist/internal/model"
	"github.com/eventdesk/doorlist/internal/repository"
	"github.com/eventdesk/doorlist/internal/ticket"
)

// TicketHandler serves ticket entry and lookup against the sheet-backed
// store.
type TicketHandler struct {
	Cfg     config.Config
	Tickets *repository.TicketRepo
}

func NewTicketHandler(cfg config.Config, tickets *repository.TicketRepo) *TicketHandler {
	return &TicketHandler{Cfg: cfg, Tickets: tickets}
}

type createTicketRequest struct {
	TicketNumber string `json:"ticketNumber"`
	Name         string `json:"name"`
	PhoneNumber  string `json:"phoneNumber"`
	Paid         bool   `json:"paid"`
	CheckedIn    bool   `json:"checkedIn"`
}

type createBatchRequest struct {
	Numbers     string `json:"numbers"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Paid        bool   `json:"paid"`
	CheckedIn   bool   `json:"checkedIn"`
}

type checkExistingRequest struct {
	Numbers string `json:"numbers"`
}

// Create appends a single ticket row.
func (h *TicketHandler) Create(c echo.Context) error {
	var req createTicketRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.TicketNumber = strings.TrimSpace(req.TicketNumber)
	req.Name = strings.TrimSpace(req.Name)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if req.TicketNumber == "" || req.Name == "" || req.PhoneNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticketNumber, name and phoneNumber are required"})
	}

	t := model.Ticket{
		Number:    ticket.Pad(req.TicketNumber),
		Name:      req.Name,
		Phone:     req.PhoneNumber,
		Paid:      req.Paid,
		CheckedIn: req.CheckedIn,
	}
	if err := h.Tickets.Append(c.Request().Context(), t); err != nil {
		return sheetError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"ticket": t})
}

// CreateBatch expands a comma/range expression ("1,5,10-14") into individual
// tickets sharing one purchaser and appends them in a single remote call.
func (h *TicketHandler) CreateBatch(c echo.Context) error {
	var req createBatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if req.Name == "" || req.PhoneNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and phoneNumber are required"})
	}
	numbers := ticket.ParseBatch(req.Numbers)
	if len(numbers) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no valid ticket numbers in input"})
	}
	if len(numbers) > h.Cfg.BatchMax {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": fmt.Sprintf("batch too large: %d tickets (limit %d)", len(numbers), h.Cfg.BatchMax),
		})
	}

	tickets := make([]model.Ticket, 0, len(numbers))
	for _, n := range numbers {
		tickets = append(tickets, model.Ticket{
			Number:    n,
			Name:      req.Name,
			Phone:     req.PhoneNumber,
			Paid:      req.Paid,
			CheckedIn: req.CheckedIn,
		})
	}
	added, failed, err := h.Tickets.AppendBatch(c.Request().Context(), tickets)
	if err != nil {
		return sheetError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"added": added, "failed": failed})
}

// CheckExisting reports which of the given numbers already have a row,
// without adding anything. Used to pre-flight a batch add.
func (h *TicketHandler) CheckExisting(c echo.Context) error {
	var req checkExistingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	numbers := ticket.ParseBatch(req.Numbers)
	if len(numbers) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no valid ticket numbers in input"})
	}
	existing, err := h.Tickets.ExistsBatch(c.Request().Context(), numbers)
	if err != nil {
		return sheetError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"existing": existing})
}

// Search looks tickets up by number (default), guest name or phone number.
// Number mode accepts the same comma/range expressions as batch add.
func (h *TicketHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "query parameter q is required"})
	}
	mode := c.QueryParam("mode")

	ctx := c.Request().Context()
	switch mode {
	case "", "ticket":
		numbers := ticket.ParseBatch(q)
		if len(numbers) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no valid ticket numbers in input"})
		}
		results := make([]echo.Map, 0, len(numbers))
		for _, n := range numbers {
			t, err := h.Tickets.Find(ctx, n)
			if errors.Is(err, repository.ErrTicketNotFound) {
				results = append(results, echo.Map{"ticketNumber": n, "found": false})
				continue
			}
			if err != nil {
				return sheetError(c, err)
			}
			results = append(results, echo.Map{"ticketNumber": n, "found": true, "ticket": t})
		}
		return c.JSON(http.StatusOK, echo.Map{"results": results})
	case "name":
		matches, err := h.Tickets.SearchByName(ctx, q)
		if err != nil {
			return sheetError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"results": matches})
	case "phone":
		matches, err := h.Tickets.SearchByPhone(ctx, q)
		if err != nil {
			return sheetError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"results": matches})
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "mode must be ticket, name or phone"})
	}
}

// Get fetches a single ticket by number.
func (h *TicketHandler) Get(c echo.Context) error {
	t, err := h.Tickets.Find(c.Request().Context(), c.Param("number"))
	if err != nil {
		return sheetError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ticket": t})
}
