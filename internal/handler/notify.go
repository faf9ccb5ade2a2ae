package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/eventdesk/doorlist/internal/config"
	"github.com/eventdesk/doorlist/internal/notify"
	"github.com/eventdesk/doorlist/internal/queue"
	"github.com/eventdesk/doorlist/internal/repository"
	"github.com/eventdesk/doorlist/internal/ticket"
)

// NotifyHandler starts and inspects bulk SMS runs. Starting a run only
// enqueues a job; the queue consumer does the sending.
type NotifyHandler struct {
	Cfg          config.Config
	Tickets      *repository.TicketRepo
	Runs         *repository.NotificationRepo
	Details      notify.EventDetails
	CalendarLink string

	// Publish enqueues the run job; swapped out by tests.
	Publish func(ctx context.Context, event queue.RunRequestedEvent) error
}

// Preview returns the deduplicated recipient list and a sample message body
// so the admin can sanity-check a run before starting it.
func (h *NotifyHandler) Preview(c echo.Context) error {
	tickets, err := h.Tickets.Tickets(c.Request().Context())
	if err != nil {
		return sheetError(c, err)
	}
	eligible := notify.ExpectedRecipients(tickets)
	unique := notify.Dedupe(eligible)

	sample := ""
	if len(unique) > 0 {
		sample = notify.Message(unique[0].Name, ticket.Pad(unique[0].TicketNumber), h.Details, h.CalendarLink)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"recipients":        unique,
		"total":             len(unique),
		"duplicatesDropped": len(eligible) - len(unique),
		"sampleMessage":     sample,
	})
}

// Start creates a run record and enqueues the job. Responds 202: delivery
// happens in the background, one message per second.
func (h *NotifyHandler) Start(c echo.Context) error {
	if !h.Cfg.SMSEnabled() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "SMS is not configured"})
	}

	ctx := c.Request().Context()
	tickets, err := h.Tickets.Tickets(ctx)
	if err != nil {
		return sheetError(c, err)
	}
	unique := notify.Dedupe(notify.ExpectedRecipients(tickets))
	if len(unique) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no eligible recipients"})
	}
	if len(unique) > h.Cfg.NotifyMax {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "recipient list exceeds the per-run limit"})
	}

	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	runID := uuid.NewString()
	if err := h.Runs.CreateRun(ctx, runID, len(unique)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create run"})
	}

	event := queue.RunRequestedEvent{
		RunID:       runID,
		RequestedBy: userID,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Publish(ctx, event); err != nil {
		_ = h.Runs.FailRun(ctx, runID, "could not enqueue run: "+err.Error())
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "could not enqueue notification run"})
	}
	return c.JSON(http.StatusAccepted, echo.Map{"runId": runID, "recipients": len(unique)})
}

// Get returns a run's status plus its per-recipient results so far.
func (h *NotifyHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	run, err := h.Runs.GetRun(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "run not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load run"})
	}
	results, err := h.Runs.ListResults(ctx, run.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load results"})
	}
	return c.JSON(http.StatusOK, echo.Map{"run": run, "results": results})
}
