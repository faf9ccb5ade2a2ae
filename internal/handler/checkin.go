package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eventdesk/doorlist/internal/service"
	"github.com/eventdesk/doorlist/internal/ticket"
)

// CheckInHandler serves the door workflow: check-in, the pay+check-in combo
// and pre-sale payment updates.
type CheckInHandler struct {
	Rec *service.Reconciler
}

func NewCheckInHandler(rec *service.Reconciler) *CheckInHandler {
	return &CheckInHandler{Rec: rec}
}

type setPaymentRequest struct {
	Paid *bool `json:"paid"`
}

// CheckIn marks a paid ticket as checked in. Unpaid tickets are refused with
// 402 so the door station can offer collecting payment on the spot; repeat
// check-ins get 409 with the guest name.
func (h *CheckInHandler) CheckIn(c echo.Context) error {
	t, err := h.Rec.CheckIn(c.Request().Context(), c.Param("number"))
	if err != nil {
		var dup *service.AlreadyCheckedInError
		if errors.As(err, &dup) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":        "Already checked in",
				"ticketNumber": ticket.Pad(dup.Number),
				"name":         dup.Name,
			})
		}
		var unpaid *service.PaymentRequiredError
		if errors.As(err, &unpaid) {
			return c.JSON(http.StatusPaymentRequired, echo.Map{
				"error":        "Payment required before check-in",
				"ticketNumber": ticket.Pad(unpaid.Number),
				"name":         unpaid.Name,
			})
		}
		return sheetError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ticket": t})
}

// PayAndCheckIn records payment and check-in in one step. It is the express
// path for door sales and the repair path for inconsistent rows.
func (h *CheckInHandler) PayAndCheckIn(c echo.Context) error {
	t, err := h.Rec.PayAndCheckIn(c.Request().Context(), c.Param("number"))
	if err != nil {
		return sheetError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ticket": t})
}

// SetPayment flips the paid flag either way without touching check-in state.
func (h *CheckInHandler) SetPayment(c echo.Context) error {
	var req setPaymentRequest
	if err := c.Bind(&req); err != nil || req.Paid == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "paid is required"})
	}
	number := c.Param("number")
	var err error
	if *req.Paid {
		err = h.Rec.MarkPaid(c.Request().Context(), number)
	} else {
		err = h.Rec.MarkUnpaid(c.Request().Context(), number)
	}
	if err != nil {
		return sheetError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ticketNumber": ticket.Pad(number), "paid": *req.Paid})
}
