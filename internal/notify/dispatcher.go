package notify

import (
	"context"
	"time"

	"github.com/eventdesk/doorlist/internal/model"
	"github.com/eventdesk/doorlist/internal/ticket"
)

// Recipient is one guest selected for a notification run.
type Recipient struct {
	TicketNumber string `json:"ticketNumber"`
	Name         string `json:"name"`
	Phone        string `json:"phoneNumber"`
}

// Result is one recipient's delivery outcome.
type Result struct {
	Name       string `json:"name"`
	Phone      string `json:"phoneNumber"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	MessageSID string `json:"messageId,omitempty"`
}

// Summary aggregates a finished run.
type Summary struct {
	Sent    int
	Failed  int
	Results []Result
}

// ProgressFunc is invoked after each send with the running count.
type ProgressFunc func(sent, total int, currentName string)

// ExpectedRecipients filters ticket rows down to guests eligible for bulk
// messaging: non-empty phone and name, and flagged as expected to attend.
// Row order is preserved.
func ExpectedRecipients(tickets []model.Ticket) []Recipient {
	var out []Recipient
	for _, t := range tickets {
		if t.Phone == "" || t.Name == "" || !t.Expected {
			continue
		}
		out = append(out, Recipient{TicketNumber: t.Number, Name: t.Name, Phone: t.Phone})
	}
	return out
}

// Dedupe collapses recipients sharing a digits-only phone number, keeping
// the first occurrence in row order. A couple listed on two tickets with the
// same phone gets one message, not two.
func Dedupe(recipients []Recipient) []Recipient {
	seen := make(map[string]struct{}, len(recipients))
	var out []Recipient
	for _, r := range recipients {
		key := ticket.Digits(r.Phone)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Dispatcher sends one message per recipient, strictly sequentially with a
// fixed pause between sends so the SMS provider's rate limits are never
// tripped. A failed send is recorded and the loop continues.
type Dispatcher struct {
	Sender       Sender
	Details      EventDetails
	CalendarLink string
	Delay        time.Duration

	// sleep is swapped out by tests; nil means time.Sleep.
	sleep func(time.Duration)
}

func NewDispatcher(sender Sender, details EventDetails, calendarLink string, delay time.Duration) *Dispatcher {
	return &Dispatcher{Sender: sender, Details: details, CalendarLink: calendarLink, Delay: delay}
}

// Send works through the recipient list. progress may be nil. The list is
// assumed to be deduplicated already; Send does not re-check.
func (d *Dispatcher) Send(ctx context.Context, recipients []Recipient, progress ProgressFunc) Summary {
	pause := d.sleep
	if pause == nil {
		pause = time.Sleep
	}

	sum := Summary{Results: make([]Result, 0, len(recipients))}
	for i, r := range recipients {
		body := Message(r.Name, ticket.Pad(r.TicketNumber), d.Details, d.CalendarLink)
		sid, err := d.Sender.Send(ctx, ticket.FormatE164(r.Phone), body)

		res := Result{Name: r.Name, Phone: r.Phone, Success: err == nil, MessageSID: sid}
		if err != nil {
			res.Error = err.Error()
			sum.Failed++
		} else {
			sum.Sent++
		}
		sum.Results = append(sum.Results, res)

		if progress != nil {
			progress(i+1, len(recipients), r.Name)
		}
		if i < len(recipients)-1 && d.Delay > 0 {
			pause(d.Delay)
		}
	}
	return sum
}
