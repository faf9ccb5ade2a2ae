package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdesk/doorlist/internal/model"
)

// recordingSender captures sends and can be told to fail specific numbers.
type recordingSender struct {
	sent    []string // E.164 destinations in order
	bodies  []string
	failFor map[string]error
}

func (s *recordingSender) Send(_ context.Context, to, body string) (string, error) {
	if err, ok := s.failFor[to]; ok {
		return "", err
	}
	s.sent = append(s.sent, to)
	s.bodies = append(s.bodies, body)
	return "SM" + to, nil
}

func details() EventDetails {
	return EventDetails{
		Name:     "Gentleman's Dinner",
		Date:     "Friday, March 6, 2026",
		Time:     "7:00 PM",
		Location: "The Terrace Event Venue",
		Address:  "1680 Creditstone Rd, Vaughan ON",
	}
}

func TestExpectedRecipientsFilters(t *testing.T) {
	tickets := []model.Ticket{
		{Number: "001", Name: "Ana", Phone: "647-330-8919", Expected: true},
		{Number: "002", Name: "", Phone: "416-555-0000", Expected: true},    // no name
		{Number: "003", Name: "Ben", Phone: "", Expected: true},             // no phone
		{Number: "004", Name: "Cleo", Phone: "416-555-1111", Expected: false}, // not expected
		{Number: "005", Name: "Dee", Phone: "416-555-2222", Expected: true},
	}
	got := ExpectedRecipients(tickets)
	require.Len(t, got, 2)
	assert.Equal(t, "Ana", got[0].Name)
	assert.Equal(t, "Dee", got[1].Name)
}

func TestDedupeByNormalizedPhone(t *testing.T) {
	rs := []Recipient{
		{TicketNumber: "001", Name: "Ana", Phone: "647-330-8919"},
		{TicketNumber: "002", Name: "Ana's plus one", Phone: "6473308919"},
		{TicketNumber: "003", Name: "Ben", Phone: "(416) 555-0000"},
	}
	got := Dedupe(rs)
	require.Len(t, got, 2)
	assert.Equal(t, "Ana", got[0].Name, "first occurrence wins")
	assert.Equal(t, "Ben", got[1].Name)
}

func TestSendSharedPhoneSendsOnce(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, details(), "", 0)

	rs := Dedupe([]Recipient{
		{TicketNumber: "001", Name: "Ana", Phone: "647-330-8919"},
		{TicketNumber: "002", Name: "Ana again", Phone: "6473308919"},
	})
	sum := d.Send(context.Background(), rs, nil)

	assert.Equal(t, 1, sum.Sent)
	assert.Equal(t, []string{"+16473308919"}, sender.sent)
}

func TestSendContinuesPastFailures(t *testing.T) {
	sender := &recordingSender{failFor: map[string]error{
		"+14165550000": errors.New("twilio: unreachable carrier"),
	}}
	d := NewDispatcher(sender, details(), "", 0)

	rs := []Recipient{
		{TicketNumber: "001", Name: "Ana", Phone: "647-330-8919"},
		{TicketNumber: "002", Name: "Ben", Phone: "416-555-0000"},
		{TicketNumber: "003", Name: "Cleo", Phone: "416-555-1111"},
	}
	sum := d.Send(context.Background(), rs, nil)

	assert.Equal(t, 2, sum.Sent)
	assert.Equal(t, 1, sum.Failed)
	require.Len(t, sum.Results, 3)
	assert.False(t, sum.Results[1].Success)
	assert.Equal(t, "twilio: unreachable carrier", sum.Results[1].Error)
	assert.True(t, sum.Results[2].Success, "failure must not halt the loop")
}

func TestSendReportsProgress(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, details(), "", 0)

	var calls [][2]int
	var names []string
	rs := []Recipient{
		{TicketNumber: "001", Name: "Ana", Phone: "647-330-8919"},
		{TicketNumber: "002", Name: "Ben", Phone: "416-555-0000"},
	}
	d.Send(context.Background(), rs, func(sent, total int, name string) {
		calls = append(calls, [2]int{sent, total})
		names = append(names, name)
	})

	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, calls)
	assert.Equal(t, []string{"Ana", "Ben"}, names)
}

func TestSendPausesBetweenMessagesButNotAfterLast(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, details(), "", time.Second)
	var pauses []time.Duration
	d.sleep = func(dur time.Duration) { pauses = append(pauses, dur) }

	rs := []Recipient{
		{TicketNumber: "001", Name: "Ana", Phone: "647-330-8919"},
		{TicketNumber: "002", Name: "Ben", Phone: "416-555-0000"},
		{TicketNumber: "003", Name: "Cleo", Phone: "416-555-1111"},
	}
	d.Send(context.Background(), rs, nil)

	assert.Equal(t, []time.Duration{time.Second, time.Second}, pauses)
}

func TestMessageBody(t *testing.T) {
	body := Message("Ana", "007", details(), "https://calendar.google.com/calendar/render?x=1")
	assert.True(t, strings.HasPrefix(body, "Thank you Ana,"))
	assert.Contains(t, body, "Your ticket number is 007")
	assert.Contains(t, body, "Friday, March 6, 2026 at 7:00 PM")
	assert.Contains(t, body, "Calendar: https://calendar.google.com")

	noLink := Message("Ana", "007", details(), "")
	assert.NotContains(t, noLink, "Calendar:")
}
