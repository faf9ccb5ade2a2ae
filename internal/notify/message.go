// Package notify drives bulk SMS delivery to expected guests: recipient
// selection and deduplication, sequential rate-limited sends, progress
// reporting and a per-recipient result list.
package notify

import "fmt"

// EventDetails is the human-readable event information embedded in every
// message body.
type EventDetails struct {
	Name     string
	Date     string
	Time     string
	Location string
	Address  string
}

// Message builds the SMS body for one guest: greeting, ticket number, event
// details and an optional calendar link.
func Message(guestName, ticketNumber string, ev EventDetails, calendarLink string) string {
	body := fmt.Sprintf(`Thank you %s,

Your ticket number is %s

%s
%s at %s

%s
%s`,
		guestName, ticketNumber, ev.Name, ev.Date, ev.Time, ev.Location, ev.Address)
	if calendarLink != "" {
		body += "\n\nCalendar: " + calendarLink
	}
	return body
}
