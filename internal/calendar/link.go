// Package calendar builds add-to-calendar links for notification messages.
package calendar

import (
	"net/url"
	"strings"
	"time"
)

// Event is the minimal information a calendar entry needs.
type Event struct {
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	Timezone    string // IANA name, defaults to America/New_York
}

// GoogleLink returns a calendar.google.com render link that opens a
// pre-filled event. Unlike a data-URI .ics attachment this survives SMS
// transports that strip long URIs.
func GoogleLink(ev Event) string {
	tz := ev.Timezone
	if tz == "" {
		tz = "America/New_York"
	}
	params := url.Values{
		"action":   {"TEMPLATE"},
		"text":     {ev.Title},
		"dates":    {basicFormat(ev.Start) + "/" + basicFormat(ev.End)},
		"details":  {ev.Description},
		"location": {ev.Location},
		"ctz":      {tz},
	}
	return "https://calendar.google.com/calendar/render?" + params.Encode()
}

// ICS renders the event in iCalendar format, kept deliberately small so the
// payload fits in a message.
func ICS(ev Event) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"BEGIN:VEVENT",
		"DTSTART:" + basicFormat(ev.Start),
		"DTEND:" + basicFormat(ev.End),
		"SUMMARY:" + escapeText(ev.Title),
		"LOCATION:" + escapeText(ev.Location),
		"DESCRIPTION:" + escapeText(ev.Description),
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return strings.Join(lines, "\r\n")
}

// basicFormat renders a timestamp in the compact UTC form calendar tools
// expect: 20260306T190000Z.
func basicFormat(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeText escapes the characters iCalendar treats as structural.
func escapeText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)
	return r.Replace(s)
}
