package calendar

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Event {
	return Event{
		Title:       "Gentleman's Dinner",
		Description: "Join us!",
		Location:    "The Terrace Event Venue",
		Start:       time.Date(2026, 3, 6, 19, 0, 0, 0, time.UTC),
		End:         time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC),
		Timezone:    "America/Toronto",
	}
}

func TestGoogleLink(t *testing.T) {
	link := GoogleLink(sample())
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "calendar.google.com", u.Host)

	q := u.Query()
	assert.Equal(t, "TEMPLATE", q.Get("action"))
	assert.Equal(t, "Gentleman's Dinner", q.Get("text"))
	assert.Equal(t, "20260306T190000Z/20260307T000000Z", q.Get("dates"))
	assert.Equal(t, "America/Toronto", q.Get("ctz"))
}

func TestICSEscapesStructuralCharacters(t *testing.T) {
	ev := sample()
	ev.Location = "Creditstone Rd, Vaughan; ON"
	ics := ICS(ev)
	assert.Contains(t, ics, `LOCATION:Creditstone Rd\, Vaughan\; ON`)
	assert.Contains(t, ics, "DTSTART:20260306T190000Z")
	assert.Contains(t, ics, "BEGIN:VEVENT")
}
