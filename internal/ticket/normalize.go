// Package ticket contains the canonical ticket-number handling shared by
// every layer that touches the backing sheet: normalization for lookups and
// duplicate checks, batch input parsing for express entry, and phone number
// formatting for outbound SMS.
package ticket

import "strings"

// KeyWidth is the fixed width of a canonical ticket number. "7", "07" and
// "007" all refer to the same ticket.
const KeyWidth = 3

// Normalize produces the canonical comparison key for a raw ticket number:
// trimmed, zero-padded to KeyWidth and lowercased. Lookups and duplicate
// checks must always compare normalized keys, never raw input.
func Normalize(raw string) string {
	return strings.ToLower(Pad(raw))
}

// Pad returns the display form of a ticket number: trimmed and zero-padded
// to KeyWidth, case preserved.
func Pad(raw string) string {
	s := strings.TrimSpace(raw)
	for len(s) < KeyWidth {
		s = "0" + s
	}
	return s
}
