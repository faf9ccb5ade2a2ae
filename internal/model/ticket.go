package model

import "strings"

// Ticket mirrors one data row of the backing sheet. The sheet stores the
// two status flags as literal "Yes"/"No" strings; the struct keeps them as
// booleans and the flag helpers below translate at the boundary.
//
// Column layout (0-indexed):
//  0 – ticket number (canonical form is zero-padded to 3 digits)
//  1 – guest name
//  2 – phone number (free text, normalized only for SMS dispatch)
//  3 – paid ("Yes"/"No")
//  4 – checked in ("Yes"/"No")
//  5 – expected to attend ("Yes"/"No", notification deployments only)
type Ticket struct {
	Number    string `json:"ticketNumber"`
	Name      string `json:"name"`
	Phone     string `json:"phoneNumber"`
	Paid      bool   `json:"paid"`
	CheckedIn bool   `json:"checkedIn"`
	Expected  bool   `json:"expected,omitempty"`
}

// Flag serializes a boolean the way the sheet stores it.
func Flag(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// IsYes reports whether a sheet cell holds an affirmative flag. The
// comparison trims and ignores case because hand-edited rows show up as
// "yes", "YES " and the like.
func IsYes(cell string) bool {
	return strings.EqualFold(strings.TrimSpace(cell), "yes")
}
