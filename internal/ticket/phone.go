package ticket

import "strings"

// Digits strips every non-digit rune from a phone number. Two rows that
// spell the same number differently ("647-330-8919" vs "6473308919") share
// one digits-only form, which is what deduplication keys on.
func Digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatE164 converts a free-text phone number to E.164, assuming North
// American numbering: 10 digits get a +1 prefix, 11 digits starting with 1
// get a bare +. Numbers already carrying a + are returned untouched; anything
// else is prefixed with + as a best effort and left to the SMS provider to
// reject.
func FormatE164(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "+") {
		return raw
	}
	cleaned := Digits(raw)
	switch {
	case len(cleaned) == 10:
		return "+1" + cleaned
	case len(cleaned) == 11 && strings.HasPrefix(cleaned, "1"):
		return "+" + cleaned
	default:
		return "+" + cleaned
	}
}
