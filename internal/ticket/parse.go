package ticket

import (
	"strconv"
	"strings"
)

// ParseBatch expands an operator-entered ticket expression into individual
// zero-padded ticket numbers. Three syntaxes are accepted and can be mixed
// in one comma-separated input:
//
//	"42"          single ticket
//	"001,5,019"   comma list
//	"100-102"     inclusive numeric range
//
// Ranges with non-numeric bounds are silently dropped. Duplicates (under
// normalized comparison) are collapsed, first occurrence wins, and input
// order is preserved. Empty input yields an empty slice; the caller treats
// that as nothing to submit.
func ParseBatch(input string) []string {
	var out []string
	seen := make(map[string]struct{})

	push := func(raw string) {
		padded := Pad(raw)
		key := strings.ToLower(padded)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, padded)
	}

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "-") {
			bounds := strings.Split(part, "-")
			start, err1 := strconv.Atoi(strings.TrimSpace(bounds[0]))
			end, err2 := strconv.Atoi(strings.TrimSpace(bounds[1]))
			if err1 != nil || err2 != nil {
				continue
			}
			for i := start; i <= end; i++ {
				push(strconv.Itoa(i))
			}
			continue
		}
		push(part)
	}
	return out
}
