package pipeline

import "strings"

// NormalizeDate canonicalizes a date override to the 8-digit YYYYMMDD token
// tag writers expect. A bare 4-digit year is padded to January 1st. Empty
// input yields empty, which callers must treat as "no override". Anything
// that does not reduce to 4 or 8 digits passes through untouched for the
// extractor to reject.
func NormalizeDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	digits := make([]byte, 0, len(value))
	for i := 0; i < len(value); i++ {
		if value[i] >= '0' && value[i] <= '9' {
			digits = append(digits, value[i])
		}
	}
	switch len(digits) {
	case 4:
		return string(digits) + "0101"
	case 8:
		return string(digits)
	default:
		return value
	}
}
