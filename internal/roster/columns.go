package roster

import "strings"

// ColToNumber converts an Excel column label ("A", "AG") to its 1-based
// index. Returns 0 for invalid input.
func ColToNumber(col string) int {
	s := strings.ToUpper(strings.TrimSpace(col))
	if s == "" {
		return 0
	}
	n := 0
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return 0
		}
		n = n*26 + int(r-'A'+1)
	}
	return n
}

// NumberToCol is the inverse of ColToNumber.
func NumberToCol(n int) string {
	if n < 1 {
		return "A"
	}
	out := ""
	for n > 0 {
		rem := (n - 1) % 26
		out = string(rune('A'+rem)) + out
		n = (n - 1) / 26
	}
	return out
}
