package domain

import "strings"

// NormalizeInitial keeps the first character and only if it is A-Z.
func NormalizeInitial(value string) string {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" {
		return ""
	}
	c := trimmed[0]
	if c < 'A' || c > 'Z' {
		return ""
	}
	return string(c)
}

// DisplayName renders "surname + initial" when an initial is set, used to
// disambiguate staff who share a surname.
func (s Staff) DisplayName() string {
	initial := NormalizeInitial(s.FirstInitial)
	if initial == "" {
		return s.LastName
	}
	return s.LastName + initial
}
