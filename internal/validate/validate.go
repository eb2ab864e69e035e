package validate

import (
	"regexp"
	"strings"
)

var (
	reListID   = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)
	reUserCode = regexp.MustCompile(`^[A-Za-z0-9_-]{1,16}$`)
)

// ListID accepts the uuid-shaped list identifiers the stores allocate.
func ListID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reListID.MatchString(s)
}

// UserCode accepts picker badge codes.
func UserCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reUserCode.MatchString(s)
}

// ListName trims and caps a display name; empty is rejected.
func ListName(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 120 {
		s = s[:120]
	}
	return s, true
}
