package validate

import (
	"regexp"
	"strings"
)

var (
	reEmail  = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reMatric = regexp.MustCompile(`^[A-Za-z0-9/_-]{3,50}$`)
	reID     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 5 || len(s) > 200 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Matric validates a matric number before normalization (3..50 chars).
func Matric(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reMatric.MatchString(s)
}

// FullName validates a displayable person name (2..120 chars).
func FullName(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || len(s) > 120 {
		return "", false
	}
	return s, true
}

func Title(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && len(s) <= 200
}

func Author(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && len(s) <= 120
}

func Version(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && len(s) <= 60
}

// Department is optional; empty is fine.
func Department(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, len(s) <= 120
}

// ID validates a simple resource identifier (section/book/student/borrow ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}
