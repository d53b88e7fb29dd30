package tui

import (
	"regexp"
	"strings"
)

// Same basic shape check the web forms used.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLen = 6

// validateLogin returns an inline error message, or "" when the form may be
// submitted. Validation failures never reach the network.
func validateLogin(email, password string) string {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return "Please fill in all fields"
	}
	if !emailRe.MatchString(strings.TrimSpace(email)) {
		return "Please enter a valid email address"
	}
	if len(password) < minPasswordLen {
		return "Password must be at least 6 characters"
	}
	return ""
}

func validateSignup(name, email, password, confirm string) string {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return "Please fill in all fields"
	}
	if !emailRe.MatchString(strings.TrimSpace(email)) {
		return "Please enter a valid email address"
	}
	if len(password) < minPasswordLen {
		return "Password must be at least 6 characters"
	}
	if password != confirm {
		return "Passwords do not match"
	}
	return ""
}
