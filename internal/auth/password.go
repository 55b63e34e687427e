package auth

import "regexp"

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// PolicyError describes a password policy violation. Its message is
// user-facing and surfaced verbatim in the failure envelope.
type PolicyError struct {
	msg string
}

func (e *PolicyError) Error() string { return e.msg }

// ValidatePassword enforces the password policy.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return &PolicyError{"Password must be at least 8 characters long"}
	}
	if !upperRe.MatchString(password) {
		return &PolicyError{"Password must contain at least one uppercase letter"}
	}
	if !lowerRe.MatchString(password) {
		return &PolicyError{"Password must contain at least one lowercase letter"}
	}
	if !digitRe.MatchString(password) {
		return &PolicyError{"Password must contain at least one number"}
	}
	if !specialRe.MatchString(password) {
		return &PolicyError{"Password must contain at least one special character"}
	}
	return nil
}
