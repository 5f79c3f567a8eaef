package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Input limits for registration.
const (
	NameMinLen     = 3
	NameMaxLen     = 50
	PasswordMinLen = 6
	// PasswordMaxBytes is bcrypt's input limit.
	PasswordMaxBytes = 72
)

// emailPattern accepts word characters separated by single '.' or '-' on
// both sides of '@' and a final label of at least two characters.
var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,})+$`)

// ValidEmail reports whether email is syntactically acceptable.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// validateRegistration checks the register input after trimming. It returns
// nil or a MissingFields/Validation error.
func validateRegistration(name, email, password string) *AuthError {
	if name == "" || email == "" || password == "" {
		return newError(KindMissingFields, MsgMissingRegister, nil)
	}
	if n := utf8.RuneCountInString(name); n < NameMinLen {
		return newError(KindValidation, "Name must be at least 3 characters long", nil)
	} else if n > NameMaxLen {
		return newError(KindValidation, "Name cannot be more than 50 characters", nil)
	}
	if !ValidEmail(email) {
		return newError(KindValidation, "Please provide a valid email", nil)
	}
	if utf8.RuneCountInString(password) < PasswordMinLen {
		return newError(KindValidation, "Password must be at least 6 characters long", nil)
	}
	if len(password) > PasswordMaxBytes {
		return newError(KindValidation, "Password cannot be more than 72 bytes", nil)
	}
	return nil
}

func normalize(s string) string { return strings.TrimSpace(s) }
