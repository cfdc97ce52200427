package models

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

const seatLetters = "ABCDEFG"

// ValidateSeatNumber accepts a number in 1..999 followed by a letter A-G, e.g. "12C".
func ValidateSeatNumber(seat string) error {
	if len(seat) < 2 {
		return NewValidationError("seat_number", "seat number %q is too short", seat)
	}
	letter := seat[len(seat)-1]
	digits := seat[:len(seat)-1]
	if !strings.ContainsRune(seatLetters, rune(letter)) {
		return NewValidationError("seat_number", "seat number should comprise a number (1-999), followed by a letter from A to G")
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return NewValidationError("seat_number", "seat number should comprise a number (1-999), followed by a letter from A to G")
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > 999 {
		return NewValidationError("seat_number", "seat number should comprise a number (1-999), followed by a letter from A to G")
	}
	return nil
}

// ValidateIATA requires exactly three uppercase ASCII letters.
func ValidateIATA(field, code string) error {
	if len(code) != 3 {
		return NewValidationError(field, "must contain exactly three uppercase letters")
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return NewValidationError(field, "must contain exactly three uppercase letters")
		}
	}
	return nil
}

func ValidateFlightNumber(n int) error {
	if n < 1 || n > 9999 {
		return NewValidationError("flight_number", "flight_number must be between 1 and 9999")
	}
	return nil
}

// FormatFlightNumber joins the airline ICAO code and the numeric part.
func FormatFlightNumber(icao string, n int) string {
	return icao + strconv.Itoa(n)
}

func ValidateEmail(field, email string) error {
	if email == "" {
		return NewValidationError(field, "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return NewValidationError(field, "%q is not a valid email address", email)
	}
	return nil
}

// ValidateTimeZone accepts an empty zone or any IANA name known to the runtime.
func ValidateTimeZone(tz string) error {
	if tz == "" {
		return nil
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return NewValidationError("time_zone", "unknown time zone %q", tz)
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(field, "is required")
	}
	return nil
}
