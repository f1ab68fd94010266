package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/akhil-ks/shopnest/models"
)

// FieldValidationError represents a validation error for a specific field
type FieldValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldValidationErrors represents multiple field validation errors
type FieldValidationErrors []FieldValidationError

// Error implements the error interface
func (e FieldValidationErrors) Error() string {
	var messages []string
	for _, err := range e {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

var (
	usernameRegex   = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailRegex      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	postalCodeRegex = regexp.MustCompile(`^[0-9]{4,10}$`)
)

// ValidateUsername checks if the username meets the requirements
func ValidateUsername(username string) (bool, string) {
	if !usernameRegex.MatchString(username) {
		return false, "Username must be 3-20 characters of letters, numbers, and underscores"
	}
	return true, ""
}

// ValidateEmail checks if the email is valid
func ValidateEmail(email string) (bool, string) {
	if !emailRegex.MatchString(email) {
		return false, "Invalid email format. Please enter a valid email address"
	}
	return true, ""
}

// ValidatePassword checks if the password meets the requirements
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters long"
	}
	return true, ""
}

// ValidateShippingAddress checks that every required shipping field is
// non-empty after trimming. Checkout cannot leave the shipping step
// until this passes.
func ValidateShippingAddress(addr models.Address) FieldValidationErrors {
	var errs FieldValidationErrors

	required := []struct {
		field string
		value string
	}{
		{"line1", addr.Line1},
		{"city", addr.City},
		{"state", addr.State},
		{"country", addr.Country},
		{"postal_code", addr.PostalCode},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, FieldValidationError{Field: f.field, Message: "is required"})
		}
	}

	if code := strings.TrimSpace(addr.PostalCode); code != "" && !postalCodeRegex.MatchString(code) {
		errs = append(errs, FieldValidationError{Field: "postal_code", Message: "must be 4-10 digits"})
	}

	return errs
}

// ValidateQuantity validates an order item quantity
func ValidateQuantity(quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	return nil
}

// ValidatePrice validates a price
func ValidatePrice(price float64) error {
	if price <= 0 {
		return fmt.Errorf("price must be greater than 0")
	}
	return nil
}
