// Package validation contains pure input validation helpers for the
// reservation surfaces.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var nonDigits = regexp.MustCompile(`\D`)

// NormalizeDocument strips every non-digit character from a government
// document id ("111.111.111-11" -> "11111111111").
func NormalizeDocument(document string) string {
	return nonDigits.ReplaceAllString(document, "")
}

// ValidateDocument normalizes and checks a government document id.
// Returns the normalized digits-only form.
func ValidateDocument(document string) (string, error) {
	normalized := NormalizeDocument(document)
	if len(normalized) < 5 || len(normalized) > 14 {
		return "", fmt.Errorf("document must contain between 5 and 14 digits")
	}
	return normalized, nil
}

// ValidateFullName checks the requester name field and returns its trimmed form.
func ValidateFullName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("full name is required")
	}
	if len(trimmed) > 120 {
		return "", fmt.Errorf("full name must not exceed 120 characters")
	}
	return trimmed, nil
}

// ValidatePeriod checks an inclusive date range: both dates present and
// end not before start.
func ValidatePeriod(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("start and end dates are required")
	}
	if end.Before(start) {
		return fmt.Errorf("end date must not be before start date")
	}
	return nil
}

// ValidateRejectReason checks the mandatory reason for a rejection.
func ValidateRejectReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("a reason is required when rejecting a reservation")
	}
	return nil
}
