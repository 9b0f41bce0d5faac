package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

var uuidPattern = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`)

// ValidateDocumentID validates document ID format (UUID)
func ValidateDocumentID(id string) error {
	if id == "" {
		return fmt.Errorf("document ID cannot be empty")
	}
	if !uuidPattern.MatchString(strings.ToLower(id)) {
		return fmt.Errorf("invalid document ID format")
	}
	return nil
}

// ValidateContentType checks the upload content type (PDF only)
func ValidateContentType(ct string) error {
	if ct != "application/pdf" {
		return fmt.Errorf("invalid content type: %s (allowed: application/pdf)", ct)
	}
	return nil
}

// ValidateMailType checks the mail service tier
func ValidateMailType(t string) error {
	switch strings.ToLower(t) {
	case "standard", "premium":
		return nil
	}
	return fmt.Errorf("invalid mail type: %s (allowed: standard, premium)", t)
}

// ValidateStars checks a rating value
func ValidateStars(stars int) error {
	if stars < 1 || stars > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	return nil
}

// ValidateOwnershipStatus checks the uploader's claimed rights to print
func ValidateOwnershipStatus(s string) error {
	allowed := map[string]bool{
		"originator":    true,
		"team":          true,
		"company":       true,
		"not_owner":     true,
		"public_domain": true,
	}
	if !allowed[strings.ToLower(s)] {
		return fmt.Errorf("invalid ownership status: %s", s)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
