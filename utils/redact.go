package utils

import (
	"regexp"
	"strings"
)

// Upstream error bodies get logged verbatim for debugging; they can echo
// credentials and account numbers, so they are masked first.

var (
	ibanRegex = regexp.MustCompile(`[A-Z]{2}\d{2}[A-Z0-9]{10,30}`)
	cardRegex = regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`)
)

// RedactSecrets replaces every occurrence of the given credential values
// with a placeholder. Empty secrets are skipped.
func RedactSecrets(s string, secrets ...string) string {
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, "****")
	}
	return s
}

// MaskSensitive masks IBANs and card numbers in s.
func MaskSensitive(s string) string {
	s = ibanRegex.ReplaceAllString(s, "****IBAN****")
	s = cardRegex.ReplaceAllString(s, "****-****-****-****")
	return s
}

// Snippet truncates s for log output so a huge response body cannot flood
// the log stream.
func Snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
