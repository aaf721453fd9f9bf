// Package normalizer holds the helpers shared by the sandbox adapters and the graders:
// output trimming, transport decoding, status mapping and JSON canonicalization.
package normalizer

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Trim strips surrounding whitespace before outputs are compared.
// Raw output is what gets surfaced in diagnostics, never the trimmed one.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// OutputsMatch compares program output with the expected output ignoring surrounding whitespace
func OutputsMatch(actual, expected string) bool {
	return Trim(actual) == Trim(expected)
}

// DecodeBase64 decodes a base64 text field. Line breaks inserted by the backend are ignored.
func DecodeBase64(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	cleaned := strings.NewReplacer("\n", "", "\r", "").Replace(s)
	b, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		b, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(cleaned, "="))
		if err != nil {
			return "", fmt.Errorf("failed to decode base64 field: %w", err)
		}
	}
	return string(b), nil
}

// FirstNonEmpty returns the first argument that is not blank
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
