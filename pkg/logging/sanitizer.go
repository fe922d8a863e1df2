// Package logging provides helpers to keep credentials and participant
// identifiers out of log output.
package logging

import (
	"regexp"
)

const (
	// MaxPromptLogLength caps how much of a model prompt gets logged.
	MaxPromptLogLength = 200
	// RedactedText is the replacement text for sensitive data.
	RedactedText = "[REDACTED]"
)

var (
	// password=xxx, pwd=xxx, pass=xxx (until next delimiter)
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Anthropic API keys
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[A-Za-z0-9-_]+`)

	// generic api_key=... values
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)=[A-Za-z0-9-_]{20,}`)

	// user:pass@host in connection URLs
	connStringPattern = regexp.MustCompile(`://[^:]+:[^@]+@[^/\s]+`)
)

// SanitizeConnectionString removes credentials from connection strings
// before they are logged.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)

	return sanitized
}

// SanitizeError strips credentials from error messages. Database and API
// client errors can echo back connection strings and keys.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(err.Error(), "${1}="+RedactedText)
	sanitized = anthropicKeyPattern.ReplaceAllString(sanitized, RedactedText)
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)

	return sanitized
}

// SanitizePrompt truncates a model prompt or message for logging and strips
// any credentials that leaked into it.
func SanitizePrompt(prompt string) string {
	if prompt == "" {
		return ""
	}

	sanitized := TruncateString(prompt, MaxPromptLogLength)
	sanitized = anthropicKeyPattern.ReplaceAllString(sanitized, RedactedText)
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)

	return sanitized
}

// MaskNDISNumber hides all but the last three digits of an NDIS number so
// logs stay useful without carrying full participant identifiers.
func MaskNDISNumber(ndisNumber string) string {
	if len(ndisNumber) <= 3 {
		return ndisNumber
	}
	masked := make([]byte, len(ndisNumber)-3)
	for i := range masked {
		masked[i] = '*'
	}
	return string(masked) + ndisNumber[len(ndisNumber)-3:]
}

// TruncateString truncates a string to maxLen and adds an ellipsis.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
