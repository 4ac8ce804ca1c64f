package stringutil

import (
	"regexp"

	"github.com/flowctl/flowctl/pkg/logger"
)

var sanitizeLog = logger.New("stringutil:sanitize")

// Regex patterns for detecting potential secret/credential key names
var (
	// Match uppercase snake_case identifiers that look like secret names (e.g., MY_SECRET_KEY, API_KEY, DB_PASSWORD)
	// Excludes common node-parameter keywords that are not sensitive.
	secretNamePattern = regexp.MustCompile(`\b([A-Z][A-Z0-9]*_[A-Z0-9_]+)\b`)

	// Match PascalCase identifiers ending with security-related suffixes (e.g., ApiKey, OAuthToken, DeploySecret)
	pascalCaseSecretPattern = regexp.MustCompile(`\b([A-Z][a-z0-9]*(?:[A-Z][a-z0-9]*)*(?:Token|Key|Secret|Password|Credential|Auth))\b`)

	// Common non-sensitive workflow/parameter keywords to exclude from redaction
	commonWorkflowKeywords = map[string]bool{
		"HTTP_REQUEST":   true,
		"TYPE_VERSION":   true,
		"NODE_TYPE":      true,
		"MAIN":           true,
		"JSON":           true,
		"ENV":            true,
		"PATH":           true,
		"HOME":           true,
		"PARAMETERS":     true,
		"CONNECTIONS":    true,
		"ON_ERROR":       true,
		"MAX_TRIES":      true,
		"RETRY_ON_FAIL":  true,
		"WAIT_BETWEEN":   true,
		"WORKFLOW_ID":    true,
		"EXECUTION_ID":   true,
		"TIMEOUT_MS":     true,
		"CONTENT_TYPE":   true,
		"REQUEST_METHOD": true,
	}
)

// SanitizeErrorMessage removes potential credential or API key names from error
// messages before they are logged or surfaced in an output envelope. The
// remote orchestration client's API key must never appear in a log line, and
// this also guards against credential-reference names leaking through
// node-validation error text.
func SanitizeErrorMessage(message string) string {
	if message == "" {
		return message
	}

	sanitizeLog.Printf("Sanitizing error message: length=%d", len(message))

	// Redact uppercase snake_case patterns (e.g., MY_SECRET_KEY, API_TOKEN)
	sanitized := secretNamePattern.ReplaceAllStringFunc(message, func(match string) string {
		// Don't redact common workflow keywords
		if commonWorkflowKeywords[match] {
			return match
		}
		sanitizeLog.Printf("Redacted snake_case secret pattern: %s", match)
		return "[REDACTED]"
	})

	// Redact PascalCase patterns ending with security suffixes (e.g., GitHubToken, ApiKey)
	sanitized = pascalCaseSecretPattern.ReplaceAllString(sanitized, "[REDACTED]")

	if sanitized != message {
		sanitizeLog.Print("Error message sanitization applied redactions")
	}

	return sanitized
}
