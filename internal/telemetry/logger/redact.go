package logger

import "strings"

// Sensitive value prefixes that are partially masked wherever they appear.
var sensitiveValuePrefixes = []string{
	"Bearer ", // Authorization header value
	"eyJ",     // JWT header segment
}

// Sensitive key patterns that should be redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"otp",
	"credential",
	"authorization",
	"bearer",
	"_key",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactField redacts string values under sensitive keys. Other value
// kinds pass through.
func redactField(key string, val any) any {
	if s, ok := val.(string); ok {
		return redactString(key, s)
	}
	return val
}

// redactString masks a value with a sensitive prefix, then fully redacts
// non-empty values under a sensitive key.
func redactString(key, val string) string {
	for _, prefix := range sensitiveValuePrefixes {
		if strings.HasPrefix(val, prefix) {
			return maskValue(val, prefix)
		}
	}
	if val != "" && IsSensitiveKey(key) {
		return redactedValue
	}
	return val
}

// maskValue partially masks a sensitive value, keeping the prefix and
// the last 3 characters.
func maskValue(value, prefix string) string {
	body := value[len(prefix):]
	if len(body) <= 8 {
		return prefix + "***"
	}
	return prefix + "***" + body[len(body)-3:]
}

// RedactString manually redacts a string value.
// Use this when you need to redact a value before logging.
func RedactString(value string) string {
	for _, prefix := range sensitiveValuePrefixes {
		if strings.HasPrefix(value, prefix) {
			return maskValue(value, prefix)
		}
	}
	return value
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveValue checks if a value appears to be sensitive.
func IsSensitiveValue(value string) bool {
	for _, prefix := range sensitiveValuePrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}
