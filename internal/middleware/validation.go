package middleware

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxMessageLength bounds chat messages and case requests, in bytes.
const MaxMessageLength = 8000

// ValidateMessageContent validates a chat message or case request text.
func ValidateMessageContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("content cannot be empty")
	}
	if len(content) > MaxMessageLength {
		return errors.New("content exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("content must be valid UTF-8")
	}
	return nil
}

// ValidateCaseID validates a case ID.
func ValidateCaseID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid case ID format")
	}
	return nil
}
