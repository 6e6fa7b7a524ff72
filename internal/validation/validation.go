package validation

import (
	"github.com/pkg/errors"
	"strings"
	"unicode/utf16"
)

const MaxMessageLength = 500

var (
	ErrEmptyMessage   = errors.New("message cannot be empty")
	ErrMessageTooLong = errors.Errorf("message must be at most %d characters", MaxMessageLength)
)

// Message checks a chat message body. Length is measured in UTF-16 code
// units, so characters outside the BMP count twice.
func Message(body string) error {
	if strings.TrimSpace(body) == "" {
		return ErrEmptyMessage
	}
	if len(utf16.Encode([]rune(body))) > MaxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}
