package services

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophmail/internal/common"
)

const (
	MaxUsernameLen = 64
	MaxPasswordLen = 256
	MaxSubjectLen  = 256
	MaxBodyLen     = 64 * 1024
)

func validateUsername(field, username string) error {
	if username == "" || len(username) > MaxUsernameLen || !utf8.ValidString(username) {
		return fmt.Errorf("%w: %s must be 1..%d bytes", common.ErrorMalformedInput, field, MaxUsernameLen)
	}
	for _, r := range username {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: %s contains whitespace or control characters", common.ErrorMalformedInput, field)
		}
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" || len(password) > MaxPasswordLen {
		return fmt.Errorf("%w: password must be 1..%d bytes", common.ErrorMalformedInput, MaxPasswordLen)
	}
	return nil
}

func validateMessage(to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("%w: recipient is required", common.ErrorMalformedInput)
	}
	if len(subject) > MaxSubjectLen {
		return fmt.Errorf("%w: subject exceeds %d bytes", common.ErrorMalformedInput, MaxSubjectLen)
	}
	if len(body) > MaxBodyLen {
		return fmt.Errorf("%w: body exceeds %d bytes", common.ErrorMalformedInput, MaxBodyLen)
	}
	return nil
}
