// Package phone canonicalizes raw phone strings into E.164.
package phone

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// ErrInvalidPhone is returned when a string cannot be read as a valid number.
var ErrInvalidPhone = errors.New("invalid phone number")

// Normalize parses raw using region as the default country and returns the
// number in E.164 form, e.g. "+15555550123".
func Normalize(raw, region string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPhone)
	}
	num, err := phonenumbers.Parse(trimmed, strings.ToUpper(region))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidPhone, raw, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
