package phone

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizeE164 parses a phone number and returns it in E.164 format
// (+15551234567). The default region is applied only when the input has no
// country prefix.
func NormalizeE164(raw, defaultRegion string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("phone number is empty")
	}

	num, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return "", fmt.Errorf("failed to parse phone number %q: %w", raw, err)
	}

	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number %q", raw)
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}
