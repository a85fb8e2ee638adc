package checkout

import (
	"strings"

	"github.com/dukahub/storefront/internal/api"
)

const countryCode = "254"

// NormalizePhone canonicalizes a Kenyan mobile number into the
// <country-code><subscriber> digit string the payment gateway expects.
// Accepted inputs: "+254712345678", "254712345678", "0712345678",
// "712345678", with internal whitespace tolerated.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r == ' ' || r == '\t' {
			continue
		}
		b.WriteRune(r)
	}
	s := b.String()
	s = strings.TrimPrefix(s, "+")

	for _, r := range s {
		if r < '0' || r > '9' {
			return "", &api.ValidationError{Field: "phone", Message: "phone number must contain only digits"}
		}
	}
	if s == "" {
		return "", &api.ValidationError{Field: "phone", Message: "phone number is required"}
	}

	switch {
	case strings.HasPrefix(s, countryCode):
	case strings.HasPrefix(s, "0"):
		s = countryCode + s[1:]
	default:
		s = countryCode + s
	}

	if len(s) != 12 {
		return "", &api.ValidationError{Field: "phone", Message: "phone number must be 12 digits after normalization"}
	}
	if !strings.HasPrefix(s, "2547") && !strings.HasPrefix(s, "2541") {
		return "", &api.ValidationError{Field: "phone", Message: "phone number must be a Kenyan mobile number"}
	}
	return s, nil
}
