package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Regions the catering teams operate from. National numbers are tried against
// each in order; international input parses regardless.
var supportedRegions = []string{
	"FR",
	"BE",
	"CH",
}

// NormalizePhone returns the E.164 form of a phone number, or "" if the input
// cannot be parsed for any supported region.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	for _, region := range supportedRegions {
		parsed, err := phonenumbers.Parse(phone, region)
		if err != nil {
			continue
		}
		if phonenumbers.IsValidNumber(parsed) {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
	}
	return ""
}
