package notifications

import "strings"

// NormalizePhone strips formatting characters and prefixes the configured
// country code unless the number already carries it. Applied before every
// send.
func NormalizePhone(countryCode, phone string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, phone)

	if countryCode == "" || strings.HasPrefix(cleaned, "+") {
		return cleaned
	}
	return countryCode + strings.TrimPrefix(cleaned, "0")
}
