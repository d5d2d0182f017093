package email

import (
	"net/mail"
	"strings"
)

// Normalize trims and lowercases an address.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// IsValid reports whether address parses as a bare RFC 5322 address.
func IsValid(address string) bool {
	parsed, err := mail.ParseAddress(address)
	if err != nil {
		return false
	}
	return parsed.Address == strings.TrimSpace(address)
}

// Mask hides the local part except its first rune: "user@example.com" -> "u***@example.com".
func Mask(address string) string {
	address = strings.TrimSpace(address)
	at := strings.LastIndexByte(address, '@')
	if at <= 0 {
		return strings.Repeat("*", len([]rune(address)))
	}
	local := []rune(address[:at])
	return string(local[0]) + strings.Repeat("*", max(len(local)-1, 3)) + address[at:]
}
