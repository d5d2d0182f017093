// Package privacy keeps raw contact data out of logs, audit trails and cache keys.
package privacy

import (
	"encoding/hex"
	"net"
	"strings"
	"unicode"

	"golang.org/x/crypto/blake2b"
)

// Hasher derives stable pseudonymous identifiers with a keyed BLAKE2b-256.
type Hasher struct {
	key []byte
}

// NewHasher panics on keys longer than 64 bytes, matching blake2b's limit.
func NewHasher(key string) *Hasher {
	k := []byte(key)
	if len(k) > blake2b.Size {
		panic("privacy: hash key longer than 64 bytes")
	}
	return &Hasher{key: k}
}

// Hash returns the hex digest of the normalized value. Empty input hashes to "".
func (h *Hasher) Hash(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return ""
	}
	mac, err := blake2b.New256(h.key)
	if err != nil {
		// only reachable with an oversized key, rejected in NewHasher
		panic(err)
	}
	mac.Write([]byte(normalized))
	return hex.EncodeToString(mac.Sum(nil))
}

// MaskPhone keeps the last two digits: "+44 7700 900123" -> "***********23".
func MaskPhone(phone string) string {
	digits := make([]rune, 0, len(phone))
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) <= 2 {
		return strings.Repeat("*", len(digits))
	}
	return strings.Repeat("*", len(digits)-2) + string(digits[len(digits)-2:])
}

// AnonymizeIP zeroes the host part of an address (/24 for IPv4, /48 for IPv6).
func AnonymizeIP(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	if v4 := parsed.To4(); v4 != nil {
		return v4.Mask(net.CIDRMask(24, 32)).String()
	}
	return parsed.Mask(net.CIDRMask(48, 128)).String()
}
