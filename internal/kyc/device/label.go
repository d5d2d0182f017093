// Package device derives a human readable capture-device label from a User-Agent.
// The label is stored on the session so reviewers can see where captures came from.
package device

import (
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown Device"

// ParseUserAgent returns "<browser> on <os>", e.g. "Chrome on Intel Mac OS X 10_15_7".
func ParseUserAgent(userAgent string) string {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return unknownDevice
	}
	ua := useragent.New(userAgent)

	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}
	os := strings.TrimSpace(ua.OS())
	if os == "" {
		os = strings.TrimSpace(ua.Platform())
	}
	if os == "" {
		os = "Unknown OS"
	}
	label := fmt.Sprintf("%s on %s", browser, os)
	if ua.Mobile() && !strings.Contains(label, "Mobile") {
		label += " (mobile)"
	}
	return label
}
