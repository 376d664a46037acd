package service

import (
	"strings"

	"github.com/mssola/useragent"
)

// deviceLabel derives a human-readable device description from the User-Agent
// header. Recorded on sessions so users can recognize them in the session list.
func deviceLabel(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown device"
	}

	ua := useragent.New(userAgentString)
	browser, version := ua.Browser()
	browser = strings.TrimSpace(browser)
	if browser == "" {
		return "Unknown device"
	}

	if idx := strings.Index(version, "."); idx > 0 {
		version = version[:idx]
	}

	platform := "desktop"
	if ua.Mobile() {
		platform = "mobile"
	}

	label := browser
	if version != "" {
		label += " " + version
	}
	if os := ua.OS(); os != "" {
		label += " (" + os + ", " + platform + ")"
	}
	return label
}
