// Package useragent extracts browser, OS and device family from a raw
// user-agent string for presence rosters.
package useragent

import (
	"regexp"
	"strings"
)

type Parsed struct {
	Browser        string
	BrowserVersion string
	OS             string
	OSVersion      string
	Device         string
	IsMobile       bool
	IsTablet       bool
	IsDesktop      bool
}

var (
	chromeVer  = regexp.MustCompile(`chrome/(\d+\.\d+)`)
	firefoxVer = regexp.MustCompile(`firefox/(\d+\.\d+)`)
	safariVer  = regexp.MustCompile(`version/(\d+\.\d+)`)
	edgeVer    = regexp.MustCompile(`edg/(\d+\.\d+)`)
	operaVer   = regexp.MustCompile(`(?:opera|opr)/(\d+\.\d+)`)
	macVer     = regexp.MustCompile(`mac os x (\d+[._]\d+)`)
	androidVer = regexp.MustCompile(`android (\d+(?:\.\d+)?)`)
	iosVer     = regexp.MustCompile(`os (\d+[._]\d+)`)
)

func Parse(userAgent string) Parsed {
	if strings.TrimSpace(userAgent) == "" {
		return Parsed{Browser: "Unknown", OS: "Unknown", Device: "Unknown", IsDesktop: true}
	}

	ua := strings.ToLower(userAgent)
	p := Parsed{Browser: "Unknown", OS: "Unknown", Device: "Desktop", IsDesktop: true}

	switch {
	case strings.Contains(ua, "chrome") && !strings.Contains(ua, "edg"):
		p.Browser = "Chrome"
		p.BrowserVersion = firstMatch(chromeVer, ua)
	case strings.Contains(ua, "firefox"):
		p.Browser = "Firefox"
		p.BrowserVersion = firstMatch(firefoxVer, ua)
	case strings.Contains(ua, "safari") && !strings.Contains(ua, "chrome"):
		p.Browser = "Safari"
		p.BrowserVersion = firstMatch(safariVer, ua)
	case strings.Contains(ua, "edg"):
		p.Browser = "Edge"
		p.BrowserVersion = firstMatch(edgeVer, ua)
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr"):
		p.Browser = "Opera"
		p.BrowserVersion = firstMatch(operaVer, ua)
	}

	switch {
	case strings.Contains(ua, "windows"):
		p.OS = "Windows"
		switch {
		case strings.Contains(ua, "windows nt 10.0"):
			p.OSVersion = "10"
		case strings.Contains(ua, "windows nt 6.3"):
			p.OSVersion = "8.1"
		case strings.Contains(ua, "windows nt 6.2"):
			p.OSVersion = "8"
		case strings.Contains(ua, "windows nt 6.1"):
			p.OSVersion = "7"
		}
	// iPhone/iPad agents contain "like Mac OS X", so iOS goes first.
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		p.OS = "iOS"
		p.OSVersion = strings.ReplaceAll(firstMatch(iosVer, ua), "_", ".")
	case strings.Contains(ua, "mac os x") || strings.Contains(ua, "macos"):
		p.OS = "macOS"
		p.OSVersion = strings.ReplaceAll(firstMatch(macVer, ua), "_", ".")
	case strings.Contains(ua, "android"):
		p.OS = "Android"
		p.OSVersion = firstMatch(androidVer, ua)
	case strings.Contains(ua, "linux"):
		p.OS = "Linux"
	}

	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		p.Device = "Tablet"
		p.IsTablet = true
		p.IsDesktop = false
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "iphone") || strings.Contains(ua, "android"):
		p.Device = "Mobile"
		p.IsMobile = true
		p.IsDesktop = false
	}

	return p
}

// FriendlyName renders "Chrome 120.0 on macOS 14.1" style labels.
func FriendlyName(p Parsed) string {
	browser := p.Browser
	if p.BrowserVersion != "" {
		browser += " " + p.BrowserVersion
	}
	os := p.OS
	if p.OSVersion != "" {
		os += " " + p.OSVersion
	}
	return browser + " on " + os
}

func ShortName(p Parsed) string {
	return p.Browser + " - " + p.Device
}

func firstMatch(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return ""
}
