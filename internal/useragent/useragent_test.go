package useragent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want Parsed
	}{
		{
			name: "chrome on windows 10",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			want: Parsed{Browser: "Chrome", BrowserVersion: "120.0", OS: "Windows", OSVersion: "10", Device: "Desktop", IsDesktop: true},
		},
		{
			name: "firefox on linux",
			ua:   "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			want: Parsed{Browser: "Firefox", BrowserVersion: "121.0", OS: "Linux", Device: "Desktop", IsDesktop: true},
		},
		{
			name: "safari on macos",
			ua:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
			want: Parsed{Browser: "Safari", BrowserVersion: "17.1", OS: "macOS", OSVersion: "10.15", Device: "Desktop", IsDesktop: true},
		},
		{
			name: "edge on windows",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.2210.91",
			want: Parsed{Browser: "Edge", BrowserVersion: "120.0", OS: "Windows", OSVersion: "10", Device: "Desktop", IsDesktop: true},
		},
		{
			name: "chrome on android phone",
			ua:   "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
			want: Parsed{Browser: "Chrome", BrowserVersion: "120.0", OS: "Android", OSVersion: "14", Device: "Mobile", IsMobile: true},
		},
		{
			name: "safari on iphone",
			ua:   "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1",
			want: Parsed{Browser: "Safari", BrowserVersion: "17.1", OS: "iOS", OSVersion: "17.1", Device: "Mobile", IsMobile: true},
		},
		{
			name: "ipad is tablet not mobile",
			ua:   "Mozilla/5.0 (iPad; CPU OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1",
			want: Parsed{Browser: "Safari", BrowserVersion: "17.1", OS: "iOS", OSVersion: "17.1", Device: "Tablet", IsTablet: true},
		},
		{
			name: "empty string",
			ua:   "",
			want: Parsed{Browser: "Unknown", OS: "Unknown", Device: "Unknown", IsDesktop: true},
		},
		{
			name: "garbage",
			ua:   "curl/8.4.0",
			want: Parsed{Browser: "Unknown", OS: "Unknown", Device: "Desktop", IsDesktop: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.ua))
		})
	}
}

func TestFriendlyName(t *testing.T) {
	assert.Equal(t, "Chrome 120.0 on Windows 10", FriendlyName(Parsed{
		Browser: "Chrome", BrowserVersion: "120.0", OS: "Windows", OSVersion: "10",
	}))
	assert.Equal(t, "Unknown on Unknown", FriendlyName(Parsed{Browser: "Unknown", OS: "Unknown"}))
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "Safari - Tablet", ShortName(Parsed{Browser: "Safari", Device: "Tablet"}))
}
