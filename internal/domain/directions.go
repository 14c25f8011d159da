package domain

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Platform selects the maps application a directions link targets.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

// PlatformFromUserAgent guesses the client platform from a User-Agent header.
func PlatformFromUserAgent(ua string) Platform {
	switch {
	case strings.Contains(ua, "iPhone"), strings.Contains(ua, "iPad"), strings.Contains(ua, "iPod"):
		return PlatformIOS
	case strings.Contains(ua, "Android"):
		return PlatformAndroid
	default:
		return PlatformWeb
	}
}

// DirectionsURL builds a link that opens turn-by-turn directions to the hub.
func DirectionsURL(h Hub, p Platform) string {
	address := strings.ReplaceAll(url.QueryEscape(h.Address), "+", "%20")
	switch p {
	case PlatformIOS:
		return "maps://maps.apple.com/?daddr=" + address
	case PlatformAndroid:
		return fmt.Sprintf("geo:%s,%s?q=%s",
			strconv.FormatFloat(h.Lat, 'f', -1, 64),
			strconv.FormatFloat(h.Lon, 'f', -1, 64),
			address)
	default:
		return "https://www.google.com/maps/dir/?api=1&destination=" + address
	}
}

// RecentVerificationWindow is how long a verification counts as fresh.
const RecentVerificationWindow = 3 * time.Hour

// IsRecentlyVerified reports whether t falls within the last three hours.
func IsRecentlyVerified(t time.Time) bool {
	return t.After(clock.Now().Add(-RecentVerificationWindow))
}

// FormatTimeAgo renders the age of t as "12m ago", "3h ago" or "2d ago".
func FormatTimeAgo(t time.Time) string {
	d := clock.Since(t)
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
