package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

const testAddress = "4014 Market St, Houston, TX 77020"

func TestDirectionsURL(t *testing.T) {
	hub := Hub{Address: testAddress, Lat: 29.7752, Lon: -95.3422}

	tests := []struct {
		platform Platform
		expected string
	}{
		{PlatformIOS, "maps://maps.apple.com/?daddr=4014%20Market%20St%2C%20Houston%2C%20TX%2077020"},
		{PlatformAndroid, "geo:29.7752,-95.3422?q=4014%20Market%20St%2C%20Houston%2C%20TX%2077020"},
		{PlatformWeb, "https://www.google.com/maps/dir/?api=1&destination=4014%20Market%20St%2C%20Houston%2C%20TX%2077020"},
	}
	for _, tc := range tests {
		t.Run(string(tc.platform), func(t *testing.T) {
			assert.Equal(t, tc.expected, DirectionsURL(hub, tc.platform))
		})
	}
}

func TestPlatformFromUserAgent(t *testing.T) {
	assert.Equal(t, PlatformIOS, PlatformFromUserAgent("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"))
	assert.Equal(t, PlatformAndroid, PlatformFromUserAgent("Mozilla/5.0 (Linux; Android 14; Pixel 8)"))
	assert.Equal(t, PlatformWeb, PlatformFromUserAgent("Mozilla/5.0 (X11; Linux x86_64)"))
	assert.Equal(t, PlatformWeb, PlatformFromUserAgent(""))
}

func TestVerificationRecency(t *testing.T) {
	now := time.Date(2025, time.August, 4, 15, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(now))
	t.Cleanup(func() { SetClock(nil) })

	assert.True(t, IsRecentlyVerified(now.Add(-15*time.Minute)))
	assert.True(t, IsRecentlyVerified(now.Add(-2*time.Hour-59*time.Minute)))
	assert.False(t, IsRecentlyVerified(now.Add(-3*time.Hour)))
	assert.False(t, IsRecentlyVerified(now.Add(-26*time.Hour)))

	assert.Equal(t, "8m ago", FormatTimeAgo(now.Add(-8*time.Minute)))
	assert.Equal(t, "2h ago", FormatTimeAgo(now.Add(-120*time.Minute)))
	assert.Equal(t, "3d ago", FormatTimeAgo(now.Add(-74*time.Hour)))
}

func TestStatusInfo(t *testing.T) {
	assert.Equal(t, "Open", StatusInfo(StatusOpen).Label)
	assert.Equal(t, "Abre Pronto", StatusInfo(StatusPlannedOpen).LabelEs)
	assert.Equal(t, StatusInfo(StatusClosed), StatusInfo(HubStatus("unknown")))
}

func TestServiceInfo(t *testing.T) {
	assert.Equal(t, "Charging", ServiceInfo(ServiceCharging).Label)
	assert.Equal(t, "Agua", ServiceInfo(ServiceWater).LabelEs)

	unknown := ServiceInfo(Service("laundry"))
	assert.Equal(t, "laundry", unknown.Label)
	assert.Equal(t, "📍", unknown.Icon)
}
