package domain

import (
	"fmt"
	"time"
)

// EmergencyType names the situation the directory is most likely used for.
type EmergencyType string

const (
	EmergencyHeat      EmergencyType = "heat"
	EmergencyCold      EmergencyType = "cold"
	EmergencyPower     EmergencyType = "power"
	EmergencyGeneral   EmergencyType = "general"
	EmergencyOvernight EmergencyType = "overnight"
)

// Urgency grades an emergency context.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// EmergencyContext drives which message and services the UI leads with.
type EmergencyContext struct {
	Type       EmergencyType `json:"type"`
	Urgency    Urgency       `json:"urgency"`
	Confidence float64       `json:"confidence"`
	Factors    []string      `json:"factors"`
}

// Battery is an optional device battery reading; Level is 0–100.
type Battery struct {
	Level    int  `json:"level"`
	Charging bool `json:"charging"`
}

// ContextProvider detects the current emergency context. Implementations
// backed by live weather alerts can replace the seasonal heuristic.
type ContextProvider interface {
	Detect(battery *Battery) EmergencyContext
}

// SeasonalContext derives the context from local time and battery level.
// It is deterministic for a given clock reading.
type SeasonalContext struct {
	Location *time.Location
}

// NewSeasonalContext returns a provider that evaluates hours in loc.
// A nil loc means UTC.
func NewSeasonalContext(loc *time.Location) *SeasonalContext {
	if loc == nil {
		loc = time.UTC
	}
	return &SeasonalContext{Location: loc}
}

// Detect applies, in order: overnight hours, summer afternoons, winter
// mornings and evenings, then battery level. Later signals override the
// type chosen by earlier ones.
func (s *SeasonalContext) Detect(battery *Battery) EmergencyContext {
	now := clock.Now().In(s.Location)
	hour := now.Hour()
	month := now.Month()

	ctx := EmergencyContext{Type: EmergencyGeneral, Urgency: UrgencyLow, Confidence: 0.5, Factors: []string{}}

	if hour >= 22 || hour <= 6 {
		ctx.Type = EmergencyOvernight
		ctx.Factors = append(ctx.Factors, "Late night/early morning hours")
		ctx.Confidence += 0.2
	}

	if month >= time.May && month <= time.September && hour >= 10 && hour <= 19 {
		ctx.Type = EmergencyHeat
		ctx.Urgency = UrgencyHigh
		ctx.Factors = append(ctx.Factors, "Summer heat period")
		ctx.Confidence += 0.3
	}

	if (month == time.December || month <= time.February) && (hour <= 8 || hour >= 18) {
		ctx.Type = EmergencyCold
		ctx.Factors = append(ctx.Factors, "Winter cold period")
		ctx.Confidence += 0.2
	}

	if battery != nil && !battery.Charging {
		switch {
		case battery.Level <= 20:
			ctx.Type = EmergencyPower
			ctx.Urgency = UrgencyHigh
			if battery.Level <= 10 {
				ctx.Urgency = UrgencyCritical
			}
			ctx.Factors = append(ctx.Factors, fmt.Sprintf("Low battery (%d%%)", battery.Level))
			ctx.Confidence += 0.4
		case battery.Level <= 50:
			ctx.Factors = append(ctx.Factors, fmt.Sprintf("Medium battery (%d%%)", battery.Level))
			ctx.Confidence += 0.1
		}
	}

	if ctx.Confidence > 1 {
		ctx.Confidence = 1
	}
	return ctx
}
