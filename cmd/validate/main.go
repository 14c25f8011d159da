// Command validate checks a hub fixture file before it is deployed. It runs
// the document schema checks, content consistency checks, and a smoke test of
// the directory flow against the fixture.
//
// Usage:
//
//	go run ./cmd/validate -fixture data/hubs.json -lat 29.7604 -lon -95.3698
//
// Without -fixture the embedded Houston fixture is validated.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/resilience-hubs/internal/adapter/fixture"
	"github.com/couchcryptid/resilience-hubs/internal/domain"
	"github.com/couchcryptid/resilience-hubs/internal/hubs"
	"github.com/couchcryptid/resilience-hubs/internal/observability"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	path := flag.String("fixture", "", "fixture JSON path (default: embedded fixture)")
	lat := flag.Float64("lat", 29.7604, "latitude for the directory smoke test")
	lon := flag.Float64("lon", -95.3698, "longitude for the directory smoke test")
	flag.Parse()

	os.Exit(run(*path, domain.Coordinates{Lat: *lat, Lon: *lon}))
}

func run(path string, origin domain.Coordinates) int {
	fmt.Println("=== Hub Fixture Validation ===")
	fmt.Println()

	doc, err := fixture.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateSchema(doc),
		validateContent(doc, time.Now()),
		validateDirectory(doc, origin),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-32s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d hubs, %d alerts\n", len(doc.Hubs), len(doc.Alerts))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("  %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	return 0
}

func validateSchema(doc fixture.Document) *phase {
	p := &phase{name: "Schema"}
	if err := doc.Validate(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			p.errorf("%s", line)
		}
	}
	if len(doc.Hubs) == 0 {
		p.errorf("fixture has no hubs")
	}
	return p
}

func validateContent(doc fixture.Document, now time.Time) *phase {
	p := &phase{name: "Content"}
	for _, h := range doc.Hubs {
		if strings.TrimSpace(h.Address) == "" {
			p.errorf("%s: address is empty", h.ID)
		}
		if h.LastVerified.IsZero() {
			p.errorf("%s: last_verified is missing", h.ID)
		} else if h.LastVerified.After(now) {
			p.errorf("%s: last_verified %s is in the future", h.ID, h.LastVerified.Format(time.RFC3339))
		}
		if h.Status.Accepting() && h.HoursToday == "" {
			p.errorf("%s: %s hub has no hours_today", h.ID, h.Status)
		}
		if h.Status == domain.StatusPlannedOpen && h.HoursActivation == "" {
			p.errorf("%s: planned_open hub has no hours_activation", h.ID)
		}
	}
	for _, a := range doc.Alerts {
		if a.ExpiresAt != nil && a.ExpiresAt.Before(a.CreatedAt) {
			p.errorf("%s: expires before it was created", a.ID)
		}
	}
	return p
}

// validateDirectory runs the fixture through the same service the API uses.
func validateDirectory(doc fixture.Document, origin domain.Coordinates) *phase {
	p := &phase{name: "Directory smoke test"}
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := hubs.NewService(fixture.NewStore(doc), observability.NewMetricsForTesting(), hubs.Options{Logger: logger})

	for _, h := range doc.Hubs {
		if h.ID == "" {
			continue
		}
		if _, err := svc.Get(ctx, h.ID); err != nil {
			p.errorf("get %s: %v", h.ID, err)
		}
	}
	if _, err := svc.Get(ctx, "__missing__"); !errors.Is(err, domain.ErrNotFound) {
		p.errorf("unknown id should be not found, got %v", err)
	}

	view, err := svc.Directory(ctx, &origin, domain.Filter{})
	if err != nil {
		p.errorf("directory: %v", err)
		return p
	}
	if view.Stats.Total == 0 {
		p.errorf("no hubs within %.0f miles of (%f, %f)", domain.DefaultRadiusMiles, origin.Lat, origin.Lon)
	}
	for i := 1; i < len(view.Hubs); i++ {
		if domain.CompareHubs(view.Hubs[i-1], view.Hubs[i]) > 0 {
			p.errorf("directory order broken at %s, %s", view.Hubs[i-1].ID, view.Hubs[i].ID)
		}
	}
	fmt.Printf("Directory: %d hubs, %d open, top ranked %s\n", view.Stats.Total, view.Stats.Open, firstID(view.Hubs))
	return p
}

func firstID(hs []domain.Hub) string {
	if len(hs) == 0 {
		return "-"
	}
	return hs[0].ID
}
