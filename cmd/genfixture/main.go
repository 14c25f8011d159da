// Command genfixture converts a hub roster CSV, as kept by field coordinators,
// into the fixture JSON served by HUB_SOURCE=fixture. The document is validated
// before it is written.
//
// Usage:
//
//	go run ./cmd/genfixture \
//	  -csv data/roster.csv \
//	  -alerts data/alerts.json \
//	  -out internal/adapter/fixture/hubs.json
//
// CSV columns (header row required, order free): id, name, address, lat, lon,
// open_state, last_verified, services_active (semicolon separated),
// accessible, pet_friendly, hours_today, hours_activation, languages
// (semicolon separated), notes_public, transit, house_rules, contact_public,
// temperature_f.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/resilience-hubs/internal/adapter/fixture"
	"github.com/couchcryptid/resilience-hubs/internal/domain"
)

var requiredColumns = []string{"id", "name", "address", "lat", "lon", "open_state", "last_verified"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "hub roster CSV")
	alertsPath := flag.String("alerts", "", "optional JSON array of alerts to include")
	out := flag.String("out", "", "output path for the fixture JSON")
	flag.Parse()

	if *csvPath == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -out")
	}

	hubs, err := processCSV(*csvPath)
	if err != nil {
		return fmt.Errorf("processing %s: %w", *csvPath, err)
	}
	log.Printf("hubs: %d records", len(hubs))

	doc := fixture.Document{Hubs: hubs, Alerts: []domain.Alert{}}
	if *alertsPath != "" {
		data, err := os.ReadFile(*alertsPath)
		if err != nil {
			return fmt.Errorf("reading alerts: %w", err)
		}
		if err := json.Unmarshal(data, &doc.Alerts); err != nil {
			return fmt.Errorf("decoding alerts: %w", err)
		}
		log.Printf("alerts: %d records", len(doc.Alerts))
	}

	if err := doc.Validate(); err != nil {
		return fmt.Errorf("fixture is invalid:\n%w", err)
	}

	if err := writeJSON(*out, doc); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)

	printStats(hubs)
	return nil
}

func processCSV(path string) ([]domain.Hub, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := colIdx[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	hubs := make([]domain.Hub, 0, len(rows)-1)
	for n, row := range rows[1:] {
		h, err := parseRow(row, colIdx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		hubs = append(hubs, h)
	}
	return hubs, nil
}

func parseRow(row []string, idx map[string]int) (domain.Hub, error) {
	lat, err := strconv.ParseFloat(get(row, idx, "lat"), 64)
	if err != nil {
		return domain.Hub{}, fmt.Errorf("lat: %w", err)
	}
	lon, err := strconv.ParseFloat(get(row, idx, "lon"), 64)
	if err != nil {
		return domain.Hub{}, fmt.Errorf("lon: %w", err)
	}
	verified, err := time.Parse(time.RFC3339, get(row, idx, "last_verified"))
	if err != nil {
		return domain.Hub{}, fmt.Errorf("last_verified: %w", err)
	}

	h := domain.Hub{
		ID:              get(row, idx, "id"),
		Name:            get(row, idx, "name"),
		Address:         get(row, idx, "address"),
		Lat:             lat,
		Lon:             lon,
		Status:          domain.HubStatus(get(row, idx, "open_state")),
		LastVerified:    verified.UTC(),
		Services:        []domain.Service{},
		Accessible:      yes(get(row, idx, "accessible")),
		PetFriendly:     yes(get(row, idx, "pet_friendly")),
		HoursToday:      get(row, idx, "hours_today"),
		HoursActivation: get(row, idx, "hours_activation"),
		Languages:       list(get(row, idx, "languages")),
		Notes:           get(row, idx, "notes_public"),
		Transit:         get(row, idx, "transit"),
		HouseRules:      get(row, idx, "house_rules"),
		Contact:         get(row, idx, "contact_public"),
	}
	for _, s := range list(get(row, idx, "services_active")) {
		h.Services = append(h.Services, domain.Service(s))
	}
	if raw := get(row, idx, "temperature_f"); raw != "" {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.Hub{}, fmt.Errorf("temperature_f: %w", err)
		}
		h.TemperatureF = &t
	}
	return h, nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func list(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func yes(raw string) bool {
	switch strings.ToLower(raw) {
	case "true", "yes", "y", "1":
		return true
	}
	return false
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

type count struct {
	name string
	n    int
}

func sorted(m map[string]int) []count {
	out := make([]count, 0, len(m))
	for k, v := range m {
		out = append(out, count{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].name < out[j].name
	})
	return out
}

func printStats(hubs []domain.Hub) {
	statuses := map[string]int{}
	services := map[string]int{}
	var accessible, pets int
	for i := range hubs {
		h := &hubs[i]
		statuses[string(h.Status)]++
		for _, s := range h.Services {
			services[string(s)]++
		}
		if h.Accessible {
			accessible++
		}
		if h.PetFriendly {
			pets++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d (accessible=%d, pet_friendly=%d)\n", len(hubs), accessible, pets)
	fmt.Print("By status:")
	for _, c := range sorted(statuses) {
		fmt.Printf(" %s=%d", c.name, c.n)
	}
	fmt.Print("\nBy service:")
	for _, c := range sorted(services) {
		fmt.Printf(" %s=%d", c.name, c.n)
	}
	fmt.Println()
}
