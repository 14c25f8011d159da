// Command statusctl publishes a single hub status update to the status feed
// topic. Broker and topic come from the same environment as the service
// (KAFKA_BROKERS, KAFKA_STATUS_TOPIC).
//
// Usage:
//
//	go run ./cmd/statusctl -hub hub-002 -state at_capacity \
//	  -services cooling_room,potable_water -notes "Overflow at library"
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	kafkaadapter "github.com/couchcryptid/resilience-hubs/internal/adapter/kafka"
	"github.com/couchcryptid/resilience-hubs/internal/config"
	"github.com/couchcryptid/resilience-hubs/internal/domain"
	"github.com/couchcryptid/resilience-hubs/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	hubID := flag.String("hub", "", "hub id")
	state := flag.String("state", "", "open_state: open, at_capacity, open_limited, closed, planned_open")
	services := flag.String("services", "", "comma separated services_active; omitted leaves services unchanged")
	notes := flag.String("notes", "", "public notes; omitted leaves notes unchanged")
	temp := flag.Float64("temp", 0, "indoor temperature in °F; 0 leaves it unchanged")
	timeout := flag.Duration("timeout", 10*time.Second, "publish timeout")
	flag.Parse()

	u := domain.StatusUpdate{
		HubID:        *hubID,
		Status:       domain.HubStatus(*state),
		LastVerified: time.Now().UTC(),
	}
	if *services != "" {
		for _, s := range strings.Split(*services, ",") {
			if s = strings.TrimSpace(s); s != "" {
				u.Services = append(u.Services, domain.Service(s))
			}
		}
	}
	if *notes != "" {
		u.Notes = notes
	}
	if *temp != 0 {
		u.TemperatureF = temp
	}
	if err := u.Validate(); err != nil {
		flag.Usage()
		return err
	}

	// The publisher needs only broker settings; skip the service's source checks.
	os.Setenv("STATUS_FEED_ENABLED", "false") //nolint:errcheck // process-local
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	pub := kafkaadapter.NewPublisher(cfg, logger)
	defer pub.Close()

	if err := pub.Publish(ctx, u); err != nil {
		return err
	}
	fmt.Printf("published %s -> %s to %s (%s)\n", u.HubID, u.Status, cfg.KafkaStatusTopic, strings.Join(cfg.KafkaBrokers, ","))
	return nil
}
