package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vincentbai/browsetrace-tracker/internal/browser"
	"github.com/vincentbai/browsetrace-tracker/internal/config"
	"github.com/vincentbai/browsetrace-tracker/internal/dispatch"
	"github.com/vincentbai/browsetrace-tracker/internal/journey"
	"github.com/vincentbai/browsetrace-tracker/internal/storage"
	"github.com/vincentbai/browsetrace-tracker/internal/tracker"
)

func main() {
	configPath := flag.String("config", "", "path to tracker YAML config")
	journeyPath := flag.String("journey", "", "path to journey YAML to replay")
	envPath := flag.String("env", "", "optional .env file loaded before the environment is read")
	flag.Parse()

	if *journeyPath == "" {
		log.Fatal("-journey is required")
	}
	if *envPath != "" {
		if err := godotenv.Load(*envPath); err != nil {
			log.Fatal("Failed to load env file:", err)
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	j, err := journey.Load(*journeyPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cookies, closeStore, err := openStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	logger := log.New(os.Stderr, "", log.LstdFlags)
	registry := prometheus.NewRegistry()
	client := dispatch.NewHTTPClient(cfg.HTTPTimeout)

	opts := []dispatch.Option{
		dispatch.WithHTTPClient(client),
		dispatch.WithPageContext(ctx),
		dispatch.WithLogger(logger),
		dispatch.WithRegisterer(registry),
	}
	if cfg.Beacon {
		opts = append(opts, dispatch.WithBeacon(dispatch.NewHTTPBeacon(client, logger)))
	}
	dispatcher := dispatch.New(cfg.Endpoint, opts...)

	settings := tracker.Settings{
		SessionTTL: cfg.SessionTTL,
		CTAClass:   cfg.CTAClass,
		TextLimit:  cfg.TextLimit,
		Logger:     logger,
	}
	if cfg.SlidingSession {
		settings.SlidingTimeout = cfg.SessionTimeout
	}

	b := browser.New(cookies)
	j.Apply(b)

	started := time.Now()
	result, err := journey.Replay(ctx, j, b, dispatcher, settings)
	if err != nil {
		log.Printf("Journey stopped: %v", err)
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout+5*time.Second)
	defer cancel()
	if err := dispatcher.Flush(flushCtx); err != nil {
		log.Printf("Gave up waiting for in-flight events: %v", err)
	}

	log.Printf("Replayed %d page views and %d clicks for session %s (%s traffic)",
		result.PageViews, result.Clicks, result.SessionID, result.Platform)
	log.Printf("Sent %s to %s, session expires %s",
		humanize.Bytes(uint64(counterValue(registry, "browsetrace_dispatch_bytes_total"))),
		cfg.Endpoint,
		humanize.Time(started.Add(cfg.SessionTTL)))
	if failures := counterValue(registry, "browsetrace_dispatch_failures_total"); failures > 0 {
		log.Printf("%s transmissions failed", humanize.Comma(int64(failures)))
	}
}

func openStore(ctx context.Context, cfg config.Storage) (storage.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := storage.NewSQLite(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		if removed, err := s.Purge(ctx); err != nil {
			log.Printf("Failed to purge expired cookies: %v", err)
		} else if removed > 0 {
			log.Printf("Purged %d expired cookies", removed)
		}
		return s, closer(s), nil
	case config.DriverRedis:
		s, err := storage.NewRedis(ctx, cfg.RedisAddr, cfg.RedisDB, "browsetrace:")
		if err != nil {
			return nil, nil, err
		}
		return s, closer(s), nil
	default:
		return storage.NewMemory(), func() {}, nil
	}
}

func closer(c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			log.Printf("Failed to close storage: %v", err)
		}
	}
}

// counterValue sums every series of the named counter family.
func counterValue(g prometheus.Gatherer, name string) float64 {
	families, err := g.Gather()
	if err != nil {
		return 0
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}
