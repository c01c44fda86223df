package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"prewalk_engine/catalog"
	"prewalk_engine/config"
	"prewalk_engine/crm"
	"prewalk_engine/geo"
	"prewalk_engine/httputil"
	"prewalk_engine/listing"
	"prewalk_engine/logging"
	"prewalk_engine/projects"
	"prewalk_engine/scheduler"
	"prewalk_engine/services"
	"prewalk_engine/storage"
)

var (
	resolveAddr = flag.String("resolve", "", "Resolve a single address and exit")
	syncNow     = flag.Bool("sync", false, "Refresh the deal snapshot once and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logFile, err := logging.Setup("daemon.log")
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting prewalk engine...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	tables, err := geo.LoadTables()
	if err != nil {
		log.Fatalf("Failed to load neighborhood tables: %v", err)
	}

	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		log.Fatalf("Failed to create cache dir: %v", err)
	}
	geoCache := geo.OpenGeocodeCache(filepath.Join(cfg.CacheDir, "geocode_cache.json"))
	log.Printf("Geocode cache: %d entries", geoCache.Len())

	snapshot, err := projects.NewStore(cfg.CacheDir, cfg.SnapshotTTL)
	if err != nil {
		log.Fatalf("Failed to open deal snapshot store: %v", err)
	}

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer store.Close()
	log.Printf("SQLite database: %s", cfg.DBPath)

	clients := httputil.NewClients()

	geoResolver := geo.NewResolver(tables, geoCache, geo.NewNominatimClient(clients.Scraping))
	listings := listing.NewDefaultResolver(cfg.SerpAPIKey, clients.Scraping)

	var cat *catalog.Client
	if cfg.RapidAPIKey != "" {
		cat = catalog.NewClient(cfg.RapidAPIKey, clients.API)
	} else {
		log.Println("Warning: RAPIDAPI_KEY not set, property details disabled")
	}

	// Matching falls back to table-only lookups; no network calls from
	// inside a neighboring-projects query.
	matcher := projects.NewMatcher(snapshot, func(raw string) string {
		hood, _ := geoResolver.Resolve(context.Background(), raw, false)
		return hood
	})

	reporter := newReporter(listings, cat, geoResolver, matcher, store, cfg.GeocodeEnabled)

	ctx := context.Background()

	if *resolveAddr != "" {
		report := reporter.ResolveProperty(ctx, *resolveAddr)
		printReport(report)
		return
	}

	if !cfg.Zoho.Configured() {
		log.Println("Warning: CRM credentials not set, snapshot refresh disabled")
	}
	syncer := services.NewSyncer(crm.NewClient(cfg.Zoho.ClientID, cfg.Zoho.ClientSecret, cfg.Zoho.RefreshToken, clients.API),
		geoResolver, snapshot, cfg.GeocodeEnabled)

	if *syncNow {
		log.Println("Refreshing deal snapshot...")
		if err := syncer.RefreshSnapshot(ctx); err != nil {
			log.Fatalf("Snapshot refresh failed: %v", err)
		}
		stats := snapshot.Stats()
		log.Printf("Snapshot refreshed: %d deals, %d with neighborhoods", stats.Count, stats.WithNeighborhood)
		return
	}

	// Daemon mode
	sched := scheduler.New(cfg, syncer, reporter, store)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
	log.Println("Goodbye!")
}

// newReporter keeps the nil-catalog case out of the wiring above.
func newReporter(listings *listing.Resolver, cat *catalog.Client, geoResolver *geo.Resolver,
	matcher *projects.Matcher, store *storage.SQLiteStore, geocode bool) *services.Reporter {
	var catAPI services.CatalogAPI
	if cat != nil {
		catAPI = cat
	}
	return services.NewReporter(listings, catAPI, geoResolver, matcher, store, geocode)
}

func printReport(report *services.Report) {
	fmt.Printf("Address:      %s\n", report.Address.Raw)
	fmt.Printf("Listing ID:   %s\n", services.OrUnavailable(report.ListingID))
	fmt.Printf("Listing URL:  %s\n", services.OrUnavailable(report.ListingURL))
	fmt.Printf("Strategy:     %s\n", services.OrUnavailable(report.Strategy))
	fmt.Printf("Neighborhood: %s (%s)\n", services.OrUnavailable(report.Neighborhood), services.OrUnavailable(report.HoodSource))

	if report.Details != nil {
		data, _ := json.MarshalIndent(report.Details, "", "  ")
		fmt.Printf("Details:\n%s\n", data)
	}

	fmt.Printf("Neighboring projects: %d\n", len(report.Neighbors))
	for _, p := range report.Neighbors {
		marker := " "
		if p.IsSameBuilding {
			marker = "*"
		}
		fmt.Printf("  %s %s  $%.0f (%s)\n", marker, p.DealName, p.Amount, p.Stage)
	}
}
