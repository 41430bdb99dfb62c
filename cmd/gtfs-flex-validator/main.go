package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/theoremus-urban-solutions/gtfs-flex-validator/config"
	"github.com/theoremus-urban-solutions/gtfs-flex-validator/db"
	"github.com/theoremus-urban-solutions/gtfs-flex-validator/internal"
	"github.com/theoremus-urban-solutions/gtfs-flex-validator/validation"
)

func main() {
	dbPath := flag.String("db", "", "path to the SQLite database (overrides config)")
	feedName := flag.String("feed", "", "feed name from config.feeds[]")
	namespace := flag.String("namespace", "", "feed table namespace (overrides config)")
	mode := flag.String("mode", "", "error store mode: create|reconnect (overrides config)")
	noPatterns := flag.Bool("no-patterns", false, "skip pattern inference")
	flag.Parse()

	internal.InitLogging()
	if err := config.LoadAppConfig(); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	path := config.Config.Database.Path
	if *dbPath != "" {
		path = *dbPath
	}
	ns := config.SelectNamespace(*feedName)
	if *namespace != "" {
		ns = *namespace
	}
	storeMode := validation.StoreMode(config.Config.Validation.StoreMode)
	if *mode != "" {
		storeMode = validation.StoreMode(*mode)
	}

	result, err := run(path, db.Namespace(ns), storeMode, *noPatterns)
	if err != nil {
		log.Fatalf("validation aborted: %v", err)
	}

	fmt.Printf("run %s: %d findings (%d high, %d medium, %d low), %d patterns, took %v\n",
		result.RunID, result.ErrorCount, result.HighCount, result.MediumCount,
		result.LowCount, result.PatternCount, result.Duration)
	if !result.Passed() {
		os.Exit(1)
	}
}

func run(path string, ns db.Namespace, mode validation.StoreMode, noPatterns bool) (*validation.Result, error) {
	ctx := context.Background()

	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	defer database.Close()

	feed, err := database.LoadFeed(ctx, ns)
	if err != nil {
		return nil, fmt.Errorf("loading feed %q: %w", ns, err)
	}
	log.Printf("feed %q: %d routes, %d trips, %d stop times, %d stops",
		ns, len(feed.Routes), len(feed.Trips), len(feed.StopTimes), len(feed.Stops))

	store, err := validation.NewErrorStore(ctx, database, ns, mode, config.Config.Validation.BatchSize)
	if err != nil {
		return nil, err
	}

	runner := validation.NewRunner(feed, store)
	if !config.Config.Validation.SkipFlex {
		runner.AddFeedValidator(validation.NewFlexValidator(feed))
	}
	runner.AddTripValidator(validation.NewReferenceValidator(feed))
	if !config.Config.Validation.SkipPatterns && !noPatterns {
		sink, err := db.NewPatternWriter(ctx, database, ns)
		if err != nil {
			return nil, err
		}
		runner.AddTripValidator(validation.NewPatternFinder(feed, sink))
	}

	return runner.Run(ctx)
}
