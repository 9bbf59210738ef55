// Package main provides the room import binary: it extracts every room of
// the level files under a source path and writes the normalized assets to
// the output directory and, when enabled, the Postgres room catalog.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/roomkit/internal/config"
	"github.com/cory-johannsen/roomkit/internal/importer"
	"github.com/cory-johannsen/roomkit/internal/level"
	"github.com/cory-johannsen/roomkit/internal/observability"
	"github.com/cory-johannsen/roomkit/internal/room"
	"github.com/cory-johannsen/roomkit/internal/scripting"
	"github.com/cory-johannsen/roomkit/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty = defaults and environment only")
	source := flag.String("source", "", "level file or directory of level files")
	outputDir := flag.String("output", "", "output directory override")
	firstRoom := flag.Int("start", 0, "first room id to extract; used with -end")
	endRoom := flag.Int("end", 0, "one past the last room id to extract; 0 = all rooms")
	flag.Parse()

	if *source == "" {
		fmt.Fprintln(os.Stderr, "usage: import-rooms -source <file|dir> [-config <file>] [-output <dir>] [-start n -end m]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var containers room.ContainerFactory = room.NewBasicContainerFactory()
	if cfg.Scripting.BehaviorDir != "" {
		mgr, err := scripting.NewManager(cfg.Scripting.BehaviorDir, cfg.Scripting.InstructionLimit, logger)
		if err != nil {
			logger.Fatal("creating scripting manager", zap.Error(err))
		}
		defer func() {
			if err := mgr.Close(); err != nil {
				logger.Warn("closing scripting manager", zap.Error(err))
			}
		}()
		containers = mgr
	}

	extractor := room.NewExtractor(room.NewNameRegistry(), containers, logger)
	extractor.CellSize = cfg.Extraction.GridCellSize
	extractor.Extension = cfg.Extraction.Extension

	dirSink, err := importer.NewDirSink(cfg.Output.Dir)
	if err != nil {
		logger.Fatal("creating output directory", zap.Error(err))
	}
	sinks := []importer.Sink{dirSink}

	if cfg.Catalog.Enabled {
		pool, err := postgres.NewPool(ctx, cfg.Catalog.Database)
		if err != nil {
			logger.Fatal("connecting to room catalog", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.Health(ctx, 5*time.Second); err != nil {
			logger.Fatal("room catalog health check", zap.Error(err))
		}
		sinks = append(sinks, postgres.NewRoomAssetRepository(pool.DB()))
		logger.Info("room catalog enabled", zap.String("host", cfg.Catalog.Database.Host))
	}

	opts := room.Options{
		Rooms:                 room.Range{Start: *firstRoom, End: *endRoom},
		MaxItemValue:          cfg.Extraction.MaxItemValue,
		MinItemValue:          cfg.Extraction.MinItemValue,
		OffLimits:             cfg.Extraction.OffLimits,
		SpawnWeight:           cfg.Extraction.SpawnWeight,
		Behaviors:             cfg.Scripting.Behaviors,
		SecretRoom:            cfg.Extraction.SecretRoom,
		MapBackground:         cfg.Extraction.MapBackground,
		KeepTextures:          cfg.Extraction.KeepTextures,
		SquareShape:           cfg.Extraction.SquareShape,
		AllCellsAreLightCells: cfg.Extraction.AllCellsLight,
		LightPrefab:           cfg.Extraction.LightPrefab,
	}

	logger.Info("starting room import",
		zap.String("source", *source),
		zap.String("output", cfg.Output.Dir),
		zap.Int("workers", cfg.Extraction.Workers),
	)

	imp := importer.New(extractor, level.YAMLDecoder{}, cfg.Extraction.Workers, logger, sinks...)
	results, runErr := imp.RunSource(ctx, importer.NewDirSource(cfg.Extraction.Extension), *source, opts)

	summary := importer.Summarize(results, time.Since(start))
	fmt.Printf("imported %d rooms from %d files (%d failed) in %s\n",
		summary.Rooms, summary.Files, summary.Failed, summary.Duration.Round(time.Millisecond))
	if runErr != nil {
		logger.Error("import finished with errors", zap.Error(runErr))
		os.Exit(1)
	}
}
