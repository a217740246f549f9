package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Lucky-luke36/auto-arbitrage/internal/config"
	"github.com/Lucky-luke36/auto-arbitrage/internal/database"
	"github.com/Lucky-luke36/auto-arbitrage/internal/ingest"
	"github.com/Lucky-luke36/auto-arbitrage/internal/matching"
	"github.com/Lucky-luke36/auto-arbitrage/internal/merge"
	"github.com/Lucky-luke36/auto-arbitrage/internal/parser"
	"github.com/Lucky-luke36/auto-arbitrage/internal/pipeline"
	"github.com/Lucky-luke36/auto-arbitrage/internal/repository"
	"github.com/Lucky-luke36/auto-arbitrage/internal/vocab"
)

func main() {
	var (
		command    = flag.String("cmd", "", "Command to run: ingest, normalize, merge, reprocess, extract-models, match-models")
		dbPath     = flag.String("db", config.GetEnv("CARS_DB", "db/polish_cars.db"), "Store the command operates on")
		input      = flag.String("input", "", "Scraper dump file for -cmd ingest (.json or .jl)")
		sources    = flag.String("sources", "", "Comma-separated source store paths for -cmd merge")
		dest       = flag.String("dest", "", "Destination store path for -cmd merge")
		modelsDB   = flag.String("models-db", "", "Reference store holding clean_models (defaults to -db)")
		vocabPath  = flag.String("vocab", config.GetEnv("VOCAB_PATH", "data/makes_models.json"), "Makes/models vocabulary file")
		threshold  = flag.Int("threshold", config.GetEnvInt("MATCH_THRESHOLD", matching.DefaultThreshold), "Similarity threshold for -cmd match-models (0-100)")
		minRows    = flag.Int("min-rows", 0, "Drop matched models with fewer rows than this")
		batchSize  = flag.Int("batch", 200, "Rows committed per transaction during reprocess")
		checkpoint = flag.String("checkpoint", "", "Checkpoint file for resumable reprocess runs")
		debug      = flag.Bool("debug", false, "Keep and flag unparseable records instead of deleting them")
		logLevel   = flag.String("log-level", config.GetEnv("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	logger := setupLogger(*logLevel)
	slog.SetDefault(logger)

	if *command == "" {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Info("received signal, stopping", "signal", sig)
		cancel()
	}()

	var err error
	switch *command {
	case "ingest":
		err = runIngest(ctx, *dbPath, *input)
	case "normalize":
		err = runNormalize(ctx, *dbPath)
	case "merge":
		err = runMerge(ctx, *dest, *sources)
	case "reprocess":
		err = runReprocess(ctx, *dbPath, *vocabPath, *debug, *batchSize, *checkpoint)
	case "extract-models":
		err = runExtractModels(ctx, *dbPath)
	case "match-models":
		err = runMatchModels(ctx, *dbPath, *modelsDB, *threshold, *minRows)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", *command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		slog.Error("command failed", "cmd", *command, "error", err)
		os.Exit(1)
	}
}

func runIngest(ctx context.Context, dbPath, input string) error {
	if input == "" {
		return fmt.Errorf("-input is required for ingest")
	}
	db, err := database.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		return err
	}

	_, err = ingest.File(ctx, repository.NewCarRepo(db), input)
	return err
}

func runNormalize(ctx context.Context, dbPath string) error {
	db, err := database.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = pipeline.NormalizeFields(ctx, repository.NewCarRepo(db))
	return err
}

func runMerge(ctx context.Context, dest, sources string) error {
	if dest == "" || sources == "" {
		return fmt.Errorf("-dest and -sources are required for merge")
	}
	var paths []string
	for _, p := range strings.Split(sources, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("no source stores given")
	}

	_, err := merge.Rebuild(ctx, dest, paths)
	return err
}

func runReprocess(ctx context.Context, dbPath, vocabPath string, debug bool, batchSize int, checkpoint string) error {
	v, err := vocab.Load(vocabPath)
	if err != nil {
		return err
	}
	slog.Info("vocabulary loaded", "makes", v.Len())

	db, err := database.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = pipeline.ReprocessMissingMakes(ctx, repository.NewCarRepo(db), parser.New(v), pipeline.ReprocessOptions{
		Debug:          debug,
		BatchSize:      batchSize,
		CheckpointPath: checkpoint,
	})
	return err
}

func runExtractModels(ctx context.Context, dbPath string) error {
	db, err := database.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		return err
	}

	_, err = pipeline.ExtractCleanModels(ctx, repository.NewCarRepo(db), repository.NewModelRepo(db))
	return err
}

func runMatchModels(ctx context.Context, dbPath, modelsDB string, threshold, minRows int) error {
	db, err := database.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		return err
	}

	reference := repository.NewModelRepo(db)
	if modelsDB != "" && modelsDB != dbPath {
		refDB, err := database.Open(modelsDB)
		if err != nil {
			return err
		}
		defer refDB.Close()
		reference = repository.NewModelRepo(refDB)
	}

	_, err = pipeline.MatchModels(ctx,
		repository.NewCarRepo(db),
		repository.NewModelRepo(db),
		reference,
		matching.NewMatcher(threshold),
		minRows,
	)
	return err
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: pipeline -cmd <command> [flags]

Commands:
  ingest          Upsert a scraper dump into a marketplace store (-db, -input)
  normalize       Canonicalize fuelType/transmission values (-db)
  merge           Rebuild a canonical store from source stores (-dest, -sources)
  reprocess       Re-parse records with missing makes (-db, -vocab, -debug, -batch, -checkpoint)
  extract-models  Rebuild clean_models from distinct raw models (-db)
  match-models    Fuzzy-map raw models onto clean_models (-db, -models-db, -threshold, -min-rows)`)
}
