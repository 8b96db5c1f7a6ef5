// Package scrape implements the full-chain run command: it seeds the
// engine with named root units, walks the chain to completion and
// reports final counts and the output location.
package scrape

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wenzapen/trowel/config"
	"github.com/wenzapen/trowel/engine"
	"github.com/wenzapen/trowel/log"
	"github.com/wenzapen/trowel/page"
	"github.com/wenzapen/trowel/registry"
	"github.com/wenzapen/trowel/storage"
	"github.com/wenzapen/trowel/storage/jsonl"
	"github.com/wenzapen/trowel/storage/mergesink"
	"github.com/wenzapen/trowel/storage/sqlitestorage"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	outputDir  string
	configPath string
	strict     bool
)

var Cmd = &cobra.Command{
	Use:   "scrape [scraper...]",
	Short: "run a full chain from the named root units",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args)
	},
}

func init() {
	Cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "override default output directory")
	Cmd.Flags().StringVarP(&configPath, "config", "c", "config.toml", "config file path")
	Cmd.Flags().BoolVar(&strict, "strict", false, "abort the run on the first branch error")
}

func run(names []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logLevel, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	plugin := log.NewStdoutPlugin(logLevel)
	if cfg.LogFile != "" {
		filePlugin, closer := log.NewFilePlugin(cfg.LogFile, logLevel)
		defer closer.Close()
		plugin = zapcore.NewTee(plugin, filePlugin)
	}
	logger := log.NewLogger(plugin)

	roots := make([]*page.Unit, 0, len(names))
	for _, name := range names {
		u, err := registry.Lookup(name)
		if err != nil {
			return err
		}
		roots = append(roots, u)
	}

	dir, err := pickOutputDir(cfg)
	if err != nil {
		return err
	}
	sink, err := buildSink(cfg, dir, logger)
	if err != nil {
		return err
	}

	fetcher, err := cfg.Fetcher(cfg.Gate(), logger)
	if err != nil {
		return err
	}
	e := engine.NewEngine(
		engine.WithFetcher(fetcher),
		engine.WithSink(sink),
		engine.WithLogger(logger),
		engine.WithWorkCount(cfg.Run.Workers),
		engine.WithMaxDepth(cfg.Run.MaxDepth),
		engine.WithMaxUnits(cfg.Run.MaxUnits),
		engine.WithStrict(strict || cfg.Run.Strict),
		engine.WithReload(cfg.Run.Reload),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, runErr := e.Run(ctx, roots...)
	fmt.Printf("run %s: emitted %d, skipped %d (%d by depth), errored %d, fetched %d\n",
		m.RunID, m.Emitted(), m.Skipped(), m.SkippedByDepth(), m.Errored(), m.Fetched())
	if runErr != nil {
		return runErr
	}
	fmt.Printf("success: wrote %d records to %s\n", m.Emitted(), dir)
	return nil
}

func pickOutputDir(cfg *config.Config) (string, error) {
	if outputDir == "" {
		return jsonl.ScrapeDir(cfg.Output.Dir)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return "", err
	}
	if len(entries) > 0 {
		return "", fmt.Errorf("%s exists and is not empty", outputDir)
	}
	return outputDir, nil
}

func buildSink(cfg *config.Config, dir string, logger *zap.Logger) (storage.Sink, error) {
	var sink storage.Sink
	var err error
	switch cfg.Output.Format {
	case "", "jsonl":
		sink, err = jsonl.New(dir, jsonl.WithLogger(logger))
	case "sqlite":
		path := cfg.Output.SQLitePath
		if path == "" {
			path = filepath.Join(dir, "records.db")
		}
		sink, err = sqlitestorage.New(
			sqlitestorage.WithPath(path),
			sqlitestorage.WithTable(cfg.Output.Table),
			sqlitestorage.WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unknown output format %q", cfg.Output.Format)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Output.MergeKey != "" {
		sink = mergesink.New(sink, cfg.Output.MergeKey, logger)
	}
	return sink, nil
}
