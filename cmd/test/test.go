// Package test implements the single-unit test command: it runs
// exactly one named page unit and prints its immediate outcome without
// recursing into continuations, to support fast iteration on a page
// definition.
package test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wenzapen/trowel/config"
	"github.com/wenzapen/trowel/engine"
	"github.com/wenzapen/trowel/fetch"
	"github.com/wenzapen/trowel/log"
	"github.com/wenzapen/trowel/page"
	"github.com/wenzapen/trowel/registry"
	"go.uber.org/zap/zapcore"
)

var (
	source     string
	data       []string
	pagination bool
	configPath string
)

var Cmd = &cobra.Command{
	Use:   "test [scraper]",
	Short: "run a single page unit and print its immediate outcome",
	Long: "test fetches and processes exactly one page unit, printing records " +
		"and continuations without following them. Use -s to override the " +
		"source and -d key=value to supply fake input.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args[0])
	},
}

func init() {
	Cmd.Flags().StringVarP(&source, "source", "s", "", "provide (or override) source URL")
	Cmd.Flags().StringArrayVarP(&data, "data", "d", nil, "provide input data in name=value pairs")
	Cmd.Flags().BoolVar(&pagination, "pagination", true, "follow pagination")
	Cmd.Flags().StringVarP(&configPath, "config", "c", "config.toml", "config file path")
}

func run(name string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	plugin := log.NewStdoutPlugin(zapcore.DebugLevel)
	logger := log.NewLogger(plugin)

	u, err := registry.Lookup(name)
	if err != nil {
		return err
	}
	if len(data) > 0 {
		input := page.Record{}
		for _, item := range data {
			k, v, ok := strings.Cut(item, "=")
			if !ok {
				return fmt.Errorf("bad -d value %q, want name=value", item)
			}
			input[k] = v
		}
		u.Input = input
	}
	var override *fetch.Request
	if source != "" {
		override = fetch.NewRequest(source)
	}

	fetcher, err := cfg.Fetcher(cfg.Gate(), logger)
	if err != nil {
		return err
	}
	e := engine.NewEngine(
		engine.WithFetcher(fetcher),
		engine.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	count := 0
	for {
		out, err := e.RunOnce(ctx, u, override)
		if err != nil {
			return err
		}
		var next *page.Unit
		for _, rec := range out.Records {
			count++
			b, _ := json.Marshal(rec)
			fmt.Printf("%d: %s\n", count, b)
		}
		for _, nu := range out.Next {
			if nu.Pagination() {
				next = nu
				continue
			}
			count++
			fmt.Printf("%d: continue -> %s\n", count, nu)
		}
		if next == nil {
			return nil
		}
		if !pagination {
			fmt.Printf("pagination disabled: would paginate for %s source=%s\n",
				next.Name(), next.Source.URL)
			return nil
		}
		fmt.Printf("paginating for %s source=%s\n", next.Name(), next.Source.URL)
		u = next
		override = nil
	}
}
