// Package main is the entry point for the compositor supervisor CLI.
//
// It starts the native rendering helper, executes a single command against
// it, writes the response payload to stdout, and shuts the helper down
// cleanly. Binary payloads (extracted frames) pass through untouched, so the
// output can be redirected straight into a file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Hitesh-sisara/remotion/internal/complog"
	"github.com/Hitesh-sisara/remotion/internal/compositor"
	"github.com/Hitesh-sisara/remotion/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		binary      = flag.String("binary", "", "path to the compositor executable")
		binariesDir = flag.String("binaries", "", "directory holding the compositor executable")
		cfgPath     = flag.String("config", "", "path to a JSON config file")
		verbose     = flag.Bool("verbose", false, "enable verbose logging")
		commandType = flag.String("command", "Echo", "command type to execute")
		params      = flag.String("params", "{}", "command params as a JSON object")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("remotion %s (%s)\n", version, commit)
		return 0
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.LoadFile(cfg, *cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
	cfg = config.FromEnv(cfg)
	if *binary != "" {
		cfg.BinaryPath = *binary
	}
	if *binariesDir != "" {
		cfg.BinariesDirectory = *binariesDir
	}
	if *verbose {
		cfg.Verbose = true
	}

	if cfg.BinaryPath == "" && cfg.BinariesDirectory == "" {
		fmt.Fprintln(os.Stderr, "Error: no compositor binary configured (use -binary, -binaries, "+config.EnvBinary+" or "+config.EnvBinariesDir+")")
		return 1
	}

	var raw json.RawMessage
	if err := json.Unmarshal([]byte(*params), &raw); err != nil {
		fmt.Fprintf(os.Stderr, "Error: -params is not valid JSON: %v\n", err)
		return 1
	}

	logger := complog.New(cfg.Verbose)
	defer logger.Sync()

	comp, err := compositor.Start(compositor.Options{
		ExecutablePath:    cfg.BinaryPath,
		BinariesDirectory: cfg.BinariesDirectory,
		Concurrency:       cfg.Concurrency,
		FrameCacheItems:   cfg.FrameCacheItems,
		Verbose:           cfg.Verbose,
		Logger:            logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to start compositor: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()

	payload, err := comp.ExecuteCommand(ctx, *commandType, raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		comp.Close(context.Background())
		return 1
	}
	os.Stdout.Write(payload)

	if err := comp.Close(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: shutdown: %v\n", err)
		return 1
	}
	return 0
}
