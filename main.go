// Command cadlint interprets C sources over value domains and reports controlling
// expressions of constant truth, unreachable code and value-changing conversions.
//
// Usage:
//
//	cadlint [-config cadlint.yaml] [-format text|json] [-v] [-j N] [-trace spans.json] file.c...
//
// The exit status is 1 when findings other than metrics were reported and 2 when the
// analysis could not be run.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/sirkon/cadlint/internal/config"
	"github.com/sirkon/cadlint/internal/exam"
)

const (
	exitOK       = 0
	exitFindings = 1
	exitFailure  = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cadlint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_, _ = fmt.Fprintln(fs.Output(), "usage: cadlint [flags] file.c...")
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "path to the YAML configuration")
	format := OutputFormatText
	fs.TextVar(&format, "format", OutputFormatText, "report format, text or json, overrides the configuration")
	verbose := fs.Bool("v", false, "log debug messages")
	jobs := fs.Int("j", runtime.NumCPU(), "number of files analyzed in parallel")
	tracePath := fs.String("trace", "", "write tracing spans of the analysis as JSON into this file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitFailure
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitFailure
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Error("cannot load configuration", slog.Any("err", err))
			return exitFailure
		}
	}

	formatSet := false
	fs.Visit(func(f *flag.Flag) {
		formatSet = formatSet || f.Name == "format"
	})
	if !formatSet {
		if err := format.UnmarshalText([]byte(cfg.Output)); err != nil {
			log.Error("invalid output format in configuration", slog.Any("err", err))
			return exitFailure
		}
	}

	tp, shutdown, err := setupTracing(*tracePath)
	if err != nil {
		log.Error("cannot set up tracing", slog.Any("err", err))
		return exitFailure
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Error("cannot flush tracing spans", slog.Any("err", err))
		}
	}()

	engine := exam.NewReportEngine(cfg.Rules.Disabled...)
	a, err := newAnalyzer(ctx, cfg, engine, tp)
	if err != nil {
		log.Error("cannot set up analysis", slog.Any("err", err))
		return exitFailure
	}
	if err := a.analyzeFiles(ctx, fs.Args(), *jobs); err != nil {
		log.Error("analysis failed", slog.Any("err", err))
		return exitFailure
	}

	switch format {
	case OutputFormatJSON:
		err = engine.WriteJSON(stdout)
	default:
		err = engine.PrintSummary(stdout)
	}
	if err != nil {
		log.Error("cannot print reports", slog.Any("err", err))
		return exitFailure
	}

	if engine.Failed() {
		return exitFindings
	}
	return exitOK
}
