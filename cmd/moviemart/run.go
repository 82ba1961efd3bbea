package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"moviemart/internal/config"
	"moviemart/internal/datasource"
	"moviemart/internal/logging"
	"moviemart/internal/mart"
	"moviemart/internal/metrics"
	"moviemart/internal/metrics/datadog"
	"moviemart/internal/metrics/prompush"
	"moviemart/internal/pipeline"
	"moviemart/internal/schema"
)

const (
	exitOK     = 0
	exitConfig = 1
	exitRun    = 2
)

type options struct {
	configPath     string
	validate       bool
	verbose        bool
	printSchema    bool
	reportPath     string
	metricsBackend string
	pushgatewayURL string
	datadogAddr    string
	minVotes       int64
	minYear        int

	// passed holds the names of flags given on the command line.
	passed map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fset := flag.NewFlagSet("moviemart", flag.ContinueOnError)
	fset.SetOutput(stderr)

	fset.StringVar(&o.configPath, "config", "configs/pipelines/imdb.json", "pipeline config path (.json or .toml)")
	fset.BoolVar(&o.validate, "validate", false, "validate the configuration and exit")
	fset.BoolVar(&o.verbose, "v", false, "enable debug logs")
	fset.BoolVar(&o.printSchema, "print-schema", false, "print the mart table schemas and exit")
	fset.StringVar(&o.reportPath, "report", "", "write the run report as JSON to this path")
	fset.StringVar(&o.metricsBackend, "metrics-backend", "", "metrics backend: pushgateway, datadog or none (overrides env METRICS_BACKEND)")
	fset.StringVar(&o.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	fset.StringVar(&o.datadogAddr, "datadog-addr", "", "DogStatsD address (overrides env DD_DOGSTATSD_ADDR)")
	fset.Int64Var(&o.minVotes, "min-votes", 0, "override thresholds.min_votes")
	fset.IntVar(&o.minYear, "min-year", 0, "override thresholds.min_release_year")

	if err := fset.Parse(args); err != nil {
		return o, err
	}
	o.passed = map[string]bool{}
	fset.Visit(func(f *flag.Flag) { o.passed[f.Name] = true })
	return o, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return exitConfig
	}

	if o.printSchema {
		if err := schema.Describe(stdout, mart.Schemas()...); err != nil {
			fmt.Fprintf(stderr, "print schema: %v\n", err)
			return exitRun
		}
		return exitOK
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stderr, "load .env: %v\n", err)
	}

	p, err := config.Load(o.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitConfig
	}
	// Overrides apply as given; out-of-range values are left to validation.
	if o.passed["min-votes"] {
		p.Thresholds.MinVotes = o.minVotes
	}
	if o.passed["min-year"] {
		p.Thresholds.MinReleaseYear = o.minYear
	}

	hasError := false
	for _, iss := range config.ValidatePipeline(p) {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		fmt.Fprintf(stderr, "configuration is invalid: %s\n", o.configPath)
		return exitConfig
	}
	if o.validate {
		fmt.Fprintf(stdout, "configuration is valid: %s\n", o.configPath)
		return exitOK
	}

	level := p.Log.Level
	if o.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, p.Log.File)
	if err != nil {
		fmt.Fprintf(stderr, "init logger: %v\n", err)
		return exitConfig
	}
	defer func() { _ = logger.Sync() }()

	flush := setupMetrics(o, p.Job, logger)
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, cleanup, err := datasource.New(ctx, p.Source)
	if err != nil {
		logger.Error("open source", zap.String("kind", p.Source.Kind), zap.Error(err))
		return exitConfig
	}
	defer cleanup()

	logger.Debug("pipeline",
		zap.String("config", o.configPath),
		zap.String("source", p.Source.Kind),
		zap.Int("sinks", len(p.Sinks)),
	)

	start := time.Now()
	rep, runErr := pipeline.Run(ctx, p, src, logger)

	if o.reportPath != "" && rep != nil {
		if err := rep.WriteFile(o.reportPath); err != nil {
			logger.Warn("write report", zap.String("path", o.reportPath), zap.Error(err))
		}
	}

	if runErr != nil {
		logger.Error("run failed", zap.Error(runErr))
		if pipeline.KindOf(runErr) == pipeline.KindConfig {
			return exitConfig
		}
		return exitRun
	}
	logger.Info("completed", zap.Duration("took", time.Since(start).Truncate(time.Millisecond)))
	return exitOK
}

// setupMetrics installs the selected backend: flag, then env, then none. A
// backend that fails to initialize leaves metrics disabled.
func setupMetrics(o options, job string, logger *zap.Logger) func() {
	log := logger.Named("metrics")
	name := firstNonEmpty(o.metricsBackend, os.Getenv("METRICS_BACKEND"), "none")

	var (
		b   metrics.Backend
		err error
	)
	switch name {
	case "pushgateway", "prom":
		url := firstNonEmpty(o.pushgatewayURL, os.Getenv("PUSHGATEWAY_URL"), "http://localhost:9091")
		b, err = prompush.NewBackend(job, url)
		log.Info("backend", zap.String("backend", name), zap.String("url", url), zap.String("job", job))
	case "datadog":
		addr := firstNonEmpty(o.datadogAddr, os.Getenv("DD_DOGSTATSD_ADDR"), "127.0.0.1:8125")
		b, err = datadog.NewBackend(datadog.Config{Addr: addr, Namespace: "moviemart.", GlobalTags: []string{"job:" + job}})
		log.Info("backend", zap.String("backend", name), zap.String("addr", addr))
	case "none":
		log.Debug("disabled")
		return func() {}
	default:
		log.Warn("unknown backend; metrics disabled", zap.String("backend", name))
		return func() {}
	}
	if err != nil {
		log.Warn("init failed; metrics disabled", zap.String("backend", name), zap.Error(err))
		return func() {}
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("flush", zap.Error(err))
		}
		metrics.Reset()
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
