package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"jira-sprint-worklogs/internal/common"
	"jira-sprint-worklogs/internal/handlers"
	"jira-sprint-worklogs/internal/interfaces"
	"jira-sprint-worklogs/internal/services"
	"jira-sprint-worklogs/internal/worklogs"

	plugin "github.com/ternarybob/aktis-plugin-sdk"
	"github.com/ternarybob/arbor"
)

const (
	pluginName    = "jira-sprint-worklogs"
	pluginVersion = "1.0.0"
	sinceLayout   = "2006-01-02"
)

type runOptions struct {
	query   worklogs.Query
	loop    time.Duration
	quiet   bool
	noColor bool
}

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup runs before exiting.
func run() int {
	var (
		configPath     = flag.String("config", "", "Path to configuration file")
		mode           = flag.String("mode", "dev", "Environment mode: 'dev', 'development', 'prod', or 'production'")
		project        = flag.String("project", "", "Jira project key (overrides [report] project)")
		author         = flag.String("author", "", "Only include worklogs of this author (overrides [report] worklog_author)")
		days           = flag.Int("days", -1, "Only include worklogs from the last N days (overrides [report] days)")
		since          = flag.String("since", "", "Only include worklogs on or after this date (YYYY-MM-DD), wins over -days")
		loop           = flag.Int("loop", -1, "Re-run the report every N seconds (overrides [report] loop_seconds)")
		serve          = flag.Bool("serve", false, "Serve the latest report over HTTP and WebSocket")
		noColor        = flag.Bool("no-color", false, "Disable coloured output")
		clearCache     = flag.Bool("clear-cache", false, "Drop cached sprints before running")
		quiet          = flag.Bool("quiet", false, "Suppress banner and print the report as plugin JSON")
		version        = flag.Bool("version", false, "Show version information")
		help           = flag.Bool("help", false, "Show help message")
		validateConfig = flag.Bool("validate", false, "Validate configuration file and exit")
	)
	flag.Parse()

	if *version {
		fmt.Printf("%s v%s (commit: %s)\n", pluginName, common.GetFullVersion(), common.GetGitCommit())
		return 0
	}

	if *help {
		showHelp()
		return 0
	}

	environment := parseMode(*mode)

	// Priority: defaults -> TOML -> environment -> flags
	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	cfg.Environment = environment

	opts, err := buildRunOptions(cfg, *project, *author, *days, *since, *loop)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid arguments: %v\n", err)
		return 1
	}
	opts.quiet = *quiet
	opts.noColor = *noColor

	if *validateConfig {
		fmt.Println("Configuration is valid")
		return 0
	}

	if err := common.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	logger := common.GetLogger()

	logger.Info().
		Str("version", common.GetVersion()).
		Str("build", common.GetBuild()).
		Str("environment", environment).
		Msg("Starting Jira sprint worklog report")

	logger.Info().
		Str("config_path", *configPath).
		Str("project", opts.query.Project).
		Str("author", opts.query.Author).
		Msg("Configuration loaded")

	runMode := "Report"
	switch {
	case *serve:
		runMode = "Server"
	case opts.loop > 0:
		runMode = "Loop"
	}

	if !*quiet {
		common.PrintBanner(pluginName, environment, runMode, common.GetLogFilePath(), cfg)
	}

	var tracker interfaces.TrackerClient = services.NewJiraClient(&cfg.Jira, logger)

	var store interfaces.SprintStore
	if cfg.Cache.Enabled {
		store, err = services.NewStorage(&cfg.Cache)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to open sprint cache")
			return 1
		}
		defer store.Close()

		if *clearCache {
			if err := store.ClearSprints(); err != nil {
				logger.Error().Err(err).Msg("Failed to clear sprint cache")
				return 1
			}
			logger.Info().Msg("Sprint cache cleared")
		}

		tracker = services.NewCachedTracker(tracker, store, logger)
	}

	aggregator := worklogs.NewAggregator(tracker, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *serve {
		runServerMode(ctx, cfg, aggregator, store, opts, logger)
		return 0
	}

	if err := runReportMode(ctx, cfg, aggregator, opts, logger); err != nil {
		if !*quiet {
			common.PrintError(err.Error())
		}
		return exitCode(err)
	}

	logger.Info().Msg("Jira sprint worklog report complete")
	return 0
}

// exitCode is 2 when Jira rejected the credentials and 1 for any other failure.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case common.IsErrorType(err, common.ErrorTypeAuth):
		return 2
	default:
		return 1
	}
}

// buildRunOptions applies the command line over the [report] defaults.
func buildRunOptions(cfg *common.Config, project, author string, days int, since string, loop int) (runOptions, error) {
	opts := runOptions{
		query: worklogs.Query{
			Project: cfg.Report.Project,
			Author:  cfg.Report.WorklogAuthor,
			DaysAgo: cfg.Report.Days,
		},
		loop: time.Duration(cfg.Report.LoopSeconds) * time.Second,
	}

	if project != "" {
		opts.query.Project = project
	}
	if author != "" {
		opts.query.Author = author
	}
	if days >= 0 {
		opts.query.DaysAgo = days
	}
	if loop >= 0 {
		opts.loop = time.Duration(loop) * time.Second
	}

	if since != "" {
		parsed, err := time.ParseInLocation(sinceLayout, since, time.Local)
		if err != nil {
			return opts, common.NewValidationError("SINCE", fmt.Sprintf("since must be YYYY-MM-DD, got %q", since))
		}
		opts.query.Since = &parsed
	}

	return opts, nil
}

func runReportMode(ctx context.Context, cfg *common.Config, aggregator *worklogs.Aggregator, opts runOptions, logger arbor.ILogger) error {
	for {
		if opts.loop > 0 && !opts.quiet {
			fmt.Print("\033[H\033[2J")
		}

		if err := runOnce(ctx, cfg, aggregator, opts); err != nil {
			logger.Error().Err(err).Msg("Report run failed")
			if opts.loop <= 0 || ctx.Err() != nil {
				return err
			}
			if !opts.quiet {
				common.PrintWarning(err.Error())
			}
		}

		if opts.loop <= 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			logger.Info().Msg("Shutdown signal received")
			return nil
		case <-time.After(opts.loop):
		}
	}
}

func runOnce(ctx context.Context, cfg *common.Config, aggregator *worklogs.Aggregator, opts runOptions) error {
	start := time.Now()

	report, err := aggregator.Aggregate(ctx, opts.query)
	if err != nil {
		if opts.quiet {
			writeOutput(failedOutput(cfg, start, err))
		}
		return err
	}

	if !opts.quiet {
		return services.NewRenderer(os.Stdout, cfg.Jira.HoursPerDay, opts.noColor).Render(report)
	}

	payloads, err := services.BuildPayloads(report, cfg.Jira.HoursPerDay)
	if err != nil {
		writeOutput(failedOutput(cfg, start, err))
		return err
	}

	output := newOutput(cfg, start)
	output.Success = true
	output.Payloads = payloads
	output.Stats.PayloadCount = len(payloads)
	writeOutput(output)
	return nil
}

func newOutput(cfg *common.Config, start time.Time) plugin.CollectorOutput {
	return plugin.CollectorOutput{
		Timestamp: time.Now(),
		Payloads:  []plugin.Payload{},
		Collector: plugin.CollectorInfo{
			Name:        pluginName,
			Type:        plugin.CollectorTypeData,
			Version:     pluginVersion,
			Environment: cfg.Environment,
		},
		Stats: plugin.CollectorStats{
			Duration: time.Since(start).String(),
		},
	}
}

func failedOutput(cfg *common.Config, start time.Time, err error) plugin.CollectorOutput {
	output := newOutput(cfg, start)
	output.Success = false
	output.Error = err.Error()
	return output
}

func writeOutput(output plugin.CollectorOutput) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode output: %v\n", err)
	}
}

func runServerMode(ctx context.Context, cfg *common.Config, aggregator *worklogs.Aggregator, store interfaces.SprintStore, opts runOptions, logger arbor.ILogger) {
	logger.Info().Msg("Starting in server mode")

	webServer := services.NewWebServer(cfg, handlers.NewReportState(), store, logger)
	if err := webServer.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to start web server")
		return
	}

	logger.Info().
		Int("port", cfg.Server.Port).
		Msg("Web server started successfully")

	interval := opts.loop
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info().Msg("Server running - press Ctrl+C to stop")

	for {
		report, err := aggregator.Aggregate(ctx, opts.query)
		if err != nil {
			logger.Error().Err(err).Msg("Report run failed")
		}
		webServer.Publish(report, err)

		select {
		case <-ctx.Done():
			logger.Info().Msg("Shutdown signal received")
			if err := webServer.Stop(); err != nil {
				logger.Error().Err(err).Msg("Error stopping web server")
			}
			logger.Info().Msg("Server mode shutdown complete")
			return
		case <-ticker.C:
		}
	}
}

func parseMode(mode string) string {
	mode = strings.ToLower(mode)
	switch mode {
	case "prod", "production":
		return "production"
	case "dev", "development":
		return "development"
	default:
		return "development"
	}
}

func showHelp() {
	fmt.Printf("%s v%s - Jira Sprint Worklog Report\n\n", pluginName, pluginVersion)
	fmt.Println("Usage:")
	fmt.Printf("  %s [flags]\n\n", os.Args[0])
	fmt.Println("Flags:")
	fmt.Println("  -mode string        Environment mode: 'dev', 'development', 'prod', or 'production' (default \"dev\")")
	fmt.Println("  -config string      Configuration file path")
	fmt.Println("  -project string     Jira project key")
	fmt.Println("  -author string      Only include worklogs of this author")
	fmt.Println("  -days int           Only include worklogs from the last N days")
	fmt.Println("  -since string       Only include worklogs on or after YYYY-MM-DD (wins over -days)")
	fmt.Println("  -loop int           Re-run the report every N seconds")
	fmt.Println("  -serve              Serve the latest report on /report and /ws")
	fmt.Println("  -no-color           Disable coloured output")
	fmt.Println("  -clear-cache        Drop cached sprints before running")
	fmt.Println("  -quiet              Suppress banner and print plugin JSON")
	fmt.Println("  -version            Show version information")
	fmt.Println("  -help               Show help message")
	fmt.Println("  -validate           Validate configuration file and exit")
	fmt.Println("\nExamples:")
	fmt.Printf("  %s -project ABC -days 14             # Last two weeks of project ABC\n", os.Args[0])
	fmt.Printf("  %s -author jdoe -since 2024-01-01    # One author since New Year\n", os.Args[0])
	fmt.Printf("  %s -loop 60                          # Refresh every minute\n", os.Args[0])
	fmt.Printf("  %s -serve -loop 300                  # Serve, re-running every five minutes\n", os.Args[0])
}
