// Package main is the entry point for the bagfilter command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/pandeptwidyaop/bagfilter/internal/app"
	"github.com/pandeptwidyaop/bagfilter/internal/cache"
	"github.com/pandeptwidyaop/bagfilter/internal/config"
	"github.com/pandeptwidyaop/bagfilter/internal/database"
	"github.com/pandeptwidyaop/bagfilter/internal/logging"
	"github.com/pandeptwidyaop/bagfilter/internal/services"
	"github.com/pandeptwidyaop/bagfilter/internal/version"
)

// seedArg is passed by GUI wrappers to fetch the topic list instead of
// running an action.
const seedArg = "gooey-seed-ui"

const usage = `Usage: bagfilter [-config file] <command> [options]

Commands:
  extract   Read bag info and cache it for filtering
  filter    Filter the cached bag and export the result
  topics    List the topics of the cached bag
  history   Show recent extract and filter runs
  version   Show version information

Run 'bagfilter <command> -h' for command options.
`

// commands maps each subcommand to whether it touches the run history.
var commands = map[string]bool{
	"extract": true,
	"filter":  true,
	"topics":  false,
	"history": true,
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("bagfilter", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(global.Output(), usage) }
	configPath := global.String("config", "bagfilter.yaml", "path to config file")
	showVersion := global.Bool("version", false, "show version information")

	// GUI wrappers may put the seed argument anywhere, next to flags of
	// their own that this tool does not know.
	seed := containsArg(args, seedArg)
	if seed {
		global.SetOutput(io.Discard)
	}

	if err := global.Parse(args); err != nil && !seed {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *showVersion && !seed {
		printVersion(stdout)
		return 0
	}

	rest := global.Args()
	if len(rest) == 0 && !seed {
		global.Usage()
		return 2
	}
	if !seed && rest[0] == "version" {
		printVersion(stdout)
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(stderr, "Failed to load config from %s: %v\n", *configPath, err)
			return 1
		}
		cfg = config.Default()
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	store := cache.New(cfg.Cache.CachePath())

	// The seed mode only reads the cache; it must stay fast and quiet.
	if seed {
		a := app.New(cfg, store, nil, nil, nil, nil, logger, stdout)
		if err := a.Seed(); err != nil {
			logger.Error("Failed to list topics", zap.Error(err))
			return 1
		}
		return 0
	}

	command, cmdArgs := rest[0], rest[1:]
	recordsRuns, known := commands[command]
	if !known {
		fmt.Fprintf(stderr, "Unknown command %q\n\n", command)
		global.Usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var history *services.HistoryService
	if recordsRuns {
		var closeHistory func()
		history, closeHistory = openHistory(cfg, logger)
		defer closeHistory()
	}

	builder := services.NewBuilder(cfg.Tool.Program)
	executor := services.NewExecutorService(services.ExecRunner{}, history, cfg, logger)
	extractor := services.NewExtractorService(builder, executor, logger)
	a := app.New(cfg, store, extractor, builder, executor, history, logger, stdout)

	switch command {
	case "extract":
		err = runExtract(ctx, a, cmdArgs, stderr)
	case "filter":
		err = runFilter(ctx, a, cfg, cmdArgs, stderr)
	case "topics":
		err = runTopics(a, cmdArgs, stderr)
	case "history":
		err = runHistory(a, cmdArgs, stderr)
	}

	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		logger.Error("Command failed", zap.String("command", command), zap.Error(err))
		reportError(stderr, err)
		return 1
	}
	return 0
}

func runExtract(ctx context.Context, a *app.App, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var input string
	fs.StringVar(&input, "i", a.DefaultInput(), "input bag")
	fs.StringVar(&input, "input_bag", a.DefaultInput(), "input bag")
	if err := fs.Parse(args); err != nil {
		return err
	}
	explicit := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" || f.Name == "input_bag" {
			explicit = true
		}
	})
	if !explicit && fs.NArg() > 0 {
		input = fs.Arg(0)
	}
	return a.Extract(ctx, input)
}

func runFilter(ctx context.Context, a *app.App, cfg *config.Config, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("filter", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: bagfilter filter [options] [topic ...]")
		fmt.Fprintln(stderr, "Topics are '(count) name' entries or bare names to filter out.")
		fs.PrintDefaults()
	}
	var opts app.FilterOptions
	fs.StringVar(&opts.OutDir, "o", cfg.Filter.OutDir, "output directory")
	fs.StringVar(&opts.OutDir, "out_dir", cfg.Filter.OutDir, "output directory")
	fs.StringVar(&opts.Prefix, "prefix", cfg.Filter.GetPrefix(), "output filename prefix")
	fs.StringVar(&opts.Suffix, "suffix", cfg.Filter.GetSuffix(), "output filename suffix")
	if err := fs.Parse(args); err != nil {
		return err
	}
	opts.Excluded = fs.Args()
	return a.Filter(ctx, opts)
}

func runTopics(a *app.App, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("topics", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "print topics as a JSON array")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return a.Topics(*asJSON)
}

func runHistory(a *app.App, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	limit := fs.Int("n", 20, "number of runs to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return a.History(*limit)
}

// openHistory opens the run history. The tool keeps working without it.
func openHistory(cfg *config.Config, logger *zap.Logger) (*services.HistoryService, func()) {
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		logger.Warn("Run history disabled", zap.String("path", cfg.Database.Path), zap.Error(err))
		return nil, func() {}
	}
	if err := db.Migrate(); err != nil {
		logger.Warn("Run history disabled", zap.String("path", cfg.Database.Path), zap.Error(err))
		_ = db.Close()
		return nil, func() {}
	}
	return services.NewHistoryService(db), func() {
		if err := db.Close(); err != nil {
			logger.Warn("Error closing history database", zap.Error(err))
		}
	}
}

func reportError(w io.Writer, err error) {
	var toolErr *services.ExternalToolError
	switch {
	case errors.Is(err, services.ErrMissingCache):
		fmt.Fprintln(w, "No bag has been inspected yet. Run 'bagfilter extract -i <bag>' first.")
	case errors.Is(err, services.ErrNoTopicsRemaining):
		fmt.Fprintln(w, "Every topic was selected for removal; keep at least one.")
	case errors.As(err, &toolErr):
		fmt.Fprintf(w, "External tool failed: %v\n", toolErr)
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "bagfilter %s\n", version.Version)
	fmt.Fprintf(w, "Build Time: %s\n", version.BuildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", version.GitCommit)
}

func containsArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}
