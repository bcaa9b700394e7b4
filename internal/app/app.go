// Package app implements the front end actions: extract bag info, filter and
// export, and the supporting topic listings. Each program run performs one.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/pandeptwidyaop/bagfilter/internal/cache"
	"github.com/pandeptwidyaop/bagfilter/internal/config"
	"github.com/pandeptwidyaop/bagfilter/internal/models"
	"github.com/pandeptwidyaop/bagfilter/internal/services"
	"github.com/pandeptwidyaop/bagfilter/internal/topics"
	"github.com/pandeptwidyaop/bagfilter/internal/validation"
	"go.uber.org/zap"
)

// SeedKey is the option name a GUI front end seeds its topic list under.
const SeedKey = "--filtered_topics"

// ErrHistoryUnavailable indicates the history database could not be opened.
var ErrHistoryUnavailable = errors.New("run history is unavailable")

// App wires the cache, extractor, builder and executor together.
type App struct {
	cfg       *config.Config
	store     *cache.Store
	extractor *services.ExtractorService
	builder   *services.Builder
	executor  *services.ExecutorService
	history   *services.HistoryService
	logger    *zap.Logger
	out       io.Writer
}

// New creates the front end. history may be nil.
func New(
	cfg *config.Config,
	store *cache.Store,
	extractor *services.ExtractorService,
	builder *services.Builder,
	executor *services.ExecutorService,
	history *services.HistoryService,
	logger *zap.Logger,
	out io.Writer,
) *App {
	return &App{
		cfg:       cfg,
		store:     store,
		extractor: extractor,
		builder:   builder,
		executor:  executor,
		history:   history,
		logger:    logger,
		out:       out,
	}
}

// FilterOptions are the user's choices for a filter run. Excluded holds
// display entries or bare topic names.
type FilterOptions struct {
	OutDir   string
	Prefix   string
	Suffix   string
	Excluded []string
}

// DefaultInput returns the bag of the active cache record, if any.
func (a *App) DefaultInput() string {
	meta, err := a.store.Load()
	if err != nil || meta == nil {
		return ""
	}
	return meta.Path
}

// Extract inspects bagPath, records its metadata and prints a summary.
func (a *App) Extract(ctx context.Context, bagPath string) error {
	if bagPath == "" {
		bagPath = a.DefaultInput()
	}
	if bagPath == "" {
		return errors.New("no input bag given")
	}

	meta, err := a.extractor.Extract(ctx, bagPath)
	if err != nil {
		return err
	}

	archive, err := a.store.Archive(meta)
	if err != nil {
		return err
	}
	if err := a.store.Save(meta); err != nil {
		return err
	}
	a.logger.Debug("Saved bag info", zap.String("cache", a.store.Path()), zap.String("archive", archive))

	a.printSummary(meta)
	return nil
}

func (a *App) printSummary(meta *models.BagMetadata) {
	fmt.Fprintf(a.out, "duration: %s\n", formatFloat(meta.Duration))
	fmt.Fprintf(a.out, "start: %s (%s)\n", formatFloat(meta.Start), formatStamp(meta.StartTime()))
	fmt.Fprintf(a.out, "end: %s (%s)\n", formatFloat(meta.End), formatStamp(meta.EndTime()))
	fmt.Fprintln(a.out, "topics:")
	for _, t := range meta.Topics {
		fmt.Fprintf(a.out, "\t%d msgs: %s (%s)\n", t.Messages, t.Topic, t.Type)
	}
}

// Filter exports a copy of the cached bag without the excluded topics.
func (a *App) Filter(ctx context.Context, opts FilterOptions) error {
	meta, err := a.store.Load()
	if err != nil {
		return err
	}
	if meta == nil {
		return services.ErrMissingCache
	}

	req := &models.FilterRequest{
		InputPath:      meta.Path,
		OutputDir:      opts.OutDir,
		Prefix:         opts.Prefix,
		Suffix:         opts.Suffix,
		ExcludedTopics: models.NewTopicSet(topics.RawNames(opts.Excluded)...),
	}
	if req.OutputDir == "" {
		req.OutputDir = a.cfg.Filter.OutDir
	}
	if err := validation.ValidateRequest(meta, req); err != nil {
		return err
	}

	cmd, err := a.builder.Build(meta, req.ExcludedTopics, req.OutputDir, req.Prefix, req.Suffix)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(req.OutputDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if inspected, ok, err := a.store.ModTime(); err == nil && ok {
		fmt.Fprintf(a.out, "Bag: %s (inspected %s)\n", meta.Path, inspected.Local().Format(time.DateTime))
	} else {
		fmt.Fprintf(a.out, "Bag: %s\n", meta.Path)
	}
	fmt.Fprintln(a.out, "Filtered topics:")
	for _, t := range meta.Topics {
		if _, ok := req.ExcludedTopics[t.Topic]; ok {
			fmt.Fprintf(a.out, "\t%s\n", t.Topic)
		}
	}
	fmt.Fprintln(a.out, "Remaining topics:")
	for _, name := range cmd.Kept {
		fmt.Fprintf(a.out, "\t%s\n", name)
	}
	fmt.Fprintf(a.out, "\nCommand:\n\t%s\n", cmd)
	fmt.Fprintln(a.out, "\nConverting....")

	if err := a.executor.Execute(ctx, models.ActionFilter, meta.Path, cmd, a.out); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\nFinished: %s\n", cmd.OutputPath)

	if a.cfg.Cache.RemoveAfterFilter {
		if err := a.store.Remove(); err != nil {
			return err
		}
		a.logger.Debug("Removed bag cache", zap.String("cache", a.store.Path()))
	}
	return nil
}

// Topics prints the display entries of the cached bag, one per line or as a
// JSON array.
func (a *App) Topics(asJSON bool) error {
	entries, err := topics.ListCached(a.store)
	if err != nil {
		return err
	}

	if asJSON {
		return json.NewEncoder(a.out).Encode(entries)
	}
	for _, e := range entries {
		fmt.Fprintln(a.out, e)
	}
	return nil
}

// Seed prints the topic list in the shape a GUI front end seeds its
// selection widget from.
func (a *App) Seed() error {
	entries, err := topics.ListCached(a.store)
	if err != nil {
		return err
	}
	return json.NewEncoder(a.out).Encode(map[string][]string{SeedKey: entries})
}

// History prints the most recent runs.
func (a *App) History(limit int) error {
	if a.history == nil {
		return ErrHistoryUnavailable
	}

	runs, err := a.history.GetRuns(limit, 0)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tACTION\tSTATUS\tEXIT\tCREATED\tBAG\tOUTPUT")
	for _, r := range runs {
		exit := "-"
		if r.ExitCode != nil {
			exit = strconv.Itoa(*r.ExitCode)
		}
		output := r.OutputPath
		if output == "" {
			output = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(r.ID), r.Action, r.Status, exit,
			r.CreatedAt.Local().Format(time.DateTime), r.BagPath, output)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatStamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
