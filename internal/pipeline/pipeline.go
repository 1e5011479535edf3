package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"cinephile/internal/catalog"
	"cinephile/internal/extract"
	"cinephile/internal/fileutil"
	"cinephile/internal/logging"
	"cinephile/internal/metrics"
	"cinephile/internal/reconcile"
	"cinephile/internal/services"
	"cinephile/internal/tabular"
)

const component = "pipeline"

// Options names the pipeline inputs and output.
type Options struct {
	MetadataPath string
	CreditsPath  string
	OutputPath   string
	Logger       *slog.Logger
}

// Summary reports what a run produced.
type Summary struct {
	MetadataRows        int
	CreditsRows         int
	JoinedRows          int
	MatchedRows         int
	Strategy            reconcile.Strategy
	Representative      string
	IDAbsentFraction    float64
	TitleAbsentFraction float64
	TitleAttempted      bool
	Extract             extract.Stats
	OutputPath          string
	Digest              string
	Elapsed             time.Duration
}

// Records is the number of records written.
func (s Summary) Records() int {
	return s.Extract.Extracted
}

// Run executes one preparation pass. Missing inputs are fatal and marked with
// services.ErrNotFound.
func Run(ctx context.Context, opts Options) (Summary, error) {
	started := time.Now()
	logger := logging.NewComponentLogger(opts.Logger, component)
	ctx = services.WithOperation(ctx, "prep")
	logger = logging.WithContext(ctx, logger)

	if err := validate(opts); err != nil {
		return Summary{}, err
	}

	meta, credits, err := readInputs(ctx, opts)
	if err != nil {
		return Summary{}, err
	}
	metrics.SetPipelineRows("metadata", meta.Len())
	metrics.SetPipelineRows("credits", credits.Len())
	logger.Info("inputs loaded",
		logging.String(logging.FieldEventType, "inputs_loaded"),
		logging.Int("metadata_rows", meta.Len()),
		logging.Int("credits_rows", credits.Len()),
	)

	joined, err := reconcile.Reconcile(meta, credits)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrValidation, component, "reconcile", "join inputs", err)
	}
	metrics.SetPipelineRows("joined", len(joined.Rows))
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "join_selected"),
		logging.String("strategy", string(joined.Strategy)),
		logging.String("representative", joined.Representative),
		logging.Float64("id_absent_fraction", joined.IDAbsentFraction),
	}
	if joined.TitleAttempted {
		attrs = append(attrs, logging.Float64("title_absent_fraction", joined.TitleAbsentFraction))
	}
	logger.Info("join strategy selected", logging.Args(attrs...)...)

	records, stats := extract.ExtractAll(joined.Rows)
	metrics.SetPipelineRows("extracted", len(records))
	if fallbacks := stats.GenreFallbacks + stats.RatingFallbacks + stats.YearFallbacks + stats.CastFallbacks + stats.CrewFallbacks; fallbacks > 0 {
		logging.WarnWithContext(logger, "some fields fell back to defaults", "extract_fallbacks",
			logging.Int("genre", stats.GenreFallbacks),
			logging.Int("rating", stats.RatingFallbacks),
			logging.Int("year", stats.YearFallbacks),
			logging.Int("cast", stats.CastFallbacks),
			logging.Int("crew", stats.CrewFallbacks),
			logging.String(logging.FieldErrorHint, "inspect the source CSV for malformed list or numeric cells"),
			logging.String(logging.FieldImpact, "affected records keep empty or zero values"),
		)
	}

	if err := writeDataset(ctx, opts.OutputPath, records); err != nil {
		logging.ErrorWithContext(logger, "dataset write failed", "dataset_write_failed",
			logging.Error(err),
			logging.String("output", opts.OutputPath),
			logging.String(logging.FieldErrorHint, "check that no other prep run holds "+opts.OutputPath+".lock"),
		)
		return Summary{}, err
	}
	digest, err := fileutil.Digest(opts.OutputPath)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrExternal, component, "digest", "hash dataset", err)
	}

	summary := Summary{
		MetadataRows:        meta.Len(),
		CreditsRows:         credits.Len(),
		JoinedRows:          len(joined.Rows),
		MatchedRows:         matchedRows(joined.Rows),
		Strategy:            joined.Strategy,
		Representative:      joined.Representative,
		IDAbsentFraction:    joined.IDAbsentFraction,
		TitleAbsentFraction: joined.TitleAbsentFraction,
		TitleAttempted:      joined.TitleAttempted,
		Extract:             stats,
		OutputPath:          opts.OutputPath,
		Digest:              digest,
		Elapsed:             time.Since(started),
	}
	logger.Info("dataset written",
		logging.String(logging.FieldEventType, "dataset_written"),
		logging.String("path", opts.OutputPath),
		logging.Int("records", summary.Records()),
		logging.Int("skipped_no_title", stats.SkippedNoTitle),
		logging.Int("duplicates", stats.Duplicates),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

func validate(opts Options) error {
	if opts.MetadataPath == "" || opts.CreditsPath == "" || opts.OutputPath == "" {
		return services.Wrap(services.ErrConfiguration, component, "validate", "metadata, credits and output paths are required", nil)
	}
	for _, path := range []string{opts.MetadataPath, opts.CreditsPath} {
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, component, "stat", fmt.Sprintf("input %s not found", path), err)
		}
		if err != nil {
			return services.Wrap(services.ErrExternal, component, "stat", fmt.Sprintf("stat %s", path), err)
		}
		if info.IsDir() {
			return services.Wrap(services.ErrValidation, component, "stat", fmt.Sprintf("input %s is a directory", path), nil)
		}
	}
	return nil
}

func readInputs(ctx context.Context, opts Options) (*tabular.Table, *tabular.Table, error) {
	var meta, credits *tabular.Table
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		table, err := readTable(groupCtx, opts.MetadataPath)
		meta = table
		return err
	})
	group.Go(func() error {
		table, err := readTable(groupCtx, opts.CreditsPath)
		credits = table
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}
	return meta, credits, nil
}

func readTable(ctx context.Context, path string) (*tabular.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := tabular.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, services.Wrap(services.ErrNotFound, component, "read", fmt.Sprintf("input %s not found", path), err)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, component, "read", fmt.Sprintf("parse %s", path), err)
	}
	return table, nil
}

func writeDataset(ctx context.Context, path string, records []catalog.MovieRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return services.Wrap(services.ErrExternal, component, "write", "create dataset directory", err)
	}
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return services.Wrap(services.ErrExternal, component, "lock", "acquire dataset lock", err)
	}
	if !locked {
		return services.Wrap(services.ErrTransient, component, "lock", "another prep run holds the dataset lock", nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	err = fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return catalog.WriteCSV(w, records)
	})
	if err != nil {
		return services.Wrap(services.ErrExternal, component, "write", "write dataset", err)
	}
	return nil
}

// matchedRows counts joined rows that found a credits row.
func matchedRows(rows []reconcile.Row) int {
	n := 0
	for _, row := range rows {
		if row.Matched() {
			n++
		}
	}
	return n
}
