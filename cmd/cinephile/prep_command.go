package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cinephile/internal/config"
	"cinephile/internal/pipeline"
	"cinephile/internal/reconcile"
)

func newPrepCommand(ctx *commandContext) *cobra.Command {
	var metadataPath, creditsPath, outPath string

	cmd := &cobra.Command{
		Use:   "prep",
		Short: "Build the movie dataset from the metadata and credits exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			opts := pipeline.Options{
				MetadataPath: cfg.Paths.MetadataCSV,
				CreditsPath:  cfg.Paths.CreditsCSV,
				OutputPath:   cfg.Paths.Dataset,
				Logger:       logger,
			}
			for _, override := range []struct {
				flag   string
				target *string
			}{
				{metadataPath, &opts.MetadataPath},
				{creditsPath, &opts.CreditsPath},
				{outPath, &opts.OutputPath},
			} {
				if strings.TrimSpace(override.flag) == "" {
					continue
				}
				expanded, err := config.ExpandPath(override.flag)
				if err != nil {
					return fmt.Errorf("resolve path %q: %w", override.flag, err)
				}
				*override.target = expanded
			}

			summary, err := pipeline.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printPrepSummary(cmd, summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&metadataPath, "metadata", "", "Metadata CSV (defaults to paths.metadata_csv)")
	cmd.Flags().StringVar(&creditsPath, "credits", "", "Credits CSV (defaults to paths.credits_csv)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Dataset output path (defaults to paths.dataset)")
	return cmd
}

func printPrepSummary(cmd *cobra.Command, summary pipeline.Summary) {
	join := fmt.Sprintf("%s (absent %.1f%%)", summary.Strategy, summary.IDAbsentFraction*100)
	if summary.Strategy == reconcile.StrategyTitle {
		join = fmt.Sprintf("%s (absent %.1f%%, id join %.1f%%)", summary.Strategy, summary.TitleAbsentFraction*100, summary.IDAbsentFraction*100)
	}
	st := summary.Extract
	fallbacks := st.GenreFallbacks + st.RatingFallbacks + st.YearFallbacks + st.CastFallbacks + st.CrewFallbacks

	out := cmd.OutOrStdout()
	newReport(out, "Dataset").
		add(levelOK, "Output", summary.OutputPath).
		add(levelInfo, "Input rows", fmt.Sprintf("%d metadata, %d credits", summary.MetadataRows, summary.CreditsRows)).
		add(levelInfo, "Join", join).
		add(levelInfo, "Credits matched", fmt.Sprintf("%d of %d joined rows", summary.MatchedRows, summary.JoinedRows)).
		add(levelOK, "Records", fmt.Sprintf("%d written", summary.Records())).
		add(warnIfNonZero(st.SkippedNoTitle), "Skipped (no title)", fmt.Sprint(st.SkippedNoTitle)).
		add(levelInfo, "Duplicates dropped", fmt.Sprint(st.Duplicates)).
		add(warnIfNonZero(fallbacks), "Field fallbacks", fmt.Sprintf("genre %d, rating %d, year %d, cast %d, crew %d",
			st.GenreFallbacks, st.RatingFallbacks, st.YearFallbacks, st.CastFallbacks, st.CrewFallbacks)).
		add(levelInfo, "SHA256", summary.Digest).
		print()
	fmt.Fprintf(out, "Wrote %d rows to %s\n", summary.Records(), summary.OutputPath)
}
