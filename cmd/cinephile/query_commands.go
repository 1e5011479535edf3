package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cinephile/internal/catalog"
	"cinephile/internal/query"
)

// withQueryService loads the catalog, wires the query service and runs fn.
func withQueryService(ctx *commandContext, seed uint64, fn func(*query.Service) error) error {
	store, err := ctx.openCatalog(false)
	if err != nil {
		return err
	}
	env, err := ctx.newQueryEnv(store, seed)
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(env.svc)
}

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var genre, mood string
	var seed uint64
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Suggest up to three well-rated movies by genre and mood",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQueryService(ctx, seed, func(svc *query.Service) error {
				if jsonOutput {
					picks := svc.RecommendRecords(genre, mood)
					if picks == nil {
						picks = []catalog.MovieRecord{}
					}
					return writeJSON(cmd, picks)
				}
				fmt.Fprintln(cmd.OutOrStdout(), svc.Recommend(genre, mood))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&genre, "genre", "g", "", "Genre substring to match (case-insensitive)")
	cmd.Flags().StringVarP(&mood, "mood", "m", "", "Mood such as funny or mind-bending (see `cinephile moods`)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for reproducible picks (0 uses recommend.seed or a random seed)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output picked records as JSON")
	return cmd
}

func newCompareCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <titleA> <titleB>",
		Short: "Compare two movies side by side",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQueryService(ctx, 0, func(svc *query.Service) error {
				fmt.Fprintln(cmd.OutOrStdout(), svc.Compare(args[0], args[1]))
				return nil
			})
		},
	}
}

func newInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info <title>",
		Short: "Show year, genre, director, cast, rating and summary for a movie",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQueryService(ctx, 0, func(svc *query.Service) error {
				fmt.Fprintln(cmd.OutOrStdout(), svc.Info(strings.Join(args, " ")))
				return nil
			})
		},
	}
}

func newTriviaCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "trivia <title>",
		Short: "Ask the text generator for one piece of movie trivia",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.newQueryEnv(catalog.New(), 0)
			if err != nil {
				return err
			}
			defer env.Close()
			fmt.Fprintln(cmd.OutOrStdout(), env.svc.Trivia(cmd.Context(), strings.Join(args, " ")))
			return nil
		},
	}
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var cutoff float64

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy-match titles in the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCatalog(false)
			if err != nil {
				return err
			}
			matches := store.FuzzyLookup(strings.Join(args, " "), limit, cutoff)
			out := cmd.OutOrStdout()
			if len(matches) == 0 {
				fmt.Fprintln(out, "No close matches.")
				return nil
			}
			rows := make([][]string, 0, len(matches))
			for i, title := range matches {
				record, _ := store.Lookup(title)
				rows = append(rows, []string{
					fmt.Sprint(i + 1),
					title,
					yearCell(record),
					catalog.FormatRating(record.Rating),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Title", "Year", "Rating"}, rows, []columnAlignment{alignRight, alignLeft, alignRight, alignRight}))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", catalog.DefaultMaxResults, "Maximum number of matches")
	cmd.Flags().Float64Var(&cutoff, "cutoff", catalog.DefaultCutoff, "Minimum similarity ratio between 0 and 1")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var genre string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCatalog(false)
			if err != nil {
				return err
			}
			needle := strings.ToLower(strings.TrimSpace(genre))
			records := make([]catalog.MovieRecord, 0)
			store.Each(func(record catalog.MovieRecord) bool {
				if needle != "" && !strings.Contains(strings.ToLower(record.Genre), needle) {
					return true
				}
				records = append(records, record)
				return limit <= 0 || len(records) < limit
			})
			if jsonOutput {
				return writeJSON(cmd, records)
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No records.")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					record.Title,
					yearCell(record),
					record.Genre,
					catalog.FormatRating(record.Rating),
					record.Director,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Title", "Year", "Genre", "Rating", "Director"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft, alignRight, alignLeft}))
			return nil
		},
	}
	cmd.Flags().StringVarP(&genre, "genre", "g", "", "Only list records whose genre contains this text")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum records to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output records as JSON")
	return cmd
}

func newMoodsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "moods",
		Short:       "List the moods understood by recommend",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0)
			for _, mood := range query.Moods() {
				rows = append(rows, []string{mood, titleCase(mood), strings.Join(query.MoodGenres(mood), ", ")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Mood", "Label", "Genres"}, rows, nil))
			return nil
		},
	}
}

func yearCell(record catalog.MovieRecord) string {
	if !record.HasYear() {
		return "-"
	}
	return fmt.Sprint(record.Year)
}
