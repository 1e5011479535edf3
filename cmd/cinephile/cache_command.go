package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cinephile/internal/triviacache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the trivia answer cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCachePurgeCommand(ctx))

	return cacheCmd
}

// openTriviaCache returns nil with a notice when caching is disabled.
func openTriviaCache(ctx *commandContext) (*triviacache.Store, string, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, "", err
	}
	if !cfg.Trivia.CacheEnabled {
		return nil, "Trivia cache is disabled (set trivia.cache_enabled = true to enable).", nil
	}
	store, err := triviacache.Open(cfg.TriviaCachePath(), cfg.TriviaCacheTTL())
	if err != nil {
		return nil, "", fmt.Errorf("open trivia cache: %w", err)
	}
	return store, "", nil
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show trivia cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, notice, err := openTriviaCache(ctx)
			if notice != "" {
				fmt.Fprintln(cmd.OutOrStdout(), notice)
			}
			if err != nil || store == nil {
				return err
			}
			defer store.Close()

			count, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Path:    %s\n", store.Path())
			fmt.Fprintf(out, "Entries: %d\n", count)
			fmt.Fprintf(out, "TTL:     %s\n", store.TTL())
			return nil
		},
	}
}

func newCachePurgeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove expired trivia answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, notice, err := openTriviaCache(ctx)
			if notice != "" {
				fmt.Fprintln(cmd.OutOrStdout(), notice)
			}
			if err != nil || store == nil {
				return err
			}
			defer store.Close()

			removed, err := store.Purge(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired entries\n", removed)
			return nil
		},
	}
}
