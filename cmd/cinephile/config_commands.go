package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cinephile/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration utilities"}
	cmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var target string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write an annotated sample configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := initTarget(target)
			if err != nil {
				return err
			}
			if err := config.CreateSample(path, overwrite); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", path)
			fmt.Fprintln(out, "Set llm.api_key (or export OPENAI_API_KEY) to enable trivia, then run `cinephile prep`.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func initTarget(flag string) (string, error) {
	if flag = strings.TrimSpace(flag); flag != "" {
		path, err := config.ExpandPath(flag)
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
		return path, nil
	}
	path, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("determine default config path: %w", err)
	}
	return path, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Load the configuration and report what it resolves to",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, exists, err := config.Load(strings.TrimSpace(*ctx.configFlag))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			r := newReport(cmd.OutOrStdout(), "Configuration")
			if exists {
				r.add(levelOK, "Config path", path)
			} else {
				r.add(levelWarn, "Config path", "not found; defaults were used")
			}
			if _, err := os.Stat(cfg.Paths.Dataset); err == nil {
				r.add(levelOK, "Dataset", cfg.Paths.Dataset)
			} else {
				r.add(levelWarn, "Dataset", cfg.Paths.Dataset+" (run `cinephile prep`)")
			}
			if cfg.LLM.APIKey != "" {
				r.add(levelOK, "Trivia API key", "configured")
			} else {
				r.add(levelWarn, "Trivia API key", "missing; trivia replies with an error")
			}
			if cfg.Trivia.CacheEnabled {
				r.add(levelInfo, "Trivia cache", cfg.TriviaCachePath())
			}
			r.add(levelInfo, "API bind", cfg.Paths.APIBind)
			r.print()
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration valid")
			return nil
		},
	}
}
