package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cinephile/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	var allowEmpty bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the query operations over HTTP",
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
			store, err := ctx.openCatalog(allowEmpty)
			if err != nil {
				return err
			}
			env, err := ctx.newQueryEnv(store, 0)
			if err != nil {
				return err
			}
			defer env.Close()

			if bind == "" {
				bind = cfg.Paths.APIBind
			}
			srv, err := server.New(env.svc, server.Options{
				Bind:    bind,
				LockDir: cfg.Paths.LogDir,
				Logger:  logger,
				Breaker: env.llm,
			})
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := srv.Start(runCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving %d records on http://%s (Ctrl+C to stop)\n", store.Len(), srv.Addr())
			<-runCtx.Done()
			srv.Stop()
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (defaults to paths.api_bind)")
	cmd.Flags().BoolVar(&allowEmpty, "allow-empty", false, "Start with an empty catalog when the dataset is missing")
	return cmd
}
