package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/mentions/internal/metrics"
	"github.com/cognicore/mentions/internal/server"
	"github.com/cognicore/mentions/pkg/mentions"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scoring API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			m := metrics.New()
			engine, err := mentions.Open(ctx, cfg, logger, m)
			if err != nil {
				return err
			}
			defer engine.Close()

			gin.SetMode(gin.ReleaseMode)
			srv := server.New(addr, server.NewRouter(engine, m, logger), logger)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info("shutting down", zap.String("reason", context.Cause(ctx).Error()))
				return srv.Stop(context.Background())
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
