package main

import (
	"os"
	"os/signal"
	"syscall"

	"space-matchmaker/internal/api"
	"space-matchmaker/internal/api/handler"
	"space-matchmaker/internal/store"
	"space-matchmaker/pkg/router"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the match API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			// Init DB
			if err := store.InitDB(a.cfg.Store.Path); err != nil {
				return err
			}
			defer store.Close()

			// Create router
			r := router.New(a.logger)
			h := handler.NewMatchHandler(a.cfg, a.logger)

			// Register API routes
			api.RegisterRoutes(r, h)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.logger.Info("serving match API",
				zap.String("addr", a.cfg.Server.Addr),
				zap.String("store", a.cfg.Store.Path),
			)
			err := r.Start(ctx, a.cfg.Server.Addr)
			h.Wait()
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
