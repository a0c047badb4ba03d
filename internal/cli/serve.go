package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"trade-journal/internal/api"
	"trade-journal/internal/health"
)

// addServeCommands adds the HTTP API command.
func addServeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the statistics HTTP API",
		Long: `Serve journal statistics over HTTP.

Routes:
  GET /api/journals
  GET /api/journals/{id}/statistics
  GET /healthz
  GET /metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = app.Config.Server.Addr
			}

			svc, err := app.reportService()
			if err != nil {
				return err
			}
			st, err := app.journalStore()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			checker := health.NewChecker(health.DefaultConfig())
			checker.Register("database", health.PingCheck(st.Ping))

			server := api.NewServer(st, svc, app.registry(), app.Logger).WithHealth(checker)
			return server.ListenAndServe(ctx, addr, app.Config.Server.ReadTimeout, app.Config.Server.WriteTimeout)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default from config)")

	rootCmd.AddCommand(cmd)
}
