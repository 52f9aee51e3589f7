package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/nameparse/internal/server"
	"github.com/sells-group/nameparse/internal/store"
)

var (
	servePort  int
	serveStore bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP parse API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if servePort > 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, err := cfg.Parser.NewParser()
		if err != nil {
			return err
		}

		var st store.Store
		if serveStore {
			st, err = initStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
		}

		zap.L().Info("serve: starting",
			zap.Int("port", cfg.Server.Port),
			zap.Bool("store", st != nil),
		)
		return server.New(p, st, cfg.Server).ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides server.port)")
	serveCmd.Flags().BoolVar(&serveStore, "store", false, "expose stored batch runs under /v1/runs")
	rootCmd.AddCommand(serveCmd)
}
