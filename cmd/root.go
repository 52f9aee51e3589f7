package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/nameparse/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "nameparse",
	Short: "Split personal names into title, first, middle, last and suffix",
	Long:  "Cleans free-form personal names, extracts honorifics and suffixes, decomposes the rest against ten structural templates, and proper-cases the parts. Works on single names, CSV/XLSX files (local or FTP), or over HTTP.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
