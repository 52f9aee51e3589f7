package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sells-group/nameparse/internal/nameparse"
)

var properCmd = &cobra.Command{
	Use:   "proper <names...>",
	Short: "Print names in proper case (McDonald, MacGregor)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := cfg.Parser.NewParser()
		if err != nil {
			return err
		}
		return runProper(cmd.OutOrStdout(), p, args)
	},
}

func init() {
	rootCmd.AddCommand(properCmd)
}

func runProper(out io.Writer, p *nameparse.Parser, names []string) error {
	for _, n := range names {
		if _, err := fmt.Fprintln(out, p.ProperCase(n)); err != nil {
			return err
		}
	}
	return nil
}
