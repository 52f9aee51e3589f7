package main

import (
	"bufio"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/nameparse/internal/batch"
	"github.com/sells-group/nameparse/internal/config"
	"github.com/sells-group/nameparse/internal/model"
	"github.com/sells-group/nameparse/internal/nameparse"
)

var (
	parseFormat     string
	parseCase       string
	parseNoLastName bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [names...]",
	Short: "Parse names given as arguments or one per line on stdin",
	Example: `  nameparse parse "Dr. Ryan M. Nagle Jr."
  cat names.txt | nameparse parse --format yaml
  nameparse parse --no-last-name "Ryan Michael"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("parse"); err != nil {
			return err
		}
		p, err := newParser(cfg.Parser, parseCase)
		if err != nil {
			return err
		}
		return runParse(cmd.OutOrStdout(), cmd.InOrStdin(), p, args, parseFormat, parseNoLastName)
	},
}

func init() {
	parseCmd.Flags().StringVar(&parseFormat, "format", "json", "output format: json or yaml")
	parseCmd.Flags().StringVar(&parseCase, "case", "", "case mode override: none, proper, upper, lower")
	parseCmd.Flags().BoolVar(&parseNoLastName, "no-last-name", false, "treat every token as a given name")
	rootCmd.AddCommand(parseCmd)
}

// newParser builds a parser from config with an optional case-mode override.
func newParser(pc config.ParserConfig, caseOverride string) (*nameparse.Parser, error) {
	if caseOverride != "" {
		pc.CaseMode = caseOverride
	}
	return pc.NewParser()
}

// runParse parses names, or every non-blank line of in when names is empty,
// writing one record per name.
func runParse(out io.Writer, in io.Reader, p *nameparse.Parser, names []string, format string, noLastName bool) error {
	switch format {
	case batch.FormatJSONL, "json", batch.FormatYAML:
	default:
		return eris.Errorf("parse: unknown format %q (json or yaml)", format)
	}

	w, err := batch.NewWriter(format, out)
	if err != nil {
		return err
	}

	row := 0
	emit := func(name string) error {
		row++
		var res nameparse.Result
		if noLastName {
			res = p.ParseGivenNames(name)
		} else {
			res = p.Parse(name)
		}
		return w.Write(model.NameRecord{Row: row, Result: res})
	}

	if len(names) > 0 {
		for _, n := range names {
			if err := emit(n); err != nil {
				return err
			}
		}
		return w.Flush()
	}

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := emit(line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return eris.Wrap(err, "parse: read stdin")
	}
	return w.Flush()
}
