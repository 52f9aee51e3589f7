package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"parse", "proper", "batch", "runs", "serve", "migrate"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "nameparse", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestParseCommand_Flags(t *testing.T) {
	flag := parseCmd.Flags().Lookup("format")
	require.NotNil(t, flag)
	assert.Equal(t, "json", flag.DefValue)

	assert.NotNil(t, parseCmd.Flags().Lookup("case"))
	assert.NotNil(t, parseCmd.Flags().Lookup("no-last-name"))
}

func TestBatchCommand_Flags(t *testing.T) {
	for _, name := range []string{"input", "column", "column-index", "no-header", "sheet", "delimiter", "output", "format", "store", "concurrency"} {
		assert.NotNil(t, batchCmd.Flags().Lookup(name), "batch should have --%s flag", name)
	}

	input := batchCmd.Flags().Lookup("input")
	require.NotNil(t, input)
	assert.Equal(t, []string{"true"}, input.Annotations["cobra_annotation_bash_completion_one_required_flag"])

	assert.Equal(t, "csv", batchCmd.Flags().Lookup("format").DefValue)
	assert.Equal(t, "-", batchCmd.Flags().Lookup("output").DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
	assert.NotNil(t, serveCmd.Flags().Lookup("store"))
}

func TestRunsCommand_Flags(t *testing.T) {
	flag := runsCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "50", flag.DefValue)
	assert.NotNil(t, runsCmd.Flags().Lookup("status"))
	assert.NotNil(t, runsCmd.Flags().Lookup("unparsed-limit"))
}

func TestProperCommand_RequiresArgs(t *testing.T) {
	assert.Error(t, properCmd.Args(properCmd, nil))
	assert.NoError(t, properCmd.Args(properCmd, []string{"ryan"}))
}
