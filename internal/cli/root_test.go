package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "sakemonkey", cmd.Use)
	assert.Contains(t, cmd.Long, "hydrometer")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"init"}, {"gravity"}, {"dilute"}, {"watch"},
		{"ingredient", "add"}, {"ingredient", "list"},
		{"recipe", "add"}, {"recipe", "show"}, {"recipe", "list"}, {"recipe", "summary"},
		{"starter", "add"}, {"starter", "list"},
		{"publish"}, {"view"}, {"history"},
		{"sync", "pull"}, {"sync", "push"}, {"sync", "status"},
		{"import"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("db"))
}

func TestGravityCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	gravityCmd, _, err := cmd.Find([]string{"gravity"})
	require.NoError(t, err)

	calibration := gravityCmd.Flags().Lookup("calibration")
	require.NotNil(t, calibration)
	assert.Equal(t, "20", calibration.DefValue)

	dryRun := gravityCmd.Flags().Lookup("dry-run")
	require.NotNil(t, dryRun)
	assert.Equal(t, "false", dryRun.DefValue)
}

func TestDiluteCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	diluteCmd, _, err := cmd.Find([]string{"dilute"})
	require.NoError(t, err)

	target := diluteCmd.Flags().Lookup("target")
	require.NotNil(t, target)
	assert.Equal(t, "Pure", target.DefValue)
}

func TestViewCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	viewCmd, _, err := cmd.Find([]string{"view"})
	require.NoError(t, err)

	limit := viewCmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "100", limit.DefValue)
	assert.Contains(t, viewCmd.ValidArgs, "formulas")
}

func TestSyncCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	pushCmd, _, err := cmd.Find([]string{"sync", "push"})
	require.NoError(t, err)

	require.NotNil(t, pushCmd.Flags().Lookup("replace"))
	require.NotNil(t, pushCmd.InheritedFlags().Lookup("spreadsheet"))
	require.NotNil(t, pushCmd.InheritedFlags().Lookup("credentials"))
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.True(t, isValidFormat("yaml"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "history"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.False(t, IsReported(err))
}
