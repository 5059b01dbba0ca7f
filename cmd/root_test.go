package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceFlagVisibleOnAllCommands(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("trace")
	require.NotNil(t, flag)

	// subcommands inherit the flag, so `targ watch --trace` works
	assert.NotNil(t, checkCmd.InheritedFlags().Lookup("trace"))
	assert.NotNil(t, watchCmd.InheritedFlags().Lookup("trace"))
}
