package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"download", "states", "services", "capabilities", "clean"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "ortho-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestDownloadCommand_Flags(t *testing.T) {
	for _, name := range []string{"name", "bbox", "aoi", "product", "grid-spacing", "buffer", "out", "mask", "mask-file", "bkg"} {
		require.NotNil(t, downloadCmd.Flags().Lookup(name), "download command should have --%s flag", name)
	}
	assert.Equal(t, "false", downloadCmd.Flags().Lookup("mask").DefValue)
}

func TestStatesCommand_Flags(t *testing.T) {
	require.NotNil(t, statesCmd.Flags().Lookup("bbox"), "states command should have --bbox flag")
	require.NotNil(t, statesCmd.Flags().Lookup("aoi"), "states command should have --aoi flag")
}

func TestCapabilitiesCommand_Flags(t *testing.T) {
	flag := capabilitiesCmd.Flags().Lookup("product")
	require.NotNil(t, flag, "capabilities command should have --product flag")
	assert.Equal(t, "rgb", flag.DefValue)
}
