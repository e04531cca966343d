package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "outline-hostctl", cmd.Use)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
}

func TestRoot_HasSubcommands(t *testing.T) {
	cmd := Root()

	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}

	for _, expected := range []string{"watch", "describe", "delete", "version"} {
		assert.True(t, subcommands[expected], "Expected subcommand %s not found", expected)
	}
}

func TestWatch_Flags(t *testing.T) {
	cmd := Root()
	watch, _, err := cmd.Find([]string{"watch"})
	require.NoError(t, err)

	assert.NotNil(t, watch.Flags().Lookup("metrics-addr"))
	assert.NotNil(t, watch.Flags().Lookup("probe"))
}

func TestDelete_Flags(t *testing.T) {
	cmd := Root()
	del, _, err := cmd.Find([]string{"delete"})
	require.NoError(t, err)

	assert.NotNil(t, del.Flags().Lookup("static-address"))
}

func TestCommands_RequireArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"watch without ref", []string{"watch", "digitalocean"}},
		{"describe without ref", []string{"describe", "gcp"}},
		{"delete with extra ref", []string{"delete", "hetzner", "1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := Root()
			cmd.SetArgs(tt.args)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})

			err := cmd.Execute()
			require.Error(t, err)
		})
	}
}
