package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCommandHelp(t *testing.T) {
	output, err := execute(t, "serve", "--help")
	require.NoError(t, err)
	assert.Contains(t, output, "Start the Guidepack API server")
}

func TestServeCommandFlags(t *testing.T) {
	serveCmd := findCommand(t, "serve")

	tests := []struct {
		flag     string
		defValue string
	}{
		{"port", "0"},
		{"host", ""},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			f := serveCmd.Flags().Lookup(tt.flag)
			require.NotNil(t, f)
			assert.Equal(t, tt.defValue, f.DefValue)
		})
	}
}

func TestServeCommandInvalidPort(t *testing.T) {
	_, err := execute(t, "serve", "--port", "invalid")
	assert.Error(t, err)
}
