package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{name: "release build", version: "1.2.3"},
		{name: "dev by default", version: "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := version
			version = tt.version
			defer func() { version = original }()

			out, err := executeCommand(t, "version")

			require.NoError(t, err)
			assert.Contains(t, out, "ruyi version "+tt.version)
			assert.Contains(t, out, "mcp server: ")
			assert.Contains(t, out, runtime.Version())
		})
	}
}

func TestVersionCmd_RejectsArgs(t *testing.T) {
	_, err := executeCommand(t, "version", "extra")
	assert.Error(t, err)
}
