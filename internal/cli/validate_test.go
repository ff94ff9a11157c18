package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsenet/internal/compiler"
	"github.com/roach88/pulsenet/internal/testutil"
)

func TestValidateExample1(t *testing.T) {
	path := writeNetwork(t, "example1.txt", testutil.Example1)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "info: [W204] feedback loop")
	assert.Contains(t, out, "✓ 5 module(s), entry broadcaster\n")
}

func TestValidateUndeclaredDestinationJSON(t *testing.T) {
	path := writeNetwork(t, "example2.txt", testutil.Example2)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 5, resp.Data.Modules)
	assert.NotEmpty(t, resp.Data.Hash)

	require.Len(t, resp.Data.Diagnostics, 1)
	d := resp.Data.Diagnostics[0]
	assert.Equal(t, compiler.WarnUndeclaredDestination, d.Code)
	assert.Equal(t, "output", d.Module)
	assert.Equal(t, 5, d.Line)
}

func TestValidateSameNetworkSameHash(t *testing.T) {
	text := writeNetwork(t, "example1.txt", "# comment\n"+testutil.Example1)
	cue := writeNetwork(t, "example1.cue", `
modules: {
	broadcaster: {kind: "broadcast", outputs: ["a", "b", "c"]}
	a:           {kind: "flipflop", outputs: ["b"]}
	b:           {kind: "flipflop", outputs: ["c"]}
	c:           {kind: "flipflop", outputs: ["inv"]}
	inv:         {kind: "conjunction", outputs: ["a"]}
}
`)

	hash := func(path string) string {
		out, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), path)
		require.NoError(t, err)
		var resp struct {
			Data ValidationResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		return resp.Data.Hash
	}
	assert.Equal(t, hash(text), hash(cue))
}

func TestValidateNonExistentFile(t *testing.T) {
	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/network.txt")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestValidateParseError(t *testing.T) {
	path := writeNetwork(t, "dup.txt", "broadcaster -> a\n%a -> b\n&a -> b\n")

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [P004]")
}

func TestValidateCUEError(t *testing.T) {
	path := writeNetwork(t, "bad.cue", `modules: {a: {kind: "latch", outputs: []}}`)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E006]")
}
