package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ResolvesNetworkFile(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/example1.yaml")
	require.NoError(t, err)

	assert.Equal(t, "example1", s.Name)
	assert.Equal(t, "golden-example1", s.RunID)
	assert.Equal(t, filepath.Join("testdata", "networks", "example1.txt"), s.NetworkFile)
	require.NotNil(t, s.Expect)
	assert.Equal(t, int64(1000), s.Expect.Presses)
	assert.Equal(t, int64(32000000), *s.Expect.Product)
	assert.Len(t, s.Assertions, 4)
}

func TestLoadScenario_AllTestdataScenariosValid(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		_, err := LoadScenario(path)
		assert.NoError(t, err, path)
	}
}

func TestLoadScenario_MissingNetworkFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: s
description: d
network_file: nope.txt
expect: {low: 1}
`), 0o644))

	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "network file not found")
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario("testdata/does-not-exist.yaml")
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: s
description: d
network: "broadcaster -> a"
assertion: []
`))
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: "description: d\nnetwork: x\nexpect: {low: 1}\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: s\nnetwork: x\nexpect: {low: 1}\n",
			want: "description is required",
		},
		{
			name: "no network",
			yaml: "name: s\ndescription: d\nexpect: {low: 1}\n",
			want: "exactly one of network and network_file",
		},
		{
			name: "both networks",
			yaml: "name: s\ndescription: d\nnetwork: x\nnetwork_file: y\nexpect: {low: 1}\n",
			want: "exactly one of network and network_file",
		},
		{
			name: "nothing to check",
			yaml: "name: s\ndescription: d\nnetwork: x\n",
			want: "at least one of expect, sink and assertions",
		},
		{
			name: "empty expect",
			yaml: "name: s\ndescription: d\nnetwork: x\nexpect: {presses: 5}\n",
			want: "at least one of low, high and product",
		},
		{
			name: "bad method",
			yaml: "name: s\ndescription: d\nnetwork: x\nsink: {method: guess, presses: 1}\n",
			want: "invalid method",
		},
		{
			name: "sink presses and unreachable",
			yaml: "name: s\ndescription: d\nnetwork: x\nsink: {presses: 3, unreachable: true}\n",
			want: "exactly one of presses and unreachable",
		},
		{
			name: "bad event",
			yaml: "name: s\ndescription: d\nnetwork: x\nassertions: [{type: trace_order, events: [\"a -> b\"]}]\n",
			want: "invalid event",
		},
		{
			name: "trace_count without count",
			yaml: "name: s\ndescription: d\nnetwork: x\nassertions: [{type: trace_count, pulse: low}]\n",
			want: "count must be non-negative",
		},
		{
			name: "trace_count bad pulse",
			yaml: "name: s\ndescription: d\nnetwork: x\nassertions: [{type: trace_count, pulse: medium, count: 1}]\n",
			want: "invalid pulse",
		},
		{
			name: "final_state on and memory",
			yaml: "name: s\ndescription: d\nnetwork: x\nassertions: [{type: final_state, module: m, on: true, memory: {a: low}}]\n",
			want: "exactly one of on and memory",
		},
		{
			name: "unknown assertion",
			yaml: "name: s\ndescription: d\nnetwork: x\nassertions: [{type: trace_magic}]\n",
			want: "unknown assertion type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
