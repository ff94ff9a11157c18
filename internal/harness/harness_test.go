package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
)

func TestRun_TestdataScenariosPass(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_Example1(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/example1.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)

	assert.Equal(t, "golden-example1", result.RunID)
	assert.Len(t, result.Trace, 12)
	require.NotNil(t, result.Counts)
	assert.Equal(t, ir.PulseCounts{Low: 8000, High: 4000}, *result.Counts)
	assert.Nil(t, result.Sink)
}

func TestRun_SinkResult(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/counter.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	require.NotNil(t, result.Sink)
	assert.Equal(t, int64(15), result.Sink.Presses)
	assert.Equal(t, engine.MethodFeederLCM, result.Sink.Method)
}

func TestRun_FailingExpectation(t *testing.T) {
	s, err := LoadScenario("testdata/failing/wrong_product.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "product after 1000 presses: expected 1, got 32000000")
}

func TestRun_FailingSink(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: wrong_sink
description: d
network: |
  broadcaster -> f
  %f -> zz, g
  %g -> zz
  &zz -> rx
sink:
  presses: 2
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors, "sink: expected rx low at press 2, got 3")
}

func TestRun_UnexpectedlyReachable(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: reachable
description: d
network: "broadcaster -> a\n%a -> zz\n&zz -> rx\n"
sink:
  unreachable: true
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors, "sink: expected rx unreachable, got low at press 1")
}

func TestRun_StrictPolicyReportsError(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: strict
description: d
strict: true
network: "broadcaster -> a\n%a -> output\n"
assertions:
  - type: trace_contains
    events: ["broadcaster -low-> a"]
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "UNKNOWN_DESTINATION")
	assert.Len(t, result.Trace, 3, "events up to the failure are recorded")
}

func TestRun_BadNetwork(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: bad
description: d
network: "broadcaster a"
expect: {low: 1}
`))
	require.NoError(t, err)

	_, err = Run(s)
	assert.ErrorContains(t, err, "failed to load network")
}

func TestRun_Deterministic(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/fanin.yaml")
	require.NoError(t, err)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	a, err := MarshalTrace(s.Name, first)
	require.NoError(t, err)
	b, err := MarshalTrace(s.Name, second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, "test-run-default", first.RunID)
}
