package engine

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsenet/internal/testutil"
)

func TestLCM(t *testing.T) {
	tests := []struct {
		values []int64
		want   int64
	}{
		{nil, 1},
		{[]int64{7}, 7},
		{[]int64{3, 5}, 15},
		{[]int64{4, 6}, 12},
		{[]int64{3, 5, 7}, 105},
		{[]int64{13, 7, 11}, 1001},
		{[]int64{3847, 3877, 4001, 4027}, 240307966428113},
	}

	for _, tt := range tests {
		got, err := LCM(tt.values...)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "LCM(%v)", tt.values)
	}
}

func TestLCM_Overflow(t *testing.T) {
	_, err := LCM(math.MaxInt64, 2)
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrCodeOverflow))
}

func TestLCM_NonPositive(t *testing.T) {
	_, err := LCM(3, 0)
	assert.Error(t, err)
}

func TestFeederLCM_Periods(t *testing.T) {
	e := newTestEngine(t, testutil.CounterNetwork([]int{3, 5}, 3))

	res, err := FindSinkLow(context.Background(), e, "rx", WithMethod(MethodFeederLCM))
	require.NoError(t, err)

	assert.Equal(t, int64(15), res.Presses)
	assert.Equal(t, MethodFeederLCM, res.Method)
	assert.Equal(t, "zz", res.Watched)
	assert.Equal(t, map[string]int64{"ai": 3, "bi": 5}, res.Periods)
	assert.Equal(t, int64(10), res.Simulated, "verification runs until each feeder fires twice")
}

func TestFeederLCM_WithoutVerificationStopsEarly(t *testing.T) {
	e := newTestEngine(t, testutil.CounterNetwork([]int{3, 5}, 3))

	res, err := FindSinkLow(context.Background(), e, "rx", WithMethod(MethodFeederLCM), WithVerification(false))
	require.NoError(t, err)
	assert.Equal(t, int64(15), res.Presses)
	assert.Equal(t, int64(5), res.Simulated)
}

func TestFeederLCM_RejectsNonPeriodicFeeder(t *testing.T) {
	e := newTestEngine(t, testutil.NonPeriodic)

	_, err := FindSinkLow(context.Background(), e, "rx", WithMethod(MethodFeederLCM))
	require.Error(t, err)
	assert.True(t, IsNotPeriodicError(err))

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "f", re.Module)
	assert.Equal(t, "1", re.Details["first"])
	assert.Equal(t, "3", re.Details["second"])
}

func TestFeederLCM_UncheckedAnswerIsWrongForNonPeriodicNetwork(t *testing.T) {
	e := newTestEngine(t, testutil.NonPeriodic)

	res, err := FindSinkLow(context.Background(), e, "rx", WithMethod(MethodFeederLCM), WithVerification(false))
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Presses)
	assert.Equal(t, map[string]int64{"f": 1, "g": 2}, res.Periods)
}

func TestFeederLCM_Topology(t *testing.T) {
	tests := []struct {
		name string
		text string
		sink string
	}{
		{"no feeder", example1Text, "rx"},
		{"flip-flop feeder", example1Text, "inv"},
		{"two feeders", example1Text, "b"},
		{"conjunction without inputs", "broadcaster -> a\n%a -> b\n&zz -> rx\n", "rx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, tt.text)

			_, err := FindSinkLow(context.Background(), e, tt.sink, WithMethod(MethodFeederLCM))
			require.Error(t, err)
			assert.True(t, IsTopologyError(err), "got %v", err)
			assert.Equal(t, int64(0), e.Presses(), "topology is checked before pressing")
		})
	}
}

func TestFeederLCM_SilentFeederStopsAtStateCycle(t *testing.T) {
	for _, verify := range []bool{true, false} {
		e := newTestEngine(t, testutil.SilentFeeder)

		_, err := FindSinkLow(context.Background(), e, "rx", WithMethod(MethodFeederLCM), WithVerification(verify))
		require.Error(t, err)
		assert.True(t, IsNotPeriodicError(err), "verify=%v: got %v", verify, err)

		var re *RuntimeError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "h", re.Module)
		assert.Equal(t, "0", re.Details["first"])
		assert.Equal(t, "1", re.Details["cycle_start"])
		assert.Equal(t, "2", re.Details["cycle_length"])
		assert.Equal(t, int64(3), e.Presses(), "stops at the first repeated state")
	}
}

func TestFeederLCM_SecondHighMayFollowStateRepeat(t *testing.T) {
	// one counter: the state repeats after press 4, ai fires at 3 and 6
	e := newTestEngine(t, testutil.CounterNetwork([]int{3}, 3))

	res, err := FindSinkLow(context.Background(), e, "rx", WithMethod(MethodFeederLCM))
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Presses)
	assert.Equal(t, int64(6), res.Simulated)
}
