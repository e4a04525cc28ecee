package consensus

import (
	"testing"

	"kratos/types"

	"github.com/stretchr/testify/require"
)

func TestValidateTimestampAcceptsOnScheduleBlock(t *testing.T) {
	err := ValidateTimestamp(1006, 1000, 1, 0, 2000)
	require.NoError(t, err)
}

func TestValidateTimestampRejectsNonIncreasing(t *testing.T) {
	err := ValidateTimestamp(1000, 1000, 1, 0, 2000)
	require.Error(t, err)
}

func TestValidateTimestampRejectsFarFuture(t *testing.T) {
	err := ValidateTimestamp(uint64(2000+MaxFutureDriftSeconds+100), 1000, 1, 0, 2000)
	require.Error(t, err)
}

func TestValidateTimestampRejectsExcessiveDrift(t *testing.T) {
	err := ValidateTimestamp(1020, 1000, 1, 0, 2000)
	require.Error(t, err)
}

func TestClockHealthDegradesThenExcludes(t *testing.T) {
	tr := NewClockHealthTracker()
	tr.Observe(10, false)
	require.Equal(t, types.ClockDegraded, tr.State)
	tr.Observe(10, false)
	require.Equal(t, types.ClockExcluded, tr.State)
}

func TestClockHealthRecoversAfterFiveGood(t *testing.T) {
	tr := &ClockHealthTracker{State: types.ClockRecovering}
	for i := 0; i < 4; i++ {
		tr.Observe(0, false)
		require.Equal(t, types.ClockRecovering, tr.State)
	}
	tr.Observe(0, false)
	require.Equal(t, types.ClockHealthy, tr.State)
}

func TestClockHealthRestartGraceExemptsOnce(t *testing.T) {
	tr := NewClockHealthTracker()
	tr.Observe(3000, true)
	require.Equal(t, types.ClockHealthy, tr.State)
	tr.Observe(3000, true)
	require.Equal(t, types.ClockDegraded, tr.State)
}
