package security

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBootstrapHoldsWhileFlagSet(t *testing.T) {
	tr := NewTracker()
	require.Equal(t, StateBootstrap, tr.Advance(80, true))
}

func TestImmediateDownwardTransition(t *testing.T) {
	tr := NewTracker()
	tr.Advance(80, false)
	require.Equal(t, StateNormal, tr.Current)
	require.Equal(t, StateDegraded, tr.Advance(60, false))
	require.Equal(t, StateRestricted, tr.Advance(30, false))
	require.Equal(t, StateEmergency, tr.Advance(10, false))
}

func TestUpwardTransitionRequiresStability(t *testing.T) {
	tr := NewTracker()
	tr.Advance(60, false) // Degraded
	require.Equal(t, StateDegraded, tr.Current)

	for i := 0; i < 99; i++ {
		require.Equal(t, StateDegraded, tr.Advance(80, false))
	}
	require.Equal(t, StateNormal, tr.Advance(80, false))
}

func TestBootstrapRecoveryTriggersAfterTenEpochsBelow50(t *testing.T) {
	tr := NewTracker()
	tr.Advance(80, false)
	for i := 0; i < 9; i++ {
		require.NotEqual(t, StateBootstrapRecovery, tr.Advance(40, false))
	}
	require.Equal(t, StateBootstrapRecovery, tr.Advance(40, false))
}

func TestBootstrapExitReadyRequiresAllConditions(t *testing.T) {
	require.False(t, BootstrapExitReady(1439, 60, 9500))
	require.False(t, BootstrapExitReady(1440, 40, 9500))
	require.False(t, BootstrapExitReady(1440, 60, 8000))
	require.True(t, BootstrapExitReady(1440, 60, 9000))
}

func TestGovernanceTimelockMultiplierDoublesInDegraded(t *testing.T) {
	require.EqualValues(t, 2, GovernanceTimelockMultiplier(StateDegraded))
	require.EqualValues(t, 1, GovernanceTimelockMultiplier(StateNormal))
}
