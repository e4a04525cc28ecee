package slashing

import (
	"testing"

	"kratos/types"

	"github.com/stretchr/testify/require"
)

func TestSeverityOfMapping(t *testing.T) {
	require.Equal(t, SeverityCritical, SeverityOf(EventDoubleSign))
	require.Equal(t, SeverityCritical, SeverityOf(EventFinalityEquivocation))
	require.Equal(t, SeverityHigh, SeverityOf(EventArbitrationMisconduct))
	require.Equal(t, SeverityMedium, SeverityOf(EventLowParticipation))
	require.Equal(t, SeverityLow, SeverityOf(EventShortDowntime))
}

func TestApplyCriticalDebitsStakeAndUnbonding(t *testing.T) {
	vc := types.ValidatorCredits{Vote: 10, Uptime: 10, Arbitration: 10, Seniority: 10}
	stake := types.KRAT(1000)
	unbonding := []types.UnbondEntry{{Amount: types.KRAT(100), MatureEpoch: 5}}

	out := Apply(EventDoubleSign, 1, vc, stake, unbonding, 100)

	require.Equal(t, SeverityCritical, out.Severity)
	require.True(t, out.Stake.LessThan(stake))
	require.True(t, out.Unbonding[0].Amount.LessThan(types.KRAT(100)))
	require.EqualValues(t, 80, out.Reputation)
	require.EqualValues(t, 52, out.CooldownUntil)
	require.Less(t, out.VC.Total(), vc.Total())
}

func TestApplyLowSeverityNoStakeCut(t *testing.T) {
	vc := types.ValidatorCredits{Vote: 10}
	stake := types.KRAT(1000)
	out := Apply(EventShortDowntime, 1, vc, stake, nil, 100)
	require.Equal(t, stake.String(), out.Stake.String())
	require.EqualValues(t, 0, out.CooldownUntil)
}

func TestCriticalCounterDecay(t *testing.T) {
	vc := types.ValidatorCredits{CriticalSlashCount: 2, LastCriticalAtEpoch: 0}
	vc = DecayCriticalCounter(vc, 25)
	require.EqualValues(t, 2, vc.CriticalSlashCount)

	vc = DecayCriticalCounter(vc, 26)
	require.EqualValues(t, 1, vc.CriticalSlashCount)
}

func TestReputationClamps(t *testing.T) {
	require.EqualValues(t, 100, ReputationOnBlockProduced(100))
	require.EqualValues(t, 0, ReputationOnBlockMissed(0))
}
