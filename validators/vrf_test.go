package validators

import (
	"testing"

	"kratos/primitives"
	"kratos/types"

	"github.com/stretchr/testify/require"
)

func TestSelectLeaderDeterministic(t *testing.T) {
	active := []types.Validator{
		types.NewValidator(mustId(t, 1), types.KRAT(1000), 0, false),
		types.NewValidator(mustId(t, 2), types.KRAT(2000), 0, false),
		types.NewValidator(mustId(t, 3), types.KRAT(500), 0, false),
	}
	seed := primitives.SumHash([]byte("epoch-seed"))

	l1, ok1 := SelectLeader(seed, 42, active)
	l2, ok2 := SelectLeader(seed, 42, active)
	require.True(t, ok1)
	require.True(t, ok2)
	require.Equal(t, l1.Id, l2.Id)
}

func TestZeroStakeBelowBootstrapMinVCHasNoWeight(t *testing.T) {
	v := types.NewValidator(mustId(t, 1), types.ZeroBalance, 0, true)
	require.Equal(t, 0.0, Weight(v))

	v.VC.Vote = 100
	require.Greater(t, Weight(v), 0.0)
}

func TestReputationZeroDisqualifies(t *testing.T) {
	v := types.NewValidator(mustId(t, 1), types.KRAT(100), 0, false)
	v.Reputation = 0
	require.Equal(t, 0.0, Weight(v))
}

func TestExcludedClockHealthZeroesWeight(t *testing.T) {
	v := types.NewValidator(mustId(t, 1), types.KRAT(100), 0, false)
	v.PriorityModifierBps = 0
	require.Equal(t, 0.0, Weight(v))
}
