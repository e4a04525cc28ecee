package validators

import (
	"testing"

	"kratos/primitives"
	"kratos/types"

	"github.com/stretchr/testify/require"
)

func mustId(t *testing.T, b byte) primitives.AccountId {
	t.Helper()
	var id primitives.AccountId
	id[0] = b
	return id
}

func TestSetAddUpdateTotalStake(t *testing.T) {
	s := NewSet()
	a := mustId(t, 1)
	b := mustId(t, 2)

	s.Add(types.NewValidator(a, types.KRAT(100), 0, false))
	s.Add(types.NewValidator(b, types.KRAT(50), 0, false))
	require.Equal(t, types.KRAT(150).String(), s.TotalStake().String())

	v, ok := s.Get(a)
	require.True(t, ok)
	v.Stake = types.KRAT(200)
	s.Update(v)
	require.Equal(t, types.KRAT(250).String(), s.TotalStake().String())
}

func TestSetActiveExcludesJailed(t *testing.T) {
	s := NewSet()
	a := mustId(t, 1)
	b := mustId(t, 2)
	va := types.NewValidator(a, types.KRAT(10), 0, false)
	vb := types.NewValidator(b, types.KRAT(10), 0, false)
	vb.Status = types.StatusJailed
	s.Add(va)
	s.Add(vb)

	require.Len(t, s.Active(), 1)
	require.Equal(t, 2, len(s.All()))
}

func TestBootstrapVotingAdmitsOnThirdVoter(t *testing.T) {
	s := NewSet()
	v1, v2, v3 := mustId(t, 1), mustId(t, 2), mustId(t, 3)
	candidate := mustId(t, 9)

	for _, id := range []primitives.AccountId{v1, v2, v3} {
		s.Add(types.NewValidator(id, types.KRAT(10), 0, true))
	}

	require.True(t, s.ProposeEarlyValidator(v1, candidate, 1))
	admitted, ok := s.VoteEarlyValidator(v2, candidate)
	require.True(t, ok)
	require.False(t, admitted)

	admitted, ok = s.VoteEarlyValidator(v3, candidate)
	require.True(t, ok)
	require.True(t, admitted)

	_, stillPending := s.CandidateVotes(candidate)
	require.False(t, stillPending)
}

func TestBootstrapVotingRejectsDuplicateVoter(t *testing.T) {
	s := NewSet()
	v1, v2 := mustId(t, 1), mustId(t, 2)
	candidate := mustId(t, 9)
	s.Add(types.NewValidator(v1, types.KRAT(10), 0, true))
	s.Add(types.NewValidator(v2, types.KRAT(10), 0, true))

	require.True(t, s.ProposeEarlyValidator(v1, candidate, 1))
	_, ok := s.VoteEarlyValidator(v1, candidate)
	require.False(t, ok)
}

func TestDiscardPendingCandidatesClearsPool(t *testing.T) {
	s := NewSet()
	v1 := mustId(t, 1)
	candidate := mustId(t, 9)
	s.Add(types.NewValidator(v1, types.KRAT(10), 0, true))
	s.ProposeEarlyValidator(v1, candidate, 1)

	s.DiscardPendingCandidates()
	require.Empty(t, s.PendingCandidates())
}
