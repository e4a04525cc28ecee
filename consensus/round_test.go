package consensus

import (
	"testing"
	"time"

	"kratos/primitives"
	"kratos/types"

	"github.com/stretchr/testify/require"
)

func voteFrom(kp primitives.KeyPair, kind types.VoteKind, round uint32, number types.BlockNumber, hash primitives.Hash) types.FinalityVote {
	v := types.FinalityVote{Kind: kind, TargetNumber: number, TargetHash: hash, Round: round, Voter: kp.PublicKey}
	v.Signature = primitives.Sign(kp.PrivateKey, primitives.DomainFinality, v.SignBytes())
	return v
}

func TestHasSupermajorityFloorBased(t *testing.T) {
	require.True(t, HasSupermajority(2, 3))  // 66.6% >= 66
	require.False(t, HasSupermajority(1, 3)) // 33% < 66
}

func TestRoundAdvancesThroughPrevoteAndPrecommit(t *testing.T) {
	target := primitives.SumHash([]byte("block-1"))
	round := NewRound(0, 1, target, 0, time.Now())

	kps := make([]primitives.KeyPair, 3)
	for i := range kps {
		kp, err := primitives.GenerateKeyPair()
		require.NoError(t, err)
		kps[i] = kp
	}

	for _, kp := range kps[:2] {
		_, just, err := round.AddVote(voteFrom(kp, types.VotePrevote, 0, 1, target), 3)
		require.NoError(t, err)
		require.Nil(t, just)
	}
	require.Equal(t, StepPrecommitting, round.Step)

	for i, kp := range kps[:2] {
		_, just, err := round.AddVote(voteFrom(kp, types.VotePrecommit, 0, 1, target), 3)
		require.NoError(t, err)
		if i == 1 {
			require.NotNil(t, just)
		}
	}
	require.Equal(t, StepCompleted, round.Step)
}

func TestRoundTimesOut(t *testing.T) {
	target := primitives.SumHash([]byte("block-1"))
	round := NewRound(0, 1, target, 0, time.Now().Add(-10*time.Second))
	require.True(t, round.CheckTimeout(time.Now()))
	require.Equal(t, StepFailed, round.Step)
}

func TestEquivocationDetected(t *testing.T) {
	kp, err := primitives.GenerateKeyPair()
	require.NoError(t, err)

	targetA := primitives.SumHash([]byte("a"))
	targetB := primitives.SumHash([]byte("b"))
	round := NewRound(0, 1, targetA, 0, time.Now())

	_, _, err = round.AddVote(voteFrom(kp, types.VotePrevote, 0, 1, targetA), 5)
	require.NoError(t, err)

	equiv, _, err := round.AddVote(voteFrom(kp, types.VotePrevote, 0, 1, targetB), 5)
	require.NoError(t, err)
	require.NotNil(t, equiv)
	require.Equal(t, kp.PublicKey, equiv.Voter)
}
