package validators

import (
	"testing"

	"kratos/types"

	"github.com/stretchr/testify/require"
)

func TestVoteCreditRespectsPerEpochLimit(t *testing.T) {
	var vc types.ValidatorCredits
	for i := 0; i < 3; i++ {
		var credited bool
		vc, credited = ApplyCredit(vc, CreditVote, 5, false)
		require.True(t, credited)
	}
	_, credited := ApplyCredit(vc, CreditVote, 5, false)
	require.False(t, credited)
}

func TestVoteCreditWindowSlides(t *testing.T) {
	var vc types.ValidatorCredits
	vc, _ = ApplyCredit(vc, CreditVote, 5, false)
	vc, _ = ApplyCredit(vc, CreditVote, 5, false)
	vc, _ = ApplyCredit(vc, CreditVote, 5, false)
	_, credited := ApplyCredit(vc, CreditVote, 5, false)
	require.False(t, credited)

	vc, credited = ApplyCredit(vc, CreditVote, 6, false)
	require.True(t, credited)
	require.EqualValues(t, 4, vc.Vote)
}

func TestBootstrapDoublesVoteAndUptimeNotArbitration(t *testing.T) {
	var vc types.ValidatorCredits
	vc, _ = ApplyCredit(vc, CreditVote, 1, true)
	require.EqualValues(t, 2, vc.Vote)

	vc, _ = ApplyCredit(vc, CreditArbitration, 1, true)
	require.EqualValues(t, 5, vc.Arbitration)
}

func TestRequiredStakeFloorsAtBootstrapFloor(t *testing.T) {
	nominal := types.KRAT(1_000_000)
	req := RequiredStake(nominal, 5000, true)
	require.Equal(t, types.KRAT(50_000).String(), req.String())
}

func TestRequiredStakePostBootstrapMaxReduction(t *testing.T) {
	nominal := types.KRAT(1_000_000)
	req := RequiredStake(nominal, 5000, false)
	require.Equal(t, types.KRAT(50_000).String(), req.String())
}

func TestRequiredStakeNoVCIsNominal(t *testing.T) {
	nominal := types.KRAT(100_000)
	req := RequiredStake(nominal, 0, false)
	require.Equal(t, nominal.String(), req.String())
}
