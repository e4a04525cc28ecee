package governance

import (
	"testing"

	"kratos/types"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeActionRoundTrip(t *testing.T) {
	cases := []Action{
		{Kind: ActionCreateProposal, ProposalType: types.ProposalExit, Payload: []byte("upgrade to v2")},
		{Kind: ActionCreateProposal, ProposalType: types.ProposalStandard, Payload: nil},
		{Kind: ActionVote, ProposalId: 42, Choice: types.VoteNo},
		{Kind: ActionCancel, ProposalId: 7},
		{Kind: ActionExecute, ProposalId: 1},
	}
	for _, want := range cases {
		got, err := DecodeAction(EncodeAction(want))
		require.NoError(t, err)
		require.Equal(t, want.Kind, got.Kind)
		require.Equal(t, want.ProposalId, got.ProposalId)
		require.Equal(t, want.Choice, got.Choice)
		if want.Kind == ActionCreateProposal {
			require.Equal(t, want.ProposalType, got.ProposalType)
			require.Equal(t, want.Payload, got.Payload)
		}
	}
}

func TestDecodeActionRejectsMalformedPayloads(t *testing.T) {
	_, err := DecodeAction(nil)
	require.Error(t, err)

	_, err = DecodeAction([]byte{byte(ActionVote), 1, 2, 3})
	require.Error(t, err)

	_, err = DecodeAction([]byte{0xFF})
	require.Error(t, err)
}
