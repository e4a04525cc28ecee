package governance

import (
	"encoding/binary"

	"kratos/chainerrors"
	"kratos/types"
)

// ActionKind tags the governance operation carried inside a
// CallGovernance transaction's opaque payload. The core transaction
// executor never looks past the kind byte; decoding the rest happens
// only here, at deferred-application time, so Call.Encode's signed
// bytes stay a flat []byte as far as the executor is concerned.
type ActionKind uint8

const (
	ActionCreateProposal ActionKind = iota
	ActionVote
	ActionCancel
	ActionExecute
)

// Action is the decoded form of a CallGovernance payload.
type Action struct {
	Kind         ActionKind
	ProposalType types.ProposalType // ActionCreateProposal
	Payload      []byte             // ActionCreateProposal
	ProposalId   uint64             // ActionVote, ActionCancel, ActionExecute
	Choice       types.VoteChoice   // ActionVote
}

// EncodeAction serializes a into the byte form Call.OpaquePayload
// carries. Layout: kind byte, then kind-specific fields with a fixed
// 8-byte big-endian proposal id where one is needed.
func EncodeAction(a Action) []byte {
	switch a.Kind {
	case ActionCreateProposal:
		out := make([]byte, 2+len(a.Payload))
		out[0] = byte(a.Kind)
		out[1] = byte(a.ProposalType)
		copy(out[2:], a.Payload)
		return out
	case ActionVote:
		out := make([]byte, 10)
		out[0] = byte(a.Kind)
		binary.BigEndian.PutUint64(out[1:9], a.ProposalId)
		out[9] = byte(a.Choice)
		return out
	case ActionCancel, ActionExecute:
		out := make([]byte, 9)
		out[0] = byte(a.Kind)
		binary.BigEndian.PutUint64(out[1:9], a.ProposalId)
		return out
	default:
		return []byte{byte(a.Kind)}
	}
}

// DecodeAction parses a CallGovernance payload produced by EncodeAction.
func DecodeAction(b []byte) (Action, error) {
	if len(b) == 0 {
		return Action{}, chainerrors.InputInvalid("empty governance payload", nil)
	}
	kind := ActionKind(b[0])
	switch kind {
	case ActionCreateProposal:
		if len(b) < 2 {
			return Action{}, chainerrors.InputInvalid("truncated governance payload", nil)
		}
		var payload []byte
		if len(b) > 2 {
			payload = make([]byte, len(b)-2)
			copy(payload, b[2:])
		}
		return Action{Kind: kind, ProposalType: types.ProposalType(b[1]), Payload: payload}, nil
	case ActionVote:
		if len(b) != 10 {
			return Action{}, chainerrors.InputInvalid("malformed vote payload", nil)
		}
		return Action{Kind: kind, ProposalId: binary.BigEndian.Uint64(b[1:9]), Choice: types.VoteChoice(b[9])}, nil
	case ActionCancel, ActionExecute:
		if len(b) != 9 {
			return Action{}, chainerrors.InputInvalid("malformed proposal-id payload", nil)
		}
		return Action{Kind: kind, ProposalId: binary.BigEndian.Uint64(b[1:9])}, nil
	default:
		return Action{}, chainerrors.InputInvalid("unknown governance action kind", nil)
	}
}
