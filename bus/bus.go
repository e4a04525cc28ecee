// Package bus models the consensus core's message bus: the P2P
// transport is out of scope for the consensus core (it is supplied
// externally), but the shape of what that transport must offer is
// not — broadcast_block, broadcast_finality_vote, request_blocks,
// request_genesis, and the peer events that feed them back in.
// Channel IDs are byte constants, messages implement ValidateBasic,
// dispatch is by channel ID, and broadcast subscription is
// EventSwitch-driven.
package bus

import (
	"context"
	"fmt"

	"kratos/primitives"
	"kratos/types"

	"github.com/tendermint/tendermint/p2p"
)

// Channel IDs, byte-valued like p2p.ChannelDescriptor IDs.
const (
	BlockChannel        = byte(0x30)
	VoteChannel         = byte(0x31)
	JustificationChannel = byte(0x32)
	SyncChannel         = byte(0x33)
)

// Event names published on the shared EventSwitch: block/vote
// arrival plus the remaining peer events.
const (
	EventBlockReceived        = "BlockReceived"
	EventVoteReceived         = "VoteReceived"
	EventJustificationReceived = "JustificationReceived"
	EventSyncResponse         = "SyncResponse"
)

// Message is anything carried over a Bus channel.
type Message interface {
	ValidateBasic() error
}

type BlockMessage struct{ Block *types.Block }

func (m *BlockMessage) ValidateBasic() error {
	if m.Block == nil {
		return fmt.Errorf("bus: nil block")
	}
	return nil
}
func (m *BlockMessage) String() string { return fmt.Sprintf("[Block #%d]", m.Block.Header.Number) }

type FinalityVoteMessage struct{ Vote *types.FinalityVote }

func (m *FinalityVoteMessage) ValidateBasic() error {
	if m.Vote == nil {
		return fmt.Errorf("bus: nil finality vote")
	}
	return nil
}
func (m *FinalityVoteMessage) String() string {
	return fmt.Sprintf("[FinalityVote round=%d #%d]", m.Vote.Round, m.Vote.TargetNumber)
}

// BlockRequest asks a peer for a contiguous range of blocks, capped at
// MaxSyncBatchSize.
type BlockRequest struct {
	FromHeight types.BlockNumber
	Count      uint32
}

func (m *BlockRequest) ValidateBasic() error {
	const maxBatch = 50
	if m.Count == 0 || m.Count > maxBatch {
		return fmt.Errorf("bus: block request count %d out of [1,%d]", m.Count, maxBatch)
	}
	return nil
}

type BlockResponse struct{ Blocks []*types.Block }

func (m *BlockResponse) ValidateBasic() error { return nil }

// GenesisResponse is the request_genesis reply shape.
type GenesisResponse struct {
	Hash            primitives.Hash
	Block           *types.Block
	ChainName       string
	ProtocolVersion uint32
}

func (m *GenesisResponse) ValidateBasic() error {
	if m.Block == nil {
		return fmt.Errorf("bus: nil genesis block")
	}
	return nil
}

// Peer is the subset of tendermint/p2p.Peer the bus needs: an
// addressable send sink. Real deployments hand in a p2p.Peer directly;
// tests and single-process wiring hand in a LocalBus-registered peer.
type Peer interface {
	ID() p2p.ID
	Send(chID byte, data []byte) bool
}

// Bus is the transport-agnostic surface the consensus core requires.
// Broadcasts are fire-and-forget; the two requests are synchronous
// round trips scoped by ctx, since the sync layer (chain.SyncBuffer)
// rate-limits and times these out rather than blocking forever.
type Bus interface {
	BroadcastBlock(block *types.Block)
	BroadcastFinalityVote(vote *types.FinalityVote)
	RequestBlocks(ctx context.Context, peer Peer, fromHeight types.BlockNumber, count uint32) ([]*types.Block, error)
	RequestGenesis(ctx context.Context, peer Peer) (*GenesisResponse, error)

	// OnBlockReceived etc. register peer-event listeners via
	// eventSwitch.AddListenerForEvent-style subscription.
	OnBlockReceived(listenerID string, fn func(peer p2p.ID, block *types.Block))
	OnVoteReceived(listenerID string, fn func(peer p2p.ID, vote *types.FinalityVote))
	OnJustificationReceived(listenerID string, fn func(peer p2p.ID, justification *types.FinalityJustification))
	OnSyncResponse(listenerID string, fn func(peer p2p.ID, blocks []*types.Block))

	// Dispatch feeds one inbound wire message into the bus via a
	// channel-ID switch. A real p2p.Reactor calls this from its
	// Receive; tests call it directly to simulate an inbound peer
	// message.
	Dispatch(chID byte, peer Peer, msg Message)
}
