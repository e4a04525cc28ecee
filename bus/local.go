package bus

import (
	"context"
	"fmt"

	"kratos/types"

	"github.com/tendermint/tendermint/libs/cmap"
	"github.com/tendermint/tendermint/libs/events"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/p2p"
)

// LocalBus is a Bus with no real network transport: broadcasts fan out
// to whatever Peers have been registered in-process, and requests are
// served synchronously by a caller-supplied responder. It is what a
// single-process test harness (or a future real reactor wrapping a
// genuine p2p.Switch) plugs into ChainEngine in place of the network.
// Uses cmap.CMap for the peer registry, events.EventSwitch for the
// broadcast/listener pattern, and byte channel IDs for dispatch.
type LocalBus struct {
	logger log.Logger
	peers  *cmap.CMap
	sw     events.EventSwitch

	blockRequester   func(ctx context.Context, peer Peer, from types.BlockNumber, count uint32) ([]*types.Block, error)
	genesisRequester func(ctx context.Context, peer Peer) (*GenesisResponse, error)
}

func NewLocalBus(logger log.Logger) *LocalBus {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	sw := events.NewEventSwitch()
	sw.SetLogger(logger.With("module", "bus"))
	_ = sw.Start()
	return &LocalBus{logger: logger, peers: cmap.NewCMap(), sw: sw}
}

// RegisterPeer adds a Peer to the broadcast fan-out set.
func (b *LocalBus) RegisterPeer(peer Peer) { b.peers.Set(string(peer.ID()), peer) }

func (b *LocalBus) RemovePeer(id p2p.ID) { b.peers.Delete(string(id)) }

// SetBlockRequester/SetGenesisRequester install the synchronous
// responders RequestBlocks/RequestGenesis delegate to; a real reactor
// would instead send a request message and block on the matching
// response event, but a single process has no round trip to make.
func (b *LocalBus) SetBlockRequester(fn func(ctx context.Context, peer Peer, from types.BlockNumber, count uint32) ([]*types.Block, error)) {
	b.blockRequester = fn
}

func (b *LocalBus) SetGenesisRequester(fn func(ctx context.Context, peer Peer) (*GenesisResponse, error)) {
	b.genesisRequester = fn
}

func (b *LocalBus) broadcast(chID byte, payload []byte) {
	for _, raw := range b.peers.Values() {
		peer := raw.(Peer)
		peer.Send(chID, payload)
	}
}

func (b *LocalBus) BroadcastBlock(block *types.Block) {
	b.broadcast(BlockChannel, []byte(fmt.Sprintf("block:%d", block.Header.Number)))
}

func (b *LocalBus) BroadcastFinalityVote(vote *types.FinalityVote) {
	b.broadcast(VoteChannel, []byte(fmt.Sprintf("vote:%d:%d", vote.Round, vote.TargetNumber)))
}

func (b *LocalBus) RequestBlocks(ctx context.Context, peer Peer, fromHeight types.BlockNumber, count uint32) ([]*types.Block, error) {
	req := &BlockRequest{FromHeight: fromHeight, Count: count}
	if err := req.ValidateBasic(); err != nil {
		return nil, err
	}
	if b.blockRequester == nil {
		return nil, fmt.Errorf("bus: no block requester installed")
	}
	return b.blockRequester(ctx, peer, fromHeight, count)
}

func (b *LocalBus) RequestGenesis(ctx context.Context, peer Peer) (*GenesisResponse, error) {
	if b.genesisRequester == nil {
		return nil, fmt.Errorf("bus: no genesis requester installed")
	}
	return b.genesisRequester(ctx, peer)
}

func (b *LocalBus) OnBlockReceived(listenerID string, fn func(peer p2p.ID, block *types.Block)) {
	b.sw.AddListenerForEvent(listenerID, EventBlockReceived, func(data events.EventData) {
		ev := data.(blockReceivedEvent)
		fn(ev.peer, ev.block)
	})
}

func (b *LocalBus) OnVoteReceived(listenerID string, fn func(peer p2p.ID, vote *types.FinalityVote)) {
	b.sw.AddListenerForEvent(listenerID, EventVoteReceived, func(data events.EventData) {
		ev := data.(voteReceivedEvent)
		fn(ev.peer, ev.vote)
	})
}

func (b *LocalBus) OnJustificationReceived(listenerID string, fn func(peer p2p.ID, justification *types.FinalityJustification)) {
	b.sw.AddListenerForEvent(listenerID, EventJustificationReceived, func(data events.EventData) {
		ev := data.(justificationReceivedEvent)
		fn(ev.peer, ev.justification)
	})
}

func (b *LocalBus) OnSyncResponse(listenerID string, fn func(peer p2p.ID, blocks []*types.Block)) {
	b.sw.AddListenerForEvent(listenerID, EventSyncResponse, func(data events.EventData) {
		ev := data.(syncResponseEvent)
		fn(ev.peer, ev.blocks)
	})
}

type blockReceivedEvent struct {
	peer  p2p.ID
	block *types.Block
}
type voteReceivedEvent struct {
	peer p2p.ID
	vote *types.FinalityVote
}
type justificationReceivedEvent struct {
	peer          p2p.ID
	justification *types.FinalityJustification
}
type syncResponseEvent struct {
	peer   p2p.ID
	blocks []*types.Block
}

// Dispatch is what a real Reactor.Receive would call after decoding an
// inbound wire message, and what tests call directly to simulate one
// arriving from a peer.
func (b *LocalBus) Dispatch(chID byte, peer Peer, msg Message) {
	if err := msg.ValidateBasic(); err != nil {
		b.logger.Error("bus: dropping invalid message", "chID", chID, "peer", peer.ID(), "err", err)
		return
	}
	switch chID {
	case BlockChannel:
		if bm, ok := msg.(*BlockMessage); ok {
			b.sw.FireEvent(EventBlockReceived, blockReceivedEvent{peer: peer.ID(), block: bm.Block})
		}
	case VoteChannel:
		if vm, ok := msg.(*FinalityVoteMessage); ok {
			b.sw.FireEvent(EventVoteReceived, voteReceivedEvent{peer: peer.ID(), vote: vm.Vote})
		}
	case JustificationChannel:
		if jm, ok := msg.(*JustificationMessage); ok {
			b.sw.FireEvent(EventJustificationReceived, justificationReceivedEvent{peer: peer.ID(), justification: jm.Justification})
		}
	case SyncChannel:
		if rm, ok := msg.(*BlockResponse); ok {
			b.sw.FireEvent(EventSyncResponse, syncResponseEvent{peer: peer.ID(), blocks: rm.Blocks})
		}
	default:
		b.logger.Error("bus: unknown channel", "chID", chID)
	}
}

// JustificationMessage carries a finality justification over
// JustificationChannel.
type JustificationMessage struct{ Justification *types.FinalityJustification }

func (m *JustificationMessage) ValidateBasic() error {
	if m.Justification == nil {
		return fmt.Errorf("bus: nil justification")
	}
	return nil
}
