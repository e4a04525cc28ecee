package bus

import (
	"context"
	"testing"
	"time"

	"kratos/types"

	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/p2p"
)

type fakePeer struct {
	id  p2p.ID
	got [][]byte
}

func (p *fakePeer) ID() p2p.ID { return p.id }
func (p *fakePeer) Send(chID byte, data []byte) bool {
	p.got = append(p.got, data)
	return true
}

func TestBroadcastBlockFansOutToRegisteredPeers(t *testing.T) {
	b := NewLocalBus(nil)
	a := &fakePeer{id: p2p.ID("peer-a")}
	c := &fakePeer{id: p2p.ID("peer-b")}
	b.RegisterPeer(a)
	b.RegisterPeer(c)

	block := &types.Block{Header: types.Header{Number: 5}}
	b.BroadcastBlock(block)

	require.Len(t, a.got, 1)
	require.Len(t, c.got, 1)
}

func TestDispatchFiresBlockReceivedListener(t *testing.T) {
	b := NewLocalBus(nil)
	peer := &fakePeer{id: p2p.ID("peer-a")}

	received := make(chan *types.Block, 1)
	b.OnBlockReceived("test", func(from p2p.ID, block *types.Block) {
		require.Equal(t, peer.ID(), from)
		received <- block
	})

	block := &types.Block{Header: types.Header{Number: 9}}
	b.Dispatch(BlockChannel, peer, &BlockMessage{Block: block})

	select {
	case got := <-received:
		require.Equal(t, types.BlockNumber(9), got.Header.Number)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for BlockReceived event")
	}
}

func TestDispatchDropsInvalidMessage(t *testing.T) {
	b := NewLocalBus(nil)
	peer := &fakePeer{id: p2p.ID("peer-a")}

	fired := make(chan struct{}, 1)
	b.OnBlockReceived("test", func(p2p.ID, *types.Block) { fired <- struct{}{} })

	b.Dispatch(BlockChannel, peer, &BlockMessage{Block: nil})

	select {
	case <-fired:
		t.Fatal("listener fired for an invalid message")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRequestBlocksDelegatesToInstalledRequester(t *testing.T) {
	b := NewLocalBus(nil)
	peer := &fakePeer{id: p2p.ID("peer-a")}
	want := []*types.Block{{Header: types.Header{Number: 1}}}

	b.SetBlockRequester(func(ctx context.Context, p Peer, from types.BlockNumber, count uint32) ([]*types.Block, error) {
		require.Equal(t, types.BlockNumber(3), from)
		require.Equal(t, uint32(10), count)
		return want, nil
	})

	got, err := b.RequestBlocks(context.Background(), peer, 3, 10)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestRequestBlocksRejectsOversizedBatch(t *testing.T) {
	b := NewLocalBus(nil)
	peer := &fakePeer{id: p2p.ID("peer-a")}
	_, err := b.RequestBlocks(context.Background(), peer, 0, 51)
	require.Error(t, err)
}
