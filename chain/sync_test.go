package chain

import (
	"testing"
	"time"

	"kratos/primitives"
	"kratos/types"

	"github.com/stretchr/testify/require"
)

func newSyncTestEngine(t *testing.T) (*Engine, []primitives.KeyPair, types.GenesisDoc) {
	t.Helper()
	keys := []primitives.KeyPair{testKeyPair(t, 1), testKeyPair(t, 2), testKeyPair(t, 3)}
	genesis := testGenesis(t, keys)
	e, err := New(genesis, primitives.AccountId{0xFE}, nil)
	require.NoError(t, err)
	return e, keys, genesis
}

func produceOne(t *testing.T, e *Engine, keys []primitives.KeyPair, genesis types.GenesisDoc, slot types.SlotNumber, epoch types.EpochNumber, ts int64) *types.Block {
	t.Helper()
	leader := findLeader(t, e, keys, epoch, slot)
	block, err := e.Produce(leader, slot, epoch, ts)
	require.NoError(t, err)
	require.NotNil(t, block)
	require.NoError(t, e.StoreProduced(block))
	return block
}

func TestSyncBufferIgnoresStale(t *testing.T) {
	e, keys, genesis := newSyncTestEngine(t)
	block1 := produceOne(t, e, keys, genesis, 0, 0, genesis.GenesisTimeUnix+6)

	importer, _, _ := newSyncTestEngine(t)
	buf := NewSyncBuffer(importer)

	outcome, err := buf.Offer(block1, genesis.GenesisTimeUnix+6)
	require.NoError(t, err)
	require.Equal(t, OutcomeImported, outcome)

	// Re-offering the same (now-stale) block must be ignored, not
	// treated as an error or a ban-worthy event.
	outcome, err = buf.Offer(block1, genesis.GenesisTimeUnix+6)
	require.NoError(t, err)
	require.Equal(t, OutcomeIgnoredStale, outcome)
}

func TestSyncBufferBuffersAndDrainsOutOfOrder(t *testing.T) {
	producer, keys, genesis := newSyncTestEngine(t)
	block1 := produceOne(t, producer, keys, genesis, 0, 0, genesis.GenesisTimeUnix+6)
	block2 := produceOne(t, producer, keys, genesis, 1, 0, genesis.GenesisTimeUnix+12)

	importer, _, _ := newSyncTestEngine(t)
	buf := NewSyncBuffer(importer)
	buf.ObservePeerHeight(2)

	outcome, err := buf.Offer(block2, genesis.GenesisTimeUnix+12)
	require.NoError(t, err)
	require.Equal(t, OutcomeBuffered, outcome)
	require.Equal(t, 1, buf.BufferedCount())
	require.Equal(t, types.BlockNumber(0), importer.TipHeight())

	outcome, err = buf.Offer(block1, genesis.GenesisTimeUnix+6)
	require.NoError(t, err)
	require.Equal(t, OutcomeImported, outcome)

	require.Equal(t, types.BlockNumber(2), importer.TipHeight())
	require.Equal(t, 0, buf.BufferedCount())
}

func TestSyncBufferRejectsTooFarAhead(t *testing.T) {
	e, _, genesis := newSyncTestEngine(t)
	buf := NewSyncBuffer(e)

	farBlock := &types.Block{Header: types.Header{Number: types.BlockNumber(MaxBufferAhead + 2)}}
	outcome, err := buf.Offer(farBlock, genesis.GenesisTimeUnix)
	require.Error(t, err)
	require.Equal(t, OutcomeRejectedTooFarAhead, outcome)
}

func TestSyncRateLimiting(t *testing.T) {
	e, _, _ := newSyncTestEngine(t)
	buf := NewSyncBuffer(e)

	now := time.Now()
	require.True(t, buf.CanRequestFrom("peer-a", now))
	buf.RecordRequestSent("peer-a", now)
	require.False(t, buf.CanRequestFrom("peer-a", now.Add(100*time.Millisecond)))
	require.True(t, buf.CanRequestFrom("peer-a", now.Add(SyncRequestInterval)))

	for i := 0; i < MaxInFlightRequests-1; i++ {
		buf.RecordRequestSent("peer-a", now.Add(SyncRequestInterval*time.Duration(i+2)))
	}
	require.False(t, buf.CanRequestFrom("peer-a", now.Add(time.Hour)))

	buf.RecordResponse("peer-a")
	require.True(t, buf.CanRequestFrom("peer-a", now.Add(time.Hour)))
}
