package chain

import (
	"sync"
	"time"

	"kratos/chainerrors"
	"kratos/types"
)

// MaxBufferAhead bounds how far past the local tip an out-of-order
// block may be buffered rather than rejected outright.
const MaxBufferAhead = 100

// MaxSyncBatchSize is the largest block-range request a peer will
// honor in one response.
const MaxSyncBatchSize = 50

// SyncRequestInterval and MaxInFlightRequests bound how aggressively
// this node pulls blocks from any single peer.
const (
	SyncRequestInterval = 500 * time.Millisecond
	MaxInFlightRequests = 3
)

// Outcome classifies what Offer did with a block, for the caller (the
// bus reactor) to decide whether to keep requesting more or back off.
type Outcome int

const (
	OutcomeImported Outcome = iota
	OutcomeIgnoredStale
	OutcomeBuffered
	OutcomeRejectedTooFarAhead
	OutcomeRejectedInvalid
)

// SyncBuffer holds blocks that arrived out of order and the per-peer
// request bookkeeping for sync rate limiting. It does not itself speak
// to peers; the bus reactor calls Offer as blocks arrive and consults
// CanRequestFrom/RecordRequestSent/RecordResponse before issuing its
// own range requests. Genesis exchange (the gate before any block
// is admitted) happens one layer up, before an Engine — which requires
// a validated GenesisDoc to construct — exists at all; by the time a
// SyncBuffer wraps a live Engine, that gate has already passed.
type SyncBuffer struct {
	mtx sync.Mutex

	engine *Engine

	buffered  map[types.BlockNumber]*types.Block
	bestKnown types.BlockNumber

	peers map[string]*peerState
}

type peerState struct {
	lastRequestAt time.Time
	inFlight      int
}

// NewSyncBuffer wraps engine with the out-of-order buffer and sync
// rate limiter.
func NewSyncBuffer(engine *Engine) *SyncBuffer {
	return &SyncBuffer{
		engine:   engine,
		buffered: make(map[types.BlockNumber]*types.Block),
		peers:    make(map[string]*peerState),
	}
}

// ObservePeerHeight folds a peer-advertised height into best_known, the
// ceiling past which an arriving block is rejected rather than
// buffered.
func (b *SyncBuffer) ObservePeerHeight(height types.BlockNumber) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	if height > b.bestKnown {
		b.bestKnown = height
	}
}

// Offer applies the buffer-admission rule to one arriving block and, on
// an immediate import, drains every now-contiguous buffered successor.
// now is the importing node's wall-clock time, threaded through to
// Engine.Import's timestamp check.
func (b *SyncBuffer) Offer(block *types.Block, now int64) (Outcome, error) {
	number := block.Header.Number

	b.mtx.Lock()
	tip := b.engine.TipHeight()
	if number <= tip {
		b.mtx.Unlock()
		return OutcomeIgnoredStale, nil
	}
	if number > tip+1 {
		if number > b.bestKnown+MaxBufferAhead {
			b.mtx.Unlock()
			return OutcomeRejectedTooFarAhead, chainerrors.BlockInvalid("chain: block too far ahead of the local tip to buffer", false, nil)
		}
		b.buffered[number] = block
		if number > b.bestKnown {
			b.bestKnown = number
		}
		b.mtx.Unlock()
		return OutcomeBuffered, nil
	}
	b.mtx.Unlock()

	if err := b.engine.Import(block, now); err != nil {
		return OutcomeRejectedInvalid, err
	}
	b.drain(now)
	return OutcomeImported, nil
}

// drain imports every buffered block whose number has become the new
// tip+1, in order, stopping at the first gap or the first import
// failure (a failure here means a buffered block was invalid all
// along; it is discarded rather than retried).
func (b *SyncBuffer) drain(now int64) {
	for {
		b.mtx.Lock()
		next := b.engine.TipHeight() + 1
		block, ok := b.buffered[next]
		if !ok {
			b.mtx.Unlock()
			return
		}
		delete(b.buffered, next)
		b.mtx.Unlock()

		if err := b.engine.Import(block, now); err != nil {
			return
		}
	}
}

// BufferedCount reports how many out-of-order blocks are currently
// held, for metrics/tests.
func (b *SyncBuffer) BufferedCount() int {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return len(b.buffered)
}

// CanRequestFrom reports whether a new sync request may be sent to
// peer right now, honoring the 500ms spacing and 3-in-flight caps.
func (b *SyncBuffer) CanRequestFrom(peer string, now time.Time) bool {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	p, ok := b.peers[peer]
	if !ok {
		return true
	}
	if p.inFlight >= MaxInFlightRequests {
		return false
	}
	return now.Sub(p.lastRequestAt) >= SyncRequestInterval
}

// RecordRequestSent marks a request as dispatched to peer, occupying
// one of its in-flight slots.
func (b *SyncBuffer) RecordRequestSent(peer string, now time.Time) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	p, ok := b.peers[peer]
	if !ok {
		p = &peerState{}
		b.peers[peer] = p
	}
	p.lastRequestAt = now
	p.inFlight++
}

// RecordResponse frees one in-flight slot for peer, called whether the
// response was a success, an error, or a timeout.
func (b *SyncBuffer) RecordResponse(peer string) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	if p, ok := b.peers[peer]; ok && p.inFlight > 0 {
		p.inFlight--
	}
}
