// Package mempool implements the per-sender nonce-ordered pending
// transaction pool: bounded acceptance window, replace-by-fee, and
// state-aware contiguous-run selection.
package mempool

import (
	"sort"
	"sync"

	"kratos/primitives"
	"kratos/state"
	"kratos/types"

	lru "github.com/hashicorp/golang-lru"
	"github.com/tendermint/tendermint/libs/log"
)

// MaxGap is the width of the acceptance window above the sender's
// current on-chain nonce.
const MaxGap = 2

// ReplaceFactorBps is the minimum fee ratio (as basis points of the
// incumbent's fee) a replacement transaction must clear: 1.10x = 11000bps.
const ReplaceFactorBps = 11000

// seenCacheSize bounds the recently-seen-tx-hash cache Add consults
// to reject a re-submitted hash before any other check, backed
// by a real bounded LRU rather than a no-op.
const seenCacheSize = 100_000

// Pool is the mempool's public surface.
type Pool struct {
	mtx sync.RWMutex

	// bySender maps a sender to their pending transactions, keyed by
	// nonce, so replace-by-fee and contiguous-run selection are O(1)
	// per lookup instead of a linear scan.
	bySender map[primitives.AccountId]map[uint64]*types.SignedTransaction

	seen   *lru.Cache
	logger log.Logger
}

// New returns an empty pool.
func New(logger log.Logger) *Pool {
	cache, err := lru.New(seenCacheSize)
	if err != nil {
		// lru.New only errors on a non-positive size, a programmer
		// error in the constant above, never a runtime condition.
		panic(err)
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Pool{
		bySender: make(map[primitives.AccountId]map[uint64]*types.SignedTransaction),
		seen:     cache,
		logger:   logger,
	}
}

// Add validates the acceptance window and replace-by-fee rule and, if
// accepted, inserts stx. accountNonce is the sender's current on-chain
// nonce (state.Store.GetAccount(sender).Nonce).
func (p *Pool) Add(stx *types.SignedTransaction, accountNonce uint64) error {
	hash := stx.EnsureHash()
	if _, dup := p.seen.Get(hash); dup {
		return errAlreadySeen
	}

	p.mtx.Lock()
	defer p.mtx.Unlock()

	nonce := stx.Tx.Nonce
	if nonce < accountNonce || nonce > accountNonce+MaxGap {
		return errNonceOutOfWindow
	}

	perSender, ok := p.bySender[stx.Tx.Sender]
	if !ok {
		perSender = make(map[uint64]*types.SignedTransaction)
		p.bySender[stx.Tx.Sender] = perSender
	}

	if incumbent, exists := perSender[nonce]; exists {
		minFee, err := incumbent.Tx.Fee.MulUint64(ReplaceFactorBps)
		if err != nil {
			return errReplaceFeeTooLow
		}
		candidateFee, err := stx.Tx.Fee.MulUint64(10000)
		if err != nil || !candidateFee.GreaterOrEqual(minFee) {
			return errReplaceFeeTooLow
		}
		p.seen.Remove(*incumbent.Hash)
	}

	perSender[nonce] = stx
	p.seen.Add(hash, struct{}{})
	p.logger.Debug("mempool: accepted tx", "sender", stx.Tx.Sender.String(), "nonce", nonce)
	poolSize.Observe(float64(p.sizeLocked()))
	return nil
}

// SelectWithState returns, per sender, the longest contiguous ascending
// run of pending transactions starting at that sender's current
// on-chain nonce, up to limit transactions in total. Senders are
// visited in canonical account-id order for determinism.
func (p *Pool) SelectWithState(limit int, store state.Store) []*types.SignedTransaction {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	senders := make([]primitives.AccountId, 0, len(p.bySender))
	for s := range p.bySender {
		senders = append(senders, s)
	}
	sortAccountIds(senders)

	out := make([]*types.SignedTransaction, 0, limit)
	for _, sender := range senders {
		if len(out) >= limit {
			break
		}
		acc, _ := store.GetAccount(sender)
		expected := acc.Nonce
		perSender := p.bySender[sender]
		for len(out) < limit {
			stx, ok := perSender[expected]
			if !ok {
				break
			}
			out = append(out, stx)
			expected++
		}
	}
	return out
}

// RemoveIncluded drops each given transaction (matched by sender and
// nonce) from the pool and forgets its hash; author_removeTransaction
// uses it to remove a single pending transaction.
func (p *Pool) RemoveIncluded(committed []*types.SignedTransaction) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	for _, stx := range committed {
		perSender, ok := p.bySender[stx.Tx.Sender]
		if !ok {
			continue
		}
		if existing, ok := perSender[stx.Tx.Nonce]; ok {
			if existing.Hash != nil {
				p.seen.Remove(*existing.Hash)
			}
			delete(perSender, stx.Tx.Nonce)
		}
		if len(perSender) == 0 {
			delete(p.bySender, stx.Tx.Sender)
		}
	}
	poolSize.Observe(float64(p.sizeLocked()))
}

// Size returns the total number of pending transactions across every
// sender.
func (p *Pool) Size() int {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	return p.sizeLocked()
}

// sizeLocked is Size's body for callers already holding p.mtx.
func (p *Pool) sizeLocked() int {
	n := 0
	for _, perSender := range p.bySender {
		n += len(perSender)
	}
	return n
}

func sortAccountIds(ids []primitives.AccountId) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) < 0 })
}
