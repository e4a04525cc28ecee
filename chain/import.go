package chain

import (
	"kratos/chainerrors"
	"kratos/consensus"
	"kratos/primitives"
	"kratos/state"
	"kratos/types"
	"kratos/validators"
)

// parentLinkage returns the local tip's hash, number, timestamp and
// slot, substituting the genesis document's own time and slot 0 when
// no block has been produced or imported yet (the tip is genesis
// itself, which is never stored as a Block).
func (e *Engine) parentLinkage() (hash primitives.Hash, number types.BlockNumber, timestamp uint64, slot types.SlotNumber) {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	if b, ok := e.blocksByNumber[e.tip]; ok {
		return b.Hash(), e.tip, uint64(b.Header.Timestamp), b.Header.Slot
	}
	return primitives.ZeroHash, 0, uint64(e.genesisTimeUnix), 0
}

// storeBlock records a block (produced locally or imported from a
// peer) into the block store and advances the tip. Callers must have
// already established that block.Header.Number == tip+1.
func (e *Engine) storeBlock(block *types.Block) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	h := block.Hash()
	e.blocksByNumber[block.Header.Number] = block
	e.blocksByHash[h] = block
	e.tip = block.Header.Number
}

// StoreProduced persists a block this node produced itself. It never
// re-executes or re-applies the block: Produce already ran the state
// transition and every deferred effect while building it, so this is
// pure persistence-and-broadcast bookkeeping (the store-produced-
// block path). State mutation for a block happens exactly once.
func (e *Engine) StoreProduced(block *types.Block) error {
	_, parentNumber, _, _ := e.parentLinkage()
	if block.Header.Number != parentNumber+1 {
		return chainerrors.Consistency("chain: produced block does not extend the tip it was built from", nil)
	}
	e.storeBlock(block)
	return nil
}

// Import runs the block-importer path for a block received
// from a peer, at wall-clock time now. It idempotently accepts a block
// already stored at the same (number, hash), and returns a banning
// error (chainerrors.ShouldBan) whenever the block is cryptographically
// or structurally invalid rather than merely out of order or stale —
// callers doing peer scoring should key off that, not off every
// non-nil error.
func (e *Engine) Import(block *types.Block, now int64) error {
	h := block.Header

	if existing, ok := e.BlockByNumber(h.Number); ok {
		if existing.Hash() == block.Hash() {
			return nil // idempotent re-delivery
		}
		return chainerrors.BlockInvalid("chain: conflicting block already stored at this height", true, nil)
	}

	parentHash, parentNumber, parentTimestamp, parentSlot := e.parentLinkage()
	if h.Number != parentNumber+1 {
		return chainerrors.BlockInvalid("chain: block does not directly extend the local tip", false, nil)
	}
	if h.ParentHash != parentHash {
		return chainerrors.BlockInvalid("chain: parent hash does not match local tip", true, nil)
	}

	if err := consensus.ValidateTimestamp(uint64(h.Timestamp), parentTimestamp, h.Slot, parentSlot, now); err != nil {
		return err
	}

	randomness := e.epochRandomnessFor(h.Epoch)
	active := e.Vals.Active()
	if !validators.IsLeader(randomness, h.Slot, active, h.Author) {
		return chainerrors.BlockInvalid("chain: block author is not the selected leader for its slot", true, nil)
	}
	if !block.VerifyAuthorSignature() {
		return chainerrors.BlockInvalid("chain: bad block author signature", true, nil)
	}

	// From here on the import tentatively mutates StateStore,
	// ValidatorSet, and the engine's own supply accumulator; a
	// state_root mismatch below must undo all three, since phase 2
	// already ran against the real ValidatorSet by the time the root is
	// known (Produce computes the root the same way, after applying
	// phase 2, so Import must match that order to ever agree).
	stateSnap := e.State.Snapshot()
	valSnap := e.Vals.Snapshot()
	supplyBefore := e.supply

	missed := e.skippedLeadersBetween(parentSlot, h.Slot, active)

	var totalFees types.Balance
	var deferredEffects []state.DeferredEffect
	execErr := e.State.Mutate(func(tx *state.Txn) error {
		proofs := make([]types.EquivocationProof, len(block.SlashingEvents))
		for i, ev := range block.SlashingEvents {
			proofs[i] = ev.Proof
		}
		e.applySlashingEvents(tx, proofs, h.Epoch)

		for i := range block.Txs {
			stx := &block.Txs[i]
			result, err := state.ApplyTransaction(tx, stx)
			if err != nil {
				return chainerrors.Wrap(err, "chain: block contains a transaction that fails to apply")
			}
			totalFees = totalFees.MustAdd(result.Fee)
			if result.Deferred != nil {
				deferredEffects = append(deferredEffects, *result.Deferred)
			}
		}
		e.distributeFeesAndReward(tx, totalFees, h.Author, h.Epoch)
		e.creditBlockParticipants(tx, h.Author, missed, h.Epoch, types.IsBootstrapEpoch(h.Epoch))
		if crossesEpochBoundary(parentSlot, h.Slot) {
			e.AdvanceEpoch(tx, h.Epoch)
		}
		return nil
	})
	if execErr != nil {
		// Mutate discarded its own overlay already; distributeFeesAndReward
		// never ran (it follows the failing transaction loop), so supply
		// is untouched too. Restore it anyway to stay correct if that
		// ordering ever changes.
		e.supply = supplyBefore
		return chainerrors.BlockInvalid("chain: block execution failed", true, execErr)
	}
	e.absorbSlashedProofs(block.SlashingEvents)

	e.applyDeferredEffects(deferredEffects, h.Number, h.Epoch, h.Timestamp)

	computedRoot := e.State.ComputeStateRoot(h.Number, e.Params.ChainId, e.Vals.All())
	if computedRoot != h.StateRoot {
		e.State.Restore(stateSnap)
		e.Vals.Restore(valSnap)
		e.supply = supplyBefore
		return chainerrors.BlockInvalid("chain: computed state root does not match header.state_root", true, nil)
	}

	e.storeBlock(block)
	return nil
}
