package chain

import (
	"kratos/chainerrors"
	"kratos/primitives"
	"kratos/state"
	"kratos/types"
	"kratos/validators"
)

// txExecLimit bounds how many mempool transactions one block includes.
const txExecLimit = 5000

// epochRandomnessFor implements epoch_randomness(E) = H(first_block_of_epoch(E-1));
// epoch_randomness(0) is the zero hash.
func (e *Engine) epochRandomnessFor(epoch types.EpochNumber) primitives.Hash {
	if epoch == 0 {
		return primitives.ZeroHash
	}
	firstSlot := types.FirstSlotOfEpoch(epoch - 1)
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	for n := types.BlockNumber(0); n <= e.tip; n++ {
		b, ok := e.blocksByNumber[n]
		if ok && b.Header.Slot >= firstSlot {
			return b.Hash()
		}
	}
	return primitives.ZeroHash
}

// Produce runs the block-producer path for candidate as the
// slot leader at (slot, epoch). Returns nil, nil if candidate is not
// the selected leader for this slot.
func (e *Engine) Produce(candidate primitives.KeyPair, slot types.SlotNumber, epoch types.EpochNumber, timestampUnix int64) (*types.Block, error) {
	randomness := e.epochRandomnessFor(epoch)
	active := e.Vals.Active()
	if !validators.IsLeader(randomness, slot, active, candidate.PublicKey) {
		return nil, nil
	}

	parent, parentNumber, _, parentSlot := e.parentLinkage()
	selected := e.Pool.SelectWithState(txExecLimit, e.State)

	pendingProofs := e.drainPendingSlashes()
	missed := e.skippedLeadersBetween(parentSlot, slot, active)

	stxs := make(types.Txs, 0, len(selected))
	var totalFees types.Balance
	var deferredEffects []state.DeferredEffect
	var slashEvents []types.SlashingEvent

	err := e.State.Mutate(func(tx *state.Txn) error {
		slashEvents = e.applySlashingEvents(tx, pendingProofs, epoch)

		for _, stx := range selected {
			result, err := state.ApplyTransaction(tx, stx)
			if err != nil {
				continue // drop invalid tx from the block, not the whole batch
			}
			totalFees = totalFees.MustAdd(result.Fee)
			stxs = append(stxs, *stx)
			if result.Deferred != nil {
				deferredEffects = append(deferredEffects, *result.Deferred)
			}
		}
		e.distributeFeesAndReward(tx, totalFees, candidate.PublicKey, epoch)
		e.creditBlockParticipants(tx, candidate.PublicKey, missed, epoch, types.IsBootstrapEpoch(epoch))
		if crossesEpochBoundary(parentSlot, slot) {
			e.AdvanceEpoch(tx, epoch)
		}
		return nil
	})
	if err != nil {
		return nil, chainerrors.Consistency("chain: produce execution failed", err)
	}

	blockNumber := parentNumber + 1

	// Phase 2: apply validator-set effects in a second, immediately
	// following write scope. Produce never straddles a single Mutate
	// call across phases because nothing else can observe the
	// intermediate state between them (no concurrent writer exists).
	e.applyDeferredEffects(deferredEffects, blockNumber, epoch, timestampUnix)

	header := types.Header{
		Number:           blockNumber,
		ParentHash:       parent,
		TransactionsRoot: stxs.MerkleRoot(),
		Timestamp:        timestampUnix,
		Epoch:            epoch,
		Slot:             slot,
		Author:           candidate.PublicKey,
	}
	header.StateRoot = e.State.ComputeStateRoot(header.Number, e.Params.ChainId, e.Vals.All())
	header.Signature = primitives.Sign(candidate.PrivateKey, primitives.DomainBlock, header.SignBytes())

	return &types.Block{Header: header, Txs: stxs, SlashingEvents: slashEvents}, nil
}

// distributeFeesAndReward mints the block reward entirely to producer
// (emission is never burned or taxed) and separately splits
// totalFees 50/10/30/10 across the producer, the last justification's
// voters (or the treasury if none exist yet), the burn, and the
// treasury.
func (e *Engine) distributeFeesAndReward(tx *state.Txn, totalFees types.Balance, producer primitives.AccountId, epoch types.EpochNumber) {
	reward := epochBoundedReward(e.supply, e.Security.Current, types.IsBootstrapEpoch(epoch))
	e.supply = e.supply.MustAdd(reward)
	credit(tx, producer, reward)

	producerShare := totalFees.MulBasisPoints(e.Params.FeeProducerBps)
	votersShare := totalFees.MulBasisPoints(e.Params.FeeVotersBps)
	burnShare := totalFees.MulBasisPoints(e.Params.FeeBurnBps)
	treasuryShare := totalFees.MulBasisPoints(e.Params.FeeTreasuryBps)

	credit(tx, producer, producerShare)

	voters := e.currentFinalityVoters()
	if len(voters) == 0 {
		treasuryShare = treasuryShare.MustAdd(votersShare)
	} else {
		perVoter := votersShare.DivUint64(uint64(len(voters)))
		for _, v := range voters {
			credit(tx, v, perVoter)
		}
	}
	credit(tx, e.treasury, treasuryShare)

	// Burn: removed from supply, not credited to any account. Only
	// transaction fees are ever burned; the block reward is minted
	// straight to the producer with no cut taken.
	e.supply, _ = e.supply.Sub(burnShare)
}

func (e *Engine) currentFinalityVoters() []primitives.AccountId {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	if e.lastJustification == nil {
		return nil
	}
	return e.lastJustification.Voters()
}

func credit(tx *state.Txn, id primitives.AccountId, amount types.Balance) {
	if amount.IsZero() {
		return
	}
	acc := tx.GetAccount(id)
	acc.Balance = acc.Balance.MustAdd(amount)
	tx.SetAccount(id, acc)
}
