package chain

import (
	"kratos/governance"
	"kratos/primitives"
	"kratos/state"
	"kratos/types"
)

// applyDeferredEffects runs the chain engine's phase 2:
// validator-set mutations that could not be applied inside the
// executor because StateStore and ValidatorSet are separately owned.
// Every effect here reuses one combined write scope: State.Mutate for
// the state-store half, e.Vals's own lock for the validator-set half,
// acquired in the fixed order state-then-validators. Gov.Tick always
// runs, even for an empty block, so proposal timelocks and grace
// windows advance with wall-clock/block time rather than only on
// governance traffic.
func (e *Engine) applyDeferredEffects(effects []state.DeferredEffect, blockNumber types.BlockNumber, epoch types.EpochNumber, timestampUnix int64) {
	if len(effects) > 0 {
		_ = e.State.Mutate(func(tx *state.Txn) error {
			for _, eff := range effects {
				e.applyOneDeferred(tx, eff, blockNumber, epoch, timestampUnix)
			}
			return nil
		})
	}
	e.Gov.Tick(timestampUnix, e.Params)
}

func (e *Engine) applyOneDeferred(tx *state.Txn, eff state.DeferredEffect, blockNumber types.BlockNumber, epoch types.EpochNumber, timestampUnix int64) {
	switch eff.Kind {
	case state.DeferredRegisterValidator:
		if _, exists := e.Vals.Get(eff.Sender); !exists {
			v := types.NewValidator(eff.Sender, eff.Amount, epoch, types.IsBootstrapEpoch(epoch))
			e.Vals.Add(v)
		}

	case state.DeferredStake:
		if v, exists := e.Vals.Get(eff.Sender); exists {
			v.Stake = v.Stake.MustAdd(eff.Amount)
			e.Vals.Update(v)
		}

	case state.DeferredUnstake:
		if v, exists := e.Vals.Get(eff.Sender); exists {
			if newStake, err := v.Stake.Sub(eff.Amount); err == nil {
				v.Stake = newStake
				e.Vals.Update(v)
			}
		}
		acc := tx.GetAccount(eff.Sender)
		acc.Unbonding = append(acc.Unbonding, types.UnbondEntry{
			Amount:      eff.Amount,
			MatureEpoch: epoch + e.Params.UnbondingPeriodEpochs,
		})
		tx.SetAccount(eff.Sender, acc)

	case state.DeferredUnregisterValidator:
		if v, exists := e.Vals.Get(eff.Sender); exists {
			acc := tx.GetAccount(eff.Sender)
			acc.Unbonding = append(acc.Unbonding, types.UnbondEntry{
				Amount:      v.Stake,
				MatureEpoch: epoch + e.Params.UnbondingPeriodEpochs,
			})
			tx.SetAccount(eff.Sender, acc)
			v.Stake = types.ZeroBalance
			v.Status = types.StatusUnbonding
			e.Vals.Update(v)
		}

	case state.DeferredWithdrawUnbonded:
		acc := tx.GetAccount(eff.Sender)
		var remaining []types.UnbondEntry
		matured := types.ZeroBalance
		for _, u := range acc.Unbonding {
			if u.MatureEpoch <= epoch {
				matured = matured.MustAdd(u.Amount)
			} else {
				remaining = append(remaining, u)
			}
		}
		if !matured.IsZero() {
			acc.Balance = acc.Balance.MustAdd(matured)
			acc.Unbonding = remaining
			tx.SetAccount(eff.Sender, acc)
		}
		if v, exists := e.Vals.Get(eff.Sender); exists && v.Status == types.StatusUnbonding && len(remaining) == 0 && v.Stake.IsZero() {
			v.Status = types.StatusRetired
			e.Vals.Update(v)
		}

	case state.DeferredProposeEarlyValidator:
		e.Vals.ProposeEarlyValidator(eff.Sender, eff.Candidate, blockNumber)

	case state.DeferredVoteEarlyValidator:
		if admitted, ok := e.Vals.VoteEarlyValidator(eff.Sender, eff.Candidate); ok && admitted {
			e.Vals.AdmitEarlyValidator(eff.Candidate, epoch)
			e.State.InitializeBootstrapVC(tx, eff.Candidate)
			e.Vals.SetCredits(eff.Candidate, tx.GetVC(eff.Candidate))
		}

	case state.DeferredGovernanceAction:
		e.applyGovernanceAction(eff.Sender, eff.Payload, timestampUnix)
	}
}

// applyGovernanceAction decodes a CallGovernance payload and applies
// it against Gov. Decode or application failures are silently dropped
// rather than failing the block: the fee is already charged, and a
// malformed or now-stale action (e.g. voting after the window closed)
// is the sender's own cost, not a reason to refuse an otherwise valid
// block.
func (e *Engine) applyGovernanceAction(sender primitives.AccountId, payload []byte, timestampUnix int64) {
	action, err := governance.DecodeAction(payload)
	if err != nil {
		return
	}
	switch action.Kind {
	case governance.ActionCreateProposal:
		snapshot := governance.SnapshotFrom(e.Vals.Active())
		_, _ = e.Gov.Create(sender, e.Params.ChainId, action.ProposalType, action.Payload, snapshot, timestampUnix, e.Params, e.Security.Current)
	case governance.ActionVote:
		_ = e.Gov.Vote(action.ProposalId, sender, action.Choice, timestampUnix)
	case governance.ActionCancel:
		_ = e.Gov.Cancel(action.ProposalId, sender, timestampUnix)
	case governance.ActionExecute:
		_ = e.Gov.Execute(action.ProposalId, timestampUnix, e.Params, e.Security.Current)
	}
}
