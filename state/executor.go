package state

import (
	"kratos/chainerrors"
	"kratos/primitives"
	"kratos/types"
)

// MinStakeUnits is the minimum amount, in base units, accepted by a
// Stake call. It is a package constant (not a Params field) because it
// never varies by deployment in the source material; RegisterValidator
// reuses it.
const MinStakeUnits = 1

// DeferredKind tags a validator-set effect the executor could not
// apply itself because StateStore and ValidatorSet are separately
// owned regions (the two-phase execution rule).
type DeferredKind uint8

const (
	DeferredProposeEarlyValidator DeferredKind = iota
	DeferredVoteEarlyValidator
	DeferredRegisterValidator
	DeferredUnregisterValidator
	DeferredStake
	DeferredUnstake
	DeferredWithdrawUnbonded
	DeferredGovernanceAction
)

// DeferredEffect is applied by the chain engine after every
// transaction in a block has executed, in the same write scope as the
// block commit.
type DeferredEffect struct {
	Kind      DeferredKind
	Sender    primitives.AccountId
	Candidate primitives.AccountId
	Amount    types.Balance
	Payload   []byte // DeferredGovernanceAction: the raw CallGovernance payload
}

// Result is what ApplyTransaction reports back to the block executor.
type Result struct {
	Fee      types.Balance
	Deferred *DeferredEffect
}

// ApplyTransaction validates and applies one SignedTransaction against
// tx, in the mandated check order: signature, sender
// existence, strict nonce equality, balance sufficiency, then
// call-specific validity. The first failing check aborts with no
// state change (Txn's scratch overlay is simply not committed by the
// caller).
func ApplyTransaction(tx *Txn, stx *types.SignedTransaction) (Result, error) {
	stx.EnsureHash()

	if !stx.VerifySignature() {
		return Result{}, chainerrors.InputInvalid("invalid signature", ErrInvalidSignature)
	}

	sender := tx.GetAccount(stx.Tx.Sender)
	senderExisted := senderExists(tx, stx.Tx.Sender)
	if !senderExisted && stx.Tx.Call.Kind == types.CallTransfer {
		// An account-creating transfer *to* the sender itself would
		// let a transaction bootstrap its own sender account for
		// free; disallowed.
		if stx.Tx.Call.To == stx.Tx.Sender {
			return Result{}, chainerrors.InputInvalid("unknown sender", ErrUnknownSender)
		}
	}
	if !senderExisted {
		return Result{}, chainerrors.InputInvalid("unknown sender", ErrUnknownSender)
	}

	if stx.Tx.Nonce != sender.Nonce {
		return Result{}, chainerrors.InputInvalid("bad nonce", ErrBadNonce)
	}

	required, err := requiredAmount(stx.Tx)
	if err != nil {
		return Result{}, chainerrors.InputInvalid("invalid call", err)
	}
	totalOwed, err := stx.Tx.Fee.Add(required)
	if err != nil {
		return Result{}, chainerrors.InputInvalid("invalid call", err)
	}
	if sender.Balance.LessThan(totalOwed) {
		return Result{}, chainerrors.InputInvalid("insufficient funds", ErrInsufficientFunds)
	}

	if err := validateCall(stx.Tx.Call); err != nil {
		return Result{}, chainerrors.InputInvalid("invalid call", err)
	}

	deferred, err := applyCall(tx, stx.Tx)
	if err != nil {
		return Result{}, chainerrors.InputInvalid("invalid call", err)
	}

	// Fee is charged now; distribution across producer/voters/burn/
	// treasury happens at block-finalization time. Nonce
	// increments unconditionally on success.
	sender = tx.GetAccount(stx.Tx.Sender)
	newBalance, err := sender.Balance.Sub(stx.Tx.Fee)
	if err != nil {
		return Result{}, chainerrors.InputInvalid("insufficient funds", ErrInsufficientFunds)
	}
	sender.Balance = newBalance
	sender.Nonce++
	tx.SetAccount(stx.Tx.Sender, sender)

	return Result{Fee: stx.Tx.Fee, Deferred: deferred}, nil
}

func senderExists(tx *Txn, id primitives.AccountId) bool {
	acc := tx.GetAccount(id)
	return !acc.IsEmpty() || acc.Nonce > 0
}

func requiredAmount(txn types.Transaction) (types.Balance, error) {
	switch txn.Call.Kind {
	case types.CallTransfer, types.CallStake, types.CallRegisterValidator:
		return txn.Call.Amount, nil
	default:
		return types.ZeroBalance, nil
	}
}

func validateCall(call types.Call) error {
	switch call.Kind {
	case types.CallTransfer:
		if call.Amount.IsZero() {
			return ErrInvalidCall
		}
	case types.CallStake, types.CallRegisterValidator:
		if call.Amount.LessThan(types.NewBalance(MinStakeUnits)) {
			return ErrInvalidCall
		}
	case types.CallUnstake:
		if call.Amount.IsZero() {
			return ErrInvalidCall
		}
	}
	return nil
}

// applyCall applies the state-store-local half of a call's effect.
// Validator-set calls (RegisterValidator, UnregisterValidator,
// ProposeEarlyValidator, VoteEarlyValidator) only touch the sender's
// balance here (RegisterValidator debits its stake amount; the caller
// charges the fee) and return a DeferredEffect for the chain engine's
// phase 2.
func applyCall(tx *Txn, txn types.Transaction) (*DeferredEffect, error) {
	sender := tx.GetAccount(txn.Sender)

	switch txn.Call.Kind {
	case types.CallTransfer:
		newSenderBal, err := sender.Balance.Sub(txn.Call.Amount)
		if err != nil {
			return nil, ErrInsufficientFunds
		}
		sender.Balance = newSenderBal
		tx.SetAccount(txn.Sender, sender)

		recipient := tx.GetAccount(txn.Call.To)
		newRecipientBal, err := recipient.Balance.Add(txn.Call.Amount)
		if err != nil {
			return nil, err
		}
		recipient.Balance = newRecipientBal
		tx.SetAccount(txn.Call.To, recipient)
		return nil, nil

	case types.CallStake:
		newBal, err := sender.Balance.Sub(txn.Call.Amount)
		if err != nil {
			return nil, ErrInsufficientFunds
		}
		sender.Balance = newBal
		newStaked, err := sender.Staked.Add(txn.Call.Amount)
		if err != nil {
			return nil, err
		}
		sender.Staked = newStaked
		tx.SetAccount(txn.Sender, sender)
		return &DeferredEffect{Kind: DeferredStake, Sender: txn.Sender, Amount: txn.Call.Amount}, nil

	case types.CallUnstake:
		if sender.Staked.LessThan(txn.Call.Amount) {
			return nil, ErrInsufficientFunds
		}
		newStaked, err := sender.Staked.Sub(txn.Call.Amount)
		if err != nil {
			return nil, err
		}
		sender.Staked = newStaked
		tx.SetAccount(txn.Sender, sender)
		// The mature-epoch stamp is computed by the chain engine
		// (which knows the current epoch); the unbond entry itself is
		// appended there once the effect is applied.
		return &DeferredEffect{Kind: DeferredUnstake, Sender: txn.Sender, Amount: txn.Call.Amount}, nil

	case types.CallWithdrawUnbonded:
		return &DeferredEffect{Kind: DeferredWithdrawUnbonded, Sender: txn.Sender}, nil

	case types.CallRegisterValidator:
		newBal, err := sender.Balance.Sub(txn.Call.Amount)
		if err != nil {
			return nil, ErrInsufficientFunds
		}
		sender.Balance = newBal
		tx.SetAccount(txn.Sender, sender)
		return &DeferredEffect{Kind: DeferredRegisterValidator, Sender: txn.Sender, Amount: txn.Call.Amount}, nil

	case types.CallUnregisterValidator:
		return &DeferredEffect{Kind: DeferredUnregisterValidator, Sender: txn.Sender}, nil

	case types.CallProposeEarlyValidator:
		return &DeferredEffect{Kind: DeferredProposeEarlyValidator, Sender: txn.Sender, Candidate: txn.Call.Candidate}, nil

	case types.CallVoteEarlyValidator:
		return &DeferredEffect{Kind: DeferredVoteEarlyValidator, Sender: txn.Sender, Candidate: txn.Call.Candidate}, nil

	case types.CallGovernance:
		// The core charges the fee and hands the still-opaque payload
		// to the chain engine's phase 2, which owns the validator
		// stake snapshot a proposal's voting power is frozen against.
		return &DeferredEffect{Kind: DeferredGovernanceAction, Sender: txn.Sender, Payload: txn.Call.OpaquePayload}, nil

	case types.CallSidechain:
		// Opaque to the core: fee already charged, no further local
		// effect.
		return nil, nil

	default:
		return nil, ErrInvalidCall
	}
}
