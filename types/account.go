package types

import "kratos/primitives"

// UnbondEntry is a portion of stake in the process of returning to the
// liquid balance; it becomes withdrawable once the chain reaches
// MatureEpoch.
type UnbondEntry struct {
	Amount      Balance
	MatureEpoch EpochNumber
}

// Account is the state store's per-identity record. Invariant:
// Balance + Staked + sum(Unbonding.Amount) is conserved except by
// explicit mint (block reward) or burn (fee burn, expired deposits).
type Account struct {
	Balance   Balance
	Nonce     uint64
	Staked    Balance
	Unbonding []UnbondEntry
}

// NewAccount returns a freshly lazily-created account: everything
// zero, nonce zero.
func NewAccount() Account {
	return Account{}
}

// TotalUnbonding sums every pending unbond entry.
func (a Account) TotalUnbonding() Balance {
	total := ZeroBalance
	for _, u := range a.Unbonding {
		total = total.MustAdd(u.Amount)
	}
	return total
}

// IsEmpty reports whether the account holds nothing and can be pruned.
func (a Account) IsEmpty() bool {
	return a.Balance.IsZero() && a.Staked.IsZero() && len(a.Unbonding) == 0 && a.Nonce == 0
}

// Encode writes the canonical, order-stable encoding of the account,
// used both for hashing (state root) and persistence.
func (a Account) Encode() []byte {
	enc := primitives.NewEncoder()
	enc.WriteFixed(a.Balance.Bytes())
	enc.WriteU64(a.Nonce)
	enc.WriteFixed(a.Staked.Bytes())
	enc.WriteVarUint(uint64(len(a.Unbonding)))
	for _, u := range a.Unbonding {
		enc.WriteFixed(u.Amount.Bytes())
		enc.WriteU64(uint64(u.MatureEpoch))
	}
	return enc.Bytes()
}
