package validators

import (
	"math"
	"math/big"

	"kratos/primitives"
	"kratos/types"

	"go.dedis.ch/kyber/v3/group/edwards25519"
)

// StakeCap and MinEffectiveVC bound the weight formula.
const (
	StakeCapKRAT     = 1_000_000
	MinEffectiveVC   = 1
	bootstrapMinVC   = 100
)

var suite = edwards25519.NewBlakeSHA256Ed25519()

// EpochRandomness computes epoch_randomness(E) = H(first_block_of_epoch(E-1)).
// Callers pass the zero hash for E == 0.
func EpochRandomness(firstBlockOfPriorEpoch primitives.Hash) primitives.Hash {
	return firstBlockOfPriorEpoch
}

// SlotSeed computes seed = H(epoch_randomness || slot_number).
func SlotSeed(epochRandomness primitives.Hash, slot types.SlotNumber) primitives.Hash {
	enc := primitives.NewEncoder()
	enc.WriteFixed(epochRandomness.Bytes())
	enc.WriteU64(uint64(slot))
	return primitives.SumHash(enc.Bytes())
}

// score derives a VRF-like pseudorandom fraction in [0,1) for validator v
// under seed, via kyber's deterministic extendable-output function keyed
// on the edwards25519 suite: score(v) = H(seed || v.id) reinterpreted
// through the suite's XOF rather than the raw hash bytes, so the value
// is drawn from the same randomness source the group's own scalar
// sampling uses.
func score(seed primitives.Hash, id primitives.AccountId) float64 {
	input := primitives.Concat(seed.Bytes(), id.Bytes()).Bytes()
	xof := suite.XOF(input)
	buf := make([]byte, 32)
	if _, err := xof.Read(buf); err != nil {
		// XOF reads over a fixed-size buffer from a deterministic stream
		// cipher never fail in kyber's implementation; a panic here
		// means the linked kyber version broke its contract.
		panic("validators: xof read failed: " + err.Error())
	}

	num := new(big.Int).SetBytes(buf)
	denom := new(big.Int).Lsh(big.NewInt(1), 256)
	f := new(big.Float).Quo(new(big.Float).SetInt(num), new(big.Float).SetInt(denom))
	frac, _ := f.Float64()
	if frac <= 0 {
		// Avoid ln(0)/log(0) singularities for the vanishingly unlikely
		// all-zero draw; nudge to the smallest positive representable
		// fraction instead of treating it as unbounded weight.
		frac = math.SmallestNonzeroFloat64
	}
	return frac
}

// Weight computes w(v), folding in the clock-health priority
// modifier and the reputation/stake-zero disqualification rules.
func Weight(v types.Validator) float64 {
	if v.Reputation == 0 {
		return 0
	}
	if v.PriorityModifierBps == 0 {
		return 0
	}

	vcTotal := v.VC.Total()
	if v.Stake.IsZero() && vcTotal < bootstrapMinVC {
		return 0
	}

	stakeKrat := stakeToKRATFloat(v.Stake)
	stakeTerm := math.Sqrt(math.Min(stakeKrat, StakeCapKRAT))
	if v.Stake.IsZero() {
		// Only reached with vcTotal >= bootstrapMinVC: the stake term
		// is 1, so the weight is ln(1+VC) times the modifier.
		stakeTerm = 1
	}

	effectiveVC := float64(vcTotal)
	if effectiveVC < MinEffectiveVC {
		effectiveVC = MinEffectiveVC
	}
	vcTerm := math.Log(1 + effectiveVC)

	modifier := float64(v.PriorityModifierBps) / 10000.0
	return stakeTerm * vcTerm * modifier
}

func stakeToKRATFloat(b types.Balance) float64 {
	f := new(big.Float).SetInt(new(big.Int).SetBytes(b.Bytes()))
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(types.Decimals), nil))
	f.Quo(f, scale)
	out, _ := f.Float64()
	return out
}

// SelectLeader runs the weighted exponential race over the
// active validator set and returns the winner. Fully deterministic
// given (epochRandomness, slot, active) — no wall-clock or process
// randomness is consulted.
func SelectLeader(epochRandomness primitives.Hash, slot types.SlotNumber, active []types.Validator) (types.Validator, bool) {
	seed := SlotSeed(epochRandomness, slot)

	var (
		best      types.Validator
		bestScore = math.Inf(-1)
		found     bool
	)
	for _, v := range active {
		w := Weight(v)
		if w <= 0 {
			continue
		}
		s := score(seed, v.Id)
		race := -math.Log(s) * w
		if !found || race > bestScore {
			best = v
			bestScore = race
			found = true
		}
	}
	return best, found
}

// IsLeader reports whether candidate is the selected leader for the
// given (epochRandomness, slot, active) triple.
func IsLeader(epochRandomness primitives.Hash, slot types.SlotNumber, active []types.Validator, candidate primitives.AccountId) bool {
	leader, ok := SelectLeader(epochRandomness, slot, active)
	return ok && leader.Id == candidate
}
