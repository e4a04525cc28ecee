package state

import (
	"sort"

	"kratos/primitives"
	"kratos/types"

	"golang.org/x/exp/maps"
)

// ComputeStateRoot walks every account, every VC record, and every
// validator entry in canonical (ascending AccountId) order and hashes
// their canonical encodings into one Merkle root. blockNumber and
// chainId are mixed in as leading leaves so the same state can never
// hash identically across heights or chains.
func (s *store) ComputeStateRoot(blockNumber types.BlockNumber, chainId string, validators []types.Validator) primitives.Hash {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	leaves := make([][]byte, 0, len(s.accounts)+len(s.vc)+len(validators)+2)

	mixin := primitives.NewEncoder()
	mixin.WriteU64(uint64(blockNumber))
	mixin.WriteString(chainId)
	leaves = append(leaves, mixin.Bytes())

	accountIds := maps.Keys(s.accounts)
	sort.Slice(accountIds, func(i, j int) bool { return accountIds[i].Compare(accountIds[j]) < 0 })
	for _, id := range accountIds {
		enc := primitives.NewEncoder()
		enc.WriteFixed(id.Bytes())
		enc.WriteBytes(s.accounts[id].Encode())
		leaves = append(leaves, enc.Bytes())
	}

	vcIds := maps.Keys(s.vc)
	sort.Slice(vcIds, func(i, j int) bool { return vcIds[i].Compare(vcIds[j]) < 0 })
	for _, id := range vcIds {
		vc := s.vc[id]
		enc := primitives.NewEncoder()
		enc.WriteFixed(id.Bytes())
		enc.WriteU64(vc.Vote)
		enc.WriteU64(vc.Uptime)
		enc.WriteU64(vc.Arbitration)
		enc.WriteU64(vc.Seniority)
		leaves = append(leaves, enc.Bytes())
	}

	sortedValidators := make([]types.Validator, len(validators))
	copy(sortedValidators, validators)
	sort.Slice(sortedValidators, func(i, j int) bool {
		return sortedValidators[i].Id.Compare(sortedValidators[j].Id) < 0
	})
	for _, v := range sortedValidators {
		leaves = append(leaves, v.Encode())
	}

	return primitives.MerkleRoot(leaves)
}
