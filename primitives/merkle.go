package primitives

import (
	tmmerkle "github.com/tendermint/tendermint/crypto/merkle"
)

// MerkleRoot computes a Merkle root over leaves in the order given,
// matching the tree shape tendermint uses for txs/validators so the
// same construction backs transactions_root and compute_state_root.
func MerkleRoot(leaves [][]byte) Hash {
	root := tmmerkle.HashFromByteSlices(leaves)
	var h Hash
	copy(h[:], root)
	return h
}
