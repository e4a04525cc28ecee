package types

import (
	"kratos/primitives"
)

// Transaction is the unsigned payload a sender authorizes.
type Transaction struct {
	Sender    primitives.AccountId
	Nonce     uint64
	Call      Call
	Timestamp uint64

	// Fee is the flat fee the sender is willing to pay for inclusion.
	Fee Balance
}

// Encode writes the canonical encoding of a transaction — the bytes
// that get domain-separated and signed.
func (tx Transaction) Encode() []byte {
	enc := primitives.NewEncoder()
	enc.WriteFixed(tx.Sender.Bytes())
	enc.WriteU64(tx.Nonce)
	enc.WriteFixed(tx.Fee.Bytes())
	enc.WriteU64(tx.Timestamp)
	enc.WriteBytes(tx.Call.Encode())
	return enc.Bytes()
}

// Hash returns H(canonical(tx)).
func (tx Transaction) Hash() primitives.Hash {
	return primitives.SumHash(tx.Encode())
}

// SignedTransaction pairs a Transaction with its signature. Hash is
// not itself signed: the executor fills it from H(canonical(tx)) on
// receipt if the field is absent.
type SignedTransaction struct {
	Tx   Transaction
	Sig  primitives.Signature
	Hash *primitives.Hash
}

// EnsureHash fills Hash from the transaction if it is not already set,
// mutating the SignedTransaction in place and returning the hash.
func (stx *SignedTransaction) EnsureHash() primitives.Hash {
	if stx.Hash == nil {
		h := stx.Tx.Hash()
		stx.Hash = &h
	}
	return *stx.Hash
}

// VerifySignature checks the signature under the transaction domain.
func (stx SignedTransaction) VerifySignature() bool {
	return primitives.Verify(stx.Tx.Sender, primitives.DomainTx, stx.Tx.Encode(), stx.Sig)
}

// Txs is an ordered sequence of signed transactions, as carried in a
// block body.
type Txs []SignedTransaction

// MerkleRoot computes the transactions_root for a block body.
func (txs Txs) MerkleRoot() primitives.Hash {
	leaves := make([][]byte, len(txs))
	for i, tx := range txs {
		h := tx.Tx.Hash()
		leaves[i] = h.Bytes()
	}
	return primitives.MerkleRoot(leaves)
}
