package rpc

import (
	"kratos/types"

	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"
)

// AuthorSubmitTransaction implements author_submitTransaction. The
// spec requires the implementation to fill Hash if the caller omitted
// it, which SignedTransaction.EnsureHash already does.
func AuthorSubmitTransaction(ctx *rpctypes.Context, stx types.SignedTransaction) (*ResultSubmitTransaction, error) {
	hash := stx.EnsureHash()
	acc, _ := env.Engine.State.GetAccount(stx.Tx.Sender)
	if err := env.Engine.Pool.Add(&stx, acc.Nonce); err != nil {
		return nil, err
	}
	return &ResultSubmitTransaction{Hash: HexBytesString(hash.Bytes())}, nil
}

// AuthorPendingTransactions implements author_pendingTransactions.
func AuthorPendingTransactions(ctx *rpctypes.Context) (*ResultPendingTransactions, error) {
	pending := env.Engine.Pool.SelectWithState(env.Engine.Pool.Size(), env.Engine.State)
	hashes := make([]string, len(pending))
	for i, stx := range pending {
		hashes[i] = HexBytesString(stx.EnsureHash().Bytes())
	}
	return &ResultPendingTransactions{Transactions: hashes, Count: len(hashes)}, nil
}

// AuthorRemoveTransaction implements author_removeTransaction(hash).
// The mempool only exposes bulk removal-on-inclusion (RemoveIncluded);
// a single-hash removal walks the pending set for the match.
func AuthorRemoveTransaction(ctx *rpctypes.Context, hash []byte) (bool, error) {
	pending := env.Engine.Pool.SelectWithState(env.Engine.Pool.Size(), env.Engine.State)
	for _, stx := range pending {
		h := stx.EnsureHash()
		if string(h.Bytes()) == string(hash) {
			env.Engine.Pool.RemoveIncluded([]*types.SignedTransaction{stx})
			return true, nil
		}
	}
	return false, nil
}
