package mempool

import (
	"testing"

	"kratos/primitives"
	"kratos/state"
	"kratos/types"

	"github.com/stretchr/testify/require"
)

func signedTx(t *testing.T, kp primitives.KeyPair, nonce uint64, fee uint64) *types.SignedTransaction {
	t.Helper()
	tx := types.Transaction{
		Sender: kp.PublicKey,
		Nonce:  nonce,
		Call:   types.Call{Kind: types.CallTransfer, To: kp.PublicKey, Amount: types.KRAT(1)},
		Fee:    types.NewBalance(fee),
	}
	sig := primitives.Sign(kp.PrivateKey, primitives.DomainTx, tx.Encode())
	return &types.SignedTransaction{Tx: tx, Sig: sig}
}

func TestAddRejectsOutOfWindowNonce(t *testing.T) {
	kp, err := primitives.GenerateKeyPair()
	require.NoError(t, err)
	pool := New(nil)

	err = pool.Add(signedTx(t, kp, 5, 10), 0)
	require.Error(t, err)
}

func TestAddAcceptsWithinWindow(t *testing.T) {
	kp, err := primitives.GenerateKeyPair()
	require.NoError(t, err)
	pool := New(nil)

	require.NoError(t, pool.Add(signedTx(t, kp, 0, 10), 0))
	require.NoError(t, pool.Add(signedTx(t, kp, 2, 10), 0))
	require.Equal(t, 2, pool.Size())
}

func TestReplaceByFeeRequires110Percent(t *testing.T) {
	kp, err := primitives.GenerateKeyPair()
	require.NoError(t, err)
	pool := New(nil)

	require.NoError(t, pool.Add(signedTx(t, kp, 0, 100), 0))
	require.Error(t, pool.Add(signedTx(t, kp, 0, 109), 0))
	require.NoError(t, pool.Add(signedTx(t, kp, 0, 110), 0))
	require.Equal(t, 1, pool.Size())
}

func TestSelectWithStateReturnsContiguousRun(t *testing.T) {
	kp, err := primitives.GenerateKeyPair()
	require.NoError(t, err)
	pool := New(nil)

	require.NoError(t, pool.Add(signedTx(t, kp, 0, 10), 0))
	require.NoError(t, pool.Add(signedTx(t, kp, 1, 10), 0))
	require.NoError(t, pool.Add(signedTx(t, kp, 3, 10), 1)) // gap at 2; window [1,3] admits nonce 3

	store := state.NewStore()
	selected := pool.SelectWithState(10, store)
	require.Len(t, selected, 2)
	require.EqualValues(t, 0, selected[0].Tx.Nonce)
	require.EqualValues(t, 1, selected[1].Tx.Nonce)
}

func TestRemoveIncludedDropsCommittedTxs(t *testing.T) {
	kp, err := primitives.GenerateKeyPair()
	require.NoError(t, err)
	pool := New(nil)

	tx := signedTx(t, kp, 0, 10)
	require.NoError(t, pool.Add(tx, 0))
	pool.RemoveIncluded([]*types.SignedTransaction{tx})
	require.Equal(t, 0, pool.Size())
}
