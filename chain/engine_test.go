package chain

import (
	"testing"

	"kratos/chainerrors"
	"kratos/governance"
	"kratos/primitives"
	"kratos/types"
	"kratos/validators"

	"github.com/stretchr/testify/require"
)

func testKeyPair(t *testing.T, seedByte byte) primitives.KeyPair {
	t.Helper()
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = seedByte
	}
	kp, err := primitives.KeyPairFromSeed(seed)
	require.NoError(t, err)
	return kp
}

func testGenesis(t *testing.T, validatorKeys []primitives.KeyPair) types.GenesisDoc {
	t.Helper()
	gv := make([]types.GenesisValidator, len(validatorKeys))
	for i, kp := range validatorKeys {
		gv[i] = types.GenesisValidator{Id: kp.PublicKey, Stake: types.KRAT(10_000), IsBootstrap: true}
	}
	return types.GenesisDoc{
		ChainId:         "kratos-test",
		ChainName:       "kratos-test",
		ProtocolVersion: 1,
		GenesisTimeUnix: 1_700_000_000,
		Params:          types.DefaultParams("kratos-test"),
		Validators:      gv,
	}
}

// findLeader returns whichever of validatorKeys is the deterministic
// leader for (epoch, slot), so tests can drive Produce without
// guessing. epoch 0's randomness is always the zero hash.
func findLeader(t *testing.T, e *Engine, validatorKeys []primitives.KeyPair, epoch types.EpochNumber, slot types.SlotNumber) primitives.KeyPair {
	t.Helper()
	randomness := e.epochRandomnessFor(epoch)
	leader, ok := validators.SelectLeader(randomness, slot, e.Vals.Active())
	require.True(t, ok)
	for _, kp := range validatorKeys {
		if kp.PublicKey == leader.Id {
			return kp
		}
	}
	t.Fatal("leader not among test validator keys")
	return primitives.KeyPair{}
}

func TestProduceThenImportRoundTrip(t *testing.T) {
	keys := []primitives.KeyPair{testKeyPair(t, 1), testKeyPair(t, 2), testKeyPair(t, 3)}
	genesis := testGenesis(t, keys)

	producer, err := New(genesis, primitives.AccountId{0xFE}, nil)
	require.NoError(t, err)
	importer, err := New(genesis, primitives.AccountId{0xFE}, nil)
	require.NoError(t, err)

	leaderKey := findLeader(t, producer, keys, 0, 0)

	block, err := producer.Produce(leaderKey, 0, 0, genesis.GenesisTimeUnix+6)
	require.NoError(t, err)
	require.NotNil(t, block)
	require.NoError(t, producer.StoreProduced(block))
	require.Equal(t, types.BlockNumber(1), producer.TipHeight())

	require.NoError(t, importer.Import(block, genesis.GenesisTimeUnix+6))
	require.Equal(t, types.BlockNumber(1), importer.TipHeight())

	got, ok := importer.BlockByNumber(1)
	require.True(t, ok)
	require.Equal(t, block.Hash(), got.Hash())

	// Idempotent re-delivery.
	require.NoError(t, importer.Import(block, genesis.GenesisTimeUnix+6))
}

func TestProduceReturnsNilForNonLeader(t *testing.T) {
	keys := []primitives.KeyPair{testKeyPair(t, 1), testKeyPair(t, 2), testKeyPair(t, 3)}
	genesis := testGenesis(t, keys)

	e, err := New(genesis, primitives.AccountId{0xFE}, nil)
	require.NoError(t, err)

	leaderKey := findLeader(t, e, keys, 0, 0)
	var nonLeader primitives.KeyPair
	for _, kp := range keys {
		if kp.PublicKey != leaderKey.PublicKey {
			nonLeader = kp
			break
		}
	}

	block, err := e.Produce(nonLeader, 0, 0, genesis.GenesisTimeUnix+6)
	require.NoError(t, err)
	require.Nil(t, block)
}

func TestImportRejectsBadStateRoot(t *testing.T) {
	keys := []primitives.KeyPair{testKeyPair(t, 1), testKeyPair(t, 2), testKeyPair(t, 3)}
	genesis := testGenesis(t, keys)

	producer, err := New(genesis, primitives.AccountId{0xFE}, nil)
	require.NoError(t, err)
	importer, err := New(genesis, primitives.AccountId{0xFE}, nil)
	require.NoError(t, err)

	leaderKey := findLeader(t, producer, keys, 0, 0)
	block, err := producer.Produce(leaderKey, 0, 0, genesis.GenesisTimeUnix+6)
	require.NoError(t, err)
	require.NotNil(t, block)

	tampered := *block
	tampered.Header.StateRoot = primitives.SumHash([]byte("not the real root"))
	tampered.Header.Signature = primitives.Sign(leaderKey.PrivateKey, primitives.DomainBlock, tampered.Header.SignBytes())

	err = importer.Import(&tampered, genesis.GenesisTimeUnix+6)
	require.Error(t, err)
	require.True(t, chainerrors.ShouldBan(err))
	require.Equal(t, types.BlockNumber(0), importer.TipHeight())

	// The rejected import must not have left any residue on either the
	// state store or the validator set.
	acc, _ := importer.State.GetAccount(leaderKey.PublicKey)
	require.True(t, acc.Balance.IsZero())
}

// TestCallGovernanceCreatesProposalViaProduce exercises the full path
// a CallGovernance transaction takes: phase 1 charges the fee and
// defers, phase 2 decodes the payload and creates the proposal
// against the validator set's current active stake, and Import
// replays the same outcome against a fresh engine.
func TestCallGovernanceCreatesProposalViaProduce(t *testing.T) {
	keys := []primitives.KeyPair{testKeyPair(t, 1), testKeyPair(t, 2), testKeyPair(t, 3)}
	genesis := testGenesis(t, keys)
	// The sender of a non-stake/transfer call still needs an account
	// record to exist (senderExists checks StateStore, not
	// ValidatorSet), so fund it like any other participant.
	genesis.Accounts = make([]types.GenesisAccount, len(keys))
	for i, kp := range keys {
		genesis.Accounts[i] = types.GenesisAccount{Id: kp.PublicKey, Balance: types.NewBalance(10)}
	}

	producer, err := New(genesis, primitives.AccountId{0xFE}, nil)
	require.NoError(t, err)
	importer, err := New(genesis, primitives.AccountId{0xFE}, nil)
	require.NoError(t, err)

	leaderKey := findLeader(t, producer, keys, 0, 0)

	payload := governance.EncodeAction(governance.Action{
		Kind:         governance.ActionCreateProposal,
		ProposalType: types.ProposalStandard,
		Payload:      []byte("raise the block gas limit"),
	})
	stx := &types.SignedTransaction{
		Tx: types.Transaction{
			Sender: leaderKey.PublicKey,
			Nonce:  0,
			Fee:    types.NewBalance(1),
			Call:   types.Call{Kind: types.CallGovernance, OpaquePayload: payload},
		},
	}
	stx.Sig = primitives.Sign(leaderKey.PrivateKey, primitives.DomainTx, stx.Tx.Encode())
	stx.EnsureHash()
	require.NoError(t, producer.Pool.Add(stx, 0))

	block, err := producer.Produce(leaderKey, 0, 0, genesis.GenesisTimeUnix+6)
	require.NoError(t, err)
	require.NotNil(t, block)
	require.Len(t, block.Txs, 1)
	require.NoError(t, producer.StoreProduced(block))

	proposal, ok := producer.Gov.Get(1)
	require.True(t, ok)
	require.Equal(t, types.ProposalActive, proposal.Status)
	require.Equal(t, leaderKey.PublicKey, proposal.Proposer)
	require.Equal(t, genesis.Validators[0].Stake.MustAdd(genesis.Validators[1].Stake).MustAdd(genesis.Validators[2].Stake), proposal.Snapshot.Total)

	require.NoError(t, importer.Import(block, genesis.GenesisTimeUnix+6))
	imported, ok := importer.Gov.Get(1)
	require.True(t, ok)
	require.Equal(t, proposal.Status, imported.Status)
	require.Equal(t, proposal.Snapshot.Total, imported.Snapshot.Total)
}

func TestImportRejectsWrongLeader(t *testing.T) {
	keys := []primitives.KeyPair{testKeyPair(t, 1), testKeyPair(t, 2), testKeyPair(t, 3)}
	genesis := testGenesis(t, keys)

	producer, err := New(genesis, primitives.AccountId{0xFE}, nil)
	require.NoError(t, err)
	importer, err := New(genesis, primitives.AccountId{0xFE}, nil)
	require.NoError(t, err)

	leaderKey := findLeader(t, producer, keys, 0, 0)
	var impostor primitives.KeyPair
	for _, kp := range keys {
		if kp.PublicKey != leaderKey.PublicKey {
			impostor = kp
			break
		}
	}

	block, err := producer.Produce(leaderKey, 0, 0, genesis.GenesisTimeUnix+6)
	require.NoError(t, err)

	forged := *block
	forged.Header.Author = impostor.PublicKey
	forged.Header.Signature = primitives.Sign(impostor.PrivateKey, primitives.DomainBlock, forged.Header.SignBytes())

	err = importer.Import(&forged, genesis.GenesisTimeUnix+6)
	require.Error(t, err)
}
