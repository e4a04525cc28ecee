package primitives

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDomainSeparation(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	msg := []byte("transfer 100 KRAT")
	sig := Sign(kp.PrivateKey, DomainTx, msg)

	require.True(t, Verify(kp.PublicKey, DomainTx, msg, sig))
	require.False(t, Verify(kp.PublicKey, DomainBlock, msg, sig), "signature must not verify under a different domain")
}

func TestKeyPairFromSeedIsDeterministic(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}
	kp1, err := KeyPairFromSeed(seed)
	require.NoError(t, err)
	kp2, err := KeyPairFromSeed(seed)
	require.NoError(t, err)
	require.Equal(t, kp1.PublicKey, kp2.PublicKey)
}

func TestEncodingRoundTrip(t *testing.T) {
	enc := NewEncoder()
	enc.WriteU64(42).WriteString("hello").WriteBool(true).WriteBytes([]byte{1, 2, 3})

	dec := NewDecoder(enc.Bytes())
	u, err := dec.ReadU64()
	require.NoError(t, err)
	require.Equal(t, uint64(42), u)

	s, err := dec.ReadString()
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	b, err := dec.ReadBool()
	require.NoError(t, err)
	require.True(t, b)

	raw, err := dec.ReadBytes()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, raw)
	require.Equal(t, 0, dec.Remaining())
}
