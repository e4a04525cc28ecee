package types

import "kratos/primitives"

// Header is the block header. BlockHash and Signature are excluded
// from the hashed payload (block.hash = H(canonical(header_without_signature))).
type Header struct {
	Number           BlockNumber
	ParentHash       primitives.Hash
	TransactionsRoot primitives.Hash
	StateRoot        primitives.Hash
	Timestamp        int64 // Unix seconds
	Epoch            EpochNumber
	Slot             SlotNumber
	Author           primitives.AccountId
	Signature        primitives.Signature
}

// encodeUnsigned writes the canonical encoding of every header field
// except Signature — the payload that gets hashed and signed.
func (h Header) encodeUnsigned() []byte {
	enc := primitives.NewEncoder()
	enc.WriteU64(uint64(h.Number))
	enc.WriteFixed(h.ParentHash.Bytes())
	enc.WriteFixed(h.TransactionsRoot.Bytes())
	enc.WriteFixed(h.StateRoot.Bytes())
	enc.WriteI64(h.Timestamp)
	enc.WriteU64(uint64(h.Epoch))
	enc.WriteU64(uint64(h.Slot))
	enc.WriteFixed(h.Author.Bytes())
	return enc.Bytes()
}

// Hash returns block.hash = H(canonical(header_without_signature)).
func (h Header) Hash() primitives.Hash {
	return primitives.SumHash(h.encodeUnsigned())
}

// SignBytes returns the domain-separated payload signed by the author.
func (h Header) SignBytes() []byte {
	return h.encodeUnsigned()
}

// Block is a header plus an ordered sequence of signed transactions.
type Block struct {
	Header Header
	Txs    Txs

	// Finalized is set once a FinalityJustification covers this block.
	// It is not part of the hashed header (finality is a property
	// discovered after the block exists, not encoded into it).
	Finalized bool

	// SlashingEvents carries every slash the producer applied while
	// building this block (equivocation proofs surfaced by the
	// finality gadget since the last block). Like Finalized, it is
	// discovered outside the header: an importer re-applies the same
	// slashing.Apply against the proofs carried here and the state
	// root check enforces that it arrives at the same result.
	SlashingEvents []SlashingEvent
}

// SlashingEvent is one misbehavior proof surfaced in a block, tagged
// with the schedule severity it was slashed under.
type SlashingEvent struct {
	Proof    EquivocationProof
	Severity uint8 // slashing.Severity, kept numeric to avoid an import cycle
}

// Hash delegates to the header, matching block.hash's definition.
func (b Block) Hash() primitives.Hash { return b.Header.Hash() }

// VerifyAuthorSignature checks Header.Signature under the block domain.
func (b Block) VerifyAuthorSignature() bool {
	return primitives.Verify(b.Header.Author, primitives.DomainBlock, b.Header.SignBytes(), b.Header.Signature)
}
