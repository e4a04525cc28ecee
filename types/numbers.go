package types

// BlockNumber, EpochNumber and SlotNumber are the chain's unsigned
// 64-bit counters. SlotNumber is always the absolute slot since
// genesis — never reduced modulo epoch length (see REDESIGN FLAGS).
type (
	BlockNumber uint64
	EpochNumber uint64
	SlotNumber  uint64
)

const (
	// SlotsPerEpoch is the number of slots (and therefore blocks, one
	// per slot) making up one epoch.
	SlotsPerEpoch = 600
	// SlotDurationSeconds is the target wall-clock spacing of blocks.
	SlotDurationSeconds = 6
	// BootstrapEpochs is the length of the bootstrap era.
	BootstrapEpochs = EpochNumber(1440)
)

// EpochOfSlot returns the epoch a given absolute slot number falls in.
func EpochOfSlot(slot SlotNumber) EpochNumber {
	return EpochNumber(uint64(slot) / SlotsPerEpoch)
}

// FirstSlotOfEpoch returns the first absolute slot number of an epoch.
func FirstSlotOfEpoch(epoch EpochNumber) SlotNumber {
	return SlotNumber(uint64(epoch) * SlotsPerEpoch)
}

// IsBootstrapEpoch reports whether epoch falls within the bootstrap era.
func IsBootstrapEpoch(epoch EpochNumber) bool {
	return epoch < BootstrapEpochs
}
