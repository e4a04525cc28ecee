package types

import (
	"encoding/json"
	"fmt"
	"os"

	"kratos/primitives"
)

// GenesisValidator is one validator entry seeded at genesis.
type GenesisValidator struct {
	Id          primitives.AccountId
	Stake       Balance
	IsBootstrap bool
}

// GenesisAccount pre-funds an account before block 0.
type GenesisAccount struct {
	Id      primitives.AccountId
	Balance Balance
}

// Params collects every tunable protocol constant, so a deployment
// can vary them without touching code; the zero value of each field
// is meaningless, DefaultParams fills in the normative values.
type Params struct {
	ChainId string

	SlotsPerEpoch       uint64
	SlotDurationSeconds int64
	BootstrapEpochs     EpochNumber

	StakeCapKRAT       uint64
	MinEffectiveVC     uint64
	BootstrapMinVC     uint64

	FeeProducerBps  uint64
	FeeVotersBps    uint64
	FeeBurnBps      uint64
	FeeTreasuryBps  uint64

	GovStandardThresholdBps    uint64
	GovSupermajorityThresholdBps uint64
	GovQuorumBps               uint64
	GovVotingPeriodSeconds     int64
	GovStandardTimelockSeconds int64
	GovExitTimelockSeconds     int64
	GovGracePeriodSeconds      int64
	GovProposalDepositKRAT     uint64

	MinValidatorsForFinality int
	FinalityRoundTimeoutSeconds int64
	SupermajorityNumerator      int64 // 67 -> count*100 >= total*67

	// NominalValidatorStakeKRAT is the base stake requirement before
	// validators.RequiredStake's VC-based reduction is applied.
	NominalValidatorStakeKRAT uint64

	// UnbondingPeriodEpochs is not given a normative value anywhere in
	// the source material; 168 epochs (7 days, matching the governance
	// voting period) is chosen as a deployment default rather than a
	// hardcoded constant, so it can be tuned without a code change.
	UnbondingPeriodEpochs EpochNumber
}

// DefaultParams returns the protocol's normative constants.
func DefaultParams(chainId string) Params {
	return Params{
		ChainId: chainId,

		SlotsPerEpoch:       SlotsPerEpoch,
		SlotDurationSeconds: SlotDurationSeconds,
		BootstrapEpochs:     BootstrapEpochs,

		StakeCapKRAT:   1_000_000,
		MinEffectiveVC: 1,
		BootstrapMinVC: 100,

		FeeProducerBps: 5000,
		FeeVotersBps:   1000,
		FeeBurnBps:     3000,
		FeeTreasuryBps: 1000,

		GovStandardThresholdBps:      5100,
		GovSupermajorityThresholdBps: 6700,
		GovQuorumBps:                 3000,
		GovVotingPeriodSeconds:       7 * 24 * 3600,
		GovStandardTimelockSeconds:   12 * 24 * 3600,
		GovExitTimelockSeconds:       30 * 24 * 3600,
		GovGracePeriodSeconds:        2 * 24 * 3600,
		GovProposalDepositKRAT:       100,

		MinValidatorsForFinality:   3,
		FinalityRoundTimeoutSeconds: SlotDurationSeconds,
		SupermajorityNumerator:      67,

		NominalValidatorStakeKRAT: 50_000,

		UnbondingPeriodEpochs: 168,
	}
}

// GenesisDoc is the full genesis document a joining node fetches via
// request_genesis before accepting any blocks.
type GenesisDoc struct {
	ChainId         string
	ChainName       string
	ProtocolVersion uint32
	GenesisTimeUnix int64

	Params Params

	Validators []GenesisValidator
	Accounts   []GenesisAccount
}

// Hash canonically hashes the genesis document, used as the genesis
// block's parent hash placeholder and as GenesisResponse.hash.
func (g GenesisDoc) Hash() primitives.Hash {
	enc := primitives.NewEncoder()
	enc.WriteString(g.ChainId)
	enc.WriteString(g.ChainName)
	enc.WriteU64(uint64(g.ProtocolVersion))
	enc.WriteI64(g.GenesisTimeUnix)
	enc.WriteVarUint(uint64(len(g.Validators)))
	for _, v := range g.Validators {
		enc.WriteFixed(v.Id.Bytes())
		enc.WriteFixed(v.Stake.Bytes())
		enc.WriteBool(v.IsBootstrap)
	}
	enc.WriteVarUint(uint64(len(g.Accounts)))
	for _, a := range g.Accounts {
		enc.WriteFixed(a.Id.Bytes())
		enc.WriteFixed(a.Balance.Bytes())
	}
	return primitives.SumHash(enc.Bytes())
}

// SaveAs writes the genesis document as indented JSON, mirroring the
// teacher's GenesisDoc.SaveAs(genFile) used by gen-genesis-block.
func (g GenesisDoc) SaveAs(path string) error {
	buf, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("types: marshaling genesis doc: %w", err)
	}
	return os.WriteFile(path, buf, 0644)
}

// LoadGenesisDoc reads a genesis document previously written by SaveAs.
func LoadGenesisDoc(path string) (GenesisDoc, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return GenesisDoc{}, fmt.Errorf("types: reading genesis file %s: %w", path, err)
	}
	var g GenesisDoc
	if err := json.Unmarshal(buf, &g); err != nil {
		return GenesisDoc{}, fmt.Errorf("types: parsing genesis file %s: %w", path, err)
	}
	return g, nil
}
