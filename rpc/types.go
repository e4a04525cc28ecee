package rpc

import (
	"kratos/consensus"
	"kratos/primitives"
	"kratos/types"
)

// ResultChainInfo answers chain_getInfo.
type ResultChainInfo struct {
	ChainName    string `json:"chain_name"`
	Height       uint64 `json:"height"`
	BestHash     string `json:"best_hash"`
	GenesisHash  string `json:"genesis_hash"`
	CurrentEpoch uint64 `json:"current_epoch"`
	CurrentSlot  uint64 `json:"current_slot"`
	IsSynced     bool   `json:"is_synced"`
}

// ResultHeader answers chain_getHeader.
type ResultHeader struct {
	Number           uint64 `json:"number"`
	ParentHash       string `json:"parent_hash"`
	TransactionsRoot string `json:"transactions_root"`
	StateRoot        string `json:"state_root"`
	Timestamp        int64  `json:"timestamp"`
	Epoch            uint64 `json:"epoch"`
	Slot             uint64 `json:"slot"`
	Author           string `json:"author"`
}

func headerResult(h types.Header) ResultHeader {
	return ResultHeader{
		Number:           uint64(h.Number),
		ParentHash:       HexBytesString(h.ParentHash.Bytes()),
		TransactionsRoot: HexBytesString(h.TransactionsRoot.Bytes()),
		StateRoot:        HexBytesString(h.StateRoot.Bytes()),
		Timestamp:        h.Timestamp,
		Epoch:            uint64(h.Epoch),
		Slot:             uint64(h.Slot),
		Author:           HexBytesString(h.Author[:]),
	}
}

// ResultBlock answers chain_getBlock: the header plus its transactions.
type ResultBlock struct {
	Header    ResultHeader `json:"header"`
	TxHashes  []string     `json:"tx_hashes"`
	Finalized bool         `json:"finalized"`
}

func blockResult(b *types.Block) ResultBlock {
	hashes := make([]string, len(b.Txs))
	for i := range b.Txs {
		hashes[i] = HexBytesString(b.Txs[i].EnsureHash().Bytes())
	}
	return ResultBlock{Header: headerResult(b.Header), TxHashes: hashes, Finalized: b.Finalized}
}

// ResultAccount answers state_getAccount. Reserved mirrors this
// repo's Staked balance: funds bonded to validation are the "reserved"
// (non-transferable) portion of an account's holdings.
type ResultAccount struct {
	Balance  string `json:"balance"`
	Reserved string `json:"reserved"`
	Nonce    uint64 `json:"nonce"`
}

// ResultSubmitTransaction answers author_submitTransaction.
type ResultSubmitTransaction struct {
	Hash string `json:"hash"`
}

// ResultPendingTransactions answers author_pendingTransactions.
type ResultPendingTransactions struct {
	Transactions []string `json:"transactions"`
	Count        int      `json:"count"`
}

// ResultFinalityStatus answers finality_getStatus.
type ResultFinalityStatus struct {
	LastFinalizedNumber uint64 `json:"last_finalized_number"`
	LastFinalizedHash   string `json:"last_finalized_hash"`
	Active              bool   `json:"active"`
}

// ResultJustification answers finality_getJustification.
type ResultJustification struct {
	BlockNumber uint64   `json:"block_number"`
	BlockHash   string   `json:"block_hash"`
	Epoch       uint64   `json:"epoch"`
	Voters      []string `json:"voters"`
}

func justificationResult(j *types.FinalityJustification) ResultJustification {
	voters := make([]string, len(j.Signatures))
	for i, vs := range j.Signatures {
		voters[i] = HexBytesString(vs.Voter[:])
	}
	return ResultJustification{
		BlockNumber: uint64(j.BlockNumber),
		BlockHash:   HexBytesString(j.BlockHash.Bytes()),
		Epoch:       uint64(j.Epoch),
		Voters:      voters,
	}
}

// ResultRoundInfo answers finality_getRoundInfo.
type ResultRoundInfo struct {
	Active       bool   `json:"active"`
	Number       uint32 `json:"number"`
	TargetNumber uint64 `json:"target_number"`
	TargetHash   string `json:"target_hash"`
	Step         string `json:"step"`
}

func roundInfoResult(r *consensus.Round, ok bool) ResultRoundInfo {
	if !ok {
		return ResultRoundInfo{Active: false}
	}
	return ResultRoundInfo{
		Active:       true,
		Number:       r.Number,
		TargetNumber: uint64(r.TargetNumber),
		TargetHash:   HexBytesString(r.TargetHash.Bytes()),
		Step:         r.Step.String(),
	}
}

// ResultEarlyVotingStatus answers validator_getEarlyVotingStatus.
type ResultEarlyVotingStatus struct {
	BootstrapActive  bool `json:"bootstrap_active"`
	PendingCandidates int `json:"pending_candidates"`
}

// ResultPendingCandidate mirrors validators.PendingCandidate for RPC.
type ResultPendingCandidate struct {
	Candidate string   `json:"candidate"`
	Proposer  string   `json:"proposer"`
	Voters    []string `json:"voters"`
	CreatedAt uint64   `json:"created_at"`
}

// ResultCandidateVotes answers validator_getCandidateVotes.
type ResultCandidateVotes struct {
	Candidate string   `json:"candidate"`
	Voters    []string `json:"voters"`
	Found     bool     `json:"found"`
}

// ResultCanVote answers validator_canVote.
type ResultCanVote struct {
	CanVote bool `json:"can_vote"`
}

// ResultHealth answers system_health.
type ResultHealth struct {
	Healthy     bool `json:"healthy"`
	IsSynced    bool `json:"is_synced"`
	HasPeers    bool `json:"has_peers"`
	BlockHeight uint64 `json:"block_height"`
	PeerCount   int    `json:"peer_count"`
}

func idHex(id primitives.AccountId) string { return HexBytesString(id[:]) }
