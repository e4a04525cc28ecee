package rpc

import rpcserver "github.com/tendermint/tendermint/rpc/jsonrpc/server"

// Routes is the JSON-RPC method table for the full RPC surface, a
// map of rpcserver.RPCFunc entries.
var Routes = map[string]*rpcserver.RPCFunc{
	"chain_getInfo":   rpcserver.NewRPCFunc(ChainGetInfo, ""),
	"chain_getBlock":  rpcserver.NewRPCFunc(ChainGetBlock, "query"),
	"chain_getHeader": rpcserver.NewRPCFunc(ChainGetHeader, "query"),

	"state_getAccount": rpcserver.NewRPCFunc(StateGetAccount, "account"),
	"state_getBalance": rpcserver.NewRPCFunc(StateGetBalance, "account"),
	"state_getNonce":   rpcserver.NewRPCFunc(StateGetNonce, "account"),

	"author_submitTransaction":   rpcserver.NewRPCFunc(AuthorSubmitTransaction, "tx"),
	"author_pendingTransactions": rpcserver.NewRPCFunc(AuthorPendingTransactions, ""),
	"author_removeTransaction":   rpcserver.NewRPCFunc(AuthorRemoveTransaction, "hash"),

	"finality_getStatus":         rpcserver.NewRPCFunc(FinalityGetStatus, ""),
	"finality_getLastFinalized":  rpcserver.NewRPCFunc(FinalityGetLastFinalized, ""),
	"finality_getJustification":  rpcserver.NewRPCFunc(FinalityGetJustification, "number"),
	"finality_getRoundInfo":      rpcserver.NewRPCFunc(FinalityGetRoundInfo, ""),

	"validator_getEarlyVotingStatus": rpcserver.NewRPCFunc(ValidatorGetEarlyVotingStatus, ""),
	"validator_getPendingCandidates": rpcserver.NewRPCFunc(ValidatorGetPendingCandidates, ""),
	"validator_getCandidateVotes":    rpcserver.NewRPCFunc(ValidatorGetCandidateVotes, "account"),
	"validator_canVote":              rpcserver.NewRPCFunc(ValidatorCanVote, "account"),

	"system_health": rpcserver.NewRPCFunc(SystemHealth, ""),
}
