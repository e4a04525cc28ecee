package rpc

import (
	"fmt"

	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"
)

// FinalityGetStatus implements finality_getStatus.
func FinalityGetStatus(ctx *rpctypes.Context) (*ResultFinalityStatus, error) {
	j, ok := env.Engine.LastFinalized()
	if !ok {
		return &ResultFinalityStatus{Active: false}, nil
	}
	return &ResultFinalityStatus{
		LastFinalizedNumber: uint64(j.BlockNumber),
		LastFinalizedHash:   HexBytesString(j.BlockHash.Bytes()),
		Active:              true,
	}, nil
}

// FinalityGetLastFinalized implements finality_getLastFinalized.
func FinalityGetLastFinalized(ctx *rpctypes.Context) (*ResultJustification, error) {
	j, ok := env.Engine.LastFinalized()
	if !ok {
		return nil, fmt.Errorf("rpc: no finalized block yet")
	}
	r := justificationResult(j)
	return &r, nil
}

// FinalityGetJustification implements finality_getJustification(number).
// This repo retains only the most recently produced justification
// (the finality gadget does not require an archival justification
// store), so any
// query other than that exact number reports not-found.
func FinalityGetJustification(ctx *rpctypes.Context, number uint64) (*ResultJustification, error) {
	j, ok := env.Engine.LastFinalized()
	if !ok || uint64(j.BlockNumber) != number {
		return nil, fmt.Errorf("rpc: no justification retained for block %d", number)
	}
	r := justificationResult(j)
	return &r, nil
}

// FinalityGetRoundInfo implements finality_getRoundInfo.
func FinalityGetRoundInfo(ctx *rpctypes.Context) (*ResultRoundInfo, error) {
	round, ok := env.Engine.CurrentRound()
	r := roundInfoResult(round, ok)
	return &r, nil
}
