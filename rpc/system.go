package rpc

import (
	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"
)

// SystemHealth implements system_health.
func SystemHealth(ctx *rpctypes.Context) (*ResultHealth, error) {
	synced := true
	if env.IsSynced != nil {
		synced = env.IsSynced()
	}
	peers := 0
	if env.PeerCount != nil {
		peers = env.PeerCount()
	}
	return &ResultHealth{
		Healthy:     true,
		IsSynced:    synced,
		HasPeers:    peers > 0,
		BlockHeight: uint64(env.Engine.TipHeight()),
		PeerCount:   peers,
	}, nil
}
