package rpc

import (
	"fmt"

	"kratos/primitives"
	"kratos/types"

	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"
)

func genesisHash() primitives.Hash {
	if b, ok := env.Engine.BlockByNumber(0); ok {
		return b.Hash()
	}
	return primitives.Hash{}
}

// ChainGetInfo implements chain_getInfo.
func ChainGetInfo(ctx *rpctypes.Context) (*ResultChainInfo, error) {
	tip := env.Engine.TipHeight()
	var epoch, slot uint64
	if b, ok := env.Engine.BlockByNumber(tip); ok {
		epoch = uint64(b.Header.Epoch)
		slot = uint64(b.Header.Slot)
	}
	best := primitives.Hash{}
	if b, ok := env.Engine.BlockByNumber(tip); ok {
		best = b.Hash()
	}
	synced := true
	if env.IsSynced != nil {
		synced = env.IsSynced()
	}
	return &ResultChainInfo{
		ChainName:    env.ChainName,
		Height:       uint64(tip),
		BestHash:     HexBytesString(best.Bytes()),
		GenesisHash:  HexBytesString(genesisHash().Bytes()),
		CurrentEpoch: epoch,
		CurrentSlot:  slot,
		IsSynced:     synced,
	}, nil
}

// ChainGetBlock implements chain_getBlock(number|hash|"latest").
func ChainGetBlock(ctx *rpctypes.Context, query string) (*ResultBlock, error) {
	block, err := resolveBlock(query)
	if err != nil {
		return nil, err
	}
	r := blockResult(block)
	return &r, nil
}

// ChainGetHeader implements chain_getHeader(number?): an empty query
// resolves to the current tip.
func ChainGetHeader(ctx *rpctypes.Context, query string) (*ResultHeader, error) {
	if query == "" {
		query = "latest"
	}
	block, err := resolveBlock(query)
	if err != nil {
		return nil, err
	}
	h := headerResult(block.Header)
	return &h, nil
}

func resolveBlock(query string) (*types.Block, error) {
	if query == "" || query == "latest" {
		block, ok := env.Engine.BlockByNumber(env.Engine.TipHeight())
		if !ok {
			return nil, fmt.Errorf("rpc: no blocks yet")
		}
		return block, nil
	}
	if len(query) >= 2 && (query[:2] == "0x" || query[:2] == "0X") {
		h, err := primitives.HashFromHex(query)
		if err != nil {
			return nil, fmt.Errorf("rpc: invalid block hash %q: %w", query, err)
		}
		block, ok := env.Engine.BlockByHash(h)
		if !ok {
			return nil, fmt.Errorf("rpc: block %s not found", query)
		}
		return block, nil
	}
	var n uint64
	if _, err := fmt.Sscanf(query, "%d", &n); err != nil {
		return nil, fmt.Errorf("rpc: invalid block query %q", query)
	}
	block, ok := env.Engine.BlockByNumber(types.BlockNumber(n))
	if !ok {
		return nil, fmt.Errorf("rpc: block %d not found", n)
	}
	return block, nil
}
