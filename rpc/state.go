package rpc

import (
	"encoding/json"

	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"
)

// StateGetAccount implements state_getAccount(A).
func StateGetAccount(ctx *rpctypes.Context, account json.RawMessage) (*ResultAccount, error) {
	id, err := DecodeAccountId(account)
	if err != nil {
		return nil, err
	}
	acc, _ := env.Engine.State.GetAccount(id)
	return &ResultAccount{
		Balance:  acc.Balance.String(),
		Reserved: acc.Staked.String(),
		Nonce:    acc.Nonce,
	}, nil
}

// StateGetBalance implements state_getBalance(A).
func StateGetBalance(ctx *rpctypes.Context, account json.RawMessage) (string, error) {
	id, err := DecodeAccountId(account)
	if err != nil {
		return "", err
	}
	acc, _ := env.Engine.State.GetAccount(id)
	return acc.Balance.String(), nil
}

// StateGetNonce implements state_getNonce(A).
func StateGetNonce(ctx *rpctypes.Context, account json.RawMessage) (uint64, error) {
	id, err := DecodeAccountId(account)
	if err != nil {
		return 0, err
	}
	acc, _ := env.Engine.State.GetAccount(id)
	return acc.Nonce, nil
}
