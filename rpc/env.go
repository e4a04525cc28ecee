// Package rpc implements the request/response RPC surface: chain_*,
// state_*, author_*, finality_*, validator_* and system_health, plus
// the hex-encoding contract those methods accept identifiers under.
// A package-level *Environment is injected once via SetEnvironment
// (env.go), one file per method group (chain.go/state.go/author.go/
// finality.go/validator.go/system.go), and a route table (routes.go)
// built from tendermint/rpc/jsonrpc/server.RPCFunc.
package rpc

import (
	"kratos/chain"

	"github.com/tendermint/tendermint/libs/log"
)

var env *Environment

// Environment is the RPC layer's only dependency on the rest of the
// node: the chain engine. Mempool/Store/Vals are already fields of
// the single ChainEngine facade.
type Environment struct {
	Engine    *chain.Engine
	ChainName string
	IsSynced  func() bool
	PeerCount func() int
	Logger    log.Logger
}

// SetEnvironment installs the process-wide RPC environment.
func SetEnvironment(e *Environment) { env = e }
