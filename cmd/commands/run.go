package commands

import (
	"fmt"

	"kratos/node"
	"kratos/types"

	"github.com/spf13/cobra"
)

var (
	genesisPath string
	isValidator bool
	rpcPort     int
	bootnodes   string
)

// RunNodeCmd implements the `run` subcommand: `run [--genesis]
// [--validator] [--port] [--rpc-port] [--base-path] [--bootnodes]`.
// The teacher's equivalent is NewRunNodeCmd(nodeFunc), a factory over
// an injectable node constructor (DefaultNewNode); this repo has only
// the one constructor, so it is called directly rather than injected.
var RunNodeCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a KRATOS node",
	RunE:  runNode,
}

func init() {
	RunNodeCmd.Flags().StringVar(&genesisPath, "genesis", "", "path to the genesis document (required)")
	RunNodeCmd.Flags().BoolVar(&isValidator, "validator", false, "run as a block-producing validator")
	RunNodeCmd.Flags().IntVar(&rpcPort, "rpc-port", 26657, "RPC listen port")
	// --port is accepted for CLI-surface compatibility; the P2P
	// listen port belongs to the bus's eventual real transport, which
	// this process does not itself bind (see node.Node's doc comment).
	RunNodeCmd.Flags().Int("port", 26656, "P2P listen port (reserved for a networked bus.Bus)")
	RunNodeCmd.Flags().StringVar(&bootnodes, "bootnodes", "", "comma-separated peer addresses (accepted; this process does not dial peers)")
	RunNodeCmd.MarkFlagRequired("genesis")
}

func runNode(cmd *cobra.Command, args []string) error {
	genesis, err := types.LoadGenesisDoc(genesisPath)
	if err != nil {
		return fmt.Errorf("commands: loading genesis: %w", err)
	}

	cfg := node.Config{
		BasePath:    basePath,
		RPCListen:   fmt.Sprintf("tcp://0.0.0.0:%d", rpcPort),
		IsValidator: isValidator,
		ChainName:   genesis.ChainName,
	}

	n, err := node.New(cfg, genesis, logger)
	if err != nil {
		return fmt.Errorf("commands: constructing node: %w", err)
	}

	if err := n.Start(); err != nil {
		return fmt.Errorf("commands: starting node: %w", err)
	}
	defer n.Stop()

	logger.Info("kratos node running", "rpc", cfg.RPCListen, "validator", isValidator)
	select {}
}
