package commands

import (
	"fmt"

	"kratos/store"
	"kratos/types"

	"github.com/spf13/cobra"
)

var exportOut string

// ExportCmd dumps every persisted block, in number order, as a single
// JSON array — the CLI-surface complement to `purge`, letting an
// operator archive chain history before wiping local state.
var ExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the local chain history to a JSON file",
	RunE:  export,
}

func init() {
	ExportCmd.Flags().StringVar(&exportOut, "out", "chain-export.json", "output file path")
}

func export(cmd *cobra.Command, args []string) error {
	st, err := store.Open("kratos", basePath, logger)
	if err != nil {
		return fmt.Errorf("commands: opening store at %s: %w", basePath, err)
	}
	defer st.Close()

	var blocks []*types.Block
	for n := types.BlockNumber(0); ; n++ {
		block, ok, err := st.GetBlockByNumber(n)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		blocks = append(blocks, block)
	}

	if err := writeJSONFile(exportOut, blocks); err != nil {
		return err
	}
	logger.Info("exported chain history", "blocks", len(blocks), "path", exportOut)
	return nil
}
