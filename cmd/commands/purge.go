package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// PurgeCmd wipes the local data directory, the way a node operator
// resets a testnet node without touching its identity file separately.
var PurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete the local chain database (keeps the node identity)",
	RunE:  purge,
}

func purge(cmd *cobra.Command, args []string) error {
	dbPath := basePath + "/kratos.db"
	if err := os.RemoveAll(dbPath); err != nil {
		return fmt.Errorf("commands: purging %s: %w", dbPath, err)
	}
	logger.Info("purged chain database", "path", dbPath)
	return nil
}
