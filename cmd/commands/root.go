// Package commands implements the CLI surface: run, key generate|
// inspect, info, purge, export — one file per subcommand, with a
// package-level config/logger shared via init and cobra.Command
// values registered onto a RootCmd by cmd/main.go, over this repo's
// plain ed25519 identity and GenesisDoc.
package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"
)

func writeJSONFile(path string, v interface{}) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("commands: marshaling %s: %w", path, err)
	}
	return os.WriteFile(path, buf, 0644)
}

var (
	basePath string
	logger   = log.NewTMLogger(log.NewSyncWriter(os.Stdout))
)

// RootCmd is the kratos binary's top-level command, extended by
// cmd/main.go with RunNodeCmd/KeyCmd/InfoCmd/PurgeCmd/ExportCmd.
var RootCmd = &cobra.Command{
	Use:   "kratos",
	Short: "KRATOS consensus-core node",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if basePath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("commands: resolving home directory: %w", err)
			}
			basePath = home + "/.kratos"
		}
		viper.Set("base_path", basePath)
		return os.MkdirAll(basePath, 0755)
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&basePath, "base-path", "", "data directory (default $HOME/.kratos)")
}
