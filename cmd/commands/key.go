package commands

import (
	"fmt"

	"kratos/privval"

	tmos "github.com/tendermint/tendermint/libs/os"

	"github.com/spf13/cobra"
)

// KeyCmd groups `key generate` and `key inspect` into one subcommand
// tree.
var KeyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage this node's ed25519 identity",
}

var keyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate this node's identity (fails if one already exists)",
	RunE:  keyGenerate,
}

var keyInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print this node's public identity",
	RunE:  keyInspect,
}

func init() {
	KeyCmd.AddCommand(keyGenerateCmd, keyInspectCmd)
}

func identityPath() string { return basePath + "/identity.seed" }

func keyGenerate(cmd *cobra.Command, args []string) error {
	path := identityPath()
	if tmos.FileExists(path) {
		return fmt.Errorf("commands: identity already exists at %s (use `key inspect` to view it)", path)
	}
	pv, err := privval.GenFilePV(path)
	if err != nil {
		return err
	}
	if err := pv.Save(); err != nil {
		return err
	}
	fmt.Println(pv.PublicKey())
	return nil
}

func keyInspect(cmd *cobra.Command, args []string) error {
	pv, err := privval.LoadFilePV(identityPath())
	if err != nil {
		return fmt.Errorf("commands: no identity found (run `key generate` first): %w", err)
	}
	fmt.Println(pv.PublicKey())
	return nil
}
