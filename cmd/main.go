package main

import (
	"fmt"
	"os"

	commands "kratos/cmd/commands"

	"github.com/tendermint/tendermint/libs/cli"
)

func main() {
	rootCmd := commands.RootCmd

	rootCmd.AddCommand(
		commands.RunNodeCmd,
		commands.KeyCmd,
		commands.InfoCmd,
		commands.PurgeCmd,
		commands.ExportCmd,
		cli.NewCompletionCmd(rootCmd, true),
	)

	cmd := cli.PrepareBaseCmd(rootCmd, "KRATOS", os.ExpandEnv("$HOME/.kratos"))
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
