package commands

import (
	"fmt"

	"kratos/store"

	"github.com/xlab/treeprint"

	"github.com/spf13/cobra"
)

// InfoCmd prints a human-readable dump of the persisted chain state,
// using xlab/treeprint for tree-shaped tooling output.
var InfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show a summary of the local chain state",
	RunE:  showInfo,
}

func showInfo(cmd *cobra.Command, args []string) error {
	st, err := store.Open("kratos", basePath, logger)
	if err != nil {
		return fmt.Errorf("commands: opening store at %s: %w", basePath, err)
	}
	defer st.Close()

	tree := treeprint.New()
	tree.SetValue("kratos node")

	chainBranch := tree.AddBranch("chain")
	number, hash, ok, err := st.GetFinalized()
	if err != nil {
		return err
	}
	if ok {
		chainBranch.AddNode(fmt.Sprintf("last finalized: #%d (%s)", number, hash))
	} else {
		chainBranch.AddNode("last finalized: none")
	}

	validatorsBranch := tree.AddBranch("validators")
	snapshot, ok, err := st.GetValidatorSnapshot()
	if err != nil {
		return err
	}
	if !ok {
		validatorsBranch.AddNode("no snapshot persisted yet")
	} else {
		for _, v := range snapshot {
			validatorsBranch.AddNode(fmt.Sprintf("%s stake=%s status=%s", v.Id, v.Stake, v.Status))
		}
	}

	fmt.Println(tree.String())
	return nil
}
