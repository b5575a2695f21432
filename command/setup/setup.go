package setup

import (
	"github.com/spf13/cobra"

	"github.com/streamgold/sgld-deployer/command/setup/bridge"
	"github.com/streamgold/sgld-deployer/command/setup/root"
)

// GetCommand returns the setup command
func GetCommand() *cobra.Command {
	setupCmd := &cobra.Command{
		Use:   "setup",
		Short: "Runs the post-deployment configuration of the bridge contracts",
	}

	setupCmd.AddCommand(
		// sgld setup bridge
		bridge.GetCommand(),
		// sgld setup root
		root.GetCommand(),
	)

	return setupCmd
}
