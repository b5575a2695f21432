package deploy

import (
	"github.com/spf13/cobra"

	"github.com/streamgold/sgld-deployer/command/deploy/bridgetoken"
	"github.com/streamgold/sgld-deployer/command/deploy/childtunnel"
	"github.com/streamgold/sgld-deployer/command/deploy/roottoken"
	"github.com/streamgold/sgld-deployer/command/deploy/roottunnel"
)

// GetCommand returns the deploy command
func GetCommand() *cobra.Command {
	deployCmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploys the Stream Gold token and FxPortal tunnel contracts",
	}

	deployCmd.AddCommand(
		// sgld deploy root-tunnel
		roottunnel.GetCommand(),
		// sgld deploy child-tunnel
		childtunnel.GetCommand(),
		// sgld deploy root-token
		roottoken.GetCommand(),
		// sgld deploy bridge-token
		bridgetoken.GetCommand(),
	)

	return deployCmd
}
