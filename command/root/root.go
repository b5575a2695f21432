package root

import (
	"context"
	"fmt"
	"os"

	"github.com/carlmjohnson/versioninfo"
	"github.com/spf13/cobra"

	"github.com/streamgold/sgld-deployer/command"
	"github.com/streamgold/sgld-deployer/command/deploy"
	"github.com/streamgold/sgld-deployer/command/deployments"
	"github.com/streamgold/sgld-deployer/command/gateway"
	"github.com/streamgold/sgld-deployer/command/helper"
	"github.com/streamgold/sgld-deployer/command/setup"
	"github.com/streamgold/sgld-deployer/command/verify"
	"github.com/streamgold/sgld-deployer/command/version"
)

type RootCommand struct {
	baseCmd *cobra.Command
}

func NewRootCommand() *RootCommand {
	rootCommand := &RootCommand{
		baseCmd: &cobra.Command{
			Use:     command.AppName,
			Short:   "Deploys and wires the Stream Gold FxPortal bridge contracts and the AnyCall ERC-721 gateway",
			Version: versioninfo.Short(),
		},
	}

	helper.RegisterGlobalFlags(rootCommand.baseCmd)

	rootCommand.registerSubCommands()

	return rootCommand
}

func (rc *RootCommand) registerSubCommands() {
	rc.baseCmd.AddCommand(
		version.GetCommand(),
		deploy.GetCommand(),
		setup.GetCommand(),
		gateway.GetCommand(),
		verify.GetCommand(),
		deployments.GetCommand(),
	)
}

func (rc *RootCommand) Execute(ctx context.Context) {
	if err := rc.baseCmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}

	if command.Failed() {
		os.Exit(1)
	}
}
