package bridgetoken

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/streamgold/sgld-deployer/command"
	"github.com/streamgold/sgld-deployer/command/bootstrap"
	"github.com/streamgold/sgld-deployer/command/helper"
)

type bridgeTokenParams struct {
	bootstrap.Params

	chain bootstrap.ChainParams
}

var params bridgeTokenParams

// GetCommand returns the deploy bridge-token command
func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bridge-token",
		Short: "Deploys the StreamGoldBridge token on the child chain, it is initialized by setup bridge",
		Run:   runCommand,
	}

	bootstrap.RegisterFlags(cmd, &params.Params)
	bootstrap.RegisterDeployFlags(cmd, &params.Params)
	bootstrap.RegisterChainFlags(cmd, &params.chain, "", "child chain")

	return cmd
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	res, err := run(cmd.Context(), &params, helper.Globals)
	if err != nil {
		outputter.SetError(fmt.Errorf("failed to deploy bridge token: %w", err))

		return
	}

	outputter.SetCommandResult(res)
}

func run(ctx context.Context, p *bridgeTokenParams, g helper.GlobalParams) (command.CommandResult, error) {
	return bootstrap.Run(ctx, &p.Params, g, func(ctx context.Context, env *bootstrap.Env) (command.CommandResult, error) {
		key, err := env.Key(bootstrap.DeployerAccount)
		if err != nil {
			return nil, err
		}

		chain, err := env.Chain(ctx, &p.chain)
		if err != nil {
			return nil, err
		}

		_, dep, err := chain.Deploy(ctx, bootstrap.BridgeTokenContract, key, nil)
		if err != nil {
			return nil, err
		}

		return chain.Finish(ctx, dep, nil)
	})
}
