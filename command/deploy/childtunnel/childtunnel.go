package childtunnel

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/streamgold/sgld-deployer/command"
	"github.com/streamgold/sgld-deployer/command/bootstrap"
	"github.com/streamgold/sgld-deployer/command/helper"
	"github.com/streamgold/sgld-deployer/network"
)

var params childTunnelParams

// GetCommand returns the deploy child-tunnel command
func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "child-tunnel",
		Short:   "Deploys the child tunnel (or the bridge tunnel) on the child chain",
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	setFlags(cmd)

	return cmd
}

func setFlags(cmd *cobra.Command) {
	bootstrap.RegisterFlags(cmd, &params.Params)
	bootstrap.RegisterDeployFlags(cmd, &params.Params)
	bootstrap.RegisterChainFlags(cmd, &params.chain, "", "child chain")

	cmd.Flags().StringVar(
		&params.contract,
		contractFlag,
		bootstrap.ChildTunnelContract,
		fmt.Sprintf("the tunnel contract to deploy (%s or %s)",
			bootstrap.ChildTunnelContract, bootstrap.BridgeTunnelContract),
	)
}

func runPreRun(_ *cobra.Command, _ []string) error {
	return params.validateFlags()
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	res, err := run(cmd.Context(), &params, helper.Globals)
	if err != nil {
		outputter.SetError(fmt.Errorf("failed to deploy child tunnel: %w", err))

		return
	}

	outputter.SetCommandResult(res)
}

func run(ctx context.Context, p *childTunnelParams, g helper.GlobalParams) (command.CommandResult, error) {
	return bootstrap.Run(ctx, &p.Params, g, func(ctx context.Context, env *bootstrap.Env) (command.CommandResult, error) {
		chain, err := env.Chain(ctx, &p.chain)
		if err != nil {
			return nil, err
		}

		fx, err := network.ResolveChild(env.AddressBook, chain.ChainID, env.LookupEnv)
		if err != nil {
			return nil, err
		}

		if err := bootstrap.RequireAddress(network.FxChild, fx.FxChild, "set "+network.FxChildEnv); err != nil {
			return nil, err
		}

		key, err := env.Key(bootstrap.DeployerAccount)
		if err != nil {
			return nil, err
		}

		_, dep, err := chain.Deploy(ctx, p.contract, key, nil, fx.FxChild)
		if err != nil {
			return nil, err
		}

		return chain.Finish(ctx, dep, bootstrap.FormatArgs([]interface{}{fx.FxChild}))
	})
}
