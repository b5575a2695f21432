package roottunnel

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"
	"github.com/umbracle/ethgo"

	"github.com/streamgold/sgld-deployer/command"
	"github.com/streamgold/sgld-deployer/command/bootstrap"
	"github.com/streamgold/sgld-deployer/command/helper"
	"github.com/streamgold/sgld-deployer/network"
)

var params rootTunnelParams

// GetCommand returns the deploy root-tunnel command
func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "root-tunnel",
		Short:   "Deploys FxStreamRootTunnel on the root chain and links it to the child bridge tunnel",
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	setFlags(cmd)

	return cmd
}

func setFlags(cmd *cobra.Command) {
	bootstrap.RegisterFlags(cmd, &params.Params)
	bootstrap.RegisterDeployFlags(cmd, &params.Params)
	bootstrap.RegisterChainFlags(cmd, &params.chain, "", "root chain")

	cmd.Flags().StringVar(
		&params.bridgeTunnel,
		bridgeTunnelFlag,
		"",
		"the FxERC20BridgeTunnel address on the child chain, "+
			"looked up in the journal and then in the address book if omitted",
	)

	cmd.Flags().Uint64Var(
		&params.childChainID,
		childChainIDFlag,
		0,
		"the child chain id the bridge tunnel is looked up on, "+
			"defaults to the child chain paired with the root chain",
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
		outputter.SetError(fmt.Errorf("failed to deploy root tunnel: %w", err))

		return
	}

	outputter.SetCommandResult(res)
}

func run(ctx context.Context, p *rootTunnelParams, g helper.GlobalParams) (command.CommandResult, error) {
	return bootstrap.Run(ctx, &p.Params, g, func(ctx context.Context, env *bootstrap.Env) (command.CommandResult, error) {
		return deployRootTunnel(ctx, env, p)
	})
}

func deployRootTunnel(ctx context.Context, env *bootstrap.Env,
	p *rootTunnelParams) (command.CommandResult, error) {
	chain, err := env.Chain(ctx, &p.chain)
	if err != nil {
		return nil, err
	}

	fx, err := network.ResolveRoot(env.AddressBook, chain.ChainID, env.LookupEnv)
	if err != nil {
		return nil, err
	}

	if err := bootstrap.RequireAddress(network.CheckpointManager, fx.CheckpointManager,
		"set "+network.CheckpointManagerEnv); err != nil {
		return nil, err
	}

	if err := bootstrap.RequireAddress(network.FxRoot, fx.FxRoot, "set "+network.FxRootEnv); err != nil {
		return nil, err
	}

	bridgeTunnel, err := resolveBridgeTunnel(env, chain.ChainID, p)
	if err != nil {
		return nil, err
	}

	key, err := env.Key(bootstrap.DeployerAccount)
	if err != nil {
		return nil, err
	}

	args := []interface{}{fx.CheckpointManager, fx.FxRoot}

	tunnel, dep, err := chain.Deploy(ctx, bootstrap.RootTunnelContract, key, nil, args...)
	if err != nil {
		return nil, err
	}

	receipt, err := tunnel.Transact(ctx, key, "setFxBridgeTunnel", nil, bridgeTunnel)
	if err != nil {
		return nil, err
	}

	deployed, err := chain.Finish(ctx, dep, bootstrap.FormatArgs(args))
	if err != nil {
		return nil, err
	}

	return command.Results{
		deployed,
		bootstrap.NewTransactionResult(chain.ID(), tunnel, "setFxBridgeTunnel", receipt),
	}, nil
}

// resolveBridgeTunnel takes the bridge tunnel from the flag, the journal of the child chain
// or the address book, in that order
func resolveBridgeTunnel(env *bootstrap.Env, rootChainID *big.Int, p *rootTunnelParams) (ethgo.Address, error) {
	childChainID := p.childChainID
	if childChainID == 0 {
		childChainID = network.ChildChainID(rootChainID)
	}

	addr, err := env.ResolveAddress(bootstrap.BridgeTunnelContract, bridgeTunnelFlag, p.bridgeTunnel, childChainID)
	if err == nil {
		return addr, nil
	} else if !errors.Is(err, bootstrap.ErrAddressNotSet) {
		return ethgo.ZeroAddress, err
	}

	child, err := network.ResolveChild(env.AddressBook, new(big.Int).SetUint64(childChainID), env.LookupEnv)
	if err != nil {
		return ethgo.ZeroAddress, err
	}

	if err := bootstrap.RequireAddress(bootstrap.BridgeTunnelContract, child.FxBridge,
		fmt.Sprintf("pass --%s, deploy it on chain %d first or set %s",
			bridgeTunnelFlag, childChainID, network.FxBridgeEnv)); err != nil {
		return ethgo.ZeroAddress, err
	}

	return child.FxBridge, nil
}
