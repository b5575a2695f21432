package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/streamgold/sgld-deployer/command"
	"github.com/streamgold/sgld-deployer/command/bootstrap"
	"github.com/streamgold/sgld-deployer/command/helper"
	"github.com/streamgold/sgld-deployer/helper/common"
	"github.com/streamgold/sgld-deployer/network"
)

var params setupRootParams

// GetCommand returns the setup root command
func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use: "root",
		Short: "Exempts the root tunnel from token fees and deposits tokens from the depositor (account 4) " +
			"to the child chain",
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	setFlags(cmd)

	return cmd
}

func setFlags(cmd *cobra.Command) {
	bootstrap.RegisterFlags(cmd, &params.Params)
	bootstrap.RegisterChainFlags(cmd, &params.chain, "", "root chain")

	cmd.Flags().StringVar(
		&params.rootToken,
		rootTokenFlag,
		"",
		"the StreamGold address, taken from the journal if omitted",
	)

	cmd.Flags().StringVar(
		&params.rootTunnel,
		rootTunnelFlag,
		"",
		"the FxStreamRootTunnel address, taken from the journal if omitted",
	)

	cmd.Flags().StringVar(
		&params.childToken,
		childTokenFlag,
		"",
		"the StreamGoldBridge address on the child chain, taken from the journal if omitted",
	)

	cmd.Flags().Uint64Var(
		&params.childChainID,
		childChainIDFlag,
		0,
		"the child chain id the child token is looked up on, defaults to the child chain paired with the root chain",
	)

	cmd.Flags().StringVar(
		&params.approve,
		approveFlag,
		defaultApprove,
		"the allowance granted to the root tunnel, in token units",
	)

	cmd.Flags().StringVar(
		&params.amount,
		amountFlag,
		defaultAmount,
		"the amount deposited to the child chain, in token units",
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
		outputter.SetError(fmt.Errorf("failed to set up root: %w", err))

		return
	}

	outputter.SetCommandResult(res)
}

func run(ctx context.Context, p *setupRootParams, g helper.GlobalParams) (command.CommandResult, error) {
	return bootstrap.Run(ctx, &p.Params, g, func(ctx context.Context, env *bootstrap.Env) (command.CommandResult, error) {
		return setupRoot(ctx, env, p)
	})
}

func setupRoot(ctx context.Context, env *bootstrap.Env, p *setupRootParams) (command.CommandResult, error) {
	approveAmount, err := common.ParseUnits(p.approve, bootstrap.TokenDecimals)
	if err != nil {
		return nil, err
	}

	depositAmount, err := common.ParseUnits(p.amount, bootstrap.TokenDecimals)
	if err != nil {
		return nil, err
	}

	// deposit data is an empty bytes32 string
	data, err := common.Bytes32String("")
	if err != nil {
		return nil, err
	}

	owner, err := env.Key(bootstrap.OwnerAccount)
	if err != nil {
		return nil, err
	}

	depositor, err := env.Key(bootstrap.DepositorAccount)
	if err != nil {
		return nil, err
	}

	chain, err := env.Chain(ctx, &p.chain)
	if err != nil {
		return nil, err
	}

	rootTokenAddr, err := env.ResolveAddress(bootstrap.RootTokenContract, rootTokenFlag, p.rootToken, chain.ID())
	if err != nil {
		return nil, err
	}

	rootTunnelAddr, err := env.ResolveAddress(bootstrap.RootTunnelContract, rootTunnelFlag, p.rootTunnel, chain.ID())
	if err != nil {
		return nil, err
	}

	childChainID := p.childChainID
	if childChainID == 0 {
		childChainID = network.ChildChainID(chain.ChainID)
	}

	childToken, err := env.ResolveAddress(bootstrap.BridgeTokenContract, childTokenFlag, p.childToken, childChainID)
	if err != nil {
		return nil, err
	}

	token, err := chain.At(ctx, bootstrap.RootTokenContract, rootTokenAddr)
	if err != nil {
		return nil, err
	}

	tunnel, err := chain.At(ctx, bootstrap.RootTunnelContract, rootTunnelAddr)
	if err != nil {
		return nil, err
	}

	return chain.Execute(ctx,
		&bootstrap.Call{Contract: token, Key: owner, Method: "setFeeExempt",
			Args: []interface{}{rootTunnelAddr}},
		&bootstrap.Call{Contract: token, Key: depositor, Method: "approve",
			Args: []interface{}{rootTunnelAddr, approveAmount}},
		&bootstrap.Call{Contract: tunnel, Key: depositor, Method: "deposit",
			Args: []interface{}{rootTokenAddr, childToken, depositor.Address(), depositAmount, data[:]}},
	)
}
