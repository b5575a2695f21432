package bridge

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/umbracle/ethgo"

	"github.com/streamgold/sgld-deployer/command"
	"github.com/streamgold/sgld-deployer/command/bootstrap"
	"github.com/streamgold/sgld-deployer/command/helper"
	"github.com/streamgold/sgld-deployer/network"
)

var params setupBridgeParams

// GetCommand returns the setup bridge command
func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bridge",
		Short:   "Links the bridge tunnel to the root tunnel and initializes the bridge token on the child chain",
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	setFlags(cmd)

	return cmd
}

func setFlags(cmd *cobra.Command) {
	bootstrap.RegisterFlags(cmd, &params.Params)
	bootstrap.RegisterChainFlags(cmd, &params.chain, "", "child chain")

	cmd.Flags().StringVar(
		&params.bridgeTunnel,
		bridgeTunnelFlag,
		"",
		"the FxERC20BridgeTunnel address, resolved from the address book, "+network.FxBridgeEnv+" or the journal if omitted",
	)

	cmd.Flags().StringVar(
		&params.bridgeToken,
		bridgeTokenFlag,
		"",
		"the StreamGoldBridge address, taken from the journal if omitted",
	)

	cmd.Flags().StringVar(
		&params.rootToken,
		rootTokenFlag,
		"",
		"the StreamGold address on the root chain, resolved from the address book or "+network.FxERC20Env+" if omitted",
	)

	cmd.Flags().StringVar(
		&params.rootTunnel,
		rootTunnelFlag,
		"",
		"the FxStreamRootTunnel address on the root chain, taken from the journal if omitted",
	)

	cmd.Flags().Uint64Var(
		&params.rootChainID,
		rootChainIDFlag,
		0,
		"the root chain id the root tunnel is looked up on, defaults to the root chain paired with the child chain",
	)

	cmd.Flags().StringVar(
		&params.feeAddress,
		feeAddressFlag,
		"",
		"the fee address of the bridge token, defaults to account 1",
	)

	cmd.Flags().StringVar(
		&params.owner,
		ownerFlag,
		"",
		"the owner of the bridge token, defaults to account 0",
	)

	cmd.Flags().StringVar(
		&params.unbacked,
		unbackedFlag,
		"",
		"the unbacked treasury address, defaults to account 2",
	)

	cmd.Flags().StringVar(
		&params.redeem,
		redeemFlag,
		"",
		"the redeem address, defaults to account 3",
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
		outputter.SetError(fmt.Errorf("failed to set up bridge: %w", err))

		return
	}

	outputter.SetCommandResult(res)
}

func run(ctx context.Context, p *setupBridgeParams, g helper.GlobalParams) (command.CommandResult, error) {
	return bootstrap.Run(ctx, &p.Params, g, func(ctx context.Context, env *bootstrap.Env) (command.CommandResult, error) {
		return setupBridge(ctx, env, p)
	})
}

func setupBridge(ctx context.Context, env *bootstrap.Env, p *setupBridgeParams) (command.CommandResult, error) {
	chain, err := env.Chain(ctx, &p.chain)
	if err != nil {
		return nil, err
	}

	summary, err := resolveAddresses(env, chain, p)
	if err != nil {
		return nil, err
	}

	key, err := env.Key(bootstrap.OwnerAccount)
	if err != nil {
		return nil, err
	}

	tunnel, err := chain.At(ctx, bootstrap.BridgeTunnelContract, summary.BridgeTunnel)
	if err != nil {
		return nil, err
	}

	token, err := chain.At(ctx, bootstrap.BridgeTokenContract, summary.BridgeToken)
	if err != nil {
		return nil, err
	}

	results, err := chain.Execute(ctx,
		&bootstrap.Call{Contract: tunnel, Key: key, Method: "setFxRootTunnel", Args: []interface{}{summary.RootTunnel}},
		&bootstrap.Call{Contract: token, Key: key, Method: "initialize", Args: []interface{}{
			summary.FeeAddress,
			summary.Owner,
			summary.BridgeTunnel,
			summary.RootToken,
			bootstrap.TokenName,
			bootstrap.TokenSymbol,
			bootstrap.TokenDecimals,
		}},
		&bootstrap.Call{Contract: token, Key: key, Method: "setUnbackedAddress", Args: []interface{}{summary.Unbacked}},
		&bootstrap.Call{Contract: token, Key: key, Method: "setRedeemAddress", Args: []interface{}{summary.Redeem}},
	)
	if err != nil {
		return nil, err
	}

	return append(results, summary), nil
}

func resolveAddresses(env *bootstrap.Env, chain *bootstrap.Chain, p *setupBridgeParams) (*setupBridgeResult, error) {
	fx, err := network.ResolveChild(env.AddressBook, chain.ChainID, env.LookupEnv)
	if err != nil {
		return nil, err
	}

	summary := &setupBridgeResult{}

	if summary.BridgeTunnel, err = helper.ParseAddressFlag(bridgeTunnelFlag, p.bridgeTunnel); err != nil {
		return nil, err
	}

	if summary.BridgeTunnel == ethgo.ZeroAddress {
		summary.BridgeTunnel = fx.FxBridge
	}

	if summary.BridgeTunnel == ethgo.ZeroAddress {
		if summary.BridgeTunnel, err = env.ResolveAddress(bootstrap.BridgeTunnelContract, bridgeTunnelFlag,
			"", chain.ID()); err != nil {
			return nil, err
		}
	}

	if summary.RootToken, err = helper.ParseAddressFlag(rootTokenFlag, p.rootToken); err != nil {
		return nil, err
	}

	if summary.RootToken == ethgo.ZeroAddress {
		summary.RootToken = fx.FxERC20
	}

	if err := bootstrap.RequireAddress(bootstrap.RootTokenContract, summary.RootToken,
		fmt.Sprintf("pass --%s or set %s", rootTokenFlag, network.FxERC20Env)); err != nil {
		return nil, err
	}

	rootChainID := p.rootChainID
	if rootChainID == 0 {
		rootChainID = network.RootChainID(chain.ChainID)
	}

	if summary.RootTunnel, err = env.ResolveAddress(bootstrap.RootTunnelContract, rootTunnelFlag,
		p.rootTunnel, rootChainID); err != nil {
		return nil, err
	}

	if summary.BridgeToken, err = env.ResolveAddress(bootstrap.BridgeTokenContract, bridgeTokenFlag,
		p.bridgeToken, chain.ID()); err != nil {
		return nil, err
	}

	if summary.FeeAddress, err = env.AccountAddress(feeAddressFlag, p.feeAddress, bootstrap.FeeAccount); err != nil {
		return nil, err
	}

	if summary.Owner, err = env.AccountAddress(ownerFlag, p.owner, bootstrap.OwnerAccount); err != nil {
		return nil, err
	}

	if summary.Unbacked, err = env.AccountAddress(unbackedFlag, p.unbacked, bootstrap.UnbackedAccount); err != nil {
		return nil, err
	}

	if summary.Redeem, err = env.AccountAddress(redeemFlag, p.redeem, bootstrap.RedeemAccount); err != nil {
		return nil, err
	}

	return summary, nil
}
