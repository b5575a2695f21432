package roottoken

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/streamgold/sgld-deployer/command"
	"github.com/streamgold/sgld-deployer/command/bootstrap"
	"github.com/streamgold/sgld-deployer/command/helper"
	"github.com/streamgold/sgld-deployer/helper/common"
)

var params rootTokenParams

// GetCommand returns the deploy root-token command
func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "root-token",
		Short:   "Deploys the gold oracle and the StreamGold token on the root chain",
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
		&params.lockedGold,
		lockedGoldFlag,
		defaultLockedGold,
		"the amount of gold locked in the oracle, in token units",
	)

	cmd.Flags().StringVar(
		&params.backedTokens,
		backedTokensFlag,
		defaultBackedTokens,
		"the amount of backed tokens minted after deployment, in token units",
	)

	cmd.Flags().StringVar(
		&params.feeAddress,
		feeAddressFlag,
		defaultFeeAddress,
		"the address collecting transfer fees",
	)

	cmd.Flags().StringVar(
		&params.backedTreasury,
		backedTreasuryFlag,
		"",
		"the backed treasury address, defaults to account 1",
	)

	cmd.Flags().StringVar(
		&params.unbackedTreasury,
		unbackedTreasuryFlag,
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
		outputter.SetError(fmt.Errorf("failed to deploy root token: %w", err))

		return
	}

	outputter.SetCommandResult(res)
}

func run(ctx context.Context, p *rootTokenParams, g helper.GlobalParams) (command.CommandResult, error) {
	return bootstrap.Run(ctx, &p.Params, g, func(ctx context.Context, env *bootstrap.Env) (command.CommandResult, error) {
		return deployRootToken(ctx, env, p)
	})
}

func deployRootToken(ctx context.Context, env *bootstrap.Env, p *rootTokenParams) (command.CommandResult, error) {
	lockedGold, err := common.ParseUnits(p.lockedGold, bootstrap.TokenDecimals)
	if err != nil {
		return nil, err
	}

	backedTokens, err := common.ParseUnits(p.backedTokens, bootstrap.TokenDecimals)
	if err != nil {
		return nil, err
	}

	summary := &rootTokenResult{
		LockedGold:   p.lockedGold,
		BackedTokens: p.backedTokens,
	}

	if summary.FeeAddress, err = helper.ParseAddressFlag(feeAddressFlag, p.feeAddress); err != nil {
		return nil, err
	}

	if summary.BackedTreasury, err = env.AccountAddress(backedTreasuryFlag, p.backedTreasury,
		bootstrap.BackedAccount); err != nil {
		return nil, err
	}

	if summary.UnbackedTreasury, err = env.AccountAddress(unbackedTreasuryFlag, p.unbackedTreasury,
		bootstrap.UnbackedAccount); err != nil {
		return nil, err
	}

	if summary.Redeem, err = env.AccountAddress(redeemFlag, p.redeem, bootstrap.RedeemAccount); err != nil {
		return nil, err
	}

	key, err := env.Key(bootstrap.DeployerAccount)
	if err != nil {
		return nil, err
	}

	chain, err := env.Chain(ctx, &p.chain)
	if err != nil {
		return nil, err
	}

	if err := chain.CheckDeployable(ctx, bootstrap.OracleContract, bootstrap.RootTokenContract); err != nil {
		return nil, err
	}

	oracle, oracleDep, err := chain.Deploy(ctx, bootstrap.OracleContract, key, nil)
	if err != nil {
		return nil, err
	}

	lockReceipt, err := oracle.Transact(ctx, key, "lockAmount", nil, lockedGold)
	if err != nil {
		return nil, err
	}

	args := []interface{}{
		summary.UnbackedTreasury,
		summary.BackedTreasury,
		summary.FeeAddress,
		summary.Redeem,
		oracle.Address,
	}

	token, tokenDep, err := chain.Deploy(ctx, bootstrap.RootTokenContract, key, nil, args...)
	if err != nil {
		return nil, err
	}

	addReceipt, err := token.Transact(ctx, key, "addBackedTokens", nil, backedTokens)
	if err != nil {
		return nil, err
	}

	summary.Oracle = oracle.Address
	summary.Token = token.Address

	oracleRes := bootstrap.NewDeploymentResult(chain.ID(), oracleDep)
	oracleRes.VerifyHint = chain.VerifyHint(oracleDep, nil)

	tokenRes, err := chain.Finish(ctx, tokenDep, bootstrap.FormatArgs(args))
	if err != nil {
		return nil, err
	}

	return command.Results{
		oracleRes,
		bootstrap.NewTransactionResult(chain.ID(), oracle, "lockAmount", lockReceipt),
		tokenRes,
		bootstrap.NewTransactionResult(chain.ID(), token, "addBackedTokens", addReceipt),
		summary,
	}, nil
}
