package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/streamgold/sgld-deployer/command"
	"github.com/streamgold/sgld-deployer/command/bootstrap"
	"github.com/streamgold/sgld-deployer/command/helper"
	"github.com/streamgold/sgld-deployer/contract"
	"github.com/streamgold/sgld-deployer/helper/hex"
	"github.com/streamgold/sgld-deployer/journal"
)

var params verifyParams

// GetCommand returns the verify command
func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <address> [constructor args...]",
		Short: "Verifies a deployed contract on the block explorer of its network",
		Long: "Verifies a deployed contract on the block explorer of its network. " +
			"The constructor arguments are taken from the journal when none are given.",
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	bootstrap.RegisterFlags(cmd, &params.Params)
	bootstrap.RegisterChainFlags(cmd, &params.chain, "", "chain")

	cmd.Flags().StringVar(
		&params.contractName,
		contractFlag,
		"",
		"the name of the contract artifact",
	)

	_ = cmd.MarkFlagRequired(contractFlag)

	return cmd
}

func runPreRun(_ *cobra.Command, args []string) error {
	return params.validateFlags(args)
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	res, err := run(cmd.Context(), &params, helper.Globals)
	if err != nil {
		outputter.SetError(fmt.Errorf("failed to verify %s: %w", params.contractName, err))

		return
	}

	outputter.SetCommandResult(res)
}

func run(ctx context.Context, p *verifyParams, g helper.GlobalParams) (command.CommandResult, error) {
	p.WithoutAccounts = true

	return bootstrap.Run(ctx, &p.Params, g, func(ctx context.Context, env *bootstrap.Env) (command.CommandResult, error) {
		chain, err := env.Chain(ctx, &p.chain)
		if err != nil {
			return nil, err
		}

		ctr, err := chain.At(ctx, p.contractName, p.address)
		if err != nil {
			return nil, err
		}

		art, err := env.Loader.Load(p.contractName)
		if err != nil {
			return nil, err
		}

		encodedArgs, err := constructorArgs(env, chain.ID(), ctr, p.rawArgs)
		if err != nil {
			return nil, err
		}

		verified, err := chain.VerifyContract(ctx, art, p.address, encodedArgs)
		if err != nil {
			return nil, err
		}

		return &verifyResult{
			Name:            p.contractName,
			ChainID:         chain.ID(),
			Address:         p.address,
			GUID:            verified.GUID,
			AlreadyVerified: verified.AlreadyVerified,
			URL:             verified.URL,
		}, nil
	})
}

// constructorArgs encodes the command line arguments, or reuses the journaled ones
// of the same deployment when none are given
func constructorArgs(env *bootstrap.Env, chainID uint64, ctr *contract.Contract, rawArgs []string) ([]byte, error) {
	if len(rawArgs) == 0 {
		rec, err := env.Journal.Latest(chainID, ctr.Name)

		switch {
		case errors.Is(err, journal.ErrNotFound):
		case err != nil:
			return nil, err
		case rec.Address == ctr.Address:
			env.Logger.Info("using journaled constructor arguments", "name", ctr.Name, "run", rec.RunID)

			return hex.DecodeHex(rec.EncodedArgs)
		}
	}

	args, err := contract.ParseArguments(rawArgs)
	if err != nil {
		return nil, err
	}

	if ctr.Abi.Constructor != nil {
		if args, err = contract.ConvertArguments(ctr.Abi.Constructor.Inputs, args); err != nil {
			return nil, err
		}
	}

	return contract.EncodeConstructor(ctr.Abi, args...)
}
