package deployments

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/streamgold/sgld-deployer/command"
	"github.com/streamgold/sgld-deployer/command/bootstrap"
	"github.com/streamgold/sgld-deployer/command/helper"
	"github.com/streamgold/sgld-deployer/journal"
)

const (
	chainIDFlag = "chain-id"
	latestFlag  = "latest"
)

type deploymentsParams struct {
	bootstrap.Params

	chainID uint64
	network string
	latest  bool
}

var params deploymentsParams

// GetCommand returns the deployments command
func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deployments",
		Short: "Lists the deployments recorded in the journal",
		Run:   runCommand,
	}

	cmd.Flags().StringVar(
		&params.JournalPath,
		bootstrap.JournalFlag,
		"",
		"the deployment journal database, overrides the config file",
	)

	cmd.Flags().Uint64Var(
		&params.chainID,
		chainIDFlag,
		0,
		"list the deployments of this chain only",
	)

	cmd.Flags().StringVar(
		&params.network,
		bootstrap.NetworkFlag,
		"",
		"list the deployments of the chain id of this config file network only",
	)

	cmd.Flags().BoolVar(
		&params.latest,
		latestFlag,
		false,
		"list only the latest deployment of every contract",
	)

	cmd.MarkFlagsMutuallyExclusive(chainIDFlag, bootstrap.NetworkFlag)

	return cmd
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	res, err := run(cmd.Context(), &params, helper.Globals)
	if err != nil {
		outputter.SetError(fmt.Errorf("failed to list deployments: %w", err))

		return
	}

	outputter.SetCommandResult(res)
}

func run(ctx context.Context, p *deploymentsParams, g helper.GlobalParams) (command.CommandResult, error) {
	p.WithoutAccounts = true

	return bootstrap.Run(ctx, &p.Params, g, func(_ context.Context, env *bootstrap.Env) (command.CommandResult, error) {
		chains, err := selectChains(env, p)
		if err != nil {
			return nil, err
		}

		res := &deploymentsResult{Deployments: []*journal.Record{}}

		for _, chainID := range chains {
			records, err := env.Journal.History(chainID)
			if err != nil {
				return nil, err
			}

			if p.latest {
				records = latestOnly(records)
			}

			res.Deployments = append(res.Deployments, records...)
		}

		return res, nil
	})
}

func selectChains(env *bootstrap.Env, p *deploymentsParams) ([]uint64, error) {
	if p.network != "" {
		n, err := env.Config.Network(p.network)
		if err != nil {
			return nil, err
		}

		if n.ChainID == 0 {
			return nil, fmt.Errorf("network %s has no chain_id set, use --%s", p.network, chainIDFlag)
		}

		return []uint64{n.ChainID}, nil
	}

	if p.chainID != 0 {
		return []uint64{p.chainID}, nil
	}

	return env.Journal.Chains()
}

// latestOnly keeps the last record of every name, in history order
func latestOnly(records []*journal.Record) []*journal.Record {
	last := make(map[string]int, len(records))
	for i, rec := range records {
		last[rec.Name] = i
	}

	out := make([]*journal.Record, 0, len(last))

	for i, rec := range records {
		if last[rec.Name] == i {
			out = append(out, rec)
		}
	}

	return out
}
