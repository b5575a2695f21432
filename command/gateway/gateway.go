package gateway

import (
	"context"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"
	"github.com/umbracle/ethgo"
	"golang.org/x/sync/errgroup"

	"github.com/streamgold/sgld-deployer/artifact"
	"github.com/streamgold/sgld-deployer/command"
	"github.com/streamgold/sgld-deployer/command/bootstrap"
	"github.com/streamgold/sgld-deployer/command/helper"
	"github.com/streamgold/sgld-deployer/contract"
	"github.com/streamgold/sgld-deployer/helper/common"
)

var params = gatewayParams{}

// GetCommand returns the gateway command
func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use: "gateway",
		Short: "Deploys an ERC-721 token and its AnyCall gateway on two chains, " +
			"pairs the gateways and funds their AnyCall fee accounts",
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	setFlags(cmd)

	return cmd
}

func setFlags(cmd *cobra.Command) {
	bootstrap.RegisterFlags(cmd, &params.Params)
	bootstrap.RegisterDeployFlags(cmd, &params.Params)
	bootstrap.RegisterChainFlags(cmd, &params.chainA, suffixA, "chain A")
	bootstrap.RegisterChainFlags(cmd, &params.chainB, suffixB, "chain B")

	cmd.Flags().StringVar(
		&params.anyCallA,
		anyCallFlag+suffixA,
		"",
		"the AnyCall proxy on chain A, taken from the config network if omitted",
	)

	cmd.Flags().StringVar(
		&params.anyCallB,
		anyCallFlag+suffixB,
		"",
		"the AnyCall proxy on chain B, taken from the config network if omitted",
	)

	cmd.Flags().StringVar(
		&params.depositValue,
		depositValueFlag,
		defaultDepositValue,
		"the native currency deposited to each AnyCall proxy for the peer gateway, in ether",
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
		outputter.SetError(fmt.Errorf("failed to deploy the ERC721 gateways: %w", err))

		return
	}

	outputter.SetCommandResult(res)
}

func run(ctx context.Context, p *gatewayParams, g helper.GlobalParams) (command.CommandResult, error) {
	// the gateway contracts ship as abi/ and bin/ files
	if p.ArtifactsFormat == "" {
		p.ArtifactsFormat = artifact.FormatSplit
	}

	return bootstrap.Run(ctx, &p.Params, g, func(ctx context.Context, env *bootstrap.Env) (command.CommandResult, error) {
		return deployGateways(ctx, env, p)
	})
}

// side is the state of one chain of the gateway pair
type side struct {
	chain   *bootstrap.Chain
	key     ethgo.Key
	anyCall *contract.Contract
	gateway *contract.Contract
	token   ethgo.Address
	created []*unverified
	calls   command.Results
}

// unverified is a deployment waiting for its verification
type unverified struct {
	dep  *contract.Deployment
	args []string
}

func deployGateways(ctx context.Context, env *bootstrap.Env, p *gatewayParams) (command.CommandResult, error) {
	value, err := common.ParseUnits(p.depositValue, etherDecimals)
	if err != nil {
		return nil, err
	}

	key, err := env.Key(bootstrap.DeployerAccount)
	if err != nil {
		return nil, err
	}

	a, err := openSide(ctx, env, key, &p.chainA, suffixA, p.anyCallA)
	if err != nil {
		return nil, err
	}

	b, err := openSide(ctx, env, key, &p.chainB, suffixB, p.anyCallB)
	if err != nil {
		return nil, err
	}

	if a.chain.ID() == b.chain.ID() {
		return nil, fmt.Errorf("%w: %d", errSameChain, a.chain.ID())
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, s := range []*side{a, b} {
		s := s

		g.Go(func() error {
			return s.deploy(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := a.pair(ctx, b, value); err != nil {
		return nil, err
	}

	if err := b.pair(ctx, a, value); err != nil {
		return nil, err
	}

	results := command.Results{}

	for _, s := range []*side{a, b} {
		res, err := s.finish(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, res...)
	}

	results = append(results, &gatewayResult{
		A: a.summary(),
		B: b.summary(),
	})

	return results, nil
}

func openSide(ctx context.Context, env *bootstrap.Env, key ethgo.Key, cp *bootstrap.ChainParams,
	suffix, anyCallValue string) (*side, error) {
	chain, err := env.Chain(ctx, cp)
	if err != nil {
		return nil, err
	}

	flag := anyCallFlag + suffix

	addr, err := helper.ParseAddressFlag(flag, anyCallValue)
	if err != nil {
		return nil, err
	}

	if addr == ethgo.ZeroAddress && chain.Network != nil && chain.Network.AnyCall != "" {
		if addr, err = helper.ParseAddressFlag(flag, chain.Network.AnyCall); err != nil {
			return nil, err
		}
	}

	if err := bootstrap.RequireAddress(bootstrap.AnyCallContract, addr,
		fmt.Sprintf("set --%s or the anycall entry of the network", flag)); err != nil {
		return nil, err
	}

	anyCall, err := chain.At(ctx, bootstrap.AnyCallContract, addr)
	if err != nil {
		return nil, err
	}

	if err := chain.CheckDeployable(ctx, bootstrap.ERC721Contract, bootstrap.GatewayContract); err != nil {
		return nil, err
	}

	return &side{chain: chain, key: key, anyCall: anyCall}, nil
}

// deploy creates the token and its gateway
func (s *side) deploy(ctx context.Context) error {
	tokenArgs := []interface{}{tokenName, tokenSymbol}

	_, tokenDep, err := s.chain.Deploy(ctx, bootstrap.ERC721Contract, s.key,
		&contract.TxOptions{Gas: tokenGas}, tokenArgs...)
	if err != nil {
		return err
	}

	gatewayArgs := []interface{}{s.anyCall.Address, big.NewInt(0), tokenDep.Address}

	gateway, gatewayDep, err := s.chain.Deploy(ctx, bootstrap.GatewayContract, s.key,
		&contract.TxOptions{Gas: gatewayGas}, gatewayArgs...)
	if err != nil {
		return err
	}

	s.token = tokenDep.Address
	s.gateway = gateway
	s.created = append(s.created,
		&unverified{dep: tokenDep, args: bootstrap.FormatArgs(tokenArgs)},
		&unverified{dep: gatewayDep, args: bootstrap.FormatArgs(gatewayArgs)},
	)

	return nil
}

// pair registers the peer gateway and pays its AnyCall execution fees
func (s *side) pair(ctx context.Context, peer *side, value *big.Int) error {
	res, err := s.chain.Execute(ctx,
		&bootstrap.Call{Contract: s.gateway, Key: s.key, Method: "setPeers",
			Args: []interface{}{[]*big.Int{peer.chain.ChainID}, []ethgo.Address{peer.gateway.Address}}},
		&bootstrap.Call{Contract: s.anyCall, Key: s.key, Method: "deposit",
			Opts: &contract.TxOptions{Value: value},
			Args: []interface{}{peer.gateway.Address}},
	)
	if err != nil {
		return err
	}

	s.calls = append(s.calls, res...)

	return nil
}

// finish verifies the deployments of the side once it is paired and returns its results
func (s *side) finish(ctx context.Context) (command.Results, error) {
	results := make(command.Results, 0, len(s.created)+len(s.calls))

	for _, c := range s.created {
		res, err := s.chain.Finish(ctx, c.dep, c.args)
		if err != nil {
			return nil, err
		}

		results = append(results, res)
	}

	return append(results, s.calls...), nil
}

func (s *side) summary() gatewaySide {
	return gatewaySide{
		ChainID: s.chain.ID(),
		Token:   s.token,
		Gateway: s.gateway.Address,
		AnyCall: s.anyCall.Address,
	}
}
