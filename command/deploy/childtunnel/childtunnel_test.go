package childtunnel

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umbracle/ethgo"

	"github.com/streamgold/sgld-deployer/artifact"
	"github.com/streamgold/sgld-deployer/command/bootstrap"
	"github.com/streamgold/sgld-deployer/command/helper"
	"github.com/streamgold/sgld-deployer/helper/tests"
	"github.com/streamgold/sgld-deployer/journal"
	"github.com/streamgold/sgld-deployer/network"
)

const mumbaiFxChild = "0xCf73231F28B7331BBe3124B907840A94851f9f11"

func newTestParams(t *testing.T, contract string, vars map[string]string,
	networks ...tests.ConfigNetwork) (*childTunnelParams, helper.GlobalParams, string) {
	t.Helper()

	dir := t.TempDir()
	tests.WriteBridgeArtifacts(t, filepath.Join(dir, "artifacts"))

	p := &childTunnelParams{contract: contract}
	p.TestMode = true
	p.LogOutput = io.Discard
	p.LookupEnv = tests.MapEnv(vars)

	return p, helper.GlobalParams{
		ConfigPath: tests.WriteConfig(t, dir, artifact.FormatHardhat, networks...),
	}, dir
}

func TestDeployChildTunnel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		contract string
	}{
		{bootstrap.ChildTunnelContract},
		{bootstrap.BridgeTunnelContract},
	}

	for _, c := range cases {
		c := c
		t.Run(c.contract, func(t *testing.T) {
			t.Parallel()

			node := tests.NewTestNode(t, network.MumbaiChainID)
			p, g, dir := newTestParams(t, c.contract, nil,
				tests.ConfigNetwork{Name: "mumbai", JSONRPC: node.URL, ChainID: network.MumbaiChainID})
			p.chain.Network = "mumbai"

			res, err := run(context.Background(), p, g)
			require.NoError(t, err)

			deployed, ok := res.(*bootstrap.DeploymentResult)
			require.True(t, ok)
			assert.Equal(t, c.contract, deployed.Name)
			assert.Equal(t, uint64(network.MumbaiChainID), deployed.ChainID)
			assert.Contains(t, deployed.VerifyHint, ethgo.HexToAddress(mumbaiFxChild).String())

			j, err := journal.Open(filepath.Join(dir, "journal.db"))
			require.NoError(t, err)

			defer j.Close()

			rec, err := j.Latest(network.MumbaiChainID, c.contract)
			require.NoError(t, err)
			require.Equal(t, deployed.Address, rec.Address)
		})
	}
}

func TestDeployChildTunnel_LocalNeedsFxChild(t *testing.T) {
	t.Parallel()

	node := tests.NewTestNode(t, 31337)
	p, g, _ := newTestParams(t, bootstrap.ChildTunnelContract, nil)
	p.chain.JSONRPC = node.URL

	_, err := run(context.Background(), p, g)
	require.ErrorIs(t, err, bootstrap.ErrAddressNotSet)

	p, g, _ = newTestParams(t, bootstrap.ChildTunnelContract, map[string]string{network.FxChildEnv: mumbaiFxChild})
	p.chain.JSONRPC = node.URL

	_, err = run(context.Background(), p, g)
	require.NoError(t, err)
}

func TestDeployChildTunnel_AlreadyDeployed(t *testing.T) {
	t.Parallel()

	node := tests.NewTestNode(t, network.MumbaiChainID)
	p, g, _ := newTestParams(t, bootstrap.ChildTunnelContract, nil)
	p.chain.JSONRPC = node.URL

	_, err := run(context.Background(), p, g)
	require.NoError(t, err)

	_, err = run(context.Background(), p, g)
	require.ErrorIs(t, err, bootstrap.ErrAlreadyDeployed)

	p.Force = true

	_, err = run(context.Background(), p, g)
	require.NoError(t, err)
}

func TestValidateFlags(t *testing.T) {
	t.Parallel()

	require.NoError(t, (&childTunnelParams{contract: bootstrap.ChildTunnelContract}).validateFlags())
	require.NoError(t, (&childTunnelParams{contract: bootstrap.BridgeTunnelContract}).validateFlags())
	require.Error(t, (&childTunnelParams{contract: "FxERC20RootTunnel"}).validateFlags())
}
