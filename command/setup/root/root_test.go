package root

import (
	"context"
	"io"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umbracle/ethgo"

	"github.com/streamgold/sgld-deployer/accounts"
	"github.com/streamgold/sgld-deployer/artifact"
	"github.com/streamgold/sgld-deployer/command"
	"github.com/streamgold/sgld-deployer/command/bootstrap"
	"github.com/streamgold/sgld-deployer/command/helper"
	"github.com/streamgold/sgld-deployer/helper/tests"
	"github.com/streamgold/sgld-deployer/journal"
	"github.com/streamgold/sgld-deployer/network"
)

var (
	rootTokenAddr  = ethgo.HexToAddress("0xD000000000000000000000000000000000000004")
	rootTunnelAddr = ethgo.HexToAddress("0xB000000000000000000000000000000000000002")
	childTokenAddr = ethgo.HexToAddress("0xC000000000000000000000000000000000000003")
)

func newTestParams(t *testing.T, records ...*journal.Record) (*setupRootParams, helper.GlobalParams) {
	t.Helper()

	dir := t.TempDir()
	tests.WriteBridgeArtifacts(t, filepath.Join(dir, "artifacts"))

	cfgPath := tests.WriteConfig(t, dir, artifact.FormatHardhat)

	j, err := journal.Open(filepath.Join(dir, "journal.db"))
	require.NoError(t, err)

	for _, rec := range records {
		require.NoError(t, j.Put(rec))
	}

	require.NoError(t, j.Close())

	p := &setupRootParams{approve: defaultApprove, amount: defaultAmount}
	p.TestMode = true
	p.LogOutput = io.Discard
	p.LookupEnv = tests.MapEnv(nil)

	return p, helper.GlobalParams{ConfigPath: cfgPath}
}

func newNode(t *testing.T, chainID uint64) *tests.TestNode {
	t.Helper()

	node := tests.NewTestNode(t, chainID)
	node.SetCode(rootTokenAddr, []byte{0x60, 0x80})
	node.SetCode(rootTunnelAddr, []byte{0x60, 0x80})

	return node
}

func TestSetupRoot_FromJournal(t *testing.T) {
	t.Parallel()

	node := newNode(t, network.GoerliChainID)
	p, g := newTestParams(t,
		&journal.Record{ChainID: network.GoerliChainID, Name: bootstrap.RootTokenContract, Address: rootTokenAddr},
		&journal.Record{ChainID: network.GoerliChainID, Name: bootstrap.RootTunnelContract, Address: rootTunnelAddr},
		&journal.Record{ChainID: network.MumbaiChainID, Name: bootstrap.BridgeTokenContract, Address: childTokenAddr},
	)
	p.chain.JSONRPC = node.URL

	res, err := run(context.Background(), p, g)
	require.NoError(t, err)

	results, ok := res.(command.Results)
	require.True(t, ok)
	require.Len(t, results, 3)

	expected := []struct {
		contract string
		method   string
	}{
		{bootstrap.RootTokenContract, "setFeeExempt"},
		{bootstrap.RootTokenContract, "approve"},
		{bootstrap.RootTunnelContract, "deposit"},
	}

	for i, e := range expected {
		call, ok := results[i].(*bootstrap.TransactionResult)
		require.True(t, ok)
		assert.Equal(t, e.contract, call.Contract)
		assert.Equal(t, e.method, call.Method)
		assert.Equal(t, uint64(network.GoerliChainID), call.ChainID)
	}

	require.Len(t, node.Transactions(), accounts.TestAccountsCount+3)

	testSet, err := accounts.TestSet()
	require.NoError(t, err)

	owner := testSet.Addresses()[bootstrap.OwnerAccount]
	depositor := testSet.Addresses()[bootstrap.DepositorAccount]

	signed := node.SignedTransactions(t)
	require.Len(t, signed, 3)

	calls := []struct {
		from  ethgo.Address
		to    ethgo.Address
		input []byte
	}{
		{owner, rootTokenAddr, tests.EncodeCall(t, tests.StreamGoldABI, "setFeeExempt", rootTunnelAddr)},
		// 10 tokens with 8 decimals
		{depositor, rootTokenAddr, tests.EncodeCall(t, tests.StreamGoldABI, "approve",
			rootTunnelAddr, big.NewInt(10e8))},
		// 100 tokens with 8 decimals and an empty bytes32 string as data
		{depositor, rootTunnelAddr, tests.EncodeCall(t, tests.FxStreamRootTunnelABI, "deposit",
			rootTokenAddr, childTokenAddr, depositor, big.NewInt(100e8), make([]byte, 32))},
	}

	for i, c := range calls {
		assert.Equal(t, c.from, signed[i].From, i)
		require.NotNil(t, signed[i].To, i)
		assert.Equal(t, c.to, *signed[i].To, i)
		assert.Equal(t, c.input, signed[i].Input, i)
	}
}

func TestSetupRoot_Flags(t *testing.T) {
	t.Parallel()

	node := newNode(t, 31337)
	p, g := newTestParams(t)
	p.chain.JSONRPC = node.URL
	p.rootToken = rootTokenAddr.String()
	p.rootTunnel = rootTunnelAddr.String()
	p.childToken = childTokenAddr.String()
	p.amount = "0.5"

	_, err := run(context.Background(), p, g)
	require.NoError(t, err)
}

func TestSetupRoot_ChildTokenNeedsChainID(t *testing.T) {
	t.Parallel()

	node := newNode(t, 31337)
	p, g := newTestParams(t,
		&journal.Record{ChainID: 31338, Name: bootstrap.BridgeTokenContract, Address: childTokenAddr},
	)
	p.chain.JSONRPC = node.URL
	p.rootToken = rootTokenAddr.String()
	p.rootTunnel = rootTunnelAddr.String()

	// a local root chain has no paired child chain
	_, err := run(context.Background(), p, g)
	require.ErrorIs(t, err, bootstrap.ErrAddressNotSet)

	p.childChainID = 31338

	_, err = run(context.Background(), p, g)
	require.NoError(t, err)
}

func TestSetupRoot_NeedsDepositor(t *testing.T) {
	t.Parallel()

	node := newNode(t, network.GoerliChainID)
	p, g := newTestParams(t)
	p.TestMode = false
	p.PrivateKeys = []string{accounts.TestAccountPrivKey}
	p.chain.JSONRPC = node.URL

	_, err := run(context.Background(), p, g)
	require.ErrorIs(t, err, accounts.ErrAccountOutOfRange)
	require.Empty(t, node.Transactions())
}

func TestValidateFlags(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		p     setupRootParams
		valid bool
	}{
		{"defaults", setupRootParams{approve: defaultApprove, amount: defaultAmount}, true},
		{"bad amount", setupRootParams{approve: defaultApprove, amount: "ten"}, false},
		{"bad approve", setupRootParams{approve: "", amount: defaultAmount}, false},
		{"bad address", setupRootParams{approve: defaultApprove, amount: defaultAmount, rootToken: "0x1"}, false},
	}

	for _, c := range cases {
		if c.valid {
			assert.NoError(t, c.p.validateFlags(), c.name)
		} else {
			assert.Error(t, c.p.validateFlags(), c.name)
		}
	}
}
