package gateway

import (
	"context"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umbracle/ethgo"

	"github.com/streamgold/sgld-deployer/accounts"
	"github.com/streamgold/sgld-deployer/artifact"
	"github.com/streamgold/sgld-deployer/command"
	"github.com/streamgold/sgld-deployer/command/bootstrap"
	"github.com/streamgold/sgld-deployer/command/helper"
	"github.com/streamgold/sgld-deployer/contract"
	"github.com/streamgold/sgld-deployer/helper/tests"
	"github.com/streamgold/sgld-deployer/journal"
)

var (
	anyCallA = ethgo.HexToAddress("0x0A00000000000000000000000000000000000001")
	anyCallB = ethgo.HexToAddress("0x0B00000000000000000000000000000000000002")
)

type testSetup struct {
	p     *gatewayParams
	g     helper.GlobalParams
	dir   string
	nodeA *tests.TestNode
	nodeB *tests.TestNode
}

func newTestSetup(t *testing.T, withAnyCall bool, explorerURL string) *testSetup {
	t.Helper()

	s := &testSetup{
		dir:   t.TempDir(),
		nodeA: tests.NewTestNode(t, 31337),
		nodeB: tests.NewTestNode(t, 31338),
	}

	s.nodeA.SetCode(anyCallA, []byte{0x60, 0x80})
	s.nodeB.SetCode(anyCallB, []byte{0x60, 0x80})

	tests.WriteGatewayArtifacts(t, filepath.Join(s.dir, "artifacts"))

	netA := tests.ConfigNetwork{Name: "chaina", JSONRPC: s.nodeA.URL, ChainID: 31337, ExplorerURL: explorerURL}
	netB := tests.ConfigNetwork{Name: "chainb", JSONRPC: s.nodeB.URL, ChainID: 31338, ExplorerURL: explorerURL}

	if withAnyCall {
		netA.AnyCall = anyCallA.String()
		netB.AnyCall = anyCallB.String()
	}

	s.g = helper.GlobalParams{
		ConfigPath: tests.WriteConfig(t, s.dir, artifact.FormatSplit, netA, netB),
	}

	s.p = &gatewayParams{depositValue: defaultDepositValue}
	s.p.chainA.Network = "chaina"
	s.p.chainB.Network = "chainb"
	s.p.TestMode = true
	s.p.LogOutput = io.Discard
	s.p.LookupEnv = tests.MapEnv(nil)

	return s
}

func TestGateway_DeploysAndPairs(t *testing.T) {
	t.Parallel()

	s := newTestSetup(t, true, "")

	res, err := run(context.Background(), s.p, s.g)
	require.NoError(t, err)

	results, ok := res.(command.Results)
	require.True(t, ok)
	require.Len(t, results, 9)

	summary, ok := results[8].(*gatewayResult)
	require.True(t, ok)
	assert.Equal(t, uint64(31337), summary.A.ChainID)
	assert.Equal(t, uint64(31338), summary.B.ChainID)
	assert.Equal(t, anyCallA, summary.A.AnyCall)
	assert.Equal(t, anyCallB, summary.B.AnyCall)
	assert.NotEqual(t, ethgo.ZeroAddress, summary.A.Gateway)
	assert.NotEqual(t, summary.A.Token, summary.A.Gateway)

	methods := make([]string, 0, 4)

	for _, r := range results {
		if call, ok := r.(*bootstrap.TransactionResult); ok {
			methods = append(methods, call.Contract+"."+call.Method)
		}
	}

	require.Equal(t, []string{
		"ERC721Gateway_MintBurn.setPeers", "anycall.deposit",
		"ERC721Gateway_MintBurn.setPeers", "anycall.deposit",
	}, methods)

	// funding, token, gateway, setPeers and deposit on each chain
	require.Len(t, s.nodeA.Transactions(), accounts.TestAccountsCount+4)
	require.Len(t, s.nodeB.Transactions(), accounts.TestAccountsCount+4)

	testSet, err := accounts.TestSet()
	require.NoError(t, err)

	// 0.1 ether
	value := big.NewInt(1e17)

	for _, c := range []struct {
		node       *tests.TestNode
		self, peer gatewaySide
	}{
		{s.nodeA, summary.A, summary.B},
		{s.nodeB, summary.B, summary.A},
	} {
		signed := c.node.SignedTransactions(t)
		require.Len(t, signed, 4)

		for _, txn := range signed {
			assert.Equal(t, testSet.Addresses()[bootstrap.DeployerAccount], txn.From)
		}

		assert.Nil(t, signed[0].To)
		assert.Equal(t, tokenGas, signed[0].Gas)
		assert.Equal(t, tests.EncodeDeploy(t, tests.SimpleMintBurnERC721ABI, tokenName, tokenSymbol), signed[0].Input)

		assert.Nil(t, signed[1].To)
		assert.Equal(t, gatewayGas, signed[1].Gas)
		assert.Equal(t, tests.EncodeDeploy(t, tests.ERC721GatewayABI, c.self.AnyCall, big.NewInt(0), c.self.Token),
			signed[1].Input)

		require.NotNil(t, signed[2].To)
		assert.Equal(t, c.self.Gateway, *signed[2].To)
		assert.Equal(t, tests.EncodeCall(t, tests.ERC721GatewayABI, "setPeers",
			[]*big.Int{new(big.Int).SetUint64(c.peer.ChainID)}, []ethgo.Address{c.peer.Gateway}), signed[2].Input)

		require.NotNil(t, signed[3].To)
		assert.Equal(t, c.self.AnyCall, *signed[3].To)
		require.NotNil(t, signed[3].Value)
		assert.Equal(t, 0, value.Cmp(signed[3].Value))
		assert.Equal(t, tests.EncodeCall(t, tests.AnyCallABI, "deposit", c.peer.Gateway), signed[3].Input)
	}

	j, err := journal.Open(filepath.Join(s.dir, "journal.db"))
	require.NoError(t, err)

	defer j.Close()

	for _, chainID := range []uint64{31337, 31338} {
		rec, err := j.Latest(chainID, bootstrap.GatewayContract)
		require.NoError(t, err)

		expected := summary.A
		if chainID == 31338 {
			expected = summary.B
		}

		assert.Equal(t, expected.Gateway, rec.Address)
		assert.Equal(t, []string{expected.AnyCall.String(), "0", expected.Token.String()}, rec.ConstructorArgs)

		rec, err = j.Latest(chainID, bootstrap.ERC721Contract)
		require.NoError(t, err)
		assert.Equal(t, []string{tokenName, tokenSymbol}, rec.ConstructorArgs)
	}
}

func TestGateway_AnyCallFlags(t *testing.T) {
	t.Parallel()

	s := newTestSetup(t, false, "")

	_, err := run(context.Background(), s.p, s.g)
	require.ErrorIs(t, err, bootstrap.ErrAddressNotSet)
	require.Len(t, s.nodeA.Transactions(), accounts.TestAccountsCount)

	s.p.anyCallA = anyCallA.String()
	s.p.anyCallB = anyCallA.String()

	// chain B has no code at the chain A proxy
	_, err = run(context.Background(), s.p, s.g)
	require.ErrorIs(t, err, contract.ErrNoCode)

	s.p.anyCallB = anyCallB.String()

	_, err = run(context.Background(), s.p, s.g)
	require.NoError(t, err)
}

func TestGateway_RevertedDeployStops(t *testing.T) {
	t.Parallel()

	s := newTestSetup(t, true, "")
	// the gateway creation on chain B
	s.nodeB.RevertTx(accounts.TestAccountsCount + 1)

	_, err := run(context.Background(), s.p, s.g)
	require.ErrorIs(t, err, contract.ErrTransactionFailed)

	// nothing gets paired
	for _, tx := range s.nodeA.Transactions()[accounts.TestAccountsCount:] {
		assert.False(t, tx.Local)
	}

	require.LessOrEqual(t, len(s.nodeA.Transactions()), accounts.TestAccountsCount+2)
}

func TestGateway_VerifiesAfterPairing(t *testing.T) {
	t.Parallel()

	var (
		s                   *testSetup
		submitted, unpaired atomic.Int32
	)

	explorerAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())

		w.Header().Set("Content-Type", "application/json")

		switch r.Form.Get("action") {
		case "verifysourcecode":
			submitted.Add(1)

			if len(s.nodeA.Transactions()) < accounts.TestAccountsCount+4 ||
				len(s.nodeB.Transactions()) < accounts.TestAccountsCount+4 {
				unpaired.Add(1)
			}

			_, _ = w.Write([]byte(`{"status":"1","message":"OK","result":"guid-1"}`))
		case "checkverifystatus":
			_, _ = w.Write([]byte(`{"status":"1","message":"OK","result":"Pass - Verified"}`))
		default:
			http.Error(w, "unknown action", http.StatusBadRequest)
		}
	}))
	t.Cleanup(explorerAPI.Close)

	s = newTestSetup(t, true, explorerAPI.URL)
	s.p.Verify = true

	res, err := run(context.Background(), s.p, s.g)
	require.NoError(t, err)

	// token and gateway on both chains, all submitted once setPeers and deposit are mined
	assert.Equal(t, int32(4), submitted.Load())
	assert.Zero(t, unpaired.Load())

	results, ok := res.(command.Results)
	require.True(t, ok)
	require.Len(t, results, 9)

	for _, i := range []int{0, 1, 4, 5} {
		deployed, ok := results[i].(*bootstrap.DeploymentResult)
		require.True(t, ok, i)
		assert.NotEmpty(t, deployed.VerifiedURL)
	}
}

func TestGateway_SameChain(t *testing.T) {
	t.Parallel()

	s := newTestSetup(t, true, "")
	s.p.chainB.Network = "chaina"

	_, err := run(context.Background(), s.p, s.g)
	require.ErrorIs(t, err, errSameChain)

	require.Empty(t, s.nodeA.SignedTransactions(t))
	require.Empty(t, s.nodeB.Transactions())
}

func TestGateway_AlreadyDeployed(t *testing.T) {
	t.Parallel()

	s := newTestSetup(t, true, "")

	gatewayB := ethgo.HexToAddress("0x0B000000000000000000000000000000000000FF")
	s.nodeB.SetCode(gatewayB, []byte{0x60, 0x80})

	j, err := journal.Open(filepath.Join(s.dir, "journal.db"))
	require.NoError(t, err)
	require.NoError(t, j.Put(&journal.Record{ChainID: 31338, Name: bootstrap.GatewayContract, Address: gatewayB}))
	require.NoError(t, j.Close())

	_, err = run(context.Background(), s.p, s.g)
	require.ErrorIs(t, err, bootstrap.ErrAlreadyDeployed)

	// no token is created on either chain
	require.Empty(t, s.nodeA.SignedTransactions(t))
	require.Empty(t, s.nodeB.SignedTransactions(t))
}

func TestValidateFlags(t *testing.T) {
	t.Parallel()

	valid := func() gatewayParams {
		p := gatewayParams{depositValue: defaultDepositValue}
		p.chainA.Network = "a"
		p.chainB.JSONRPC = "http://127.0.0.1:8546"

		return p
	}

	cases := []struct {
		name   string
		mutate func(p *gatewayParams)
		err    error
	}{
		{"valid", func(p *gatewayParams) {}, nil},
		{"no chain a", func(p *gatewayParams) { p.chainA = bootstrap.ChainParams{} }, errChainNotSet},
		{"no chain b", func(p *gatewayParams) { p.chainB = bootstrap.ChainParams{} }, errChainNotSet},
		{"bad anycall", func(p *gatewayParams) { p.anyCallB = "0x12" }, nil},
		{"bad value", func(p *gatewayParams) { p.depositValue = "-1" }, nil},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			p := valid()
			c.mutate(&p)

			err := p.validateFlags()

			switch {
			case c.name == "valid":
				assert.NoError(t, err)
			case c.err != nil:
				assert.ErrorIs(t, err, c.err)
			default:
				assert.Error(t, err)
			}
		})
	}
}
