package bootstrap

import (
	"context"
	"io"
	"math/big"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umbracle/ethgo"

	"github.com/streamgold/sgld-deployer/accounts"
	"github.com/streamgold/sgld-deployer/artifact"
	"github.com/streamgold/sgld-deployer/command/helper"
	"github.com/streamgold/sgld-deployer/contract"
	"github.com/streamgold/sgld-deployer/helper/tests"
	"github.com/streamgold/sgld-deployer/journal"
)

const fxChild = "0x8397259c983751DAf40400790063935a11afa28a"

var contractDeployment = contract.Deployment{
	Name:    "StreamGoldBridge",
	Address: ethgo.HexToAddress("0x5000000000000000000000000000000000000005"),
}

func openTestEnv(t *testing.T, p *Params, networks ...tests.ConfigNetwork) *Env {
	t.Helper()

	dir := t.TempDir()
	tests.WriteBridgeArtifacts(t, filepath.Join(dir, "artifacts"))

	p.LogOutput = io.Discard
	if p.LookupEnv == nil {
		p.LookupEnv = tests.MapEnv(nil)
	}

	env, err := Open(context.Background(), p, helper.GlobalParams{
		ConfigPath: tests.WriteConfig(t, dir, artifact.FormatHardhat, networks...),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, env.Close(context.Background()))
	})

	return env
}

func TestChain_DeployRecordsAndGuards(t *testing.T) {
	t.Parallel()

	node := tests.NewTestNode(t, 5)
	env := openTestEnv(t, &Params{TestMode: true},
		tests.ConfigNetwork{Name: "goerli", JSONRPC: node.URL, ChainID: 5})

	ctx := context.Background()

	chain, err := env.Chain(ctx, &ChainParams{Network: "goerli"})
	require.NoError(t, err)
	require.Equal(t, uint64(5), chain.ID())
	require.Equal(t, "goerli", chain.Name)

	// every test account gets funded from the unlocked node account
	require.Equal(t, accounts.TestAccountsCount, node.CallCount("eth_sendTransaction"))

	key, err := env.Key(0)
	require.NoError(t, err)

	fx := ethgo.HexToAddress(fxChild)

	ctr, dep, err := chain.Deploy(ctx, "FxERC20ChildTunnel", key, nil, fx)
	require.NoError(t, err)
	require.Equal(t, dep.Address, ctr.Address)

	rec, err := env.Journal.Latest(5, "FxERC20ChildTunnel")
	require.NoError(t, err)
	assert.Equal(t, dep.Address, rec.Address)
	assert.Equal(t, env.RunID, rec.RunID)
	assert.Equal(t, "goerli", rec.Network)
	assert.Equal(t, []string{fx.String()}, rec.ConstructorArgs)
	assert.Len(t, rec.EncodedArgs, 64)

	_, _, err = chain.Deploy(ctx, "FxERC20ChildTunnel", key, nil, fx)
	require.ErrorIs(t, err, ErrAlreadyDeployed)

	// names without a live record pass, one live record fails the whole set
	require.NoError(t, chain.CheckDeployable(ctx, "FxERC20BridgeTunnel", "StreamGoldBridge"))
	require.ErrorIs(t, chain.CheckDeployable(ctx, "FxERC20BridgeTunnel", "FxERC20ChildTunnel"), ErrAlreadyDeployed)

	env.params.Force = true

	require.NoError(t, chain.CheckDeployable(ctx, "FxERC20ChildTunnel"))

	_, redeployed, err := chain.Deploy(ctx, "FxERC20ChildTunnel", key, nil, fx)
	require.NoError(t, err)
	require.NotEqual(t, dep.Address, redeployed.Address)

	history, err := env.Journal.History(5)
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestChain_JSONRPCFlagWins(t *testing.T) {
	t.Parallel()

	node := tests.NewTestNode(t, 1337)
	env := openTestEnv(t, &Params{PrivateKeys: []string{accounts.TestAccountPrivKey}})

	chain, err := env.Chain(context.Background(), &ChainParams{JSONRPC: node.URL})
	require.NoError(t, err)
	require.Equal(t, uint64(1337), chain.ID())
	require.Equal(t, node.URL, chain.Name)
	require.Nil(t, chain.Explorer)
	require.Zero(t, node.CallCount("eth_sendTransaction"))

	hint := chain.VerifyHint(&contractDeployment, []string{"1", "0xab"})
	require.Equal(t, "sgld verify --json-rpc "+node.URL+" --contract StreamGoldBridge "+
		contractDeployment.Address.String()+" 1 0xab", hint)
}

func TestChain_ChainIDMismatch(t *testing.T) {
	t.Parallel()

	node := tests.NewTestNode(t, 5)
	env := openTestEnv(t, &Params{WithoutAccounts: true},
		tests.ConfigNetwork{Name: "goerli", JSONRPC: node.URL, ChainID: 99})

	_, err := env.Chain(context.Background(), &ChainParams{Network: "goerli"})
	require.ErrorIs(t, err, ErrChainIDMismatch)
}

func TestChain_UnknownNetwork(t *testing.T) {
	t.Parallel()

	env := openTestEnv(t, &Params{WithoutAccounts: true})

	_, err := env.Chain(context.Background(), &ChainParams{Network: "mumbai"})
	require.Error(t, err)
}

func TestChain_FinishWithoutExplorer(t *testing.T) {
	t.Parallel()

	node := tests.NewTestNode(t, 5)
	env := openTestEnv(t, &Params{WithoutAccounts: true, Verify: true},
		tests.ConfigNetwork{Name: "goerli", JSONRPC: node.URL})

	chain, err := env.Chain(context.Background(), &ChainParams{Network: "goerli"})
	require.NoError(t, err)

	_, err = chain.Finish(context.Background(), &contractDeployment, nil)
	require.ErrorIs(t, err, ErrNoExplorer)
}

func TestOpen_NoAccounts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Open(context.Background(), &Params{
		LookupEnv: tests.MapEnv(nil),
		LogOutput: io.Discard,
	}, helper.GlobalParams{
		ConfigPath: tests.WriteConfig(t, dir, artifact.FormatHardhat),
	})
	require.ErrorIs(t, err, accounts.ErrNoAccounts)
}

func TestOpen_PrivateKeysFromEnv(t *testing.T) {
	t.Parallel()

	env := openTestEnv(t, &Params{
		LookupEnv: tests.MapEnv(map[string]string{accounts.PrivateKeysEnv: accounts.TestAccountPrivKey}),
	})

	require.Equal(t, 1, env.Accounts.Len())

	_, err := env.Key(1)
	require.ErrorIs(t, err, accounts.ErrAccountOutOfRange)

	addr, err := env.AccountAddress("redeem", "", 0)
	require.NoError(t, err)
	require.Equal(t, env.Accounts.Addresses()[0], addr)

	override := "0x3E924146306957bD453502e33B9a7B6AbA6e4D3a"

	addr, err = env.AccountAddress("redeem", override, 3)
	require.NoError(t, err)
	require.Equal(t, ethgo.HexToAddress(override), addr)

	_, err = env.AccountAddress("redeem", "", 3)
	require.ErrorIs(t, err, accounts.ErrAccountOutOfRange)
}

func TestOpen_InvalidOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Open(context.Background(), &Params{
		WithoutAccounts: true,
		ArtifactsFormat: "truffle",
		LogOutput:       io.Discard,
	}, helper.GlobalParams{
		ConfigPath: tests.WriteConfig(t, dir, artifact.FormatHardhat),
	})
	require.ErrorIs(t, err, artifact.ErrUnknownFormat)
}

func TestEnv_ResolveAddress(t *testing.T) {
	t.Parallel()

	env := openTestEnv(t, &Params{WithoutAccounts: true})

	journaled := ethgo.HexToAddress("0x1000000000000000000000000000000000000001")
	require.NoError(t, env.Journal.Put(&journal.Record{
		ChainID: 80001,
		Name:    "StreamGoldBridge",
		Address: journaled,
	}))

	flagValue := "0x2000000000000000000000000000000000000002"

	addr, err := env.ResolveAddress("StreamGoldBridge", "bridge-token", flagValue, 80001)
	require.NoError(t, err)
	require.Equal(t, ethgo.HexToAddress(flagValue), addr)

	addr, err = env.ResolveAddress("StreamGoldBridge", "bridge-token", "", 80001)
	require.NoError(t, err)
	require.Equal(t, journaled, addr)

	_, err = env.ResolveAddress("StreamGoldBridge", "bridge-token", "", 137)
	require.ErrorIs(t, err, ErrAddressNotSet)

	_, err = env.ResolveAddress("StreamGoldBridge", "bridge-token", "", 0)
	require.ErrorIs(t, err, ErrAddressNotSet)

	_, err = env.ResolveAddress("StreamGoldBridge", "bridge-token", "0x12", 80001)
	require.Error(t, err)
}

func TestFormatArgs(t *testing.T) {
	t.Parallel()

	addr := ethgo.HexToAddress("0x3E924146306957bD453502e33B9a7B6AbA6e4D3a")

	require.Equal(t,
		[]string{addr.String(), "8", "STREAM GOLD TOKEN", "0x" + strings.Repeat("0", 64), "true"},
		FormatArgs([]interface{}{addr, big.NewInt(8), "STREAM GOLD TOKEN", [32]byte{}, true}),
	)
}
