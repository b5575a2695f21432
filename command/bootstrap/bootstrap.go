package bootstrap

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/umbracle/ethgo"

	"github.com/streamgold/sgld-deployer/accounts"
	"github.com/streamgold/sgld-deployer/artifact"
	"github.com/streamgold/sgld-deployer/command"
	"github.com/streamgold/sgld-deployer/command/helper"
	"github.com/streamgold/sgld-deployer/config"
	"github.com/streamgold/sgld-deployer/contract"
	"github.com/streamgold/sgld-deployer/explorer"
	"github.com/streamgold/sgld-deployer/journal"
	"github.com/streamgold/sgld-deployer/metrics"
	"github.com/streamgold/sgld-deployer/network"
	"github.com/streamgold/sgld-deployer/secrets"
	secretsHelper "github.com/streamgold/sgld-deployer/secrets/helper"
	"github.com/streamgold/sgld-deployer/txrelayer"
)

var (
	ErrAlreadyDeployed = errors.New("contract already deployed")
	ErrChainIDMismatch = errors.New("endpoint chain id does not match the network config")
	ErrNoExplorer      = errors.New("no block explorer configured for the network")
	ErrAddressNotSet   = errors.New("address is not set")
)

// testFunding is sent to every test account on dev chains
var testFunding = ethgo.Ether(10)

// Env holds what a command run shares across chains
type Env struct {
	Config      *config.Config
	Logger      hclog.Logger
	RunID       string
	Accounts    *accounts.Set
	AddressBook network.AddressBook
	Journal     *journal.Journal
	Metrics     *metrics.Metrics
	Loader      artifact.Loader
	LookupEnv   func(key string) (string, bool)

	params *Params
}

// Open loads env files and config, applies the flag overrides and opens the accounts,
// the address book and the journal
func Open(ctx context.Context, p *Params, g helper.GlobalParams) (*Env, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := config.LoadEnvFiles(g.EnvFiles); err != nil {
		return nil, err
	}

	cfg, err := config.Load(g.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	applyOverrides(cfg, p, g)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	lookup := p.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	e := &Env{
		Config:    cfg,
		Logger:    helper.NewLogger(cfg.LogLevel, cfg.JSONLogFormat, p.LogOutput),
		RunID:     journal.NewRunID(),
		LookupEnv: lookup,
		params:    p,
	}

	if e.Loader, err = artifact.NewLoader(cfg.ArtifactsFormat, cfg.ArtifactsDir); err != nil {
		return nil, err
	}

	if cfg.AddressBook != "" {
		e.AddressBook, err = network.LoadAddressBook(cfg.AddressBook)
	} else {
		e.AddressBook, err = network.DefaultAddressBook()
	}

	if err != nil {
		return nil, err
	}

	if !p.WithoutAccounts {
		if e.Accounts, err = e.loadAccounts(); err != nil {
			return nil, err
		}
	}

	if e.Metrics, err = metrics.New(metrics.DefaultNamespace); err != nil {
		return nil, err
	}

	if e.Journal, err = journal.Open(cfg.JournalPath); err != nil {
		return nil, err
	}

	e.Logger.Debug("environment ready", "run", e.RunID, "artifacts", cfg.ArtifactsDir,
		"journal", cfg.JournalPath)

	return e, nil
}

func applyOverrides(cfg *config.Config, p *Params, g helper.GlobalParams) {
	override := func(dst *string, value string) {
		if value != "" {
			*dst = value
		}
	}

	override(&cfg.ArtifactsDir, p.ArtifactsDir)
	override(&cfg.ArtifactsFormat, p.ArtifactsFormat)
	override(&cfg.AddressBook, p.AddressBook)
	override(&cfg.JournalPath, p.JournalPath)
	override(&cfg.SecretsConfig, p.SecretsConfig)
	override(&cfg.DataDir, p.DataDir)
	override(&cfg.MetricsPushURL, p.MetricsPushURL)
	override(&cfg.LogLevel, g.LogLevel)

	if len(p.SecretNames) > 0 {
		cfg.Accounts = p.SecretNames
	}
}

func (e *Env) loadAccounts() (*accounts.Set, error) {
	var (
		manager secrets.SecretsManager
		err     error
	)

	if e.Config.SecretsConfig != "" || e.Config.DataDir != "" {
		manager, err = secretsHelper.InitSecretsManager(e.Config.SecretsConfig, e.Config.DataDir, e.Logger)
		if err != nil {
			return nil, err
		}
	}

	set, err := accounts.Load(&accounts.Options{
		PrivateKeys:    e.params.PrivateKeys,
		Env:            e.LookupEnv,
		SecretsManager: manager,
		SecretNames:    e.Config.Accounts,
		TestMode:       e.params.TestMode,
		Logger:         e.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	return set, nil
}

// Key returns the signing key of the account with index i
func (e *Env) Key(i int) (ethgo.Key, error) {
	if e.Accounts == nil {
		return nil, accounts.ErrNoAccounts
	}

	return e.Accounts.Key(i)
}

// Verify reports whether contracts are verified after deployment
func (e *Env) Verify() bool {
	return e.params.Verify
}

// ResolveAddress returns the flag value when set, the journaled deployment of name on chainID otherwise.
// A zero chainID skips the journal.
func (e *Env) ResolveAddress(name, flag, value string, chainID uint64) (ethgo.Address, error) {
	addr, err := helper.ParseAddressFlag(flag, value)
	if err != nil {
		return ethgo.ZeroAddress, err
	}

	if addr != ethgo.ZeroAddress {
		return addr, nil
	}

	if chainID != 0 {
		rec, err := e.Journal.Latest(chainID, name)
		if err == nil {
			e.Logger.Debug("address resolved from journal", "name", name, "chain", chainID, "address", rec.Address)

			return rec.Address, nil
		}

		if !errors.Is(err, journal.ErrNotFound) {
			return ethgo.ZeroAddress, err
		}
	}

	return ethgo.ZeroAddress, fmt.Errorf("%w: %s, pass --%s or deploy it first", ErrAddressNotSet, name, flag)
}

// Close pushes the collected metrics when a pushgateway is configured and closes the journal
func (e *Env) Close(ctx context.Context) error {
	var result *multierror.Error

	if e.Config.MetricsPushURL != "" && e.Metrics != nil {
		if err := e.Metrics.Push(ctx, e.Config.MetricsPushURL, command.AppName); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if e.Journal != nil {
		if err := e.Journal.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

// Chain is a connection to one chain
type Chain struct {
	// Name is the config network name, or the endpoint when the chain was given by URL
	Name     string
	Endpoint string
	ChainID  *big.Int
	Network  *config.Network
	Relayer  txrelayer.TxRelayer
	Deployer *contract.Deployer
	Explorer *explorer.Client

	env          *Env
	namedNetwork bool
	logger       hclog.Logger
}

// Chain dials the endpoint selected by cp: the --json-rpc flag, the named network or the local network
func (e *Env) Chain(ctx context.Context, cp *ChainParams) (*Chain, error) {
	c := &Chain{env: e}

	var err error

	if cp.Network != "" || cp.JSONRPC == "" {
		name := cp.Network
		if name == "" {
			name = config.DefaultLocalNetwork
		}

		if c.Network, err = e.Config.Network(name); err != nil {
			return nil, err
		}

		c.Name = name
		c.Endpoint = c.Network.JSONRPC
		c.namedNetwork = true
	}

	if cp.JSONRPC != "" {
		c.Endpoint = cp.JSONRPC
		if c.Name == "" {
			c.Name = cp.JSONRPC
		}
	}

	if c.Endpoint, err = network.ResolveEndpoint(ctx, c.Endpoint); err != nil {
		return nil, err
	}

	c.logger = e.Logger.Named(c.Name)

	if c.Relayer, err = e.newRelayer(c.Endpoint, c.logger); err != nil {
		return nil, err
	}

	if c.ChainID, err = c.Relayer.ChainID(ctx); err != nil {
		return nil, fmt.Errorf("failed to get chain id of %s: %w", c.Endpoint, err)
	}

	if c.Network != nil && c.Network.ChainID != 0 &&
		(!c.ChainID.IsUint64() || c.Network.ChainID != c.ChainID.Uint64()) {
		return nil, fmt.Errorf("%w: %s expects %d, endpoint reports %s",
			ErrChainIDMismatch, c.Name, c.Network.ChainID, c.ChainID)
	}

	c.Deployer = contract.NewDeployer(c.Relayer, e.Loader, c.logger)

	if c.Explorer, err = e.newExplorer(c.Network, c.logger); err != nil {
		return nil, err
	}

	c.logger.Info("connected", "endpoint", c.Endpoint, "chain id", c.ChainID)

	if e.params.TestMode && e.Accounts != nil {
		if err := accounts.Fund(ctx, c.Relayer, testFunding, e.Accounts.Addresses()...); err != nil {
			return nil, err
		}

		c.logger.Info("test accounts funded", "count", e.Accounts.Len())
	}

	return c, nil
}

func (e *Env) newRelayer(endpoint string, logger hclog.Logger) (txrelayer.TxRelayer, error) {
	timeout, err := e.Config.ReceiptTimeoutDuration()
	if err != nil {
		return nil, err
	}

	interval, err := e.Config.PollIntervalDuration()
	if err != nil {
		return nil, err
	}

	relayer, err := txrelayer.NewTxRelayer(
		txrelayer.WithIPAddress(endpoint),
		txrelayer.WithLogger(logger),
		txrelayer.WithReceiptTimeout(timeout),
		txrelayer.WithReceiptPollInterval(interval),
		txrelayer.WithGasLimitMultiplier(e.Config.GasLimitMultiplier),
		txrelayer.WithDynamicFee(e.Config.DynamicFee),
		txrelayer.WithObserver(e.Metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tx relayer: %w", err)
	}

	return relayer, nil
}

func (e *Env) newExplorer(n *config.Network, logger hclog.Logger) (*explorer.Client, error) {
	if n == nil || n.Explorer == nil || n.Explorer.APIURL == "" {
		return nil, nil
	}

	cfg := *n.Explorer
	if cfg.APIKey == "" {
		cfg.APIKey, _ = e.LookupEnv(explorer.APIKeyEnv)
	}

	return explorer.NewClient(cfg, explorer.WithLogger(logger))
}

// ID returns the chain id as uint64
func (c *Chain) ID() uint64 {
	return c.ChainID.Uint64()
}

// Deploy deploys the contract and records it in the journal. It refuses to redeploy a contract
// the journal holds a live deployment of, unless forced.
func (c *Chain) Deploy(ctx context.Context, name string, key ethgo.Key, opts *contract.TxOptions,
	args ...interface{}) (*contract.Contract, *contract.Deployment, error) {
	if err := c.checkDeployed(ctx, name); err != nil {
		return nil, nil, err
	}

	ctr, dep, err := c.Deployer.Deploy(ctx, name, key, opts, args...)
	if err != nil {
		return nil, nil, err
	}

	rec := &journal.Record{
		RunID:           c.env.RunID,
		Network:         c.Name,
		ChainID:         c.ID(),
		Name:            name,
		Address:         dep.Address,
		TxHash:          dep.TxHash,
		BlockNumber:     dep.BlockNumber,
		GasUsed:         dep.GasUsed,
		ConstructorArgs: FormatArgs(args),
		EncodedArgs:     hex.EncodeToString(dep.ConstructorArgs),
	}

	if err := c.env.Journal.Put(rec); err != nil {
		return nil, nil, fmt.Errorf("failed to record %s deployment: %w", name, err)
	}

	return ctr, dep, nil
}

// CheckDeployable fails when any of the named contracts has a live journaled deployment on the chain.
// Commands deploying several contracts call it before sending their first transaction.
func (c *Chain) CheckDeployable(ctx context.Context, names ...string) error {
	for _, name := range names {
		if err := c.checkDeployed(ctx, name); err != nil {
			return err
		}
	}

	return nil
}

func (c *Chain) checkDeployed(ctx context.Context, name string) error {
	if c.env.params.Force {
		return nil
	}

	rec, err := c.env.Journal.Latest(c.ID(), name)
	if errors.Is(err, journal.ErrNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	code, err := c.Relayer.GetCode(ctx, rec.Address)
	if err != nil {
		return err
	}

	if len(code) == 0 {
		c.logger.Warn("journaled deployment has no code, redeploying", "name", name, "address", rec.Address)

		return nil
	}

	return fmt.Errorf("%w: %s at %s on chain %d, use --%s to redeploy",
		ErrAlreadyDeployed, name, rec.Address, c.ID(), ForceFlag)
}

// At attaches to a deployed contract
func (c *Chain) At(ctx context.Context, name string, addr ethgo.Address) (*contract.Contract, error) {
	return c.Deployer.At(ctx, name, addr)
}

// Verify submits a fresh deployment to the block explorer
func (c *Chain) Verify(ctx context.Context, dep *contract.Deployment) (*explorer.VerifyResult, error) {
	return c.VerifyContract(ctx, dep.Artifact, dep.Address, dep.ConstructorArgs)
}

// VerifyContract submits the source of the contract at addr, built from the artifact's build info
func (c *Chain) VerifyContract(ctx context.Context, art *artifact.Artifact, addr ethgo.Address,
	encodedArgs []byte) (*explorer.VerifyResult, error) {
	if c.Explorer == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoExplorer, c.Name)
	}

	info, err := artifact.LoadBuildInfo(art)
	if err != nil {
		return nil, err
	}

	return c.Explorer.Verify(ctx, &explorer.VerifyRequest{
		Address:           addr,
		ContractName:      art.FullyQualifiedName(),
		CompilerVersion:   info.CompilerVersion(),
		StandardJSONInput: info.Input,
		ConstructorArgs:   encodedArgs,
	})
}

// VerifyHint returns the command verifying the deployment later
func (c *Chain) VerifyHint(dep *contract.Deployment, args []string) string {
	target := fmt.Sprintf("--%s %s", JSONRPCFlag, c.Endpoint)
	if c.namedNetwork {
		target = fmt.Sprintf("--%s %s", NetworkFlag, c.Name)
	}

	parts := []string{command.AppName, "verify", target, "--contract", dep.Name, dep.Address.String()}

	return strings.Join(append(parts, args...), " ")
}

// Finish fills the verification fields of the result: verifies on the explorer when
// requested, adds the verify hint otherwise
func (c *Chain) Finish(ctx context.Context, dep *contract.Deployment, args []string) (*DeploymentResult, error) {
	res := NewDeploymentResult(c.ID(), dep)

	if !c.env.Verify() {
		res.VerifyHint = c.VerifyHint(dep, args)

		return res, nil
	}

	verified, err := c.Verify(ctx, dep)
	if err != nil {
		return nil, fmt.Errorf("failed to verify %s: %w", dep.Name, err)
	}

	res.VerifiedURL = verified.URL
	if res.VerifiedURL == "" {
		res.VerifiedURL = "yes"
	}

	return res, nil
}

// FormatArgs renders constructor arguments the way they are passed on the command line
func FormatArgs(args []interface{}) []string {
	out := make([]string, 0, len(args))

	for _, arg := range args {
		switch v := arg.(type) {
		case [32]byte:
			out = append(out, "0x"+hex.EncodeToString(v[:]))
		case []byte:
			out = append(out, "0x"+hex.EncodeToString(v))
		default:
			out = append(out, fmt.Sprint(v))
		}
	}

	return out
}

// RequireAddress fails when a resolved address is still zero
func RequireAddress(name string, addr ethgo.Address, source string) error {
	if addr == ethgo.ZeroAddress {
		return fmt.Errorf("%w: %s, %s", ErrAddressNotSet, name, source)
	}

	return nil
}

// Run opens the environment, runs fn and closes the environment
func Run(ctx context.Context, p *Params, g helper.GlobalParams,
	fn func(ctx context.Context, env *Env) (command.CommandResult, error)) (res command.CommandResult, err error) {
	env, err := Open(ctx, p, g)
	if err != nil {
		return nil, err
	}

	defer func() {
		if closeErr := env.Close(ctx); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return fn(ctx, env)
}

// AccountAddress returns the flag value when set, the address of account i otherwise
func (e *Env) AccountAddress(flag, value string, i int) (ethgo.Address, error) {
	addr, err := helper.ParseAddressFlag(flag, value)
	if err != nil {
		return ethgo.ZeroAddress, err
	}

	if addr != ethgo.ZeroAddress {
		return addr, nil
	}

	if e.Accounts == nil {
		return ethgo.ZeroAddress, accounts.ErrNoAccounts
	}

	addr, err = e.Accounts.Address(i)
	if err != nil {
		return ethgo.ZeroAddress, fmt.Errorf("--%s not set: %w", flag, err)
	}

	return addr, nil
}

// Call is a state changing contract method invocation
type Call struct {
	Contract *contract.Contract
	Key      ethgo.Key
	Method   string
	Opts     *contract.TxOptions
	Args     []interface{}
}

// Execute sends the calls in order, waiting for each receipt, and stops at the first failure
func (c *Chain) Execute(ctx context.Context, calls ...*Call) (command.Results, error) {
	results := make(command.Results, 0, len(calls))

	for _, call := range calls {
		receipt, err := call.Contract.Transact(ctx, call.Key, call.Method, call.Opts, call.Args...)
		if err != nil {
			return nil, err
		}

		results = append(results, NewTransactionResult(c.ID(), call.Contract, call.Method, receipt))
	}

	return results, nil
}
