package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/hashicorp/go-hclog"
	"github.com/umbracle/ethgo"
	"github.com/umbracle/ethgo/abi"

	"github.com/streamgold/sgld-deployer/artifact"
	"github.com/streamgold/sgld-deployer/helper/hex"
	"github.com/streamgold/sgld-deployer/txrelayer"
)

const receiptSuccess = uint64(1)

var (
	ErrTransactionFailed = errors.New("transaction failed")
	ErrNoCode            = errors.New("no contract code at address")
	ErrUnknownMethod     = errors.New("method not found in abi")
	errNoContractAddress = errors.New("receipt carries no contract address")
)

// TxOptions overrides transaction fields. A zero Gas means the gas limit is estimated.
type TxOptions struct {
	Gas   uint64
	Value *big.Int
}

// Deployment describes a confirmed contract creation
type Deployment struct {
	Name            string
	Address         ethgo.Address
	TxHash          ethgo.Hash
	BlockNumber     uint64
	GasUsed         uint64
	ConstructorArgs []byte
	Artifact        *artifact.Artifact
}

// Deployer creates contracts from artifacts and attaches to existing ones
type Deployer struct {
	relayer txrelayer.TxRelayer
	loader  artifact.Loader
	logger  hclog.Logger
}

func NewDeployer(relayer txrelayer.TxRelayer, loader artifact.Loader, logger hclog.Logger) *Deployer {
	return &Deployer{
		relayer: relayer,
		loader:  loader,
		logger:  logger.Named("deployer"),
	}
}

func (d *Deployer) Relayer() txrelayer.TxRelayer {
	return d.relayer
}

// Deploy sends the creation transaction of the named contract and waits for it to be mined
func (d *Deployer) Deploy(ctx context.Context, name string, key ethgo.Key, opts *TxOptions,
	args ...interface{}) (*Contract, *Deployment, error) {
	art, err := d.loader.Load(name)
	if err != nil {
		return nil, nil, err
	}

	if len(art.Bytecode) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", artifact.ErrEmptyBytecode, name)
	}

	encodedArgs, err := EncodeConstructor(art.Abi, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode %s constructor arguments: %w", name, err)
	}

	input := make([]byte, 0, len(art.Bytecode)+len(encodedArgs))
	input = append(input, art.Bytecode...)
	input = append(input, encodedArgs...)

	txn := &ethgo.Transaction{Input: input}
	opts.apply(txn)

	d.logger.Info("deploying contract", "name", name, "args", len(args))

	receipt, err := d.relayer.SendTransaction(ctx, txn, key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to deploy %s: %w", name, err)
	}

	if receipt.Status != receiptSuccess {
		return nil, nil, fmt.Errorf("%w: deployment of %s (tx %s)", ErrTransactionFailed, name, receipt.TransactionHash)
	}

	if receipt.ContractAddress == (ethgo.Address{}) {
		return nil, nil, fmt.Errorf("%w: deployment of %s (tx %s)", errNoContractAddress, name, receipt.TransactionHash)
	}

	d.logger.Info("contract deployed", "name", name, "address", receipt.ContractAddress,
		"tx", receipt.TransactionHash, "gas used", receipt.GasUsed)

	deployment := &Deployment{
		Name:            name,
		Address:         receipt.ContractAddress,
		TxHash:          receipt.TransactionHash,
		BlockNumber:     receipt.BlockNumber,
		GasUsed:         receipt.GasUsed,
		ConstructorArgs: encodedArgs,
		Artifact:        art,
	}

	return d.bind(name, receipt.ContractAddress, art), deployment, nil
}

// At returns a handle to an already deployed contract. The address must hold code.
func (d *Deployer) At(ctx context.Context, name string, addr ethgo.Address) (*Contract, error) {
	if addr == (ethgo.Address{}) {
		return nil, fmt.Errorf("%s address is not set", name)
	}

	art, err := d.loader.Load(name)
	if err != nil {
		return nil, err
	}

	code, err := d.relayer.GetCode(ctx, addr)
	if err != nil {
		return nil, err
	}

	if len(code) == 0 {
		return nil, fmt.Errorf("%w: %s at %s", ErrNoCode, name, addr)
	}

	return d.bind(name, addr, art), nil
}

func (d *Deployer) bind(name string, addr ethgo.Address, art *artifact.Artifact) *Contract {
	return &Contract{
		Name:    name,
		Address: addr,
		Abi:     art.Abi,
		relayer: d.relayer,
		logger:  d.logger.Named(name),
	}
}

// EncodeConstructor ABI encodes constructor arguments. Contracts without a constructor take no arguments.
func EncodeConstructor(contractAbi *abi.ABI, args ...interface{}) ([]byte, error) {
	if contractAbi.Constructor == nil || len(contractAbi.Constructor.Inputs.TupleElems()) == 0 {
		if len(args) != 0 {
			return nil, fmt.Errorf("constructor takes no arguments, got %d", len(args))
		}

		return nil, nil
	}

	return abi.Encode(args, contractAbi.Constructor.Inputs)
}

// Contract is a handle to a deployed contract
type Contract struct {
	Name    string
	Address ethgo.Address
	Abi     *abi.ABI

	relayer txrelayer.TxRelayer
	logger  hclog.Logger
}

// Transact sends a state changing call signed by key and checks it succeeded
func (c *Contract) Transact(ctx context.Context, key ethgo.Key, method string, opts *TxOptions,
	args ...interface{}) (*ethgo.Receipt, error) {
	input, err := c.encode(method, args)
	if err != nil {
		return nil, err
	}

	addr := c.Address
	txn := &ethgo.Transaction{To: &addr, Input: input}
	opts.apply(txn)

	c.logger.Debug("sending transaction", "method", method, "from", key.Address())

	receipt, err := c.relayer.SendTransaction(ctx, txn, key)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s.%s transaction: %w", c.Name, method, err)
	}

	if receipt.Status != receiptSuccess {
		return receipt, fmt.Errorf("%w: %s.%s (tx %s)", ErrTransactionFailed, c.Name, method, receipt.TransactionHash)
	}

	c.logger.Info("transaction executed", "method", method, "tx", receipt.TransactionHash,
		"block", receipt.BlockNumber)

	return receipt, nil
}

// Call runs a read-only method and returns its decoded outputs keyed by name ("0", "1"... when unnamed)
func (c *Contract) Call(ctx context.Context, method string, args ...interface{}) (map[string]interface{}, error) {
	input, err := c.encode(method, args)
	if err != nil {
		return nil, err
	}

	res, err := c.relayer.Call(ctx, ethgo.ZeroAddress, c.Address, input)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s.%s: %w", c.Name, method, err)
	}

	raw, err := hex.DecodeHex(res)
	if err != nil {
		return nil, fmt.Errorf("invalid %s.%s call result: %w", c.Name, method, err)
	}

	m := c.Abi.Methods[method]
	if len(m.Outputs.TupleElems()) == 0 {
		return map[string]interface{}{}, nil
	}

	decoded, err := abi.Decode(m.Outputs, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s.%s result: %w", c.Name, method, err)
	}

	out, ok := decoded.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected %s.%s result type %T", c.Name, method, decoded)
	}

	return out, nil
}

func (c *Contract) encode(method string, args []interface{}) ([]byte, error) {
	m, ok := c.Abi.Methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownMethod, c.Name, method)
	}

	if len(m.Inputs.TupleElems()) == 0 {
		if len(args) != 0 {
			return nil, fmt.Errorf("%s.%s takes no arguments, got %d", c.Name, method, len(args))
		}

		return m.ID(), nil
	}

	input, err := m.Encode(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s.%s input: %w", c.Name, method, err)
	}

	return input, nil
}

func (o *TxOptions) apply(txn *ethgo.Transaction) {
	if o == nil {
		return
	}

	txn.Gas = o.Gas
	txn.Value = o.Value
}
