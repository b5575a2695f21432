package txrelayer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/sethvargo/go-retry"
	"github.com/umbracle/ethgo"
	"github.com/umbracle/ethgo/jsonrpc"
	"github.com/umbracle/ethgo/wallet"

	"github.com/streamgold/sgld-deployer/helper/hex"
)

const (
	DefaultRPCAddress = "http://127.0.0.1:8545"

	defaultReceiptTimeout      = 2 * time.Minute
	defaultReceiptPollInterval = time.Second
	// gas estimate is multiplied by this percentage
	defaultGasLimitMultiplier = 120

	KindCreate = "create"
	KindCall   = "call"
)

var (
	errNoAccounts     = errors.New("no accounts registered")
	ErrReceiptTimeout = errors.New("timeout while waiting for transaction receipt")
)

// TxRelayer signs, sends and confirms transactions against a JSON-RPC endpoint
type TxRelayer interface {
	// Call executes a read-only message call on the latest block
	Call(ctx context.Context, from ethgo.Address, to ethgo.Address, input []byte) (string, error)
	// SendTransaction signs the transaction with the key, sends it and waits for the receipt
	SendTransaction(ctx context.Context, txn *ethgo.Transaction, key ethgo.Key) (*ethgo.Receipt, error)
	// SendTransactionLocal sends the transaction from the first unlocked node account.
	// It only works on development chains.
	SendTransactionLocal(ctx context.Context, txn *ethgo.Transaction) (*ethgo.Receipt, error)
	// ChainID returns the chain id of the endpoint
	ChainID(ctx context.Context) (*big.Int, error)
	// GetCode returns the runtime bytecode deployed at the address
	GetCode(ctx context.Context, addr ethgo.Address) ([]byte, error)
	Client() *jsonrpc.Client
}

// Observer is notified about sent transactions
type Observer interface {
	ObserveTransaction(kind string, receipt *ethgo.Receipt, wait time.Duration, err error)
}

var _ TxRelayer = (*TxRelayerImpl)(nil)

type TxRelayerImpl struct {
	ipAddress string
	client    *jsonrpc.Client
	logger    hclog.Logger
	observer  Observer

	receiptTimeout      time.Duration
	receiptPollInterval time.Duration
	gasLimitMultiplier  uint64
	dynamicFee          bool

	lock    sync.Mutex
	chainID *big.Int
}

func NewTxRelayer(opts ...TxRelayerOption) (TxRelayer, error) {
	t := &TxRelayerImpl{
		ipAddress:           DefaultRPCAddress,
		logger:              hclog.NewNullLogger(),
		receiptTimeout:      defaultReceiptTimeout,
		receiptPollInterval: defaultReceiptPollInterval,
		gasLimitMultiplier:  defaultGasLimitMultiplier,
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.client == nil {
		client, err := jsonrpc.NewClient(t.ipAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", t.ipAddress, err)
		}

		t.client = client
	}

	return t, nil
}

// Call function is used to query a smart contract on given 'to' address
func (t *TxRelayerImpl) Call(ctx context.Context, from ethgo.Address, to ethgo.Address, input []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	callMsg := &ethgo.CallMsg{
		From: from,
		To:   &to,
		Data: input,
	}

	return t.client.Eth().Call(callMsg, ethgo.Latest)
}

func (t *TxRelayerImpl) ChainID(ctx context.Context) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	if t.chainID != nil {
		return new(big.Int).Set(t.chainID), nil
	}

	chainID, err := t.client.Eth().ChainID()
	if err != nil {
		return nil, fmt.Errorf("failed to query chain id: %w", err)
	}

	t.chainID = chainID

	return new(big.Int).Set(chainID), nil
}

func (t *TxRelayerImpl) GetCode(ctx context.Context, addr ethgo.Address) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	code, err := t.client.Eth().GetCode(addr, ethgo.Latest)
	if err != nil {
		return nil, fmt.Errorf("failed to get code of %s: %w", addr, err)
	}

	if hex.IsEmpty(code) {
		return nil, nil
	}

	return hex.DecodeHex(code)
}

// SendTransaction sends a transaction signed by the provided key
func (t *TxRelayerImpl) SendTransaction(ctx context.Context, txn *ethgo.Transaction,
	key ethgo.Key) (*ethgo.Receipt, error) {
	start := time.Now()

	txnHash, err := t.sendTransaction(ctx, txn, key)
	if err != nil {
		t.observe(txn, nil, start, err)

		return nil, err
	}

	receipt, err := t.waitForReceipt(ctx, txnHash)
	t.observe(txn, receipt, start, err)

	return receipt, err
}

func (t *TxRelayerImpl) sendTransaction(ctx context.Context, txn *ethgo.Transaction,
	key ethgo.Key) (ethgo.Hash, error) {
	if err := ctx.Err(); err != nil {
		return ethgo.Hash{}, err
	}

	txn.From = key.Address()

	nonce, err := t.client.Eth().GetNonce(txn.From, ethgo.Pending)
	if err != nil {
		return ethgo.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	txn.Nonce = nonce

	chainID, err := t.ChainID(ctx)
	if err != nil {
		return ethgo.Hash{}, err
	}

	if err := t.fillFees(txn, chainID); err != nil {
		return ethgo.Hash{}, err
	}

	if txn.Gas == 0 {
		if txn.Gas, err = t.estimateGas(txn); err != nil {
			return ethgo.Hash{}, err
		}
	}

	signer := wallet.NewEIP155Signer(chainID.Uint64())
	if txn, err = signer.SignTx(txn, key); err != nil {
		return ethgo.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	data, err := txn.MarshalRLPTo(nil)
	if err != nil {
		return ethgo.Hash{}, err
	}

	hash, err := t.client.Eth().SendRawTransaction(data)
	if err != nil {
		return ethgo.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	t.logger.Debug("transaction sent", "hash", hash, "from", txn.From, "nonce", txn.Nonce, "gas", txn.Gas)

	return hash, nil
}

// SendTransactionLocal sends non-signed transaction
// (this function is meant only for testing purposes and is about to be removed at some point)
func (t *TxRelayerImpl) SendTransactionLocal(ctx context.Context, txn *ethgo.Transaction) (*ethgo.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	accounts, err := t.client.Eth().Accounts()
	if err != nil {
		return nil, err
	}

	if len(accounts) == 0 {
		return nil, errNoAccounts
	}

	txn.From = accounts[0]

	if txn.Gas == 0 {
		if txn.Gas, err = t.estimateGas(txn); err != nil {
			return nil, err
		}
	}

	txnHash, err := t.client.Eth().SendTransaction(txn)
	if err != nil {
		t.observe(txn, nil, start, err)

		return nil, fmt.Errorf("failed to send local transaction: %w", err)
	}

	receipt, err := t.waitForReceipt(ctx, txnHash)
	t.observe(txn, receipt, start, err)

	return receipt, err
}

func (t *TxRelayerImpl) Client() *jsonrpc.Client {
	return t.client
}

func (t *TxRelayerImpl) estimateGas(txn *ethgo.Transaction) (uint64, error) {
	gas, err := t.client.Eth().EstimateGas(&ethgo.CallMsg{
		From:  txn.From,
		To:    txn.To,
		Data:  txn.Input,
		Value: txn.Value,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to estimate gas: %w", err)
	}

	return gas * t.gasLimitMultiplier / 100, nil
}

// fillFees sets the legacy gas price, or the EIP-1559 fee caps when dynamic fees are enabled.
// Fees already present on the transaction are kept.
func (t *TxRelayerImpl) fillFees(txn *ethgo.Transaction, chainID *big.Int) error {
	if !t.dynamicFee {
		if txn.GasPrice != 0 {
			return nil
		}

		gasPrice, err := t.client.Eth().GasPrice()
		if err != nil {
			return fmt.Errorf("failed to get gas price: %w", err)
		}

		txn.GasPrice = gasPrice

		return nil
	}

	txn.Type = ethgo.TransactionDynamicFee
	txn.ChainID = chainID

	if txn.MaxPriorityFeePerGas == nil {
		var raw string
		if err := t.client.Call("eth_maxPriorityFeePerGas", &raw); err != nil {
			return fmt.Errorf("failed to get max priority fee: %w", err)
		}

		tip, err := parseHexBig(raw)
		if err != nil {
			return err
		}

		txn.MaxPriorityFeePerGas = tip
	}

	if txn.MaxFeePerGas == nil {
		var header struct {
			BaseFeePerGas string `json:"baseFeePerGas"`
		}

		if err := t.client.Call("eth_getBlockByNumber", &header, "latest", false); err != nil {
			return fmt.Errorf("failed to get latest block: %w", err)
		}

		baseFee, err := parseHexBig(header.BaseFeePerGas)
		if err != nil {
			return err
		}

		// maxFee = 2 * baseFee + tip
		txn.MaxFeePerGas = new(big.Int).Add(new(big.Int).Mul(baseFee, big.NewInt(2)), txn.MaxPriorityFeePerGas)
	}

	return nil
}

func (t *TxRelayerImpl) waitForReceipt(ctx context.Context, hash ethgo.Hash) (*ethgo.Receipt, error) {
	var receipt *ethgo.Receipt

	backoff := retry.WithMaxDuration(t.receiptTimeout, retry.NewConstant(t.receiptPollInterval))

	err := retry.Do(ctx, backoff, func(_ context.Context) error {
		r, err := t.client.Eth().GetTransactionReceipt(hash)
		if err != nil {
			if err.Error() != "not found" {
				return err
			}
		}

		if r == nil {
			return retry.RetryableError(ErrReceiptTimeout)
		}

		receipt = r

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrReceiptTimeout) {
			return nil, fmt.Errorf("%w: %s", ErrReceiptTimeout, hash)
		}

		return nil, fmt.Errorf("failed to get receipt of %s: %w", hash, err)
	}

	t.logger.Debug("transaction confirmed", "hash", hash, "block", receipt.BlockNumber,
		"status", receipt.Status, "gas used", receipt.GasUsed)

	return receipt, nil
}

func (t *TxRelayerImpl) observe(txn *ethgo.Transaction, receipt *ethgo.Receipt, start time.Time, err error) {
	if t.observer == nil {
		return
	}

	kind := KindCall
	if txn.To == nil {
		kind = KindCreate
	}

	t.observer.ObserveTransaction(kind, receipt, time.Since(start), err)
}

func parseHexBig(raw string) (*big.Int, error) {
	value, ok := new(big.Int).SetString(strings.TrimPrefix(raw, "0x"), 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex quantity '%s'", raw)
	}

	return value, nil
}

type TxRelayerOption func(*TxRelayerImpl)

func WithClient(client *jsonrpc.Client) TxRelayerOption {
	return func(t *TxRelayerImpl) {
		t.client = client
	}
}

func WithIPAddress(ipAddress string) TxRelayerOption {
	return func(t *TxRelayerImpl) {
		t.ipAddress = ipAddress
	}
}

func WithLogger(logger hclog.Logger) TxRelayerOption {
	return func(t *TxRelayerImpl) {
		t.logger = logger
	}
}

func WithReceiptTimeout(receiptTimeout time.Duration) TxRelayerOption {
	return func(t *TxRelayerImpl) {
		t.receiptTimeout = receiptTimeout
	}
}

func WithReceiptPollInterval(interval time.Duration) TxRelayerOption {
	return func(t *TxRelayerImpl) {
		t.receiptPollInterval = interval
	}
}

// WithGasLimitMultiplier sets the percentage applied to gas estimates (120 = +20%)
func WithGasLimitMultiplier(percent uint64) TxRelayerOption {
	return func(t *TxRelayerImpl) {
		if percent >= 100 {
			t.gasLimitMultiplier = percent
		}
	}
}

// WithDynamicFee switches to EIP-1559 transactions
func WithDynamicFee(enabled bool) TxRelayerOption {
	return func(t *TxRelayerImpl) {
		t.dynamicFee = enabled
	}
}

func WithObserver(observer Observer) TxRelayerOption {
	return func(t *TxRelayerImpl) {
		t.observer = observer
	}
}
