package tests

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/umbracle/ethgo"
	"github.com/umbracle/ethgo/abi"
	"github.com/umbracle/ethgo/wallet"

	"github.com/streamgold/sgld-deployer/helper/hex"
)

// DevAccount is the unlocked account reported by eth_accounts
var DevAccount = ethgo.HexToAddress("0x9f2E9b1F2E8aE4B1A1bC1f7aE3D2F7c1b6e4A001")

// SentTx is a transaction accepted by the TestNode
type SentTx struct {
	Hash            ethgo.Hash
	Raw             []byte
	Local           bool
	Reverted        bool
	ContractAddress ethgo.Address
	BlockNumber     uint64
}

// TestNode is an in-process JSON-RPC endpoint serving the subset of the eth namespace
// used by the deployer. Every accepted transaction is mined in its own block and
// gets a deterministic contract address with code on it.
type TestNode struct {
	*httptest.Server

	lock sync.Mutex

	chainID      uint64
	receiptDelay int
	gasEstimate  uint64
	revertNext   bool
	revertAt     map[uint64]bool

	callResults map[string]string
	code        map[ethgo.Address]string
	txs         []*SentTx
	byHash      map[ethgo.Hash]*SentTx
	polls       map[ethgo.Hash]int
	calls       map[string]int
}

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result"`
	Error   *rpcError       `json:"error,omitempty"`
}

// NewTestNode starts a node answering eth_chainId with the given chain id
func NewTestNode(t *testing.T, chainID uint64) *TestNode {
	t.Helper()

	n := &TestNode{
		chainID:     chainID,
		gasEstimate: 100000,
		revertAt:    map[uint64]bool{},
		callResults: map[string]string{},
		code:        map[ethgo.Address]string{},
		byHash:      map[ethgo.Hash]*SentTx{},
		polls:       map[ethgo.Hash]int{},
		calls:       map[string]int{},
	}

	n.Server = httptest.NewServer(http.HandlerFunc(n.serveHTTP))
	t.Cleanup(n.Server.Close)

	return n
}

// SetReceiptDelay makes eth_getTransactionReceipt return null the given number of times per transaction
func (n *TestNode) SetReceiptDelay(polls int) {
	n.lock.Lock()
	defer n.lock.Unlock()

	n.receiptDelay = polls
}

// RevertNext marks the next accepted transaction as failed
func (n *TestNode) RevertNext() {
	n.lock.Lock()
	defer n.lock.Unlock()

	n.revertNext = true
}

// RevertTx marks the accepted transaction with the given index as failed
func (n *TestNode) RevertTx(index uint64) {
	n.lock.Lock()
	defer n.lock.Unlock()

	n.revertAt[index] = true
}

// SetCallResult sets the eth_call result returned for the given 4 byte selector
func (n *TestNode) SetCallResult(selector []byte, result []byte) {
	n.lock.Lock()
	defer n.lock.Unlock()

	n.callResults[hex.EncodeToHex(selector)] = hex.EncodeToHex(result)
}

// SetCode sets the runtime code returned by eth_getCode for the address
func (n *TestNode) SetCode(addr ethgo.Address, code []byte) {
	n.lock.Lock()
	defer n.lock.Unlock()

	n.code[addr] = hex.EncodeToHex(code)
}

// Transactions returns the accepted transactions in order
func (n *TestNode) Transactions() []*SentTx {
	n.lock.Lock()
	defer n.lock.Unlock()

	out := make([]*SentTx, len(n.txs))
	copy(out, n.txs)

	return out
}

// SignedTransactions decodes the raw transactions accepted by the node, skipping the
// eth_sendTransaction ones, and sets From to the recovered signer
func (n *TestNode) SignedTransactions(t *testing.T) []*ethgo.Transaction {
	t.Helper()

	signer := wallet.NewEIP155Signer(n.chainID)
	out := []*ethgo.Transaction{}

	for _, sent := range n.Transactions() {
		if sent.Local {
			continue
		}

		txn := new(ethgo.Transaction)
		require.NoError(t, txn.UnmarshalRLP(sent.Raw))

		from, err := signer.RecoverSender(txn)
		require.NoError(t, err)

		txn.From = from
		out = append(out, txn)
	}

	return out
}

// EncodeCall returns the calldata of method with args under the given ABI
func EncodeCall(t *testing.T, contractAbi, method string, args ...interface{}) []byte {
	t.Helper()

	m := abi.MustNewABI(contractAbi).GetMethod(method)
	require.NotNil(t, m, method)

	input, err := m.Encode(args)
	require.NoError(t, err)

	return input
}

// EncodeDeploy returns the input of a deployment of the test bytecode with the constructor args
func EncodeDeploy(t *testing.T, contractAbi string, args ...interface{}) []byte {
	t.Helper()

	bytecode := hex.MustDecodeHex(testBytecode)

	a := abi.MustNewABI(contractAbi)
	if a.Constructor == nil {
		require.Empty(t, args)

		return bytecode
	}

	encoded, err := abi.Encode(args, a.Constructor.Inputs)
	require.NoError(t, err)

	return append(bytecode, encoded...)
}

// CallCount returns how many times the JSON-RPC method was invoked
func (n *TestNode) CallCount(method string) int {
	n.lock.Lock()
	defer n.lock.Unlock()

	return n.calls[method]
}

func (n *TestNode) serveHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	if len(req.ID) == 0 {
		req.ID = json.RawMessage("1")
	}

	result, rerr := n.handle(req.Method, req.Params)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(&rpcResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
		Error:   rerr,
	})
}

func (n *TestNode) handle(method string, params []json.RawMessage) (interface{}, *rpcError) {
	n.lock.Lock()
	defer n.lock.Unlock()

	n.calls[method]++

	switch method {
	case "eth_chainId":
		return quantity(n.chainID), nil
	case "eth_blockNumber":
		return quantity(uint64(len(n.txs))), nil
	case "eth_getTransactionCount":
		return quantity(uint64(len(n.txs))), nil
	case "eth_gasPrice":
		return quantity(1000000000), nil
	case "eth_maxPriorityFeePerGas":
		return quantity(1500000000), nil
	case "eth_getBlockByNumber":
		return map[string]string{"baseFeePerGas": quantity(7)}, nil
	case "eth_estimateGas":
		return quantity(n.gasEstimate), nil
	case "eth_accounts":
		return []string{DevAccount.String()}, nil
	case "eth_getCode":
		addr, err := stringParam(params, 0)
		if err != nil {
			return nil, err
		}

		if code, ok := n.code[ethgo.HexToAddress(addr)]; ok {
			return code, nil
		}

		return "0x", nil
	case "eth_call":
		var msg map[string]interface{}
		if len(params) == 0 || json.Unmarshal(params[0], &msg) != nil {
			return nil, &rpcError{Code: -32602, Message: "invalid call message"}
		}

		data, _ := msg["data"].(string)
		if data == "" {
			data, _ = msg["input"].(string)
		}

		if len(data) >= 10 {
			if res, ok := n.callResults[strings.ToLower(data[:10])]; ok {
				return res, nil
			}
		}

		return "0x", nil
	case "eth_sendRawTransaction":
		raw, err := stringParam(params, 0)
		if err != nil {
			return nil, err
		}

		return n.accept(hex.MustDecodeHex(raw), false).Hash.String(), nil
	case "eth_sendTransaction":
		if len(params) == 0 {
			return nil, &rpcError{Code: -32602, Message: "missing transaction"}
		}

		return n.accept(params[0], true).Hash.String(), nil
	case "eth_getTransactionReceipt":
		hash, err := stringParam(params, 0)
		if err != nil {
			return nil, err
		}

		return n.receipt(ethgo.HexToHash(hash)), nil
	default:
		return nil, &rpcError{Code: -32601, Message: fmt.Sprintf("method %s not found", method)}
	}
}

func (n *TestNode) accept(raw []byte, local bool) *SentTx {
	index := uint64(len(n.txs))

	hash := sha256.Sum256(append([]byte(fmt.Sprintf("tx-%d-", index)), raw...))
	contract := sha256.Sum256([]byte(fmt.Sprintf("contract-%d", index)))

	tx := &SentTx{
		Hash:        ethgo.Hash(hash),
		Raw:         raw,
		Local:       local,
		Reverted:    n.revertNext || n.revertAt[index],
		BlockNumber: index + 1,
	}
	copy(tx.ContractAddress[:], contract[12:])

	n.revertNext = false
	n.txs = append(n.txs, tx)
	n.byHash[tx.Hash] = tx

	if !tx.Reverted {
		n.code[tx.ContractAddress] = "0x6080604052"
	}

	return tx
}

func (n *TestNode) receipt(hash ethgo.Hash) interface{} {
	tx, ok := n.byHash[hash]
	if !ok {
		return nil
	}

	if n.polls[hash] < n.receiptDelay {
		n.polls[hash]++

		return nil
	}

	status := uint64(1)
	if tx.Reverted {
		status = 0
	}

	return map[string]interface{}{
		"transactionHash":   tx.Hash.String(),
		"transactionIndex":  "0x0",
		"blockHash":         tx.Hash.String(),
		"blockNumber":       quantity(tx.BlockNumber),
		"from":              DevAccount.String(),
		"gasUsed":           quantity(21000 + tx.BlockNumber),
		"cumulativeGasUsed": quantity(21000 + tx.BlockNumber),
		"contractAddress":   tx.ContractAddress.String(),
		"logs":              []interface{}{},
		"logsBloom":         "0x" + strings.Repeat("0", 512),
		"status":            quantity(status),
	}
}

func stringParam(params []json.RawMessage, i int) (string, *rpcError) {
	if len(params) <= i {
		return "", &rpcError{Code: -32602, Message: "missing param"}
	}

	var s string
	if err := json.Unmarshal(params[i], &s); err != nil {
		return "", &rpcError{Code: -32602, Message: err.Error()}
	}

	return s, nil
}

func quantity(v uint64) string {
	return fmt.Sprintf("0x%x", v)
}
