package bootstrap

import (
	"bytes"
	"fmt"

	"github.com/umbracle/ethgo"

	"github.com/streamgold/sgld-deployer/command/helper"
	"github.com/streamgold/sgld-deployer/contract"
)

type DeploymentResult struct {
	Name        string        `json:"name"`
	ChainID     uint64        `json:"chain_id"`
	Address     ethgo.Address `json:"address"`
	TxHash      ethgo.Hash    `json:"tx_hash"`
	GasUsed     uint64        `json:"gas_used"`
	VerifyHint  string        `json:"verify_hint,omitempty"`
	VerifiedURL string        `json:"verified_url,omitempty"`
}

func NewDeploymentResult(chainID uint64, dep *contract.Deployment) *DeploymentResult {
	return &DeploymentResult{
		Name:    dep.Name,
		ChainID: chainID,
		Address: dep.Address,
		TxHash:  dep.TxHash,
		GasUsed: dep.GasUsed,
	}
}

func (r *DeploymentResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[DEPLOY CONTRACT]\n")

	vals := make([]string, 0, 7)
	vals = append(vals, fmt.Sprintf("Name|%s", r.Name))
	vals = append(vals, fmt.Sprintf("Chain ID|%d", r.ChainID))
	vals = append(vals, fmt.Sprintf("Contract (address)|%s", r.Address))
	vals = append(vals, fmt.Sprintf("Transaction (hash)|%s", r.TxHash))
	vals = append(vals, fmt.Sprintf("Transaction (gas used)|%d", r.GasUsed))

	if r.VerifiedURL != "" {
		vals = append(vals, fmt.Sprintf("Verified|%s", r.VerifiedURL))
	} else if r.VerifyHint != "" {
		vals = append(vals, fmt.Sprintf("Verify with|%s", r.VerifyHint))
	}

	buffer.WriteString(helper.FormatKV(vals))
	buffer.WriteString("\n")

	return buffer.String()
}

type TransactionResult struct {
	Contract    string     `json:"contract"`
	Method      string     `json:"method"`
	ChainID     uint64     `json:"chain_id"`
	TxHash      ethgo.Hash `json:"tx_hash"`
	BlockNumber uint64     `json:"block_number"`
}

func NewTransactionResult(chainID uint64, c *contract.Contract, method string,
	receipt *ethgo.Receipt) *TransactionResult {
	return &TransactionResult{
		Contract:    c.Name,
		Method:      method,
		ChainID:     chainID,
		TxHash:      receipt.TransactionHash,
		BlockNumber: receipt.BlockNumber,
	}
}

func (r *TransactionResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[TRANSACTION]\n")

	vals := make([]string, 0, 4)
	vals = append(vals, fmt.Sprintf("Call|%s.%s", r.Contract, r.Method))
	vals = append(vals, fmt.Sprintf("Chain ID|%d", r.ChainID))
	vals = append(vals, fmt.Sprintf("Transaction (hash)|%s", r.TxHash))
	vals = append(vals, fmt.Sprintf("Block|%d", r.BlockNumber))

	buffer.WriteString(helper.FormatKV(vals))
	buffer.WriteString("\n")

	return buffer.String()
}
