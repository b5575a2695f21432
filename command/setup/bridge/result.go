package bridge

import (
	"bytes"
	"fmt"

	"github.com/umbracle/ethgo"

	"github.com/streamgold/sgld-deployer/command/helper"
)

type setupBridgeResult struct {
	BridgeTunnel ethgo.Address `json:"bridge_tunnel"`
	BridgeToken  ethgo.Address `json:"bridge_token"`
	RootTunnel   ethgo.Address `json:"root_tunnel"`
	RootToken    ethgo.Address `json:"root_token"`
	FeeAddress   ethgo.Address `json:"fee_address"`
	Owner        ethgo.Address `json:"owner"`
	Unbacked     ethgo.Address `json:"unbacked_treasury"`
	Redeem       ethgo.Address `json:"redeem"`
}

func (r *setupBridgeResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[SETUP BRIDGE]\n")

	vals := make([]string, 0, 8)
	vals = append(vals, fmt.Sprintf("Bridge tunnel|%s", r.BridgeTunnel))
	vals = append(vals, fmt.Sprintf("Bridge token|%s", r.BridgeToken))
	vals = append(vals, fmt.Sprintf("Root tunnel|%s", r.RootTunnel))
	vals = append(vals, fmt.Sprintf("Root token|%s", r.RootToken))
	vals = append(vals, fmt.Sprintf("Fee address|%s", r.FeeAddress))
	vals = append(vals, fmt.Sprintf("Owner|%s", r.Owner))
	vals = append(vals, fmt.Sprintf("Unbacked treasury|%s", r.Unbacked))
	vals = append(vals, fmt.Sprintf("Redeem address|%s", r.Redeem))

	buffer.WriteString(helper.FormatKV(vals))
	buffer.WriteString("\n")

	return buffer.String()
}
