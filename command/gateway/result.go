package gateway

import (
	"bytes"
	"fmt"

	"github.com/umbracle/ethgo"

	"github.com/streamgold/sgld-deployer/command/helper"
)

type gatewaySide struct {
	ChainID uint64        `json:"chain_id"`
	Token   ethgo.Address `json:"token"`
	Gateway ethgo.Address `json:"gateway"`
	AnyCall ethgo.Address `json:"anycall"`
}

type gatewayResult struct {
	A gatewaySide `json:"a"`
	B gatewaySide `json:"b"`
}

func (r *gatewayResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[ERC721 GATEWAY]\n")

	vals := make([]string, 0, 8)

	for _, side := range []struct {
		label string
		s     gatewaySide
	}{
		{"A", r.A},
		{"B", r.B},
	} {
		vals = append(vals, fmt.Sprintf("Chain %s (id)|%d", side.label, side.s.ChainID))
		vals = append(vals, fmt.Sprintf("Chain %s token|%s", side.label, side.s.Token))
		vals = append(vals, fmt.Sprintf("Chain %s gateway|%s", side.label, side.s.Gateway))
		vals = append(vals, fmt.Sprintf("Chain %s anycall|%s", side.label, side.s.AnyCall))
	}

	buffer.WriteString(helper.FormatKV(vals))
	buffer.WriteString("\n")

	return buffer.String()
}
