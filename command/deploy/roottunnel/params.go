package roottunnel

import (
	"github.com/streamgold/sgld-deployer/command/bootstrap"
	"github.com/streamgold/sgld-deployer/command/helper"
)

const (
	bridgeTunnelFlag = "bridge-tunnel"
	childChainIDFlag = "child-chain-id"
)

type rootTunnelParams struct {
	bootstrap.Params

	chain        bootstrap.ChainParams
	bridgeTunnel string
	childChainID uint64
}

func (p *rootTunnelParams) validateFlags() error {
	_, err := helper.ParseAddressFlag(bridgeTunnelFlag, p.bridgeTunnel)

	return err
}
