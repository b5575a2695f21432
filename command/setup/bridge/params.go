package bridge

import (
	"github.com/streamgold/sgld-deployer/command/bootstrap"
	"github.com/streamgold/sgld-deployer/command/helper"
)

const (
	bridgeTunnelFlag = "bridge-tunnel"
	bridgeTokenFlag  = "bridge-token"
	rootTokenFlag    = "root-token"
	rootTunnelFlag   = "root-tunnel"
	rootChainIDFlag  = "root-chain-id"
	feeAddressFlag   = "fee-address"
	ownerFlag        = "owner"
	unbackedFlag     = "unbacked-treasury"
	redeemFlag       = "redeem"
)

type setupBridgeParams struct {
	bootstrap.Params

	chain        bootstrap.ChainParams
	bridgeTunnel string
	bridgeToken  string
	rootToken    string
	rootTunnel   string
	rootChainID  uint64
	feeAddress   string
	owner        string
	unbacked     string
	redeem       string
}

func (p *setupBridgeParams) validateFlags() error {
	for _, f := range []struct{ flag, value string }{
		{bridgeTunnelFlag, p.bridgeTunnel},
		{bridgeTokenFlag, p.bridgeToken},
		{rootTokenFlag, p.rootToken},
		{rootTunnelFlag, p.rootTunnel},
		{feeAddressFlag, p.feeAddress},
		{ownerFlag, p.owner},
		{unbackedFlag, p.unbacked},
		{redeemFlag, p.redeem},
	} {
		if _, err := helper.ParseAddressFlag(f.flag, f.value); err != nil {
			return err
		}
	}

	return nil
}
