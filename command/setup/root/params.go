package root

import (
	"fmt"

	"github.com/streamgold/sgld-deployer/command/bootstrap"
	"github.com/streamgold/sgld-deployer/command/helper"
	"github.com/streamgold/sgld-deployer/helper/common"
)

const (
	rootTokenFlag    = "root-token"
	rootTunnelFlag   = "root-tunnel"
	childTokenFlag   = "child-token"
	childChainIDFlag = "child-chain-id"
	approveFlag      = "approve"
	amountFlag       = "amount"

	defaultApprove = "10"
	defaultAmount  = "100"
)

type setupRootParams struct {
	bootstrap.Params

	chain        bootstrap.ChainParams
	rootToken    string
	rootTunnel   string
	childToken   string
	childChainID uint64
	approve      string
	amount       string
}

func (p *setupRootParams) validateFlags() error {
	for _, f := range []struct{ flag, value string }{
		{rootTokenFlag, p.rootToken},
		{rootTunnelFlag, p.rootTunnel},
		{childTokenFlag, p.childToken},
	} {
		if _, err := helper.ParseAddressFlag(f.flag, f.value); err != nil {
			return err
		}
	}

	if _, err := common.ParseUnits(p.approve, bootstrap.TokenDecimals); err != nil {
		return fmt.Errorf("invalid --%s: %w", approveFlag, err)
	}

	if _, err := common.ParseUnits(p.amount, bootstrap.TokenDecimals); err != nil {
		return fmt.Errorf("invalid --%s: %w", amountFlag, err)
	}

	return nil
}
