package gateway

import (
	"errors"
	"fmt"

	"github.com/streamgold/sgld-deployer/command/bootstrap"
	"github.com/streamgold/sgld-deployer/command/helper"
	"github.com/streamgold/sgld-deployer/helper/common"
)

const (
	anyCallFlag      = "anycall"
	depositValueFlag = "deposit-value"

	suffixA = "-a"
	suffixB = "-b"

	defaultDepositValue = "0.1"

	tokenName   = "Telebubbies Token"
	tokenSymbol = "TTT"

	tokenGas   = uint64(1800000)
	gatewayGas = uint64(1300000)

	etherDecimals = uint8(18)
)

var (
	errChainNotSet = errors.New("chain not set")
	errSameChain   = errors.New("both gateway sides point at the same chain")
)

type gatewayParams struct {
	bootstrap.Params

	chainA   bootstrap.ChainParams
	chainB   bootstrap.ChainParams
	anyCallA string
	anyCallB string

	depositValue string
}

func (p *gatewayParams) validateFlags() error {
	for _, side := range []struct {
		suffix string
		chain  bootstrap.ChainParams
	}{
		{suffixA, p.chainA},
		{suffixB, p.chainB},
	} {
		if side.chain.JSONRPC == "" && side.chain.Network == "" {
			return fmt.Errorf("%w: set --%s%s or --%s%s", errChainNotSet,
				bootstrap.JSONRPCFlag, side.suffix, bootstrap.NetworkFlag, side.suffix)
		}
	}

	if _, err := helper.ParseAddressFlag(anyCallFlag+suffixA, p.anyCallA); err != nil {
		return err
	}

	if _, err := helper.ParseAddressFlag(anyCallFlag+suffixB, p.anyCallB); err != nil {
		return err
	}

	if _, err := common.ParseUnits(p.depositValue, etherDecimals); err != nil {
		return fmt.Errorf("invalid --%s: %w", depositValueFlag, err)
	}

	return nil
}
