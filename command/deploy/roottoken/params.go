package roottoken

import (
	"fmt"

	"github.com/umbracle/ethgo"

	"github.com/streamgold/sgld-deployer/command/bootstrap"
	"github.com/streamgold/sgld-deployer/command/helper"
	"github.com/streamgold/sgld-deployer/helper/common"
)

const (
	lockedGoldFlag       = "locked-gold"
	backedTokensFlag     = "backed-tokens"
	feeAddressFlag       = "fee-address"
	backedTreasuryFlag   = "backed-treasury"
	unbackedTreasuryFlag = "unbacked-treasury"
	redeemFlag           = "redeem"

	defaultLockedGold   = "8133525785"
	defaultBackedTokens = "100000"
	defaultFeeAddress   = "0x3E924146306957bD453502e33B9a7B6AbA6e4D3a"
)

type rootTokenParams struct {
	bootstrap.Params

	chain            bootstrap.ChainParams
	lockedGold       string
	backedTokens     string
	feeAddress       string
	backedTreasury   string
	unbackedTreasury string
	redeem           string
}

func (p *rootTokenParams) validateFlags() error {
	if _, err := common.ParseUnits(p.lockedGold, bootstrap.TokenDecimals); err != nil {
		return fmt.Errorf("invalid --%s: %w", lockedGoldFlag, err)
	}

	if _, err := common.ParseUnits(p.backedTokens, bootstrap.TokenDecimals); err != nil {
		return fmt.Errorf("invalid --%s: %w", backedTokensFlag, err)
	}

	fee, err := helper.ParseAddressFlag(feeAddressFlag, p.feeAddress)
	if err != nil {
		return err
	}

	if fee == ethgo.ZeroAddress {
		return fmt.Errorf("--%s is required", feeAddressFlag)
	}

	for flag, value := range map[string]string{
		backedTreasuryFlag:   p.backedTreasury,
		unbackedTreasuryFlag: p.unbackedTreasury,
		redeemFlag:           p.redeem,
	} {
		if _, err := helper.ParseAddressFlag(flag, value); err != nil {
			return err
		}
	}

	return nil
}
