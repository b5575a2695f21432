package verify

import (
	"errors"
	"fmt"

	"github.com/umbracle/ethgo"

	"github.com/streamgold/sgld-deployer/command/bootstrap"
	"github.com/streamgold/sgld-deployer/contract"
)

const contractFlag = "contract"

var (
	errContractNotSet = errors.New("contract name not set")
	errNoAddress      = errors.New("contract address argument is missing")
)

type verifyParams struct {
	bootstrap.Params

	chain        bootstrap.ChainParams
	contractName string

	address ethgo.Address
	rawArgs []string
}

func (p *verifyParams) validateFlags(args []string) error {
	if p.contractName == "" {
		return fmt.Errorf("%w: set --%s", errContractNotSet, contractFlag)
	}

	if len(args) == 0 {
		return errNoAddress
	}

	addr, err := contract.ParseAddress(args[0])
	if err != nil {
		return err
	}

	p.address = addr
	p.rawArgs = args[1:]

	return nil
}
