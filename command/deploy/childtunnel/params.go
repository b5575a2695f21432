package childtunnel

import (
	"fmt"

	"github.com/streamgold/sgld-deployer/command/bootstrap"
)

const contractFlag = "contract"

type childTunnelParams struct {
	bootstrap.Params

	chain    bootstrap.ChainParams
	contract string
}

func (p *childTunnelParams) validateFlags() error {
	switch p.contract {
	case bootstrap.ChildTunnelContract, bootstrap.BridgeTunnelContract:
		return nil
	default:
		return fmt.Errorf("--%s must be %s or %s, got %q",
			contractFlag, bootstrap.ChildTunnelContract, bootstrap.BridgeTunnelContract, p.contract)
	}
}
