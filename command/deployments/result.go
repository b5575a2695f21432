package deployments

import (
	"bytes"
	"fmt"
	"time"

	"github.com/streamgold/sgld-deployer/command/helper"
	"github.com/streamgold/sgld-deployer/journal"
)

type deploymentsResult struct {
	Deployments []*journal.Record `json:"deployments"`
}

func (r *deploymentsResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[DEPLOYMENTS]\n")

	if len(r.Deployments) == 0 {
		buffer.WriteString("No deployments found\n")

		return buffer.String()
	}

	rows := make([]string, 0, len(r.Deployments)+1)
	rows = append(rows, "Chain ID|Network|Name|Address|Block|Deployed at")

	for _, rec := range r.Deployments {
		rows = append(rows, fmt.Sprintf("%d|%s|%s|%s|%d|%s",
			rec.ChainID,
			rec.Network,
			rec.Name,
			rec.Address,
			rec.BlockNumber,
			rec.DeployedAt.Format(time.RFC3339),
		))
	}

	buffer.WriteString(helper.FormatList(rows))
	buffer.WriteString("\n")

	return buffer.String()
}
