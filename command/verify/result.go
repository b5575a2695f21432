package verify

import (
	"bytes"
	"fmt"

	"github.com/umbracle/ethgo"

	"github.com/streamgold/sgld-deployer/command/helper"
)

type verifyResult struct {
	Name            string        `json:"name"`
	ChainID         uint64        `json:"chain_id"`
	Address         ethgo.Address `json:"address"`
	GUID            string        `json:"guid,omitempty"`
	AlreadyVerified bool          `json:"already_verified"`
	URL             string        `json:"url,omitempty"`
}

func (r *verifyResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[VERIFY CONTRACT]\n")

	vals := make([]string, 0, 5)
	vals = append(vals, fmt.Sprintf("Name|%s", r.Name))
	vals = append(vals, fmt.Sprintf("Chain ID|%d", r.ChainID))
	vals = append(vals, fmt.Sprintf("Contract (address)|%s", r.Address))

	if r.AlreadyVerified {
		vals = append(vals, "Status|already verified")
	} else {
		vals = append(vals, fmt.Sprintf("Status|verified (guid %s)", r.GUID))
	}

	vals = append(vals, fmt.Sprintf("Explorer|%s", r.URL))

	buffer.WriteString(helper.FormatKV(vals))
	buffer.WriteString("\n")

	return buffer.String()
}
