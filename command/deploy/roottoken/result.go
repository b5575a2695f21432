package roottoken

import (
	"bytes"
	"fmt"

	"github.com/umbracle/ethgo"

	"github.com/streamgold/sgld-deployer/command/helper"
)

type rootTokenResult struct {
	Oracle           ethgo.Address `json:"oracle"`
	Token            ethgo.Address `json:"token"`
	BackedTreasury   ethgo.Address `json:"backed_treasury"`
	UnbackedTreasury ethgo.Address `json:"unbacked_treasury"`
	FeeAddress       ethgo.Address `json:"fee_address"`
	Redeem           ethgo.Address `json:"redeem"`
	LockedGold       string        `json:"locked_gold"`
	BackedTokens     string        `json:"backed_tokens"`
}

func (r *rootTokenResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[ROOT TOKEN]\n")

	vals := make([]string, 0, 8)
	vals = append(vals, fmt.Sprintf("Oracle (address)|%s", r.Oracle))
	vals = append(vals, fmt.Sprintf("Token (address)|%s", r.Token))
	vals = append(vals, fmt.Sprintf("Backed treasury|%s", r.BackedTreasury))
	vals = append(vals, fmt.Sprintf("Unbacked treasury|%s", r.UnbackedTreasury))
	vals = append(vals, fmt.Sprintf("Fee address|%s", r.FeeAddress))
	vals = append(vals, fmt.Sprintf("Redeem address|%s", r.Redeem))
	vals = append(vals, fmt.Sprintf("Locked gold|%s", r.LockedGold))
	vals = append(vals, fmt.Sprintf("Backed tokens|%s", r.BackedTokens))

	buffer.WriteString(helper.FormatKV(vals))
	buffer.WriteString("\n")

	return buffer.String()
}
