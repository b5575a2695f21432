package version

import (
	"bytes"
	"fmt"

	"github.com/streamgold/sgld-deployer/command/helper"
)

type VersionResult struct {
	Version    string `json:"version"`
	Revision   string `json:"revision"`
	Dirty      bool   `json:"dirty"`
	LastCommit string `json:"last_commit,omitempty"`
}

func (r *VersionResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[VERSION INFO]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Release version|%s", r.Version),
		fmt.Sprintf("Commit hash|%s", r.Revision),
		fmt.Sprintf("Dirty build|%t", r.Dirty),
		fmt.Sprintf("Commit time|%s", r.LastCommit),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
