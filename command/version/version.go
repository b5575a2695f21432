package version

import (
	"github.com/carlmjohnson/versioninfo"
	"github.com/spf13/cobra"

	"github.com/streamgold/sgld-deployer/command"
)

func GetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Returns the current " + command.AppName + " version",
		Args:  cobra.NoArgs,
		Run:   runCommand,
	}
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	outputter.SetCommandResult(newVersionResult())
}

func newVersionResult() *VersionResult {
	res := &VersionResult{
		Version:  versioninfo.Version,
		Revision: versioninfo.Revision,
		Dirty:    versioninfo.DirtyBuild,
	}

	if !versioninfo.LastCommit.IsZero() {
		res.LastCommit = versioninfo.LastCommit.UTC().Format("2006-01-02T15:04:05Z")
	}

	return res
}
