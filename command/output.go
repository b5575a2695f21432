package command

import (
	"bytes"

	"github.com/spf13/cobra"
)

// OutputFormatter is the standardized interface all output formatters
// should use
type OutputFormatter interface {
	// getErrorOutput returns the CLI command error
	getErrorOutput() string

	// getCommandOutput returns the CLI command output
	getCommandOutput() string

	// SetError sets the encountered error
	SetError(err error)

	// SetCommandResult sets the result of the command execution
	SetCommandResult(result CommandResult)

	// WriteCommandResult immediately writes the given command result without waiting for WriteOutput func call.
	WriteCommandResult(result CommandResult)

	// WriteOutput writes the result / error output
	WriteOutput()
}

type CommandResult interface {
	GetOutput() string
}

// Results concatenates the output of several command results
type Results []CommandResult

func (r Results) GetOutput() string {
	var buffer bytes.Buffer

	for _, res := range r {
		buffer.WriteString(res.GetOutput())
	}

	return buffer.String()
}

// MessageResult is a plain text progress message
type MessageResult struct {
	Message string `json:"message"`
}

func (r MessageResult) GetOutput() string {
	return r.Message + "\n"
}

func shouldOutputJSON(baseCmd *cobra.Command) bool {
	flag := baseCmd.Flag(JSONOutputFlag)

	return flag != nil && flag.Changed
}

func InitializeOutputter(cmd *cobra.Command) OutputFormatter {
	if shouldOutputJSON(cmd) {
		return newJSONOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	return newCLIOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
}
