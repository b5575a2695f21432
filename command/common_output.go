package command

import (
	"io"
	"sync/atomic"
)

// failed is set once any command reports an error, the process exit code follows it
var failed atomic.Bool

// Failed reports whether a command run by this process set an error
func Failed() bool {
	return failed.Load()
}

type commonOutputFormatter struct {
	stdout io.Writer
	stderr io.Writer

	errorOutput   error
	commandOutput CommandResult
}

func (c *commonOutputFormatter) SetError(err error) {
	c.errorOutput = err

	failed.Store(true)
}

func (c *commonOutputFormatter) SetCommandResult(result CommandResult) {
	c.commandOutput = result
}
