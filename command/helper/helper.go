package helper

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"
	"github.com/umbracle/ethgo"

	"github.com/streamgold/sgld-deployer/command"
	"github.com/streamgold/sgld-deployer/config"
	"github.com/streamgold/sgld-deployer/contract"
)

// GlobalParams are bound to the persistent flags of the root command
type GlobalParams struct {
	ConfigPath string
	EnvFiles   []string
	LogLevel   string
}

// Globals holds the parsed persistent flags
var Globals GlobalParams

// FormatList formats a list, using a specific blank value replacement
func FormatList(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"

	return columnize.Format(in, columnConf)
}

// FormatKV formats key value pairs:
//
// Key = Value
//
// Key = <none>
func FormatKV(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"
	columnConf.Glue = " = "

	return columnize.Format(in, columnConf)
}

// RegisterJSONOutputFlag registers the --json output setting for all child commands
func RegisterJSONOutputFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool(
		command.JSONOutputFlag,
		false,
		"get all outputs in json format (default false)",
	)
}

// RegisterGlobalFlags registers the persistent flags shared by every command
func RegisterGlobalFlags(cmd *cobra.Command) {
	RegisterJSONOutputFlag(cmd)

	cmd.PersistentFlags().StringVar(
		&Globals.ConfigPath,
		command.ConfigFlag,
		"",
		"the path to the deployer config file (json, hcl or yaml)",
	)

	cmd.PersistentFlags().StringArrayVar(
		&Globals.EnvFiles,
		command.EnvFileFlag,
		[]string{config.DefaultEnvFile},
		"env files loaded before the command runs",
	)

	cmd.PersistentFlags().StringVar(
		&Globals.LogLevel,
		command.LogLevelFlag,
		"",
		"the log level for console output, overrides the config file",
	)
}

// NewLogger builds the logger of a command run. Logs go to stderr so that
// the command output stays machine readable.
func NewLogger(level string, jsonFormat bool, out io.Writer) hclog.Logger {
	if out == nil {
		out = os.Stderr
	}

	if level == "" {
		level = command.DefaultLogLevel
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       command.AppName,
		Level:      hclog.LevelFromString(level),
		JSONFormat: jsonFormat,
		Output:     out,
	})
}

// ParseAddressFlag parses an optional address flag, an empty value is the zero address
func ParseAddressFlag(flag, value string) (ethgo.Address, error) {
	if strings.TrimSpace(value) == "" {
		return ethgo.ZeroAddress, nil
	}

	addr, err := contract.ParseAddress(strings.TrimSpace(value))
	if err != nil {
		return ethgo.ZeroAddress, fmt.Errorf("invalid --%s: %w", flag, err)
	}

	return addr, nil
}
