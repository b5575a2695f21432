package helper

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umbracle/ethgo"

	"github.com/streamgold/sgld-deployer/command"
)

func TestFormatKV(t *testing.T) {
	t.Parallel()

	out := FormatKV([]string{
		"Name|StreamGold",
		"Contract (address)|",
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Name               = StreamGold", lines[0])
	assert.Equal(t, "Contract (address) = <none>", lines[1])
}

func TestParseAddressFlag(t *testing.T) {
	t.Parallel()

	addr, err := ParseAddressFlag("root-token", "")
	require.NoError(t, err)
	require.Equal(t, ethgo.ZeroAddress, addr)

	addr, err = ParseAddressFlag("root-token", " 0x3E924146306957bD453502e33B9a7B6AbA6e4D3a ")
	require.NoError(t, err)
	require.Equal(t, ethgo.HexToAddress("0x3E924146306957bD453502e33B9a7B6AbA6e4D3a"), addr)

	_, err = ParseAddressFlag("root-token", "0x1234")
	require.ErrorContains(t, err, "--root-token")
}

func TestRegisterGlobalFlags(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "sgld"}
	RegisterGlobalFlags(cmd)

	for _, name := range []string{command.JSONOutputFlag, command.ConfigFlag, command.EnvFileFlag, command.LogLevelFlag} {
		require.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := NewLogger("", false, &buf)
	logger.Debug("hidden")
	logger.Info("deployed", "name", "StreamGold")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "name=StreamGold")

	buf.Reset()

	NewLogger("DEBUG", true, &buf).Debug("shown")
	require.Contains(t, buf.String(), `"@message":"shown"`)
}
