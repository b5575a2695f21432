package deployments

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umbracle/ethgo"

	"github.com/streamgold/sgld-deployer/artifact"
	"github.com/streamgold/sgld-deployer/command/helper"
	"github.com/streamgold/sgld-deployer/helper/tests"
	"github.com/streamgold/sgld-deployer/journal"
)

func newTestParams(t *testing.T, records ...*journal.Record) (*deploymentsParams, helper.GlobalParams) {
	t.Helper()

	dir := t.TempDir()
	cfgPath := tests.WriteConfig(t, dir, artifact.FormatHardhat,
		tests.ConfigNetwork{Name: "mumbai", JSONRPC: "http://127.0.0.1:1", ChainID: 80001},
		tests.ConfigNetwork{Name: "nochain", JSONRPC: "http://127.0.0.1:2"},
	)

	j, err := journal.Open(filepath.Join(dir, "journal.db"))
	require.NoError(t, err)

	for _, rec := range records {
		require.NoError(t, j.Put(rec))
	}

	require.NoError(t, j.Close())

	p := &deploymentsParams{}
	p.LogOutput = io.Discard
	p.LookupEnv = tests.MapEnv(nil)

	return p, helper.GlobalParams{ConfigPath: cfgPath}
}

func record(chainID uint64, name string, last byte) *journal.Record {
	addr := ethgo.Address{}
	addr[19] = last

	return &journal.Record{
		ChainID:    chainID,
		Network:    "net",
		Name:       name,
		Address:    addr,
		DeployedAt: time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func names(t *testing.T, p *deploymentsParams, g helper.GlobalParams) []string {
	t.Helper()

	res, err := run(context.Background(), p, g)
	require.NoError(t, err)

	list, ok := res.(*deploymentsResult)
	require.True(t, ok)

	out := make([]string, 0, len(list.Deployments))
	for _, rec := range list.Deployments {
		out = append(out, rec.Name+"@"+rec.Address.String()[40:])
	}

	return out
}

func TestDeployments(t *testing.T) {
	t.Parallel()

	p, g := newTestParams(t,
		record(80001, "StreamGoldBridge", 1),
		record(5, "StreamGold", 2),
		record(80001, "FxERC20BridgeTunnel", 3),
		record(80001, "StreamGoldBridge", 4),
	)

	// chains in ascending order, records in history order
	require.Equal(t, []string{"StreamGold@02", "StreamGoldBridge@01", "FxERC20BridgeTunnel@03", "StreamGoldBridge@04"},
		names(t, p, g))

	p.chainID = 5
	require.Equal(t, []string{"StreamGold@02"}, names(t, p, g))

	p.chainID = 0
	p.network = "mumbai"
	p.latest = true
	require.Equal(t, []string{"FxERC20BridgeTunnel@03", "StreamGoldBridge@04"}, names(t, p, g))

	p.network = "nochain"

	_, err := run(context.Background(), p, g)
	require.ErrorContains(t, err, "no chain_id")
}

func TestDeployments_Output(t *testing.T) {
	t.Parallel()

	empty := &deploymentsResult{}
	assert.Contains(t, empty.GetOutput(), "No deployments found")

	res := &deploymentsResult{Deployments: []*journal.Record{record(5, "StreamGold", 2)}}
	out := res.GetOutput()
	assert.Contains(t, out, "StreamGold")
	assert.Contains(t, out, "2023-05-01T12:00:00Z")
}
