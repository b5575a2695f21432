package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/umbracle/ethgo"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, j.Close())
	})

	return j
}

func TestJournal_LatestAndHistory(t *testing.T) {
	t.Parallel()

	j := newTestJournal(t)
	runID := NewRunID()

	_, err := uuid.Parse(runID)
	require.NoError(t, err)

	first := &Record{
		RunID:   runID,
		Network: "mumbai",
		ChainID: 80001,
		Name:    "FxERC20BridgeTunnel",
		Address: ethgo.HexToAddress("0x3b56d4c37FDA2c701787250b0C0277C6383Cf043"),
	}
	second := &Record{
		RunID:           runID,
		Network:         "mumbai",
		ChainID:         80001,
		Name:            "FxERC20BridgeTunnel",
		Address:         ethgo.HexToAddress("0x89F8f173dD6CEFbF6C2B5A5D6a1E1aF3aB0b0c11"),
		ConstructorArgs: []string{"0xCf73231F28B7331BBe3124B907840A94851f9f11"},
		DeployedAt:      time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	other := &Record{ChainID: 5, Name: "FxStreamRootTunnel", Address: ethgo.HexToAddress("0x01")}

	require.NoError(t, j.Put(first))
	require.NoError(t, j.Put(other))
	require.NoError(t, j.Put(second))

	require.False(t, first.DeployedAt.IsZero())

	latest, err := j.Latest(80001, "FxERC20BridgeTunnel")
	require.NoError(t, err)
	require.Equal(t, second.Address, latest.Address)
	require.Equal(t, second.ConstructorArgs, latest.ConstructorArgs)
	require.True(t, second.DeployedAt.Equal(latest.DeployedAt))

	history, err := j.History(80001)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, first.Address, history[0].Address)
	require.Equal(t, second.Address, history[1].Address)

	rootHistory, err := j.History(5)
	require.NoError(t, err)
	require.Len(t, rootHistory, 1)

	chains, err := j.Chains()
	require.NoError(t, err)
	require.Equal(t, []uint64{5, 80001}, chains)
}

func TestJournal_Errors(t *testing.T) {
	t.Parallel()

	j := newTestJournal(t)

	_, err := j.Latest(1, "StreamGold")
	require.ErrorIs(t, err, ErrNotFound)

	require.Error(t, j.Put(&Record{ChainID: 1}))

	history, err := j.History(1)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestJournal_Reopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Put(&Record{ChainID: 137, Name: "StreamGoldBridge", Address: ethgo.HexToAddress("0x02")}))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)

	defer j.Close()

	rec, err := j.Latest(137, "StreamGoldBridge")
	require.NoError(t, err)
	require.Equal(t, ethgo.HexToAddress("0x02"), rec.Address)
}
