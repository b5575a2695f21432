package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/umbracle/ethgo"

	"github.com/streamgold/sgld-deployer/txrelayer"
)

func familyNames(t *testing.T, m *Metrics) map[string]struct{} {
	t.Helper()

	families, err := m.Gatherer().Gather()
	require.NoError(t, err)

	names := map[string]struct{}{}
	for _, f := range families {
		names[f.GetName()] = struct{}{}
	}

	return names
}

func TestMetrics_ObserveTransaction(t *testing.T) {
	t.Parallel()

	m, err := New(DefaultNamespace)
	require.NoError(t, err)

	m.ObserveTransaction(txrelayer.KindCreate, &ethgo.Receipt{Status: 1, GasUsed: 21000}, time.Second, nil)
	m.ObserveTransaction(txrelayer.KindCall, &ethgo.Receipt{Status: 0, GasUsed: 30000}, time.Second, nil)
	m.ObserveTransaction(txrelayer.KindCall, nil, time.Millisecond, errors.New("nonce too low"))

	names := familyNames(t, m)
	require.Contains(t, names, "sgld_txrelayer_transactions")
	require.Contains(t, names, "sgld_txrelayer_gas_used")
	require.Contains(t, names, "sgld_txrelayer_receipt_wait_seconds")
}

func TestMetrics_GasUsedIsExact(t *testing.T) {
	t.Parallel()

	m, err := New(DefaultNamespace)
	require.NoError(t, err)

	// both values are above the 2^24 integer range of float32
	m.ObserveTransaction(txrelayer.KindCreate, &ethgo.Receipt{Status: 1, GasUsed: 30000001}, time.Second, nil)
	m.ObserveTransaction(txrelayer.KindCreate, &ethgo.Receipt{Status: 1, GasUsed: 16777217}, time.Second, nil)
	m.ObserveTransaction(txrelayer.KindCall, &ethgo.Receipt{Status: 1, GasUsed: 21000}, time.Second, nil)

	families, err := m.Gatherer().Gather()
	require.NoError(t, err)

	totals := map[string]float64{}

	for _, f := range families {
		if f.GetName() != "sgld_txrelayer_gas_used" {
			continue
		}

		for _, metric := range f.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "kind" {
					totals[label.GetValue()] = metric.GetCounter().GetValue()
				}
			}
		}
	}

	require.Equal(t, map[string]float64{
		txrelayer.KindCreate: 46777218,
		txrelayer.KindCall:   21000,
	}, totals)
}

func TestMetrics_Push(t *testing.T) {
	t.Parallel()

	var (
		lock   sync.Mutex
		method string
		path   string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lock.Lock()
		method, path = r.Method, r.URL.Path
		lock.Unlock()

		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	m, err := New(DefaultNamespace)
	require.NoError(t, err)

	m.ObserveTransaction(txrelayer.KindCreate, &ethgo.Receipt{Status: 1, GasUsed: 21000}, time.Second, nil)

	require.NoError(t, m.Push(context.Background(), srv.URL, "sgld"))

	lock.Lock()
	defer lock.Unlock()

	require.Equal(t, http.MethodPut, method)
	require.Equal(t, "/metrics/job/sgld", path)
}

func TestMetrics_PushError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	m, err := New(DefaultNamespace)
	require.NoError(t, err)

	require.Error(t, m.Push(context.Background(), srv.URL, "sgld"))
}
