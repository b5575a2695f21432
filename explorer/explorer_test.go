package explorer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
	"github.com/umbracle/ethgo"
)

type fakeExplorer struct {
	lock sync.Mutex

	submits  []map[string]string
	submitFn func(n int) apiResponse
	statusFn func(n int) apiResponse
	checks   int
}

func (f *fakeExplorer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.lock.Lock()
	defer f.lock.Unlock()

	var resp apiResponse

	switch r.Method {
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}

		fields := map[string]string{}
		for k := range r.PostForm {
			fields[k] = r.PostForm.Get(k)
		}

		f.submits = append(f.submits, fields)
		resp = f.submitFn(len(f.submits))
	default:
		if r.URL.Query().Get("action") != "checkverifystatus" {
			http.Error(w, "unexpected action", http.StatusBadRequest)

			return
		}

		f.checks++
		resp = f.statusFn(f.checks)
	}

	_ = json.NewEncoder(w).Encode(resp)
}

func newTestClient(t *testing.T, fake *fakeExplorer) *Client {
	t.Helper()

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := NewClient(
		Config{APIURL: srv.URL, APIKey: "key", BrowserURL: "https://mumbai.polygonscan.com/"},
		WithLogger(hclog.NewNullLogger()),
		WithPollInterval(5*time.Millisecond),
		WithTimeout(2*time.Second),
	)
	require.NoError(t, err)

	return client
}

func testRequest() *VerifyRequest {
	return &VerifyRequest{
		Address:           ethgo.HexToAddress("0x3b56d4c37FDA2c701787250b0C0277C6383Cf043"),
		ContractName:      "contracts/FxERC20ChildTunnel.sol:FxERC20ChildTunnel",
		CompilerVersion:   "v0.8.4+commit.c7e474f2",
		StandardJSONInput: []byte(`{"language":"Solidity"}`),
		ConstructorArgs:   []byte{0xab, 0xcd},
	}
}

func TestVerify_RetriesUntilIndexed(t *testing.T) {
	t.Parallel()

	fake := &fakeExplorer{
		submitFn: func(n int) apiResponse {
			if n < 3 {
				return apiResponse{Status: "0", Message: "NOTOK", Result: "Unable to locate ContractCode at 0x3b56"}
			}

			return apiResponse{Status: "1", Message: "OK", Result: "guid-1"}
		},
		statusFn: func(n int) apiResponse {
			if n < 2 {
				return apiResponse{Status: "0", Message: "NOTOK", Result: "Pending in queue"}
			}

			return apiResponse{Status: "1", Message: "OK", Result: "Pass - Verified"}
		},
	}

	client := newTestClient(t, fake)

	res, err := client.Verify(context.Background(), testRequest())
	require.NoError(t, err)
	require.Equal(t, "guid-1", res.GUID)
	require.False(t, res.AlreadyVerified)
	require.Equal(t,
		"https://mumbai.polygonscan.com/address/0x3b56d4c37FDA2c701787250b0C0277C6383Cf043#code", res.URL)

	fake.lock.Lock()
	defer fake.lock.Unlock()

	require.Len(t, fake.submits, 3)
	require.Equal(t, 2, fake.checks)

	submit := fake.submits[0]
	require.Equal(t, "verifysourcecode", submit["action"])
	require.Equal(t, "solidity-standard-json-input", submit["codeformat"])
	require.Equal(t, "contracts/FxERC20ChildTunnel.sol:FxERC20ChildTunnel", submit["contractname"])
	require.Equal(t, "v0.8.4+commit.c7e474f2", submit["compilerversion"])
	require.Equal(t, "abcd", submit["constructorArguements"])
	require.Equal(t, "key", submit["apikey"])
}

func TestVerify_AlreadyVerified(t *testing.T) {
	t.Parallel()

	fake := &fakeExplorer{
		submitFn: func(int) apiResponse {
			return apiResponse{Status: "0", Message: "NOTOK", Result: "Contract source code already verified"}
		},
		statusFn: func(int) apiResponse {
			t.Error("status should not be polled")

			return apiResponse{}
		},
	}

	res, err := newTestClient(t, fake).Verify(context.Background(), testRequest())
	require.NoError(t, err)
	require.True(t, res.AlreadyVerified)
}

func TestVerify_Failures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		submitFn func(int) apiResponse
		statusFn func(int) apiResponse
	}{
		{
			name: "rejected submission",
			submitFn: func(int) apiResponse {
				return apiResponse{Status: "0", Message: "NOTOK", Result: "Invalid API Key"}
			},
		},
		{
			name: "failed verification",
			submitFn: func(int) apiResponse {
				return apiResponse{Status: "1", Message: "OK", Result: "guid"}
			},
			statusFn: func(int) apiResponse {
				return apiResponse{Status: "0", Message: "NOTOK", Result: "Fail - Unable to verify"}
			},
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			fake := &fakeExplorer{submitFn: c.submitFn, statusFn: c.statusFn}

			_, err := newTestClient(t, fake).Verify(context.Background(), testRequest())
			require.ErrorIs(t, err, ErrVerificationFailed)
		})
	}
}

func TestVerify_NeverIndexed(t *testing.T) {
	t.Parallel()

	fake := &fakeExplorer{
		submitFn: func(int) apiResponse {
			return apiResponse{Status: "0", Message: "NOTOK", Result: "Unable to locate ContractCode"}
		},
	}

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{APIURL: srv.URL},
		WithPollInterval(5*time.Millisecond), WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = client.Verify(context.Background(), testRequest())
	require.ErrorIs(t, err, ErrVerificationFailed)
	require.Empty(t, client.ContractURL(ethgo.ZeroAddress))
}

func TestNewClient_MissingURL(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{})
	require.ErrorIs(t, err, ErrMissingAPIURL)
}
