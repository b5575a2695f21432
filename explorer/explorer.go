package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sethvargo/go-retry"
	"github.com/umbracle/ethgo"

	"github.com/streamgold/sgld-deployer/helper/hex"
)

const (
	// APIKeyEnv holds the explorer API key when none is configured
	APIKeyEnv = "ETHERSCAN_API_KEY"

	codeFormat = "solidity-standard-json-input"

	statusOK = "1"

	msgNotIndexed       = "unable to locate contractcode"
	msgAlreadyVerified  = "already verified"
	msgPending          = "pending in queue"
	msgPass             = "pass - verified"
	defaultPollInterval = 5 * time.Second
	defaultTimeout      = 3 * time.Minute
)

var (
	ErrVerificationFailed = errors.New("contract verification failed")
	ErrMissingAPIURL      = errors.New("explorer api url is not set")
)

// Config describes an Etherscan compatible explorer
type Config struct {
	APIURL     string `json:"api_url" yaml:"api_url" hcl:"api_url"`
	APIKey     string `json:"api_key" yaml:"api_key" hcl:"api_key"`
	BrowserURL string `json:"browser_url" yaml:"browser_url" hcl:"browser_url"`
}

// VerifyRequest carries what the explorer needs to rebuild the contract
type VerifyRequest struct {
	Address ethgo.Address
	// ContractName is the fully qualified name, "contracts/Token.sol:Token"
	ContractName    string
	CompilerVersion string
	// StandardJSONInput is the solc standard JSON input from the build info
	StandardJSONInput []byte
	ConstructorArgs   []byte
}

// VerifyResult is the outcome of a successful verification
type VerifyResult struct {
	Address         ethgo.Address `json:"address"`
	GUID            string        `json:"guid,omitempty"`
	AlreadyVerified bool          `json:"already_verified"`
	URL             string        `json:"url,omitempty"`
}

type apiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

// Client talks to the explorer contract verification API
type Client struct {
	config       Config
	http         *retryablehttp.Client
	logger       hclog.Logger
	pollInterval time.Duration
	timeout      time.Duration
}

type Option func(*Client)

func WithLogger(logger hclog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the retrying http client
func WithHTTPClient(client *retryablehttp.Client) Option {
	return func(c *Client) {
		c.http = client
	}
}

func NewClient(config Config, opts ...Option) (*Client, error) {
	if config.APIURL == "" {
		return nil, ErrMissingAPIURL
	}

	c := &Client{
		config:       config,
		logger:       hclog.NewNullLogger(),
		pollInterval: defaultPollInterval,
		timeout:      defaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.Named("explorer")

	if c.http == nil {
		c.http = retryablehttp.NewClient()
		c.http.RetryMax = 3
		c.http.Logger = c.logger
	}

	return c, nil
}

// Verify submits the source code and waits until the explorer accepts or rejects it.
// Submissions are retried while the explorer has not indexed the contract yet.
func (c *Client) Verify(ctx context.Context, req *VerifyRequest) (*VerifyResult, error) {
	result := &VerifyResult{
		Address: req.Address,
		URL:     c.ContractURL(req.Address),
	}

	form := url.Values{}
	form.Set("module", "contract")
	form.Set("action", "verifysourcecode")
	form.Set("apikey", c.config.APIKey)
	form.Set("contractaddress", req.Address.String())
	form.Set("sourceCode", string(req.StandardJSONInput))
	form.Set("codeformat", codeFormat)
	form.Set("contractname", req.ContractName)
	form.Set("compilerversion", req.CompilerVersion)
	// the misspelling is part of the explorer API
	form.Set("constructorArguements", hex.EncodeToString(req.ConstructorArgs))

	var guid string

	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		resp, err := c.post(ctx, form)
		if err != nil {
			return err
		}

		switch {
		case resp.Status == statusOK:
			guid = resp.Result

			return nil
		case containsFold(resp.Result, msgAlreadyVerified):
			result.AlreadyVerified = true

			return nil
		case containsFold(resp.Result, msgNotIndexed):
			c.logger.Debug("contract not indexed yet", "address", req.Address)

			return retry.RetryableError(fmt.Errorf("%w: %s", ErrVerificationFailed, resp.Result))
		default:
			return fmt.Errorf("%w: %s", ErrVerificationFailed, resp.Result)
		}
	})
	if err != nil {
		return nil, err
	}

	if result.AlreadyVerified {
		c.logger.Info("contract already verified", "address", req.Address)

		return result, nil
	}

	result.GUID = guid
	c.logger.Info("verification submitted", "address", req.Address, "guid", guid)

	if err := c.waitForStatus(ctx, result); err != nil {
		return nil, err
	}

	return result, nil
}

func (c *Client) waitForStatus(ctx context.Context, result *VerifyResult) error {
	return retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		query := url.Values{}
		query.Set("module", "contract")
		query.Set("action", "checkverifystatus")
		query.Set("guid", result.GUID)
		query.Set("apikey", c.config.APIKey)

		resp, err := c.get(ctx, query)
		if err != nil {
			return err
		}

		switch {
		case containsFold(resp.Result, msgPending):
			return retry.RetryableError(fmt.Errorf("verification of %s still pending", result.Address))
		case containsFold(resp.Result, msgPass):
			return nil
		case containsFold(resp.Result, msgAlreadyVerified):
			result.AlreadyVerified = true

			return nil
		default:
			return fmt.Errorf("%w: %s", ErrVerificationFailed, resp.Result)
		}
	})
}

// ContractURL returns the browser page of the contract, empty when no browser url is configured
func (c *Client) ContractURL(addr ethgo.Address) string {
	if c.config.BrowserURL == "" {
		return ""
	}

	return fmt.Sprintf("%s/address/%s#code", strings.TrimSuffix(c.config.BrowserURL, "/"), addr)
}

func (c *Client) backoff() retry.Backoff {
	return retry.WithMaxDuration(c.timeout, retry.NewConstant(c.pollInterval))
}

func (c *Client) post(ctx context.Context, form url.Values) (*apiResponse, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.config.APIURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req)
}

func (c *Client) get(ctx context.Context, query url.Values) (*apiResponse, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet,
		c.config.APIURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	return c.do(req)
}

func (c *Client) do(req *retryablehttp.Request) (*apiResponse, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("explorer request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explorer returned status %d: %s", resp.StatusCode, string(body))
	}

	var out apiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("invalid explorer response: %w", err)
	}

	return &out, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
