package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/streamgold/sgld-deployer/artifact"
	"github.com/streamgold/sgld-deployer/explorer"
	"github.com/streamgold/sgld-deployer/helper/common"
	"github.com/streamgold/sgld-deployer/txrelayer"
)

const (
	DefaultEnvFile        = ".env"
	DefaultArtifactsDir   = "artifacts"
	DefaultJournalPath    = "sgld-journal.db"
	DefaultLocalNetwork   = "localhost"
	DefaultReceiptTimeout = "2m"
	DefaultPollInterval   = "1s"
	DefaultGasMultiplier  = 120
	DefaultLogLevel       = "INFO"
	minimumGasMultiplier  = 100
)

var ErrNetworkNotFound = errors.New("network not configured")

// Network is a named JSON-RPC endpoint
type Network struct {
	JSONRPC  string           `json:"json_rpc" yaml:"json_rpc" hcl:"json_rpc"`
	ChainID  uint64           `json:"chain_id" yaml:"chain_id" hcl:"chain_id"`
	AnyCall  string           `json:"anycall" yaml:"anycall" hcl:"anycall"`
	Explorer *explorer.Config `json:"explorer" yaml:"explorer" hcl:"explorer"`
}

// Config defines the deployer configuration
type Config struct {
	Networks        map[string]*Network `json:"networks" yaml:"networks" hcl:"networks"`
	ArtifactsDir    string              `json:"artifacts_dir" yaml:"artifacts_dir" hcl:"artifacts_dir"`
	ArtifactsFormat string              `json:"artifacts_format" yaml:"artifacts_format" hcl:"artifacts_format"`
	AddressBook     string              `json:"address_book" yaml:"address_book" hcl:"address_book"`
	JournalPath     string              `json:"journal_path" yaml:"journal_path" hcl:"journal_path"`
	SecretsConfig   string              `json:"secrets_config" yaml:"secrets_config" hcl:"secrets_config"`
	DataDir         string              `json:"data_dir" yaml:"data_dir" hcl:"data_dir"`
	Accounts        []string            `json:"accounts" yaml:"accounts" hcl:"accounts"`

	ReceiptTimeout      string `json:"receipt_timeout" yaml:"receipt_timeout" hcl:"receipt_timeout"`
	ReceiptPollInterval string `json:"receipt_poll_interval" yaml:"receipt_poll_interval" hcl:"receipt_poll_interval"`
	GasLimitMultiplier  uint64 `json:"gas_limit_multiplier_percent" yaml:"gas_limit_multiplier_percent" hcl:"gas_limit_multiplier_percent"` //nolint:lll
	DynamicFee          bool   `json:"dynamic_fee" yaml:"dynamic_fee" hcl:"dynamic_fee"`

	MetricsPushURL string `json:"metrics_push_url" yaml:"metrics_push_url" hcl:"metrics_push_url"`
	LogLevel       string `json:"log_level" yaml:"log_level" hcl:"log_level"`
	JSONLogFormat  bool   `json:"json_log_format" yaml:"json_log_format" hcl:"json_log_format"`
}

// DefaultConfig returns the default deployer configuration
func DefaultConfig() *Config {
	return &Config{
		Networks: map[string]*Network{
			DefaultLocalNetwork: {JSONRPC: txrelayer.DefaultRPCAddress},
		},
		ArtifactsDir:        DefaultArtifactsDir,
		ArtifactsFormat:     artifact.FormatHardhat,
		JournalPath:         DefaultJournalPath,
		ReceiptTimeout:      DefaultReceiptTimeout,
		ReceiptPollInterval: DefaultPollInterval,
		GasLimitMultiplier:  DefaultGasMultiplier,
		LogLevel:            DefaultLogLevel,
	}
}

// ReadConfigFile reads the config file from the specified path on top of the defaults.
//
// Supported file types: .json, .hcl, .yaml, .yml
func ReadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var unmarshalFunc func([]byte, interface{}) error

	switch {
	case strings.HasSuffix(path, ".hcl"):
		unmarshalFunc = hcl.Unmarshal
	case strings.HasSuffix(path, ".json"):
		unmarshalFunc = json.Unmarshal
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		unmarshalFunc = yaml.Unmarshal
	default:
		return nil, fmt.Errorf("suffix of %s is neither hcl, json, yaml nor yml", path)
	}

	config := DefaultConfig()
	if err := unmarshalFunc(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return config, nil
}

// Load reads the config file when a path is given, the defaults otherwise
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	config, err := ReadConfigFile(path)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadEnvFiles loads .env files into the process environment without overriding
// variables that are already set. A missing default file is skipped.
func LoadEnvFiles(paths []string) error {
	for _, path := range paths {
		if path == DefaultEnvFile && !common.FileExists(path) {
			continue
		}

		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}

	return nil
}

// Validate reports every invalid field at once
func (c *Config) Validate() error {
	var result *multierror.Error

	if _, err := c.ReceiptTimeoutDuration(); err != nil {
		result = multierror.Append(result, err)
	}

	if _, err := c.PollIntervalDuration(); err != nil {
		result = multierror.Append(result, err)
	}

	if c.GasLimitMultiplier < minimumGasMultiplier {
		result = multierror.Append(result,
			fmt.Errorf("gas_limit_multiplier_percent must be at least %d, got %d", minimumGasMultiplier, c.GasLimitMultiplier))
	}

	if _, err := artifact.NewLoader(c.ArtifactsFormat, c.ArtifactsDir); err != nil {
		result = multierror.Append(result, err)
	}

	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		result = multierror.Append(result, fmt.Errorf("unknown log level %q", c.LogLevel))
	}

	for name, network := range c.Networks {
		if network == nil || network.JSONRPC == "" {
			result = multierror.Append(result, fmt.Errorf("network %q has no json_rpc endpoint", name))
		}
	}

	return result.ErrorOrNil()
}

// Network returns the named network
func (c *Config) Network(name string) (*Network, error) {
	network, ok := c.Networks[name]
	if !ok || network == nil {
		return nil, fmt.Errorf("%w: %q", ErrNetworkNotFound, name)
	}

	return network, nil
}

func (c *Config) ReceiptTimeoutDuration() (time.Duration, error) {
	return parsePositiveDuration("receipt_timeout", c.ReceiptTimeout)
}

func (c *Config) PollIntervalDuration() (time.Duration, error) {
	return parsePositiveDuration("receipt_poll_interval", c.ReceiptPollInterval)
}

func parsePositiveDuration(field, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, raw, err)
	}

	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", field, raw)
	}

	return d, nil
}
