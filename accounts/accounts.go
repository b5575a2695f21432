package accounts

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/umbracle/ethgo"
	"github.com/umbracle/ethgo/wallet"

	"github.com/streamgold/sgld-deployer/helper/hex"
	"github.com/streamgold/sgld-deployer/secrets"
	"github.com/streamgold/sgld-deployer/txrelayer"
)

//nolint:gosec
const (
	// TestAccountPrivKey is the key of the first account in test mode
	TestAccountPrivKey = "aa75e9a7d427efc732f8e4f1a5b7646adcc61fd5bae40f80d13c8419c9f43d6d"

	// PrivateKeysEnv holds comma separated hex private keys
	PrivateKeysEnv = "PRIVATE_KEYS"

	// TestAccountsCount is the number of accounts available in test mode
	TestAccountsCount = 5
)

var (
	ErrNoAccounts        = errors.New("no accounts configured, provide private keys, a secrets manager or use test mode")
	ErrAccountOutOfRange = errors.New("account index out of range")
)

// LookupEnv reads an environment variable
type LookupEnv func(key string) (string, bool)

// Set is an ordered list of signing accounts
type Set struct {
	keys []*wallet.Key
}

func NewSet(keys ...*wallet.Key) *Set {
	return &Set{keys: keys}
}

func (s *Set) Len() int {
	return len(s.keys)
}

// Key returns the i-th signing key
func (s *Set) Key(i int) (ethgo.Key, error) {
	if i < 0 || i >= len(s.keys) {
		return nil, fmt.Errorf("%w: account %d requested, %d configured", ErrAccountOutOfRange, i, len(s.keys))
	}

	return s.keys[i], nil
}

// Address returns the address of the i-th account
func (s *Set) Address(i int) (ethgo.Address, error) {
	key, err := s.Key(i)
	if err != nil {
		return ethgo.ZeroAddress, err
	}

	return key.Address(), nil
}

func (s *Set) Addresses() []ethgo.Address {
	addrs := make([]ethgo.Address, len(s.keys))
	for i, key := range s.keys {
		addrs[i] = key.Address()
	}

	return addrs
}

// Options selects where the accounts come from. The first configured source wins:
// private keys, the PRIVATE_KEYS variable, the secrets manager, test mode.
type Options struct {
	PrivateKeys []string
	Env         LookupEnv

	SecretsManager secrets.SecretsManager
	SecretNames    []string

	TestMode bool
	Logger   hclog.Logger
}

// Load resolves the account set from the configured sources
func Load(opts *Options) (*Set, error) {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	logger = logger.Named("accounts")

	raw := splitKeys(opts.PrivateKeys)
	if len(raw) == 0 && opts.Env != nil {
		if value, ok := opts.Env(PrivateKeysEnv); ok {
			raw = splitKeys([]string{value})
		}
	}

	switch {
	case len(raw) > 0:
		logger.Debug("using private keys", "count", len(raw))

		return FromHex(raw)
	case opts.SecretsManager != nil:
		names := opts.SecretNames
		if len(names) == 0 {
			names = []string{secrets.DeployerKey}
		}

		logger.Debug("using secrets manager", "names", names)

		return FromSecrets(opts.SecretsManager, names)
	case opts.TestMode:
		logger.Warn("using well-known test accounts")

		return TestSet()
	default:
		return nil, ErrNoAccounts
	}
}

// DecodePrivateKey decodes a hex encoded private key
func DecodePrivateKey(raw string) (*wallet.Key, error) {
	dec, err := hex.DecodeHex(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}

	key, err := wallet.NewWalletFromPrivKey(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize key from private key: %w", err)
	}

	return key, nil
}

// FromHex builds a set from hex encoded private keys
func FromHex(raw []string) (*Set, error) {
	keys := make([]*wallet.Key, 0, len(raw))

	for i, r := range raw {
		key, err := DecodePrivateKey(r)
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i, err)
		}

		keys = append(keys, key)
	}

	return NewSet(keys...), nil
}

// FromSecrets reads one hex private key per secret name
func FromSecrets(manager secrets.SecretsManager, names []string) (*Set, error) {
	keys := make([]*wallet.Key, 0, len(names))

	for _, name := range names {
		value, err := manager.GetSecret(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read account secret '%s': %w", name, err)
		}

		key, err := DecodePrivateKey(string(value))
		if err != nil {
			return nil, fmt.Errorf("account secret '%s': %w", name, err)
		}

		keys = append(keys, key)
	}

	return NewSet(keys...), nil
}

// TestSet returns the test mode accounts. The first one uses TestAccountPrivKey,
// the others are derived deterministically from it.
func TestSet() (*Set, error) {
	first, err := DecodePrivateKey(TestAccountPrivKey)
	if err != nil {
		return nil, err
	}

	keys := []*wallet.Key{first}

	for i := 1; i < TestAccountsCount; i++ {
		seed := sha256.Sum256([]byte(fmt.Sprintf("%s/%d", TestAccountPrivKey, i)))

		key, err := wallet.NewWalletFromPrivKey(seed[:])
		if err != nil {
			return nil, fmt.Errorf("failed to derive test account %d: %w", i, err)
		}

		keys = append(keys, key)
	}

	return NewSet(keys...), nil
}

// Fund sends amount from the node's unlocked account to every address.
// Only dev chains expose an unlocked account.
func Fund(ctx context.Context, relayer txrelayer.TxRelayer, amount *big.Int, addrs ...ethgo.Address) error {
	for _, addr := range addrs {
		to := addr

		receipt, err := relayer.SendTransactionLocal(ctx, &ethgo.Transaction{
			To:    &to,
			Value: new(big.Int).Set(amount),
		})
		if err != nil {
			return fmt.Errorf("failed to fund %s: %w", addr, err)
		}

		if receipt.Status != uint64(1) {
			return fmt.Errorf("funding transaction for %s failed (tx %s)", addr, receipt.TransactionHash)
		}
	}

	return nil
}

func splitKeys(values []string) []string {
	out := make([]string, 0, len(values))

	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}
