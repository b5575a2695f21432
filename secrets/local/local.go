package local

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/streamgold/sgld-deployer/helper/common"
	"github.com/streamgold/sgld-deployer/secrets"
)

var errInvalidSecretName = errors.New("invalid secret name")

// LocalSecretsManager is a SecretsManager that
// stores each secret as a file under <path>/accounts
type LocalSecretsManager struct {
	logger hclog.Logger

	// Path to the base working directory
	path string
}

// SecretsManagerFactory implements the factory method
func SecretsManagerFactory(
	_ *secrets.SecretsManagerConfig,
	params *secrets.SecretsManagerParams,
) (secrets.SecretsManager, error) {
	path, ok := params.Extra[secrets.Path]
	if !ok {
		return nil, errors.New("no path specified for local secrets manager")
	}

	localManager := &LocalSecretsManager{
		logger: params.Logger.Named(string(secrets.Local)),
	}

	localManager.path, ok = path.(string)
	if !ok || localManager.path == "" {
		return nil, errors.New("invalid path for local secrets manager")
	}

	if err := localManager.Setup(); err != nil {
		return nil, err
	}

	return localManager, nil
}

// Setup creates the accounts directory
func (l *LocalSecretsManager) Setup() error {
	return common.SetupDataDir(l.path, []string{secrets.AccountsFolderLocal})
}

// secretPath returns baseDir/accounts/<name>.key
func (l *LocalSecretsManager) secretPath(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: '%s'", errInvalidSecretName, name)
	}

	return filepath.Join(l.path, secrets.AccountsFolderLocal, name+secrets.KeyFileSuffix), nil
}

// GetSecret reads the secret from disk
func (l *LocalSecretsManager) GetSecret(name string) ([]byte, error) {
	secretPath, err := l.secretPath(name)
	if err != nil {
		return nil, err
	}

	secret, err := os.ReadFile(filepath.Clean(secretPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
		}

		return nil, fmt.Errorf("unable to read secret from disk (%s), %w", secretPath, err)
	}

	return []byte(strings.TrimSpace(string(secret))), nil
}

// SetSecret saves the secret to disk. Existing secrets are never overwritten.
func (l *LocalSecretsManager) SetSecret(name string, value []byte) error {
	secretPath, err := l.secretPath(name)
	if err != nil {
		return err
	}

	if common.FileExists(secretPath) {
		return fmt.Errorf("%w: %s", secrets.ErrSecretAlreadyExists, secretPath)
	}

	if err := os.WriteFile(secretPath, value, 0o600); err != nil {
		return fmt.Errorf("unable to write secret to disk (%s), %w", secretPath, err)
	}

	l.logger.Debug("secret stored", "name", name)

	return nil
}

// HasSecret checks if the secret is present on disk
func (l *LocalSecretsManager) HasSecret(name string) bool {
	secretPath, err := l.secretPath(name)
	if err != nil {
		return false
	}

	return common.FileExists(secretPath)
}

// RemoveSecret removes the secret from disk
func (l *LocalSecretsManager) RemoveSecret(name string) error {
	secretPath, err := l.secretPath(name)
	if err != nil {
		return err
	}

	if err := os.Remove(secretPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
		}

		return fmt.Errorf("unable to remove secret, %w", err)
	}

	return nil
}
