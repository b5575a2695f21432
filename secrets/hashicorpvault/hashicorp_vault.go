package hashicorpvault

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	vault "github.com/hashicorp/vault/api"

	"github.com/streamgold/sgld-deployer/secrets"
)

const (
	defaultMount = "secret"
	valueField   = "value"
)

// VaultSecretsManager is a SecretsManager that
// stores secrets in the KV-2 engine of a Hashicorp Vault instance
type VaultSecretsManager struct {
	logger hclog.Logger

	// Token used for Vault instance authentication
	token string

	// The Server URL of the Vault instance
	serverURL string

	// The namespace under which the secrets are stored
	namespace string

	// KV-2 mount path
	mount string

	// The name of the deployer, used for prefixing secret paths
	name string

	client *vault.Client
}

// SecretsManagerFactory implements the factory method
func SecretsManagerFactory(
	config *secrets.SecretsManagerConfig,
	params *secrets.SecretsManagerParams,
) (secrets.SecretsManager, error) {
	if config.Token == "" {
		return nil, errors.New("no token specified for Vault secrets manager")
	}

	if config.ServerURL == "" {
		return nil, errors.New("no server URL specified for Vault secrets manager")
	}

	if config.Name == "" {
		return nil, errors.New("no name specified for Vault secrets manager")
	}

	vaultManager := &VaultSecretsManager{
		logger:    params.Logger.Named(string(secrets.HashicorpVault)),
		token:     config.Token,
		serverURL: config.ServerURL,
		namespace: config.Namespace,
		mount:     config.ExtraString(secrets.Mount),
		name:      config.Name,
	}

	if vaultManager.mount == "" {
		vaultManager.mount = defaultMount
	}

	if err := vaultManager.Setup(); err != nil {
		return nil, err
	}

	return vaultManager, nil
}

// Setup creates the Vault client
func (v *VaultSecretsManager) Setup() error {
	config := vault.DefaultConfig()
	config.Address = v.serverURL

	client, err := vault.NewClient(config)
	if err != nil {
		return fmt.Errorf("unable to initialize Vault client: %w", err)
	}

	client.SetToken(v.token)

	if v.namespace != "" {
		client.SetNamespace(v.namespace)
	}

	v.client = client

	return nil
}

// secretPath returns <name>/<secret> relative to the KV-2 mount
func (v *VaultSecretsManager) secretPath(name string) string {
	return fmt.Sprintf("%s/%s", v.name, name)
}

// GetSecret fetches a secret from the Hashicorp Vault server
func (v *VaultSecretsManager) GetSecret(name string) ([]byte, error) {
	secret, err := v.client.KVv2(v.mount).Get(context.Background(), v.secretPath(name))
	if err != nil {
		if errors.Is(err, vault.ErrSecretNotFound) {
			return nil, fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
		}

		return nil, fmt.Errorf("unable to read secret from Vault, %w", err)
	}

	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
	}

	value, ok := secret.Data[valueField].(string)
	if !ok {
		return nil, fmt.Errorf("invalid type assertion for secret value %T", secret.Data[valueField])
	}

	return []byte(value), nil
}

// SetSecret saves a secret to the Hashicorp Vault server
func (v *VaultSecretsManager) SetSecret(name string, value []byte) error {
	if _, err := v.GetSecret(name); err == nil {
		v.logger.Warn("overwriting secret", "name", name)
	} else if !errors.Is(err, secrets.ErrSecretNotFound) {
		return err
	}

	_, err := v.client.KVv2(v.mount).Put(context.Background(), v.secretPath(name), map[string]interface{}{
		valueField: string(value),
	})
	if err != nil {
		return fmt.Errorf("unable to store secret (%s), %w", name, err)
	}

	return nil
}

// HasSecret checks if the secret is present on the Hashicorp Vault server
func (v *VaultSecretsManager) HasSecret(name string) bool {
	_, err := v.GetSecret(name)

	return err == nil
}

// RemoveSecret removes all versions of a secret from the Hashicorp Vault server
func (v *VaultSecretsManager) RemoveSecret(name string) error {
	if _, err := v.GetSecret(name); err != nil {
		return err
	}

	if err := v.client.KVv2(v.mount).DeleteMetadata(context.Background(), v.secretPath(name)); err != nil {
		return fmt.Errorf("unable to delete secret (%s), %w", name, err)
	}

	return nil
}
