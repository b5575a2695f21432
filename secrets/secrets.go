package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
)

// Define constant names for available secrets
const (
	// DeployerKey is the name of the default deployer account secret
	DeployerKey = "deployer"
)

// Define constant file names for the local StorageManager
const (
	// AccountsFolderLocal is the folder holding account keys
	AccountsFolderLocal = "accounts"
	// KeyFileSuffix is appended to the secret name to build the key file name
	KeyFileSuffix = ".key"
)

// Extra config keys of the secrets manager backends
const (
	// Path is the path to the base working directory of the local backend
	Path = "path"
	// Mount is the KV-2 mount of the Vault backend
	Mount = "mount"
	// Region is the AWS region of the SSM backend
	Region = "region"
	// SSMParameterPath is the base path of the parameters in SSM
	SSMParameterPath = "ssm-parameter-path"
	// ProjectID is the GCP project holding the secrets
	ProjectID = "project-id"
	// GCPCredentials is the path to the GCP credentials file
	GCPCredentials = "gcp-ssm-cred"
)

// SecretsManagerType enumerates the supported backends
type SecretsManagerType string

const (
	// Local pertains to the local FS [Default]
	Local SecretsManagerType = "local"

	// HashicorpVault pertains to the Hashicorp Vault server
	HashicorpVault SecretsManagerType = "hashicorp-vault"

	// AWSSSM pertains to AWS SSM using Parameter Store
	AWSSSM SecretsManagerType = "aws-ssm"

	// GCPSSM pertains to the Google Cloud Computing secret store manager
	GCPSSM SecretsManagerType = "gcp-ssm"
)

var (
	ErrSecretNotFound      = errors.New("secret not found")
	ErrSecretAlreadyExists = errors.New("secret already exists")
	ErrUnsupportedManager  = errors.New("unsupported secrets manager")
)

// SecretsManager defines the base public interface that all
// secret manager implementations should have
type SecretsManager interface {
	// Setup performs secret manager-specific setup
	Setup() error

	// GetSecret gets the secret by name
	GetSecret(name string) ([]byte, error)

	// SetSecret sets the secret to a provided value
	SetSecret(name string, value []byte) error

	// HasSecret checks if the secret is present
	HasSecret(name string) bool

	// RemoveSecret removes the secret from storage
	RemoveSecret(name string) error
}

// SecretsManagerParams defines the configuration params for the
// secrets manager
type SecretsManagerParams struct {
	// Logger object
	Logger hclog.Logger

	// Extra contains additional data needed for the SecretsManager to function
	Extra map[string]interface{}
}

// SecretsManagerConfig is the configuration that gets
// written to a single configuration file
type SecretsManagerConfig struct {
	Token     string                 `json:"token"`      // Access token to the instance
	ServerURL string                 `json:"server_url"` // The URL of the running server
	Type      SecretsManagerType     `json:"type"`       // The type of SecretsManager
	Name      string                 `json:"name"`       // The name of the deployer, used to prefix secret paths
	Namespace string                 `json:"namespace"`  // The namespace of the service
	Extra     map[string]interface{} `json:"extra"`      // Any kind of arbitrary data
}

// SecretsManagerFactory is the factory method for secrets managers
type SecretsManagerFactory func(
	config *SecretsManagerConfig,
	params *SecretsManagerParams,
) (SecretsManager, error)

// SupportedServiceManager checks if the passed in service manager type is supported
func SupportedServiceManager(service SecretsManagerType) bool {
	return service == HashicorpVault ||
		service == AWSSSM ||
		service == Local ||
		service == GCPSSM
}

// WriteConfig writes the current configuration to the specified path
func (c *SecretsManagerConfig) WriteConfig(path string) error {
	jsonBytes, _ := json.MarshalIndent(c, "", " ")

	return os.WriteFile(path, jsonBytes, 0o600)
}

// ReadConfig reads the SecretsManagerConfig from the specified path
func ReadConfig(path string) (*SecretsManagerConfig, error) {
	configFile, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	config := &SecretsManagerConfig{}

	if unmarshalErr := json.Unmarshal(configFile, config); unmarshalErr != nil {
		return nil, unmarshalErr
	}

	if !SupportedServiceManager(config.Type) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedManager, config.Type)
	}

	return config, nil
}

// ExtraString returns the extra config value as a string, or "" when it is missing
func (c *SecretsManagerConfig) ExtraString(key string) string {
	if c.Extra == nil {
		return ""
	}

	value, ok := c.Extra[key]
	if !ok || value == nil {
		return ""
	}

	return fmt.Sprintf("%v", value)
}
