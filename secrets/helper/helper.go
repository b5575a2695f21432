package helper

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/streamgold/sgld-deployer/secrets"
	"github.com/streamgold/sgld-deployer/secrets/awsssm"
	"github.com/streamgold/sgld-deployer/secrets/gcpssm"
	"github.com/streamgold/sgld-deployer/secrets/hashicorpvault"
	"github.com/streamgold/sgld-deployer/secrets/local"
)

var secretsManagerBackends = map[secrets.SecretsManagerType]secrets.SecretsManagerFactory{
	secrets.Local:          local.SecretsManagerFactory,
	secrets.HashicorpVault: hashicorpvault.SecretsManagerFactory,
	secrets.AWSSSM:         awsssm.SecretsManagerFactory,
	secrets.GCPSSM:         gcpssm.SecretsManagerFactory,
}

// SetupLocalSecretsManager returns the local secrets manager rooted at dataDir
func SetupLocalSecretsManager(dataDir string, logger hclog.Logger) (secrets.SecretsManager, error) {
	return local.SecretsManagerFactory(
		nil,
		&secrets.SecretsManagerParams{
			Logger: logger,
			Extra: map[string]interface{}{
				secrets.Path: dataDir,
			},
		},
	)
}

// InitSecretsManager creates the secrets manager described by the config file,
// or the local one rooted at dataDir when no config is given
func InitSecretsManager(configPath, dataDir string, logger hclog.Logger) (secrets.SecretsManager, error) {
	if configPath == "" {
		if dataDir == "" {
			return nil, fmt.Errorf("either a secrets config or a data dir is required")
		}

		return SetupLocalSecretsManager(dataDir, logger)
	}

	config, err := secrets.ReadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read secrets config file, %w", err)
	}

	return NewSecretsManager(config, dataDir, logger)
}

// NewSecretsManager dispatches to the factory of the configured backend
func NewSecretsManager(
	config *secrets.SecretsManagerConfig,
	dataDir string,
	logger hclog.Logger,
) (secrets.SecretsManager, error) {
	factory, ok := secretsManagerBackends[config.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", secrets.ErrUnsupportedManager, config.Type)
	}

	extra := map[string]interface{}{}
	for k, v := range config.Extra {
		extra[k] = v
	}

	if _, ok := extra[secrets.Path]; !ok && dataDir != "" {
		extra[secrets.Path] = dataDir
	}

	return factory(config, &secrets.SecretsManagerParams{
		Logger: logger,
		Extra:  extra,
	})
}
