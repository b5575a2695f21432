package gcpssm

import (
	"context"
	"fmt"

	sm "cloud.google.com/go/secretmanager/apiv1"
	smpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/hashicorp/go-hclog"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/streamgold/sgld-deployer/secrets"
)

// secretClient is the subset of the Secret Manager client in use
type secretClient interface {
	AccessSecretVersion(ctx context.Context, req *smpb.AccessSecretVersionRequest,
		opts ...gax.CallOption) (*smpb.AccessSecretVersionResponse, error)
	CreateSecret(ctx context.Context, req *smpb.CreateSecretRequest,
		opts ...gax.CallOption) (*smpb.Secret, error)
	AddSecretVersion(ctx context.Context, req *smpb.AddSecretVersionRequest,
		opts ...gax.CallOption) (*smpb.SecretVersion, error)
	DeleteSecret(ctx context.Context, req *smpb.DeleteSecretRequest, opts ...gax.CallOption) error
}

type GcpSsmManager struct {
	logger hclog.Logger

	// project id in which to store the secrets
	projectID string
	// credential file path
	credFilePath string
	// name is used to create unique secret ids
	name string

	client secretClient
}

func SecretsManagerFactory(
	config *secrets.SecretsManagerConfig,
	params *secrets.SecretsManagerParams,
) (secrets.SecretsManager, error) {
	projectID := config.ExtraString(secrets.ProjectID)
	credFilePath := config.ExtraString(secrets.GCPCredentials)

	if config.Name == "" || projectID == "" || credFilePath == "" {
		return nil, fmt.Errorf("name, %s or %s can't be empty", secrets.ProjectID, secrets.GCPCredentials)
	}

	gcpSsmManager := &GcpSsmManager{
		projectID:    projectID,
		credFilePath: credFilePath,
		name:         config.Name,
		logger:       params.Logger.Named(string(secrets.GCPSSM)),
	}

	if err := gcpSsmManager.Setup(); err != nil {
		return nil, err
	}

	return gcpSsmManager, nil
}

// Setup creates the Secret Manager client from the credentials file
func (gm *GcpSsmManager) Setup() error {
	if gm.client != nil {
		return nil
	}

	client, err := sm.NewClient(context.Background(), option.WithCredentialsFile(gm.credFilePath))
	if err != nil {
		return fmt.Errorf("could not initialize new GCP secrets manager client %w", err)
	}

	gm.client = client

	return nil
}

// GetSecret gets the latest version of the secret
func (gm *GcpSsmManager) GetSecret(name string) ([]byte, error) {
	result, err := gm.client.AccessSecretVersion(context.Background(), &smpb.AccessSecretVersionRequest{
		Name: gm.secretName(name) + "/versions/latest",
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
		}

		return nil, fmt.Errorf("could not fetch secret from GCP secret manager: %w", err)
	}

	if result.GetPayload() == nil {
		return nil, fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
	}

	return result.GetPayload().GetData(), nil
}

// SetSecret creates the secret and stores its first version
func (gm *GcpSsmManager) SetSecret(name string, value []byte) error {
	secret, err := gm.client.CreateSecret(context.Background(), &smpb.CreateSecretRequest{
		Parent:   fmt.Sprintf("projects/%s", gm.projectID),
		SecretId: gm.secretID(name),
		Secret: &smpb.Secret{
			Replication: &smpb.Replication{
				Replication: &smpb.Replication_Automatic_{
					Automatic: &smpb.Replication_Automatic{},
				},
			},
		},
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("%w: %s", secrets.ErrSecretAlreadyExists, name)
		}

		return fmt.Errorf("could not set secret, %w", err)
	}

	if _, err = gm.client.AddSecretVersion(context.Background(), &smpb.AddSecretVersionRequest{
		Parent:  secret.GetName(),
		Payload: &smpb.SecretPayload{Data: value},
	}); err != nil {
		return fmt.Errorf("could not store secret, %w", err)
	}

	return nil
}

// HasSecret checks if the secret is present
func (gm *GcpSsmManager) HasSecret(name string) bool {
	_, err := gm.GetSecret(name)

	return err == nil
}

// RemoveSecret removes the secret with all of its versions
func (gm *GcpSsmManager) RemoveSecret(name string) error {
	err := gm.client.DeleteSecret(context.Background(), &smpb.DeleteSecretRequest{
		Name: gm.secretName(name),
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
		}

		return fmt.Errorf("could not delete secret %s from GCP secret manager: %w", gm.secretName(name), err)
	}

	return nil
}

// secretID formats the secret id as <name>_<secret>
func (gm *GcpSsmManager) secretID(secretName string) string {
	return fmt.Sprintf("%s_%s", gm.name, secretName)
}

// secretName returns the full resource name of the secret
func (gm *GcpSsmManager) secretName(secretName string) string {
	return fmt.Sprintf("projects/%s/secrets/%s", gm.projectID, gm.secretID(secretName))
}

var _ secrets.SecretsManager = (*GcpSsmManager)(nil)
