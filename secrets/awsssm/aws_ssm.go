package awsssm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/aws/aws-sdk-go/service/ssm/ssmiface"
	"github.com/hashicorp/go-hclog"

	"github.com/streamgold/sgld-deployer/secrets"
)

// AwsSsmManager is a SecretsManager that
// stores secrets on AWS SSM Parameter Store
type AwsSsmManager struct {
	logger hclog.Logger

	// The AWS region
	region string

	client ssmiface.SSMAPI

	// The base path to store the secrets in SSM Parameter Store
	basePath string
}

// SecretsManagerFactory implements the factory method
func SecretsManagerFactory(
	config *secrets.SecretsManagerConfig,
	params *secrets.SecretsManagerParams,
) (secrets.SecretsManager, error) {
	if config.Name == "" {
		return nil, errors.New("no name specified for AWS SSM secrets manager")
	}

	region := config.ExtraString(secrets.Region)
	parameterPath := config.ExtraString(secrets.SSMParameterPath)

	if region == "" || parameterPath == "" {
		return nil, fmt.Errorf("required extra map containing '%s' and '%s' not found for %s",
			secrets.Region, secrets.SSMParameterPath, secrets.AWSSSM)
	}

	awsSsmManager := &AwsSsmManager{
		logger:   params.Logger.Named(string(secrets.AWSSSM)),
		region:   region,
		basePath: fmt.Sprintf("%s/%s", strings.TrimSuffix(parameterPath, "/"), config.Name),
	}

	if err := awsSsmManager.Setup(); err != nil {
		return nil, err
	}

	return awsSsmManager, nil
}

// Setup sets up the AWS SSM client
func (a *AwsSsmManager) Setup() error {
	if a.client != nil {
		return nil
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            aws.Config{Region: aws.String(a.region)},
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return fmt.Errorf("unable to initialize AWS SSM client: %w", err)
	}

	a.client = ssm.New(sess, aws.NewConfig().WithRegion(a.region))

	return nil
}

func (a *AwsSsmManager) secretPath(name string) string {
	return fmt.Sprintf("%s/%s", a.basePath, name)
}

// GetSecret fetches a secret from AWS SSM
func (a *AwsSsmManager) GetSecret(name string) ([]byte, error) {
	param, err := a.client.GetParameter(&ssm.GetParameterInput{
		Name:           aws.String(a.secretPath(name)),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == ssm.ErrCodeParameterNotFound {
			return nil, fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
		}

		return nil, fmt.Errorf("unable to read secret (%s) from SSM, %w", name, err)
	}

	if param == nil || param.Parameter == nil || param.Parameter.Value == nil {
		return nil, fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
	}

	return []byte(*param.Parameter.Value), nil
}

// SetSecret saves a secret to AWS SSM as a SecureString. Existing parameters are not overwritten.
func (a *AwsSsmManager) SetSecret(name string, value []byte) error {
	if _, err := a.client.PutParameter(&ssm.PutParameterInput{
		Name:      aws.String(a.secretPath(name)),
		Value:     aws.String(string(value)),
		Type:      aws.String(ssm.ParameterTypeSecureString),
		Overwrite: aws.Bool(false),
	}); err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == ssm.ErrCodeParameterAlreadyExists {
			return fmt.Errorf("%w: %s", secrets.ErrSecretAlreadyExists, name)
		}

		return fmt.Errorf("unable to store secret (%s), %w", name, err)
	}

	return nil
}

// HasSecret checks if the secret is present on AWS SSM ParameterStore
func (a *AwsSsmManager) HasSecret(name string) bool {
	_, err := a.GetSecret(name)

	return err == nil
}

// RemoveSecret removes a secret from AWS SSM ParameterStore
func (a *AwsSsmManager) RemoveSecret(name string) error {
	if _, err := a.GetSecret(name); err != nil {
		return err
	}

	if _, err := a.client.DeleteParameter(&ssm.DeleteParameterInput{
		Name: aws.String(a.secretPath(name)),
	}); err != nil {
		return fmt.Errorf("unable to delete secret (%s), %w", name, err)
	}

	return nil
}
