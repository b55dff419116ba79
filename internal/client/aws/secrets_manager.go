package aws

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"

	"airdrop-api/internal/logger"
)

// SecretsManagerClient wraps the AWS Secrets Manager client.
type SecretsManagerClient struct {
	svc *secretsmanager.Client
}

// NewSecretsManagerClient creates a Secrets Manager client using the default
// AWS configuration chain (environment variables, shared config, IAM role).
func NewSecretsManagerClient(ctx context.Context) (*SecretsManagerClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	return &SecretsManagerClient{svc: secretsmanager.NewFromConfig(cfg)}, nil
}

// GetSecretString fetches a secret string from Secrets Manager using an ARN
// taken from secretArnEnvVar. If the ARN is unset or the fetch fails, it
// falls back to reading the value directly from fallbackEnvVar.
func (c *SecretsManagerClient) GetSecretString(ctx context.Context, secretArnEnvVar, fallbackEnvVar string) (string, error) {
	secretArn := os.Getenv(secretArnEnvVar)

	if secretArn != "" {
		result, err := c.svc.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: aws.String(secretArn),
		})
		if err == nil && result.SecretString != nil && *result.SecretString != "" {
			return *result.SecretString, nil
		}
		logger.Warn("failed to fetch secret from Secrets Manager, falling back to env var",
			zap.String("secret_arn", secretArn),
			zap.String("fallback_env_var", fallbackEnvVar),
			zap.Error(err),
		)
	}

	if value := os.Getenv(fallbackEnvVar); value != "" {
		return value, nil
	}

	return "", fmt.Errorf("secret not found using ARN env var %q or direct env var %q", secretArnEnvVar, fallbackEnvVar)
}
