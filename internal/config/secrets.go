package config

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/pkg/errors"
)

// SecretProvider fetches a secret stored as a flat JSON object.
type SecretProvider interface {
	GetSecret(ctx context.Context, id string) (map[string]string, error)
}

// AWSSecretsProvider implements SecretProvider using AWS Secrets Manager.
type AWSSecretsProvider struct {
	client *secretsmanager.Client
}

// NewAWSSecretsProvider builds a provider from the default AWS credential
// chain for the given region.
func NewAWSSecretsProvider(ctx context.Context, region string) (*AWSSecretsProvider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	return &AWSSecretsProvider{client: secretsmanager.NewFromConfig(cfg)}, nil
}

// GetSecret fetches and decodes a secret value, e.g.
// {"username": "login_ro", "password": "..."}.
func (p *AWSSecretsProvider) GetSecret(ctx context.Context, id string) (map[string]string, error) {
	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fetch secret %s", id)
	}
	if out.SecretString == nil {
		return nil, errors.Errorf("secret %s has no string value", id)
	}
	var result map[string]string
	if err := json.Unmarshal([]byte(*out.SecretString), &result); err != nil {
		return nil, errors.Wrapf(err, "invalid secret format for %s", id)
	}
	return result, nil
}

// ApplyDBSecret overrides the store connection settings with the values
// found in the secret.  Recognised keys are username, password, host, port
// and dbname; absent keys leave the current value untouched.
func ApplyDBSecret(ctx context.Context, p SecretProvider, cfg *Config) error {
	if cfg.Secrets.SecretID == "" {
		return nil
	}
	s, err := p.GetSecret(ctx, cfg.Secrets.SecretID)
	if err != nil {
		return err
	}
	set := func(dst *string, key string) {
		if v, ok := s[key]; ok && v != "" {
			*dst = v
		}
	}
	set(&cfg.DB.User, "username")
	set(&cfg.DB.Password, "password")
	set(&cfg.DB.Host, "host")
	set(&cfg.DB.Port, "port")
	set(&cfg.DB.Name, "dbname")
	return nil
}
