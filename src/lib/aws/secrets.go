package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

var ErrEmptySecret = errors.New("secret has no string value")

type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

func GetSecretString(ctx context.Context, client SecretsAPI, secretArn string) (string, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretArn),
	})
	if err != nil {
		return "", fmt.Errorf("error retrieving secret [%s]: %w", secretArn, err)
	}
	value := aws.ToString(out.SecretString)
	if value == "" {
		return "", ErrEmptySecret
	}
	return value, nil
}
