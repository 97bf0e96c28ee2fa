package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	log "github.com/sirupsen/logrus"
)

const roleSessionName = "admitgate"

// LoadConfig loads the default chain and, when roleArn is set, swaps in
// temporary credentials for that role.
func LoadConfig(ctx context.Context, roleArn string) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("Error loading default config: %s\n", err.Error())
		return aws.Config{}, err
	}
	if roleArn == "" {
		return cfg, nil
	}
	stsClient := sts.NewFromConfig(cfg)
	output, err := stsClient.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleArn),
		RoleSessionName: aws.String(roleSessionName),
	})
	if err != nil {
		log.Printf("Error configuring STS client: %s\n", err.Error())
		return aws.Config{}, err
	}
	creds := output.Credentials
	if creds == nil {
		return aws.Config{}, fmt.Errorf("assume role %s returned no credentials", roleArn)
	}
	cfg, err = config.LoadDefaultConfig(ctx, config.WithCredentialsProvider(
		credentials.NewStaticCredentialsProvider(aws.ToString(creds.AccessKeyId), aws.ToString(creds.SecretAccessKey), aws.ToString(creds.SessionToken)),
	))
	if err != nil {
		log.Printf("Error configuration: %s\n", err.Error())
		return aws.Config{}, err
	}
	return cfg, nil
}
