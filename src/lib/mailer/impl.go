package mailer

import (
	"admitgate/src/config"
	"admitgate/src/lib"
	awslib "admitgate/src/lib/aws"
	"admitgate/src/utils"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// NewNotifier picks the delivery transport named by NOTIFIER.
func NewNotifier(ctx context.Context, cfg *config.Config) (lib.Notifier, error) {
	switch cfg.NotifierName {
	case "", "log":
		return lib.NewLogNotifier(), nil
	case "smtp":
		c, err := lib.GetSMTPClient(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
		if err != nil {
			return nil, err
		}
		return lib.NewSMTPNotifier(c, cfg.MailFrom, cfg.MailFromName), nil
	case "ses":
		awsCfg, err := awslib.LoadConfig(ctx, cfg.AWSRoleArn)
		if err != nil {
			return nil, err
		}
		return awslib.NewSESNotifier(ses.NewFromConfig(awsCfg), cfg.MailFrom), nil
	case "sqs":
		if cfg.EmailQueue == "" {
			return nil, fmt.Errorf("notifier sqs requires EMAIL_QUEUE")
		}
		awsCfg, err := awslib.LoadConfig(ctx, cfg.AWSRoleArn)
		if err != nil {
			return nil, err
		}
		queue := utils.WithSuffix(cfg.EmailQueue)
		return awslib.NewSQSNotifier(sqs.NewFromConfig(awsCfg), queue, cfg.MailFrom, cfg.MailFromName), nil
	default:
		return nil, fmt.Errorf("unknown notifier %q", cfg.NotifierName)
	}
}
