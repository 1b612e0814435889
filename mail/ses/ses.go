package ses

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/pkg/errors"
)

// Config selects the SES account. Static keys are optional, the default AWS
// credential chain is used without them.
type Config struct {
	Region           string `envconfig:"SES_REGION" default:"ap-south-1"`
	AccessKeyID      string `envconfig:"SES_ACCESS_KEY_ID"`
	SecretAccessKey  string `envconfig:"SES_SECRET_ACCESS_KEY"`
	From             string `envconfig:"SES_FROM"`
	ConfigurationSet string `envconfig:"SES_CONFIGURATION_SET"`
}

// NewDefault builds an SES client from cfg and wraps it in a Sender.
func NewDefault(ctx context.Context, cfg Config) (*Sender, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load aws config")
	}

	return NewSender(sesv2.NewFromConfig(awsCfg), cfg), nil
}

func stringOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}
