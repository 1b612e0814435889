package minio

// Config contains connection parameters of the S3-compatible attachment library.
// Works with MinIO, AWS S3 and other S3-compatible providers.
type Config struct {
	Endpoint      string `envconfig:"ATTACHMENTS_S3_ENDPOINT" required:"true"` // "localhost:9000" for MinIO, "s3.amazonaws.com" for AWS
	AccessKey     string `envconfig:"ATTACHMENTS_S3_ACCESS_KEY" required:"true"`
	SecretKey     string `envconfig:"ATTACHMENTS_S3_SECRET_KEY" required:"true"`
	Region        string `envconfig:"ATTACHMENTS_S3_REGION" default:"us-east-1"`
	DefaultBucket string `envconfig:"ATTACHMENTS_S3_BUCKET" default:"attachments"` // used by "s3:///key" references
	Secure        bool   `envconfig:"ATTACHMENTS_S3_SECURE" default:"true"`
	Timeout       int    `envconfig:"ATTACHMENTS_S3_TIMEOUT" default:"30"` // seconds, connection check only
}
