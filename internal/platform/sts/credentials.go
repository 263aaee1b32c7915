package sts

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Credentials are temporary credentials scoped to the assumed role.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Expiration      time.Time
}

// Provider returns a static credentials provider for the AWS SDK.
func (c *Credentials) Provider() aws.CredentialsProvider {
	return credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, c.SessionToken)
}

// String redacts the secret parts so credentials can be printed safely.
func (c *Credentials) String() string {
	return fmt.Sprintf("Credentials{AccessKeyID: %s, SecretAccessKey: <redacted>, SessionToken: <redacted>, Expiration: %s}",
		c.AccessKeyID, c.Expiration.Format(time.RFC3339))
}
