// Package awsx provides the AWS SDK session bootstrap shared by the nookops
// operator CLIs. It resolves credentials from the default chain and verifies
// the active identity with STS before any control-plane mutation happens, so
// bad credentials fail fast with a readable diagnostic instead of surfacing
// halfway through a trigger-and-restore pass.
package awsx

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// identityTimeout bounds the STS GetCallerIdentity probe so credential
// problems surface quickly.
const identityTimeout = 10 * time.Second

// IdentityClient defines the subset of the STS API used to verify the
// active AWS identity. This interface enables unit testing with mocks.
type IdentityClient interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Session holds the resolved AWS SDK configuration and the verified caller
// identity for a tool run.
type Session struct {
	// Config is the resolved AWS SDK configuration for building service
	// clients.
	Config aws.Config

	// AccountID is the AWS account ID resolved via STS GetCallerIdentity.
	AccountID string

	// CallerARN is the full ARN of the authenticated identity.
	CallerARN string

	// Region is the effective AWS region.
	Region string
}

// Options configures session establishment.
type Options struct {
	// Region is the target AWS region. Empty uses the SDK default chain.
	Region string

	// Profile is an optional AWS CLI profile name. Empty uses the default
	// credential chain.
	Profile string
}

// Open loads the AWS SDK configuration and verifies the active identity by
// calling STS GetCallerIdentity. This also validates that credentials are
// functional before any EventBridge or Lambda call is attempted.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Session, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error

	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	}

	// Resolves credentials from the default chain: environment -> shared
	// credentials -> EC2 IMDS.
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	accountID, callerARN, err := verifyIdentity(ctx, sts.NewFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("verifying AWS identity (STS GetCallerIdentity): %w\n"+
			"  Check that your AWS credentials are configured correctly.\n"+
			"  Profile: %q, Region: %q", err, opts.Profile, cfg.Region)
	}

	logger.Info("AWS identity verified",
		"account_id", accountID,
		"arn", callerARN,
		"region", cfg.Region,
	)

	return &Session{
		Config:    cfg,
		AccountID: accountID,
		CallerARN: callerARN,
		Region:    cfg.Region,
	}, nil
}

// verifyIdentity calls STS GetCallerIdentity with a short timeout and
// returns the account ID and caller ARN.
func verifyIdentity(ctx context.Context, client IdentityClient) (accountID, callerARN string, err error) {
	idCtx, cancel := context.WithTimeout(ctx, identityTimeout)
	defer cancel()

	identity, err := client.GetCallerIdentity(idCtx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", "", err
	}

	return aws.ToString(identity.Account), aws.ToString(identity.Arn), nil
}
