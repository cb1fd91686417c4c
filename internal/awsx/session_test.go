package awsx

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// mockIdentityClient implements IdentityClient for testing.
type mockIdentityClient struct {
	output *sts.GetCallerIdentityOutput
	err    error
	calls  int
}

func (m *mockIdentityClient) GetCallerIdentity(_ context.Context, _ *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.output, nil
}

func TestVerifyIdentity(t *testing.T) {
	mock := &mockIdentityClient{
		output: &sts.GetCallerIdentityOutput{
			Account: aws.String("123456789012"),
			Arn:     aws.String("arn:aws:iam::123456789012:user/ops"),
		},
	}

	accountID, callerARN, err := verifyIdentity(context.Background(), mock)
	if err != nil {
		t.Fatalf("verifyIdentity() returned error: %v", err)
	}
	if accountID != "123456789012" {
		t.Errorf("accountID = %q, want %q", accountID, "123456789012")
	}
	if callerARN != "arn:aws:iam::123456789012:user/ops" {
		t.Errorf("callerARN = %q", callerARN)
	}
	if mock.calls != 1 {
		t.Errorf("GetCallerIdentity called %d times, want 1", mock.calls)
	}
}

func TestVerifyIdentity_Error(t *testing.T) {
	mock := &mockIdentityClient{
		err: errors.New("ExpiredToken: the security token included in the request is expired"),
	}

	_, _, err := verifyIdentity(context.Background(), mock)
	if err == nil {
		t.Fatal("verifyIdentity() succeeded, want error")
	}
	if !errors.Is(err, mock.err) {
		t.Errorf("error chain does not include the STS error: %v", err)
	}
}
