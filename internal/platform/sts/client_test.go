package sts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const assumeRoleResponse = `<AssumeRoleWithWebIdentityResponse xmlns="https://sts.amazonaws.com/doc/2011-06-15/">
  <AssumeRoleWithWebIdentityResult>
    <SubjectFromWebIdentityToken>system:serviceaccount:consul:snapshot</SubjectFromWebIdentityToken>
    <Credentials>
      <SessionToken>session-token</SessionToken>
      <SecretAccessKey>secret-key</SecretAccessKey>
      <Expiration>2024-01-01T00:15:00Z</Expiration>
      <AccessKeyId>ASIAEXAMPLE</AccessKeyId>
    </Credentials>
  </AssumeRoleWithWebIdentityResult>
  <ResponseMetadata>
    <RequestId>ad4156e9-bce1-11e2-82e6-6b6efEXAMPLE</RequestId>
  </ResponseMetadata>
</AssumeRoleWithWebIdentityResponse>`

const noCredentialsResponse = `<AssumeRoleWithWebIdentityResponse xmlns="https://sts.amazonaws.com/doc/2011-06-15/">
  <AssumeRoleWithWebIdentityResult>
    <SubjectFromWebIdentityToken>system:serviceaccount:consul:snapshot</SubjectFromWebIdentityToken>
  </AssumeRoleWithWebIdentityResult>
  <ResponseMetadata>
    <RequestId>ad4156e9-bce1-11e2-82e6-6b6efEXAMPLE</RequestId>
  </ResponseMetadata>
</AssumeRoleWithWebIdentityResponse>`

const emptySessionTokenResponse = `<AssumeRoleWithWebIdentityResponse xmlns="https://sts.amazonaws.com/doc/2011-06-15/">
  <AssumeRoleWithWebIdentityResult>
    <Credentials>
      <SessionToken></SessionToken>
      <SecretAccessKey>secret-key</SecretAccessKey>
      <Expiration>2024-01-01T00:15:00Z</Expiration>
      <AccessKeyId>ASIAEXAMPLE</AccessKeyId>
    </Credentials>
  </AssumeRoleWithWebIdentityResult>
</AssumeRoleWithWebIdentityResponse>`

const invalidTokenResponse = `<ErrorResponse xmlns="https://sts.amazonaws.com/doc/2011-06-15/">
  <Error>
    <Type>Sender</Type>
    <Code>InvalidIdentityToken</Code>
    <Message>Couldn't retrieve verification key from your identity provider</Message>
  </Error>
  <RequestId>c6104cbe-af31-11e0-8154-cbc7ccf896c7</RequestId>
</ErrorResponse>`

const accessDeniedResponse = `<ErrorResponse xmlns="https://sts.amazonaws.com/doc/2011-06-15/">
  <Error>
    <Type>Sender</Type>
    <Code>AccessDenied</Code>
    <Message>Not authorized to perform sts:AssumeRoleWithWebIdentity</Message>
  </Error>
  <RequestId>c6104cbe-af31-11e0-8154-cbc7ccf896c7</RequestId>
</ErrorResponse>`

// testExchanger creates an Exchanger backed by a test HTTP server speaking
// the STS query protocol.
func testExchanger(t *testing.T, handler http.Handler) (*Exchanger, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)

	client := sts.New(sts.Options{
		Region:       "eu-west-1",
		BaseEndpoint: aws.String(server.URL),
		Credentials:  aws.AnonymousCredentials{},
		Retryer:      aws.NopRetryer{},
		HTTPClient:   &http.Client{Transport: &http.Transport{}},
	})

	return &Exchanger{sts: client}, server
}

func xmlResponse(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

func testRequest() Request {
	return Request{
		RoleARN:     "arn:aws:iam::123456789012:role/consul-snapshot",
		SessionName: "dev",
		Token:       "eyJhbGciOi.payload.sig\n",
		Duration:    900 * time.Second,
	}
}

func TestNewExchanger(t *testing.T) {
	t.Parallel()

	exchanger, err := NewExchanger(context.Background(), Options{Region: "eu-west-1", Endpoint: "https://sts.eu-west-1.amazonaws.com"})
	require.NoError(t, err)
	require.NotNil(t, exchanger)
	assert.Equal(t, "eu-west-1", exchanger.sts.Options().Region)
	assert.Equal(t, "https://sts.eu-west-1.amazonaws.com", aws.ToString(exchanger.sts.Options().BaseEndpoint))
}

func TestExchange_Success(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		captured url.Values
		authz    string
	)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		_ = r.ParseForm()
		captured = r.PostForm
		authz = r.Header.Get("Authorization")
		xmlResponse(w, http.StatusOK, assumeRoleResponse)
	})

	exchanger, server := testExchanger(t, handler)
	defer server.Close()

	creds, err := exchanger.Exchange(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, "ASIAEXAMPLE", creds.AccessKeyID)
	assert.Equal(t, "secret-key", creds.SecretAccessKey)
	assert.Equal(t, "session-token", creds.SessionToken)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 15, 0, 0, time.UTC), creds.Expiration.UTC())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "AssumeRoleWithWebIdentity", captured.Get("Action"))
	assert.Equal(t, "arn:aws:iam::123456789012:role/consul-snapshot", captured.Get("RoleArn"))
	assert.Equal(t, "dev", captured.Get("RoleSessionName"))
	assert.Equal(t, "eyJhbGciOi.payload.sig\n", captured.Get("WebIdentityToken"))
	assert.Equal(t, "900", captured.Get("DurationSeconds"))
	assert.Empty(t, authz, "the exchange must not be signed")
}

func TestExchange_InvalidToken(t *testing.T) {
	t.Parallel()

	exchanger, server := testExchanger(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		xmlResponse(w, http.StatusBadRequest, invalidTokenResponse)
	}))
	defer server.Close()

	creds, err := exchanger.Exchange(context.Background(), testRequest())
	require.Error(t, err)
	assert.Nil(t, creds)
	assert.NotErrorIs(t, err, ErrMissingCredentials)
	assert.Contains(t, err.Error(), "failed to get AWS credentials")
	assert.Contains(t, err.Error(), "(InvalidIdentityToken)")

	var apiErr smithy.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "InvalidIdentityToken", apiErr.ErrorCode())
}

func TestExchange_AccessDenied(t *testing.T) {
	t.Parallel()

	var calls int
	var mu sync.Mutex
	exchanger, server := testExchanger(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		xmlResponse(w, http.StatusForbidden, accessDeniedResponse)
	}))
	defer server.Close()

	_, err := exchanger.Exchange(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(AccessDenied)")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls, "the exchange is never retried")
}

func TestExchange_MissingCredentials(t *testing.T) {
	t.Parallel()

	exchanger, server := testExchanger(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		xmlResponse(w, http.StatusOK, noCredentialsResponse)
	}))
	defer server.Close()

	creds, err := exchanger.Exchange(context.Background(), testRequest())
	require.Error(t, err)
	assert.Nil(t, creds)
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestExchange_IncompleteCredentials(t *testing.T) {
	t.Parallel()

	exchanger, server := testExchanger(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		xmlResponse(w, http.StatusOK, emptySessionTokenResponse)
	}))
	defer server.Close()

	creds, err := exchanger.Exchange(context.Background(), testRequest())
	require.Error(t, err)
	assert.Nil(t, creds)
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestExchange_Unreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	exchanger := &Exchanger{sts: sts.New(sts.Options{
		Region:       "eu-west-1",
		BaseEndpoint: aws.String(endpoint),
		Credentials:  aws.AnonymousCredentials{},
		Retryer:      aws.NopRetryer{},
	})}

	_, err := exchanger.Exchange(context.Background(), testRequest())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingCredentials)
}

func TestCredentials_Provider(t *testing.T) {
	t.Parallel()

	creds := &Credentials{AccessKeyID: "AKID", SecretAccessKey: "SECRET", SessionToken: "TOKEN"}
	value, err := creds.Provider().Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKID", value.AccessKeyID)
	assert.Equal(t, "SECRET", value.SecretAccessKey)
	assert.Equal(t, "TOKEN", value.SessionToken)
}

func TestCredentials_StringRedactsSecrets(t *testing.T) {
	t.Parallel()

	creds := &Credentials{
		AccessKeyID:     "AKID",
		SecretAccessKey: "SECRET",
		SessionToken:    "TOKEN",
		Expiration:      time.Date(2024, 1, 1, 0, 15, 0, 0, time.UTC),
	}
	s := creds.String()
	assert.Contains(t, s, "AKID")
	assert.Contains(t, s, "2024-01-01T00:15:00Z")
	assert.NotContains(t, s, "SECRET")
	assert.NotContains(t, s, "TOKEN")
}
