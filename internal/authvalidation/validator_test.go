package authvalidation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botdash/botdash-cli/internal/authvalidation"
	"github.com/botdash/botdash-cli/internal/credentials"
	"github.com/botdash/botdash-cli/internal/environments"
	"github.com/botdash/botdash-cli/internal/testutil"
)

func TestValidateCredentials(t *testing.T) {
	mock := testutil.NewGraphQLMockServer(t, map[string]any{
		"getAccountDetails": map[string]string{"userId": "u-1", "email": "ops@example.com", "workspace": "Acme"},
	})
	env := &environments.EnvironmentSet{GraphQLURL: mock.Server.URL + "/graphql"}
	creds := &credentials.Credentials{AuthType: credentials.AuthTypeApiKey, APIKey: "test-api-key-0123456789"}

	acct, err := authvalidation.NewValidator(creds, env, testutil.NewTestLogger()).ValidateCredentials(context.Background(), creds)
	require.NoError(t, err)

	assert.Equal(t, authvalidation.Account{UserID: "u-1", Email: "ops@example.com", Workspace: "Acme"}, acct)
	assert.True(t, creds.IsValidated)
	assert.Equal(t, "Apikey test-api-key-0123456789", mock.Authorization())
}

func TestValidateCredentials_Rejected(t *testing.T) {
	mock := testutil.NewGraphQLMockServer(t, map[string]any{})
	env := &environments.EnvironmentSet{GraphQLURL: mock.Server.URL + "/graphql"}
	creds := &credentials.Credentials{AuthType: credentials.AuthTypeApiKey, APIKey: "bad-key-0123456789"}

	_, err := authvalidation.NewValidator(creds, env, testutil.NewTestLogger()).ValidateCredentials(context.Background(), creds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication validation failed")
	assert.False(t, creds.IsValidated)
}

func TestValidateCredentials_Nil(t *testing.T) {
	env := &environments.EnvironmentSet{GraphQLURL: "http://127.0.0.1:0"}
	_, err := authvalidation.NewValidator(nil, env, testutil.NewTestLogger()).ValidateCredentials(context.Background(), nil)
	assert.EqualError(t, err, "credentials not provided")
}
