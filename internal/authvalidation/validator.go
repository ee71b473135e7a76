package authvalidation

import (
	"context"
	"errors"
	"fmt"

	"github.com/machinebox/graphql"
	"github.com/rs/zerolog"

	"github.com/botdash/botdash-cli/internal/client/graphqlclient"
	"github.com/botdash/botdash-cli/internal/credentials"
	"github.com/botdash/botdash-cli/internal/environments"
)

const queryGetAccountDetails = `
query GetAccountDetails {
	getAccountDetails {
		userId
		email
		workspace
	}
}`

// Account is the identity behind a set of credentials.
type Account struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Workspace string `json:"workspace"`
}

// Validator validates authentication credentials
type Validator struct {
	gqlClient *graphqlclient.Client
	log       *zerolog.Logger
}

func NewValidator(creds *credentials.Credentials, environmentSet *environments.EnvironmentSet, log *zerolog.Logger) *Validator {
	return &Validator{
		gqlClient: graphqlclient.New(creds, environmentSet, log),
		log:       log,
	}
}

// ValidateCredentials runs a lightweight account query and marks the
// credentials as validated on success.
func (v *Validator) ValidateCredentials(ctx context.Context, creds *credentials.Credentials) (Account, error) {
	if creds == nil {
		return Account{}, errors.New("credentials not provided")
	}

	var respEnvelope struct {
		GetAccountDetails Account `json:"getAccountDetails"`
	}
	if err := v.gqlClient.Execute(ctx, graphql.NewRequest(queryGetAccountDetails), &respEnvelope); err != nil {
		return Account{}, fmt.Errorf("authentication validation failed: %w", err)
	}

	creds.IsValidated = true
	v.log.Debug().Str("userId", respEnvelope.GetAccountDetails.UserID).Msg("Credentials validated")
	return respEnvelope.GetAccountDetails, nil
}
