package graphqlclient

import (
	"context"
	"errors"
	"regexp"

	"github.com/machinebox/graphql"
	"github.com/rs/zerolog"

	"github.com/botdash/botdash-cli/internal/client/restclient"
	"github.com/botdash/botdash-cli/internal/constants"
	"github.com/botdash/botdash-cli/internal/credentials"
	"github.com/botdash/botdash-cli/internal/environments"
)

var authorizationHeaderPattern = regexp.MustCompile(`Authorization:\[[^\]]*\]`)

type Client struct {
	client *graphql.Client
	creds  *credentials.Credentials
	log    *zerolog.Logger
}

func New(creds *credentials.Credentials, environmentSet *environments.EnvironmentSet, l *zerolog.Logger) *Client {
	gqlClient := graphql.NewClient(environmentSet.GraphQLURL)
	gqlClient.Log = func(s string) {
		l.Debug().Str("client", "GraphQL").Msg(redactSensitiveHeaders(s))
	}

	return &Client{
		client: gqlClient,
		creds:  creds,
		log:    l,
	}
}

func (c *Client) Execute(ctx context.Context, req *graphql.Request, resp any) error {
	if c.creds == nil {
		return errors.New("credentials not provided")
	}
	req.Header.Set("User-Agent", constants.UserAgent)
	if auth := restclient.AuthorizationHeader(c.creds); auth != "" {
		req.Header.Set("Authorization", auth)
	}
	return c.client.Run(ctx, req, resp)
}

// redactSensitiveHeaders strips credentials from the request dumps the
// graphql client writes to its debug log.
func redactSensitiveHeaders(s string) string {
	return authorizationHeaderPattern.ReplaceAllString(s, "Authorization:[[REDACTED]]")
}
