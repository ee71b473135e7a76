// Package botclient looks up bot identities from the botdash GraphQL API.
package botclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/machinebox/graphql"
	"github.com/rs/zerolog"

	"github.com/botdash/botdash-cli/internal/client/graphqlclient"
	"github.com/botdash/botdash-cli/internal/constants"
)

var ErrBotNotFound = errors.New("bot not found")

// Bot is the identity the integration wizard needs before it opens.
type Bot struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Status      string `json:"status"`
}

type executor interface {
	Execute(ctx context.Context, req *graphql.Request, resp any) error
}

type Client struct {
	graphql        executor
	log            *zerolog.Logger
	serviceTimeout time.Duration
	attempts       uint
	retryDelay     time.Duration
}

func New(gql *graphqlclient.Client, log *zerolog.Logger) *Client {
	return newClient(gql, log)
}

func newClient(gql executor, log *zerolog.Logger) *Client {
	return &Client{
		graphql:        gql,
		log:            log,
		serviceTimeout: constants.DefaultServiceTimeout,
		attempts:       3,
		retryDelay:     200 * time.Millisecond,
	}
}

func (c *Client) SetRetryDelay(delay time.Duration) {
	c.retryDelay = delay
}

// GetBot fetches a single bot. Lookups are idempotent and retried on
// transient failures; a missing bot is reported immediately as ErrBotNotFound.
func (c *Client) GetBot(ctx context.Context, id string) (Bot, error) {
	const query = `
query GetBot($id: ID!) {
  getBot(id: $id) {
    id
    displayName
    status
  }
}`
	var container struct {
		GetBot *Bot `json:"getBot"`
	}

	err := c.do(ctx, func(ctx context.Context) error {
		req := graphql.NewRequest(query)
		req.Var("id", id)
		container.GetBot = nil
		if err := c.graphql.Execute(ctx, req, &container); err != nil {
			return fmt.Errorf("get bot: %w", err)
		}
		if container.GetBot == nil {
			return fmt.Errorf("%w: %s", ErrBotNotFound, id)
		}
		return nil
	})
	if err != nil {
		return Bot{}, err
	}

	c.log.Debug().Str("botId", container.GetBot.ID).Msg("Resolved bot identity")
	return *container.GetBot, nil
}

// ListBots returns every bot visible to the current credentials.
func (c *Client) ListBots(ctx context.Context) ([]Bot, error) {
	const query = `
query ListBots {
  listBots {
    id
    displayName
    status
  }
}`
	var container struct {
		ListBots []Bot `json:"listBots"`
	}

	err := c.do(ctx, func(ctx context.Context) error {
		if err := c.graphql.Execute(ctx, graphql.NewRequest(query), &container); err != nil {
			return fmt.Errorf("list bots: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.log.Debug().Int("count", len(container.ListBots)).Msg("Listed bots")
	return container.ListBots, nil
}

func (c *Client) do(ctx context.Context, fn func(ctx context.Context) error) error {
	return retry.Do(
		func() error {
			callCtx, cancel := context.WithTimeout(ctx, c.serviceTimeout)
			defer cancel()
			err := fn(callCtx)
			if err != nil && !isTransient(err) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.log.Debug().Uint("attempt", n+1).Err(err).Msg("Retrying bot lookup")
		}),
	)
}

// isTransient reports failures worth another attempt: network errors,
// per-call timeouts and 5xx responses. Errors returned by the GraphQL API
// itself (auth, permissions, bad input) are final.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return strings.Contains(err.Error(), "non-200 status code: 5")
}
