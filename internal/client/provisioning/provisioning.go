// Package provisioning calls the backend endpoints that connect a bot to a
// Bitrix24 portal.
package provisioning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/botdash/botdash-cli/internal/client/restclient"
	"github.com/botdash/botdash-cli/internal/constants"
)

// Operation names a remote call and the paths it may be served from, in the
// order they are tried. A later path is only tried when the previous one
// answered 404, because deployments differ in which spelling they expose.
type Operation struct {
	Name  string
	Paths []string
}

var (
	OpGenerateLink = Operation{
		Name:  "generate-link",
		Paths: []string{constants.GenerateLinkPath, constants.GenerateLinkLegacyPath},
	}
	OpSaveTokens = Operation{
		Name:  "save-tokens",
		Paths: []string{constants.SaveTokensPath, constants.SaveTokensLegacyPath},
	}
	OpRegisterBot = Operation{
		Name:  "register-bot",
		Paths: []string{constants.RegisterBotPath, constants.RegisterBotLegacyPath},
	}
)

type GenerateLinkRequest struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	PortalDomain string `json:"portalDomain"`
	BotID        string `json:"botId"`
	Type         string `json:"type"`
}

type GenerateLinkResult struct {
	IntegrationID string `json:"integrationId"`
	WebhookURL    string `json:"webhookUrl"`
}

type SaveTokensRequest struct {
	IntegrationID string `json:"integrationId"`
	AccessToken   string `json:"accessToken"`
	RefreshToken  string `json:"refreshToken"`
}

type RegisterBotRequest struct {
	BotID string `json:"botId"`
}

type RegisterBotResult struct {
	ProviderBotIDs []string `json:"botIds,omitempty"`
}

// envelope captures the fields every provisioning response may carry.
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e envelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

type Poster interface {
	PostJSON(ctx context.Context, path string, body any) (*restclient.Response, error)
}

type Client struct {
	rest    Poster
	log     *zerolog.Logger
	timeout time.Duration
}

func New(rest Poster, log *zerolog.Logger, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = constants.DefaultProvisioningTimeout
	}
	return &Client{rest: rest, log: log, timeout: timeout}
}

// GenerateLink exchanges the Bitrix24 app credentials for an integration id
// and the webhook URL the portal must call.
func (c *Client) GenerateLink(ctx context.Context, req GenerateLinkRequest) (GenerateLinkResult, error) {
	if req.Type == "" {
		req.Type = constants.IntegrationTypeBitrix
	}

	var result GenerateLinkResult
	if err := c.call(ctx, OpGenerateLink, req, &result); err != nil {
		return GenerateLinkResult{}, err
	}
	if result.IntegrationID == "" || result.WebhookURL == "" {
		return GenerateLinkResult{}, &Error{
			Kind:    KindTransport,
			Op:      OpGenerateLink.Name,
			Message: MessageTransport,
			Err:     errors.New("response is missing integrationId or webhookUrl"),
		}
	}

	c.log.Debug().Str("integrationId", result.IntegrationID).Msg("Integration link generated")
	return result, nil
}

// SaveTokens stores the OAuth tokens issued by the portal against an integration.
func (c *Client) SaveTokens(ctx context.Context, req SaveTokensRequest) error {
	return c.call(ctx, OpSaveTokens, req, nil)
}

// RegisterBot registers the bot inside the connected portal.
func (c *Client) RegisterBot(ctx context.Context, req RegisterBotRequest) (RegisterBotResult, error) {
	var result RegisterBotResult
	if err := c.call(ctx, OpRegisterBot, req, &result); err != nil {
		return RegisterBotResult{}, err
	}
	if len(result.ProviderBotIDs) > 0 {
		c.log.Debug().Strs("providerBotIds", result.ProviderBotIDs).Msg("Bot registered in portal")
	}
	return result, nil
}

// call runs one attempt of op under the client timeout, walking the candidate
// paths on 404 only.
func (c *Client) call(ctx context.Context, op Operation, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	for i, path := range op.Paths {
		resp, err := c.rest.PostJSON(ctx, path, body)
		if err != nil {
			c.log.Debug().Err(err).Str("op", op.Name).Str("path", path).Msg("Provisioning call failed")
			return newTransportError(op.Name, err)
		}

		if resp.StatusCode == http.StatusNotFound && i < len(op.Paths)-1 {
			c.log.Debug().Str("op", op.Name).Str("path", path).Str("next", op.Paths[i+1]).
				Msg("Endpoint not found, trying alternate path")
			continue
		}

		return decode(op.Name, resp, out)
	}
	// unreachable with a non-empty path list
	return &Error{Kind: KindTransport, Op: op.Name, Message: MessageTransport, Err: fmt.Errorf("no paths configured for %s", op.Name)}
}

func decode(op string, resp *restclient.Response, out any) error {
	var env envelope
	body := strings.TrimSpace(string(resp.Body))
	if body != "" {
		// A non-JSON error body is still a status error; only successful
		// responses must parse.
		if err := json.Unmarshal(resp.Body, &env); err != nil && resp.OK() {
			return &Error{Kind: KindTransport, Op: op, Status: resp.StatusCode, Message: MessageTransport, Err: fmt.Errorf("malformed response: %w", err)}
		}
	}

	if !resp.OK() {
		return newStatusError(op, resp.StatusCode, env.text())
	}
	if env.Success != nil && !*env.Success {
		msg := env.text()
		if msg == "" {
			msg = fmt.Sprintf("%s was rejected by the provisioning service", op)
		}
		return &Error{Kind: KindRejected, Op: op, Status: resp.StatusCode, Message: msg}
	}

	if out != nil && body != "" {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return &Error{Kind: KindTransport, Op: op, Status: resp.StatusCode, Message: MessageTransport, Err: fmt.Errorf("malformed response: %w", err)}
		}
	}
	return nil
}
