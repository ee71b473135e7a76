package provisioning_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botdash/botdash-cli/internal/client/provisioning"
	"github.com/botdash/botdash-cli/internal/client/restclient"
	"github.com/botdash/botdash-cli/internal/constants"
	"github.com/botdash/botdash-cli/internal/credentials"
	"github.com/botdash/botdash-cli/internal/environments"
	"github.com/botdash/botdash-cli/internal/testutil"
)

const apiURL = "https://api.botdash.test"

func newClient(baseURL string, timeout time.Duration) *provisioning.Client {
	creds := &credentials.Credentials{AuthType: credentials.AuthTypeApiKey, APIKey: "test-api-key-0123456789"}
	rest := restclient.New(creds, &environments.EnvironmentSet{APIURL: baseURL}, testutil.NewTestLogger())
	return provisioning.New(rest, testutil.NewTestLogger(), timeout)
}

func linkRequest() provisioning.GenerateLinkRequest {
	return provisioning.GenerateLinkRequest{
		ClientID:     "local.abc",
		ClientSecret: "s3cr3t",
		PortalDomain: constants.TestPortal,
		BotID:        constants.TestBotID,
	}
}

type recorder struct {
	mu     sync.Mutex
	paths  []string
	bodies []map[string]any
}

func (r *recorder) record(req *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(req.Body).Decode(&body)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, req.URL.Path)
	r.bodies = append(r.bodies, body)
}

func TestGenerateLink_PrimaryPath(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		_, _ = w.Write([]byte(`{"integrationId":"int-1","webhookUrl":"https://handler/xyz"}`))
	}))
	defer srv.Close()

	res, err := newClient(srv.URL, time.Second).GenerateLink(context.Background(), linkRequest())
	require.NoError(t, err)

	assert.Equal(t, provisioning.GenerateLinkResult{IntegrationID: "int-1", WebhookURL: "https://handler/xyz"}, res)
	assert.Equal(t, []string{constants.GenerateLinkPath}, rec.paths)
	assert.Equal(t, map[string]any{
		"clientId":     "local.abc",
		"clientSecret": "s3cr3t",
		"portalDomain": constants.TestPortal,
		"botId":        constants.TestBotID,
		"type":         constants.IntegrationTypeBitrix,
	}, rec.bodies[0])
}

func TestCandidatePaths_FallbackOnlyOnNotFound(t *testing.T) {
	tests := []struct {
		name      string
		op        func(c *provisioning.Client) error
		primary   string
		legacy    string
		okBody    string
		firstCode int
		wantPaths []string
		wantKind  provisioning.Kind
	}{
		{
			name: "generate-link falls back on 404",
			op: func(c *provisioning.Client) error {
				_, err := c.GenerateLink(context.Background(), linkRequest())
				return err
			},
			primary:   constants.GenerateLinkPath,
			legacy:    constants.GenerateLinkLegacyPath,
			okBody:    `{"integrationId":"int-1","webhookUrl":"https://handler/xyz"}`,
			firstCode: http.StatusNotFound,
			wantPaths: []string{constants.GenerateLinkPath, constants.GenerateLinkLegacyPath},
		},
		{
			name: "save-tokens falls back on 404",
			op: func(c *provisioning.Client) error {
				return c.SaveTokens(context.Background(), provisioning.SaveTokensRequest{IntegrationID: "int-1", AccessToken: "a", RefreshToken: "r"})
			},
			primary:   constants.SaveTokensPath,
			legacy:    constants.SaveTokensLegacyPath,
			okBody:    `{"success":true}`,
			firstCode: http.StatusNotFound,
			wantPaths: []string{constants.SaveTokensPath, constants.SaveTokensLegacyPath},
		},
		{
			name: "register-bot falls back on 404",
			op: func(c *provisioning.Client) error {
				_, err := c.RegisterBot(context.Background(), provisioning.RegisterBotRequest{BotID: constants.TestBotID})
				return err
			},
			primary:   constants.RegisterBotPath,
			legacy:    constants.RegisterBotLegacyPath,
			okBody:    `{"botIds":["17"]}`,
			firstCode: http.StatusNotFound,
			wantPaths: []string{constants.RegisterBotPath, constants.RegisterBotLegacyPath},
		},
		{
			name: "no fallback on 400",
			op: func(c *provisioning.Client) error {
				return c.SaveTokens(context.Background(), provisioning.SaveTokensRequest{IntegrationID: "int-1", AccessToken: "a", RefreshToken: "r"})
			},
			primary:   constants.SaveTokensPath,
			legacy:    constants.SaveTokensLegacyPath,
			okBody:    `{}`,
			firstCode: http.StatusBadRequest,
			wantPaths: []string{constants.SaveTokensPath},
			wantKind:  provisioning.KindRejected,
		},
		{
			name: "no fallback on 500",
			op: func(c *provisioning.Client) error {
				_, err := c.RegisterBot(context.Background(), provisioning.RegisterBotRequest{BotID: constants.TestBotID})
				return err
			},
			primary:   constants.RegisterBotPath,
			legacy:    constants.RegisterBotLegacyPath,
			okBody:    `{}`,
			firstCode: http.StatusInternalServerError,
			wantPaths: []string{constants.RegisterBotPath},
			wantKind:  provisioning.KindTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				rec.record(r)
				if r.URL.Path == tt.primary {
					w.WriteHeader(tt.firstCode)
					return
				}
				_, _ = w.Write([]byte(tt.okBody))
			}))
			defer srv.Close()

			err := tt.op(newClient(srv.URL, time.Second))
			if tt.wantKind == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, provisioning.KindOf(err))
			}
			assert.Equal(t, tt.wantPaths, rec.paths)
		})
	}
}

func TestGenerateLink_NotFoundOnEveryPathIsRejected(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, apiURL+constants.GenerateLinkPath,
		httpmock.NewStringResponder(http.StatusNotFound, ""))
	httpmock.RegisterResponder(http.MethodPost, apiURL+constants.GenerateLinkLegacyPath,
		httpmock.NewJsonResponderOrPanic(http.StatusNotFound, map[string]string{"message": "Bot not found"}))

	_, err := newClient(apiURL, time.Second).GenerateLink(context.Background(), linkRequest())
	require.Error(t, err)

	var pe *provisioning.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, provisioning.KindRejected, pe.Kind)
	assert.Equal(t, http.StatusNotFound, pe.Status)
	assert.Equal(t, "Bot not found", pe.Error())
	assert.Equal(t, 2, httpmock.GetTotalCallCount())
}

func TestRejectedMessageIsVerbatim(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"message field", http.StatusBadRequest, `{"message":"Invalid client secret"}`, "Invalid client secret"},
		{"error field", http.StatusUnprocessableEntity, `{"error":"Unknown integration"}`, "Unknown integration"},
		{"success false on 200", http.StatusOK, `{"success":false,"message":"Portal is not reachable"}`, "Portal is not reachable"},
		{"no message", http.StatusForbidden, ``, "save-tokens was rejected by the provisioning service (status 403)"},
		{"plain text body", http.StatusConflict, `conflict`, "save-tokens was rejected by the provisioning service (status 409)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.Activate()
			defer httpmock.DeactivateAndReset()
			httpmock.RegisterResponder(http.MethodPost, apiURL+constants.SaveTokensPath,
				httpmock.NewStringResponder(tt.status, tt.body))

			err := newClient(apiURL, time.Second).SaveTokens(context.Background(), provisioning.SaveTokensRequest{IntegrationID: "int-1"})
			require.Error(t, err)
			assert.Equal(t, provisioning.KindRejected, provisioning.KindOf(err))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestTransportFailure(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(http.MethodPost, apiURL+constants.GenerateLinkPath,
		httpmock.NewErrorResponder(assert.AnError))

	_, err := newClient(apiURL, time.Second).GenerateLink(context.Background(), linkRequest())
	require.Error(t, err)
	assert.Equal(t, provisioning.KindTransport, provisioning.KindOf(err))
	assert.Equal(t, provisioning.MessageTransport, err.Error())
	assert.ErrorIs(t, err, assert.AnError)
	// no retries and no fallback on transport errors
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestMalformedSuccessIsTransport(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>gateway</html>`},
		{"missing webhook", `{"integrationId":"int-1"}`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.Activate()
			defer httpmock.DeactivateAndReset()
			httpmock.RegisterResponder(http.MethodPost, apiURL+constants.GenerateLinkPath,
				httpmock.NewStringResponder(http.StatusOK, tt.body))

			_, err := newClient(apiURL, time.Second).GenerateLink(context.Background(), linkRequest())
			require.Error(t, err)
			assert.Equal(t, provisioning.KindTransport, provisioning.KindOf(err))
		})
	}
}

func TestUnauthorizedAsksForLogin(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(http.MethodPost, apiURL+constants.RegisterBotPath,
		httpmock.NewStringResponder(http.StatusUnauthorized, `{"message":"jwt expired"}`))

	_, err := newClient(apiURL, time.Second).RegisterBot(context.Background(), provisioning.RegisterBotRequest{BotID: constants.TestBotID})
	require.Error(t, err)
	assert.Equal(t, provisioning.KindTransport, provisioning.KindOf(err))
	assert.Contains(t, err.Error(), "botdash login")
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := newClient(srv.URL, 50*time.Millisecond).GenerateLink(context.Background(), linkRequest())
	require.Error(t, err)
	assert.Equal(t, provisioning.KindTimeout, provisioning.KindOf(err))
	assert.Equal(t, provisioning.MessageTimeout, err.Error())
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRegisterBot_DecodesProviderIDs(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(http.MethodPost, apiURL+constants.RegisterBotPath,
		httpmock.NewStringResponder(http.StatusOK, `{"success":true,"botIds":["101","102"]}`))

	res, err := newClient(apiURL, time.Second).RegisterBot(context.Background(), provisioning.RegisterBotRequest{BotID: constants.TestBotID})
	require.NoError(t, err)
	assert.Equal(t, []string{"101", "102"}, res.ProviderBotIDs)
}

func TestKindOf_NonProvisioningError(t *testing.T) {
	assert.Equal(t, provisioning.Kind(""), provisioning.KindOf(assert.AnError))
}
