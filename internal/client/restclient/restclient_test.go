package restclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botdash/botdash-cli/internal/client/restclient"
	"github.com/botdash/botdash-cli/internal/constants"
	"github.com/botdash/botdash-cli/internal/credentials"
	"github.com/botdash/botdash-cli/internal/environments"
	"github.com/botdash/botdash-cli/internal/testutil"
)

func apiKeyCreds() *credentials.Credentials {
	return &credentials.Credentials{AuthType: credentials.AuthTypeApiKey, APIKey: "test-api-key-0123456789"}
}

func TestPostJSON_SendsHeadersAndBody(t *testing.T) {
	var gotHeaders http.Header
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/things", r.URL.Path)
		gotHeaders = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := restclient.New(apiKeyCreds(), &environments.EnvironmentSet{APIURL: srv.URL + "/"}, testutil.NewTestLogger())
	resp, err := c.PostJSON(context.Background(), "/things", map[string]string{"name": "x"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, resp.OK())
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, map[string]string{"name": "x"}, gotBody)

	assert.Equal(t, "Apikey test-api-key-0123456789", gotHeaders.Get("Authorization"))
	assert.Equal(t, constants.UserAgent, gotHeaders.Get("User-Agent"))
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	_, err = uuid.Parse(gotHeaders.Get("Idempotency-Key"))
	assert.NoError(t, err)
}

func TestPostJSON_NonSuccessIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"nope"}`))
	}))
	defer srv.Close()

	c := restclient.New(apiKeyCreds(), &environments.EnvironmentSet{APIURL: srv.URL}, testutil.NewTestLogger())
	resp, err := c.PostJSON(context.Background(), "/x", struct{}{})
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPostJSON_BodyIsCapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	c := restclient.New(apiKeyCreds(), &environments.EnvironmentSet{APIURL: srv.URL}, testutil.NewTestLogger(), restclient.WithMaxBodySize(4))
	resp, err := c.PostJSON(context.Background(), "/x", nil)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(resp.Body))
}

func TestPostJSON_TransportFailure(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, "https://api.test/x",
		httpmock.NewErrorResponder(assert.AnError))

	c := restclient.New(apiKeyCreds(), &environments.EnvironmentSet{APIURL: "https://api.test"}, testutil.NewTestLogger())
	_, err := c.PostJSON(context.Background(), "/x", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestHeaderTransport_RequiresCredentials(t *testing.T) {
	c := restclient.New(nil, &environments.EnvironmentSet{APIURL: "https://api.test"}, testutil.NewTestLogger())
	_, err := c.PostJSON(context.Background(), "/x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials not provided")
}

func TestHeaderTransport_ExtraHeaders(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Botdash-Workspace")
	}))
	defer srv.Close()

	hc := &http.Client{Transport: restclient.NewHeaderTransport(apiKeyCreds(), nil).WithHeader("X-Botdash-Workspace", "ws-1")}
	c := restclient.New(apiKeyCreds(), &environments.EnvironmentSet{APIURL: srv.URL}, testutil.NewTestLogger(), restclient.WithHTTPClient(hc))
	_, err := c.PostJSON(context.Background(), "/x", nil)
	require.NoError(t, err)
	assert.Equal(t, "ws-1", got)
}

func TestAuthorizationHeader(t *testing.T) {
	tests := []struct {
		name  string
		creds *credentials.Credentials
		want  string
	}{
		{"nil", nil, ""},
		{"api key", apiKeyCreds(), "Apikey test-api-key-0123456789"},
		{"bearer", &credentials.Credentials{AuthType: credentials.AuthTypeBearer, AccessToken: "tok"}, "Bearer tok"},
		{"empty bearer", &credentials.Credentials{AuthType: credentials.AuthTypeBearer}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, restclient.AuthorizationHeader(tt.creds))
		})
	}
}
