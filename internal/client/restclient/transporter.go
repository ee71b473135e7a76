package restclient

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/botdash/botdash-cli/internal/constants"
	"github.com/botdash/botdash-cli/internal/credentials"
)

var errNoCredentials = errors.New("credentials not provided")

// HeaderTransport attaches authentication and request identity headers to
// every outgoing request. It is shared by the REST and GraphQL clients.
type HeaderTransport struct {
	base         http.RoundTripper
	credentials  *credentials.Credentials
	extraHeaders http.Header
}

// NewHeaderTransport wraps base. A nil base resolves to http.DefaultTransport
// at request time.
func NewHeaderTransport(creds *credentials.Credentials, base http.RoundTripper) *HeaderTransport {
	return &HeaderTransport{
		base:         base,
		credentials:  creds,
		extraHeaders: make(http.Header),
	}
}

// WithHeader adds a header that is set on every request.
func (t *HeaderTransport) WithHeader(key, value string) *HeaderTransport {
	t.extraHeaders.Set(key, value)
	return t
}

func (t *HeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.credentials == nil {
		return nil, errNoCredentials
	}

	clone := req.Clone(req.Context())
	t.injectHeaders(clone)

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

func (t *HeaderTransport) injectHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", uuid.New().String())
	req.Header.Set("User-Agent", constants.UserAgent)

	if auth := AuthorizationHeader(t.credentials); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	for k, vs := range t.extraHeaders {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
}

// AuthorizationHeader renders the Authorization value for the stored credentials.
func AuthorizationHeader(creds *credentials.Credentials) string {
	if creds == nil {
		return ""
	}
	switch creds.AuthType {
	case credentials.AuthTypeApiKey:
		if creds.APIKey != "" {
			return "Apikey " + creds.APIKey
		}
	default:
		if creds.AccessToken != "" {
			return "Bearer " + creds.AccessToken
		}
	}
	return ""
}
