package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/botdash/botdash-cli/internal/environments"
)

// GraphQLMock answers GraphQL POSTs by matching the query text against the
// keys of Responses; the first key contained in the query wins.
type GraphQLMock struct {
	Server    *httptest.Server
	Responses map[string]any
	Calls     atomic.Int32
	LastAuth  atomic.Value
}

// NewGraphQLMockServer starts a mock GraphQL endpoint and points
// BOTDASH_GRAPHQL_URL at it. The server is closed on test cleanup.
func NewGraphQLMockServer(t *testing.T, responses map[string]any) *GraphQLMock {
	t.Helper()
	m := &GraphQLMock{Responses: responses}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.Calls.Add(1)
		m.LastAuth.Store(r.Header.Get("Authorization"))

		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")

		for key, data := range m.Responses {
			if strings.Contains(req.Query, key) {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"data": map[string]any{key: data},
				})
				return
			}
		}
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]string{{"message": "Unsupported GraphQL query"}},
		})
	}))
	t.Cleanup(m.Server.Close)
	t.Setenv(environments.EnvVarGraphQLURL, m.Server.URL+"/graphql")
	return m
}

// Authorization returns the Authorization header of the most recent request.
func (m *GraphQLMock) Authorization() string {
	v, _ := m.LastAuth.Load().(string)
	return v
}
