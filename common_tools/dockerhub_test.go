package common_tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHubServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/search/repositories/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "nginx", r.URL.Query().Get("query"))
		assert.Equal(t, "2", r.URL.Query().Get("page_size"))
		_, _ = w.Write([]byte(`{"count":42,"results":[
			{"repo_name":"nginx","short_description":"Official build of Nginx.","star_count":20000,"pull_count":1000000000,"is_official":true},
			{"repo_name":"bitnami/nginx","short_description":"Bitnami nginx","star_count":200,"pull_count":5000,"is_official":false}
		]}`))
	})
	mux.HandleFunc("/v2/repositories/library/nginx/tags", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count":2,"results":[{"name":"latest","full_size":100},{"name":"1.27"}]}`))
	})
	mux.HandleFunc("/v2/repositories/bitnami/nginx/tags", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count":1,"results":[{"name":"1.27.0-debian-12"}]}`))
	})
	return httptest.NewServer(mux)
}

func TestDockerhubService_Search(t *testing.T) {
	server := newHubServer(t)
	defer server.Close()

	svc := NewDockerhubService(NewRestClientTool(nil, CommonProperties{BaseURL: server.URL + "/v2"}))
	resp, err := svc.Search(context.Background(), DockerhubRequest{Query: " nginx ", PageSize: 2, IncludeTags: true})
	require.NoError(t, err)

	assert.Equal(t, 42, resp.Count)
	require.Len(t, resp.Images, 2)

	official := resp.Images[0]
	assert.Equal(t, "library", official.Namespace)
	assert.Equal(t, "nginx", official.Repository)
	assert.True(t, official.Official)
	require.Len(t, official.Tags, 2)
	assert.Equal(t, "latest", official.Tags[0].Name)

	assert.Equal(t, "bitnami", resp.Images[1].Namespace)
	assert.Equal(t, "1.27.0-debian-12", resp.Images[1].Tags[0].Name)
}

func TestDockerhubService_EmptyQuery(t *testing.T) {
	svc := NewDockerhubService(NewRestClientTool(nil, CommonProperties{BaseURL: "http://unused"}))
	_, err := svc.Search(context.Background(), DockerhubRequest{Query: "  "})
	assert.Error(t, err)
}

func TestDockerhubTool_Callable(t *testing.T) {
	server := newHubServer(t)
	defer server.Close()

	reg := NewToolRegistry(nil)
	_, err := reg.Configure(Environment{"toolcalling.dockerhub.base-url": server.URL + "/v2"}, Dependencies{HTTPClient: server.Client()})
	require.NoError(t, err)

	decl, ok := reg.Get(DockerhubToolName)
	require.True(t, ok)
	assert.Equal(t, []string{"query"}, decl.Parameters.Required)

	out, err := decl.Callable(context.Background(), map[string]any{"query": "nginx", "page_size": float64(2)})
	require.NoError(t, err)
	assert.Contains(t, out, `Docker Hub results for "nginx" (42 total)`)
	assert.Contains(t, out, "1. nginx [official]")
	assert.Contains(t, out, "2. bitnami/nginx")
	assert.NotContains(t, out, "Tags:")
}

func TestFormatDockerhubResults_Empty(t *testing.T) {
	out := FormatDockerhubResults(&DockerhubResponse{Query: "nothing"})
	assert.Contains(t, out, "No images found.")
}
