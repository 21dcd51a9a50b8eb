package common_tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const DefaultNetworkTimeout = 10 * time.Second

// CommonProperties are the settings every HTTP-backed tool accepts under its prefix.
type CommonProperties struct {
	BaseURL           string        `json:"base_url" yaml:"base_url"`
	APIKey            string        `json:"-" yaml:"api_key"`
	NetworkTimeout    time.Duration `json:"network_timeout" yaml:"network_timeout"`
	RequestsPerSecond float64       `json:"requests_per_second" yaml:"requests_per_second"`
}

// RestClientTool performs JSON GET requests against one base URL.
type RestClientTool struct {
	json    *JsonParseTool
	props   CommonProperties
	client  *http.Client
	limiter *rate.Limiter
	headers http.Header
}

type RestClientOption func(*RestClientTool)

// WithHTTPClient replaces the default client; the network timeout is then the caller's concern.
func WithHTTPClient(client *http.Client) RestClientOption {
	return func(r *RestClientTool) { r.client = client }
}

func WithHeader(key, value string) RestClientOption {
	return func(r *RestClientTool) { r.headers.Set(key, value) }
}

func NewRestClientTool(jsonTool *JsonParseTool, props CommonProperties, opts ...RestClientOption) *RestClientTool {
	if jsonTool == nil {
		jsonTool = NewJsonParseTool()
	}
	timeout := props.NetworkTimeout
	if timeout <= 0 {
		timeout = DefaultNetworkTimeout
	}

	r := &RestClientTool{
		json:    jsonTool,
		props:   props,
		client:  &http.Client{Timeout: timeout},
		headers: http.Header{},
	}
	r.headers.Set("Accept", "application/json")
	r.headers.Set("User-Agent", "agentstudio-tools")
	if props.APIKey != "" {
		r.headers.Set("Authorization", "Bearer "+props.APIKey)
	}
	if props.RequestsPerSecond > 0 {
		burst := int(props.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(props.RequestsPerSecond), burst)
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the raw body of a 2xx response.
func (r *RestClientTool) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	endpoint := strings.TrimRight(r.props.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	for k, v := range r.headers {
		req.Header[k] = append([]string(nil), v...)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request to %s: %w", r.props.BaseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("request to %s failed with status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// GetJSON decodes a 2xx response body into out.
func (r *RestClientTool) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := r.Get(ctx, path, query)
	if err != nil {
		return err
	}
	return r.json.FromJSON(body, out)
}
