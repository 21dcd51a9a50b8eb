package common_tools

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/Desarso/agentstudio/models"
)

const (
	BraveSearchConfigPrefix = "toolcalling.bravesearch"
	BraveSearchToolName     = "brave_search"
	BraveSearchDescription  = "Search the web using Brave Search API. Returns titles, URLs, and snippets."
	BraveSearchBaseURL      = "https://api.search.brave.com/res/v1"
	BraveAPIKeyEnv          = "BRAVE_API_KEY"
)

func init() {
	RegisterConfiguration(BraveSearchConfiguration())
}

// BraveSearchConfiguration registers brave_search only when
// toolcalling.bravesearch.enabled is "true"; it needs an API key.
func BraveSearchConfiguration() ToolConfiguration {
	return ToolConfiguration{
		Prefix:      BraveSearchConfigPrefix,
		Name:        BraveSearchToolName,
		Description: BraveSearchDescription,
		Build: func(deps Dependencies, env Environment) (models.FunctionDeclaration, error) {
			props, err := env.BindCommonProperties(BraveSearchConfigPrefix, CommonProperties{BaseURL: BraveSearchBaseURL})
			if err != nil {
				return models.FunctionDeclaration{}, err
			}
			apiKey := props.APIKey
			if apiKey == "" {
				apiKey = os.Getenv(BraveAPIKeyEnv)
			}
			if apiKey == "" {
				return models.FunctionDeclaration{}, fmt.Errorf("%s.api-key or %s must be set", BraveSearchConfigPrefix, BraveAPIKeyEnv)
			}
			// Brave authenticates with its own header, not a bearer token.
			props.APIKey = ""

			opts := []RestClientOption{WithHeader("X-Subscription-Token", apiKey)}
			if deps.HTTPClient != nil {
				opts = append(opts, WithHTTPClient(deps.HTTPClient))
			}
			svc := NewBraveSearchService(NewRestClientTool(deps.JSON, props, opts...))
			return BraveSearchTool(svc), nil
		},
	}
}

type BraveSearchService struct {
	client *RestClientTool
}

func NewBraveSearchService(client *RestClientTool) *BraveSearchService {
	return &BraveSearchService{client: client}
}

// Search returns the formatted web and news results for query.
func (s *BraveSearchService) Search(ctx context.Context, query string, count int) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("query must not be empty")
	}
	params := url.Values{}
	params.Set("q", query)
	if count > 0 {
		params.Set("count", strconv.Itoa(count))
	}

	var result braveResultData
	if err := s.client.GetJSON(ctx, "/web/search", params, &result); err != nil {
		return "", fmt.Errorf("brave search: %w", err)
	}
	return formatBraveResults(result), nil
}

func (s *BraveSearchService) Callable(ctx context.Context, args map[string]any) (string, error) {
	query, _ := args["query"].(string)
	count := 0
	switch v := args["count"].(type) {
	case float64:
		count = int(v)
	case int:
		count = v
	}
	return s.Search(ctx, query, count)
}

// BraveSearchTool returns the FunctionDeclaration for svc.
func BraveSearchTool(svc *BraveSearchService) models.FunctionDeclaration {
	return models.FunctionDeclaration{
		Name:        BraveSearchToolName,
		Description: BraveSearchDescription,
		Parameters: models.Parameters{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query string",
				},
				"count": map[string]interface{}{
					"type":        "integer",
					"description": "Number of web results (max 20)",
				},
			},
			Required: []string{"query"},
		},
		Callable: svc.Callable,
	}
}

// stripStrongTags removes the highlight tags Brave puts in titles and snippets
func stripStrongTags(s string) string {
	s = strings.ReplaceAll(s, "<strong>", "")
	s = strings.ReplaceAll(s, "</strong>", "")
	return s
}

func formatBraveResults(searchResult braveResultData) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Search Query: %s\n\n", searchResult.Query.Original))
	writeBraveSection(&builder, "Web Search Results", "web", searchResult.Web.Results)
	builder.WriteString("\n")
	writeBraveSection(&builder, "News Results", "news", searchResult.News.Results)
	return builder.String()
}

func writeBraveSection(builder *strings.Builder, title, kind string, results []braveResult) {
	builder.WriteString(title + ":\n\n")
	if len(results) == 0 {
		builder.WriteString(fmt.Sprintf("  No %s results found.\n", kind))
		return
	}
	for i, r := range results {
		builder.WriteString(fmt.Sprintf("%d. Title: %s\n", i+1, stripStrongTags(r.Title)))
		builder.WriteString(fmt.Sprintf("   URL: %s\n", r.URL))
		builder.WriteString(fmt.Sprintf("   Description: %s\n", stripStrongTags(r.Description)))

		source := "Unknown"
		if parsed, err := url.Parse(r.URL); err == nil && parsed.Hostname() != "" {
			source = strings.TrimPrefix(parsed.Hostname(), "www.")
		}
		builder.WriteString(fmt.Sprintf("   Source: %s\n\n", source))
	}
}
