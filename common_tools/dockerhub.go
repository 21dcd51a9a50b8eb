package common_tools

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Desarso/agentstudio/models"
)

const (
	DockerhubConfigPrefix = "toolcalling.dockerhub"
	DockerhubToolName     = "dockerhub_search"
	DockerhubDescription  = "Search images and tags from dockerhub"
	DockerhubBaseURL      = "https://hub.docker.com/v2"

	dockerhubDefaultPageSize = 10
	dockerhubMaxPageSize     = 100
	dockerhubTagPageSize     = 10
)

func init() {
	RegisterConfiguration(DockerhubConfiguration())
}

// DockerhubConfiguration is the catalog entry for dockerhub_search. It is
// enabled unless toolcalling.dockerhub.enabled is set to something other
// than "true".
func DockerhubConfiguration() ToolConfiguration {
	return ToolConfiguration{
		Prefix:         DockerhubConfigPrefix,
		Name:           DockerhubToolName,
		Description:    DockerhubDescription,
		MatchIfMissing: true,
		Build: func(deps Dependencies, env Environment) (models.FunctionDeclaration, error) {
			props, err := BindDockerhubProperties(env)
			if err != nil {
				return models.FunctionDeclaration{}, err
			}
			if props.Enabled != nil && !*props.Enabled {
				return models.FunctionDeclaration{}, ErrToolDisabled
			}
			var opts []RestClientOption
			if deps.HTTPClient != nil {
				opts = append(opts, WithHTTPClient(deps.HTTPClient))
			}
			svc := NewDockerhubService(NewRestClientTool(deps.JSON, props.CommonProperties, opts...))
			return DockerhubTool(svc), nil
		},
	}
}

type DockerhubProperties struct {
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	CommonProperties
}

// BindDockerhubProperties reads toolcalling.dockerhub.* from env.
func BindDockerhubProperties(env Environment) (DockerhubProperties, error) {
	var props DockerhubProperties
	if v, ok := env.Lookup(DockerhubConfigPrefix + ".enabled"); ok {
		enabled := strings.EqualFold(strings.TrimSpace(v), "true")
		props.Enabled = &enabled
	}
	common, err := env.BindCommonProperties(DockerhubConfigPrefix, CommonProperties{BaseURL: DockerhubBaseURL})
	if err != nil {
		return props, err
	}
	props.CommonProperties = common
	return props, nil
}

// DockerhubRequest is the tool input.
type DockerhubRequest struct {
	Query       string `json:"query"`
	PageSize    int    `json:"page_size,omitempty"`
	IncludeTags bool   `json:"include_tags,omitempty"`
}

type DockerhubResponse struct {
	Query  string           `json:"query"`
	Count  int              `json:"count"`
	Images []DockerhubImage `json:"images"`
}

type DockerhubImage struct {
	Name        string         `json:"name"`
	Namespace   string         `json:"namespace"`
	Repository  string         `json:"repository"`
	Description string         `json:"description,omitempty"`
	Stars       int            `json:"stars"`
	Pulls       int64          `json:"pulls"`
	Official    bool           `json:"official"`
	Tags        []DockerhubTag `json:"tags,omitempty"`
}

type DockerhubTag struct {
	Name        string `json:"name"`
	LastUpdated string `json:"last_updated,omitempty"`
	FullSize    int64  `json:"full_size,omitempty"`
}

// Docker Hub wire types

type hubSearchResponse struct {
	Count   int               `json:"count"`
	Results []hubSearchResult `json:"results"`
}

type hubSearchResult struct {
	RepoName         string `json:"repo_name"`
	ShortDescription string `json:"short_description"`
	StarCount        int    `json:"star_count"`
	PullCount        int64  `json:"pull_count"`
	RepoOwner        string `json:"repo_owner"`
	IsOfficial       bool   `json:"is_official"`
}

type hubTagsResponse struct {
	Count   int         `json:"count"`
	Results []hubTagRef `json:"results"`
}

type hubTagRef struct {
	Name        string `json:"name"`
	LastUpdated string `json:"last_updated"`
	FullSize    int64  `json:"full_size"`
}

type DockerhubService struct {
	client *RestClientTool
}

func NewDockerhubService(client *RestClientTool) *DockerhubService {
	return &DockerhubService{client: client}
}

// Search queries repositories and, when asked, the first page of tags of each hit.
func (s *DockerhubService) Search(ctx context.Context, req DockerhubRequest) (*DockerhubResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = dockerhubDefaultPageSize
	}
	if pageSize > dockerhubMaxPageSize {
		pageSize = dockerhubMaxPageSize
	}

	var search hubSearchResponse
	params := url.Values{}
	params.Set("query", query)
	params.Set("page_size", strconv.Itoa(pageSize))
	if err := s.client.GetJSON(ctx, "/search/repositories/", params, &search); err != nil {
		return nil, fmt.Errorf("dockerhub search: %w", err)
	}

	resp := &DockerhubResponse{Query: query, Count: search.Count, Images: make([]DockerhubImage, 0, len(search.Results))}
	for _, r := range search.Results {
		namespace, repo := splitRepoName(r.RepoName)
		img := DockerhubImage{
			Name:        r.RepoName,
			Namespace:   namespace,
			Repository:  repo,
			Description: r.ShortDescription,
			Stars:       r.StarCount,
			Pulls:       r.PullCount,
			Official:    r.IsOfficial,
		}
		if req.IncludeTags {
			tags, err := s.Tags(ctx, namespace, repo)
			if err != nil {
				return nil, err
			}
			img.Tags = tags
		}
		resp.Images = append(resp.Images, img)
	}
	return resp, nil
}

// Tags lists the most recent tags of namespace/repo.
func (s *DockerhubService) Tags(ctx context.Context, namespace, repo string) ([]DockerhubTag, error) {
	var tags hubTagsResponse
	params := url.Values{}
	params.Set("page_size", strconv.Itoa(dockerhubTagPageSize))
	path := fmt.Sprintf("/repositories/%s/%s/tags", url.PathEscape(namespace), url.PathEscape(repo))
	if err := s.client.GetJSON(ctx, path, params, &tags); err != nil {
		return nil, fmt.Errorf("dockerhub tags for %s/%s: %w", namespace, repo, err)
	}

	out := make([]DockerhubTag, 0, len(tags.Results))
	for _, t := range tags.Results {
		out = append(out, DockerhubTag{Name: t.Name, LastUpdated: t.LastUpdated, FullSize: t.FullSize})
	}
	return out, nil
}

// Callable adapts Search to the tool calling signature.
func (s *DockerhubService) Callable(ctx context.Context, args map[string]any) (string, error) {
	req := DockerhubRequest{}
	if q, ok := args["query"].(string); ok {
		req.Query = q
	}
	switch v := args["page_size"].(type) {
	case float64:
		req.PageSize = int(v)
	case int:
		req.PageSize = v
	}
	if v, ok := args["include_tags"].(bool); ok {
		req.IncludeTags = v
	}

	resp, err := s.Search(ctx, req)
	if err != nil {
		return "", err
	}
	return FormatDockerhubResults(resp), nil
}

// DockerhubTool returns the FunctionDeclaration for svc.
func DockerhubTool(svc *DockerhubService) models.FunctionDeclaration {
	return models.FunctionDeclaration{
		Name:        DockerhubToolName,
		Description: DockerhubDescription,
		Parameters: models.Parameters{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Image name or keywords to search for",
				},
				"page_size": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of images to return (default 10, max 100)",
				},
				"include_tags": map[string]interface{}{
					"type":        "boolean",
					"description": "Also list recent tags for each image",
				},
			},
			Required: []string{"query"},
		},
		Callable: svc.Callable,
	}
}

// splitRepoName maps "nginx" to library/nginx and "bitnami/nginx" to bitnami/nginx.
func splitRepoName(name string) (string, string) {
	if ns, repo, ok := strings.Cut(name, "/"); ok {
		return ns, repo
	}
	return "library", name
}

func FormatDockerhubResults(resp *DockerhubResponse) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Docker Hub results for %q (%d total):\n\n", resp.Query, resp.Count))
	if len(resp.Images) == 0 {
		builder.WriteString("  No images found.\n")
		return builder.String()
	}

	for i, img := range resp.Images {
		builder.WriteString(fmt.Sprintf("%d. %s", i+1, img.Name))
		if img.Official {
			builder.WriteString(" [official]")
		}
		builder.WriteString("\n")
		if img.Description != "" {
			builder.WriteString(fmt.Sprintf("   Description: %s\n", img.Description))
		}
		builder.WriteString(fmt.Sprintf("   Stars: %d  Pulls: %d\n", img.Stars, img.Pulls))
		if len(img.Tags) > 0 {
			names := make([]string, 0, len(img.Tags))
			for _, t := range img.Tags {
				names = append(names, t.Name)
			}
			builder.WriteString(fmt.Sprintf("   Tags: %s\n", strings.Join(names, ", ")))
		}
		builder.WriteString("\n")
	}
	return builder.String()
}
