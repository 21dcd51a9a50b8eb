package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrEmptyUserText  = errors.New("user text must not be empty")
	ErrNoModel        = errors.New("chat client has no model")
	ErrNotInitialized = errors.New("chat client has no default request")
)

// Client starts chat requests.
type Client interface {
	Prompt() *RequestSpec
}

// Introspectable is implemented by clients that can report their default request.
type Introspectable interface {
	Snapshot() (RequestSnapshot, error)
}

// RequestSnapshot is a copy of a client's default request settings.
type RequestSnapshot struct {
	SystemText   string
	SystemParams map[string]any
	ChatOptions  Options
	Advisors     []Advisor
	ChatModel    Model
}

// DefaultClient is the standard Client: a model plus default request settings.
type DefaultClient struct {
	defaults *RequestSpec
}

// ClientOption configures a DefaultClient.
type ClientOption func(*RequestSpec)

func WithDefaultSystem(text string) ClientOption {
	return func(s *RequestSpec) { s.systemText = text }
}

func WithDefaultSystemParams(params map[string]any) ClientOption {
	return func(s *RequestSpec) {
		for k, v := range params {
			s.systemParams[k] = v
		}
	}
}

func WithDefaultOptions(options Options) ClientOption {
	return func(s *RequestSpec) { s.options = options.Clone() }
}

func WithDefaultAdvisors(advisors ...Advisor) ClientOption {
	return func(s *RequestSpec) { s.advisors = append(s.advisors, advisors...) }
}

// NewClient creates a DefaultClient over model.
func NewClient(model Model, opts ...ClientOption) *DefaultClient {
	defaults := newRequestSpec(model)
	for _, opt := range opts {
		opt(defaults)
	}
	return &DefaultClient{defaults: defaults}
}

// Prompt starts a request seeded with the client defaults.
func (c *DefaultClient) Prompt() *RequestSpec {
	if c.defaults == nil {
		return newRequestSpec(nil)
	}
	return c.defaults.clone()
}

// Snapshot returns a copy of the default request.
func (c *DefaultClient) Snapshot() (RequestSnapshot, error) {
	if c == nil || c.defaults == nil {
		return RequestSnapshot{}, ErrNotInitialized
	}
	d := c.defaults.clone()
	return RequestSnapshot{
		SystemText:   d.systemText,
		SystemParams: d.systemParams,
		ChatOptions:  d.options,
		Advisors:     d.advisors,
		ChatModel:    d.model,
	}, nil
}

// RequestSpec is a single chat request under construction.
type RequestSpec struct {
	model        Model
	systemText   string
	systemParams map[string]any
	options      Options
	advisors     []Advisor
	params       map[string]any
	userText     string
}

func newRequestSpec(model Model) *RequestSpec {
	return &RequestSpec{
		model:        model,
		systemParams: make(map[string]any),
		params:       make(map[string]any),
	}
}

func (s *RequestSpec) clone() *RequestSpec {
	c := &RequestSpec{
		model:        s.model,
		systemText:   s.systemText,
		systemParams: make(map[string]any, len(s.systemParams)),
		options:      s.options.Clone(),
		advisors:     append([]Advisor(nil), s.advisors...),
		params:       make(map[string]any, len(s.params)),
		userText:     s.userText,
	}
	for k, v := range s.systemParams {
		c.systemParams[k] = v
	}
	for k, v := range s.params {
		c.params[k] = v
	}
	return c
}

func (s *RequestSpec) System(text string) *RequestSpec {
	s.systemText = text
	return s
}

func (s *RequestSpec) SystemParams(params map[string]any) *RequestSpec {
	for k, v := range params {
		s.systemParams[k] = v
	}
	return s
}

// Options overrides the default options field by field.
func (s *RequestSpec) Options(options *Options) *RequestSpec {
	s.options = s.options.Merge(options)
	return s
}

func (s *RequestSpec) Advisors(advisors ...Advisor) *RequestSpec {
	s.advisors = append(s.advisors, advisors...)
	return s
}

func (s *RequestSpec) AdvisorParam(key string, value any) *RequestSpec {
	s.params[key] = value
	return s
}

func (s *RequestSpec) User(text string) *RequestSpec {
	s.userText = text
	return s
}

// Call runs the advisor chain and the model.
func (s *RequestSpec) Call(ctx context.Context) (*Response, error) {
	if strings.TrimSpace(s.userText) == "" {
		return nil, ErrEmptyUserText
	}
	if s.model == nil {
		return nil, ErrNoModel
	}

	req := &AdvisedRequest{
		SystemText: RenderSystemText(s.systemText, s.systemParams),
		UserText:   s.userText,
		Options:    s.model.DefaultOptions().Merge(&s.options),
		Params:     s.params,
	}

	model := s.model
	call := chainAdvisors(s.advisors, func(ctx context.Context, req *AdvisedRequest) (*Response, error) {
		resp, err := model.Call(ctx, req.Prompt())
		if err != nil {
			return nil, fmt.Errorf("model call: %w", err)
		}
		return resp, nil
	})
	return call(ctx, req)
}

// RenderSystemText replaces {key} placeholders with params. Unknown placeholders are kept.
func RenderSystemText(text string, params map[string]any) string {
	if text == "" || len(params) == 0 {
		return text
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(params[k]))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
