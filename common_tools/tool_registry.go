package common_tools

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	applog "github.com/Desarso/agentstudio/logger"
	"github.com/Desarso/agentstudio/models"
)

// Environment is the flat property view tools are configured from,
// e.g. "toolcalling.dockerhub.enabled" -> "true".
type Environment map[string]string

func (e Environment) Lookup(key string) (string, bool) {
	v, ok := e[key]
	return v, ok
}

// Properties returns the keys under prefix with the prefix stripped.
func (e Environment) Properties(prefix string) map[string]string {
	out := make(map[string]string)
	p := prefix + "."
	for k, v := range e {
		if strings.HasPrefix(k, p) {
			out[strings.TrimPrefix(k, p)] = v
		}
	}
	return out
}

// BindCommonProperties reads base-url, api-key, network-timeout and
// requests-per-second under prefix. Snake case keys are accepted too.
func (e Environment) BindCommonProperties(prefix string, defaults CommonProperties) (CommonProperties, error) {
	props := defaults
	values := e.Properties(prefix)
	get := func(name string) (string, bool) {
		if v, ok := values[name]; ok {
			return v, true
		}
		v, ok := values[strings.ReplaceAll(name, "-", "_")]
		return v, ok
	}

	if v, ok := get("base-url"); ok && v != "" {
		props.BaseURL = v
	}
	if v, ok := get("api-key"); ok {
		props.APIKey = v
	}
	if v, ok := get("network-timeout"); ok && v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return props, fmt.Errorf("%s.network-timeout: %w", prefix, err)
		}
		props.NetworkTimeout = d
	}
	if v, ok := get("requests-per-second"); ok && v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return props, fmt.Errorf("%s.requests-per-second: %w", prefix, err)
		}
		props.RequestsPerSecond = rps
	}
	return props, nil
}

// parseTimeout accepts Go durations ("5s") or a bare number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// Dependencies are the shared components a tool configuration may build on.
type Dependencies struct {
	JSON       *JsonParseTool
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func (d Dependencies) withDefaults() Dependencies {
	if d.JSON == nil {
		d.JSON = NewJsonParseTool()
	}
	d.Logger = applog.OrNop(d.Logger)
	return d
}

// ErrToolDisabled is returned by a Build function whose bound properties
// switch the tool off. Configure skips the tool.
var ErrToolDisabled = errors.New("tool disabled by configuration")

// ToolConfiguration describes a tool that is registered only when its
// conditions hold.
type ToolConfiguration struct {
	Prefix      string
	Name        string
	Description string
	// MatchIfMissing enables the tool when <Prefix>.enabled is absent.
	MatchIfMissing bool
	Build          func(deps Dependencies, env Environment) (models.FunctionDeclaration, error)
}

var catalog = struct {
	sync.RWMutex
	entries map[string]ToolConfiguration
}{entries: make(map[string]ToolConfiguration)}

// RegisterConfiguration adds cfg to the package catalog. It panics on a
// duplicate or incomplete entry, the way init-time registries do.
func RegisterConfiguration(cfg ToolConfiguration) {
	if cfg.Name == "" || cfg.Build == nil {
		panic("common_tools: tool configuration needs a name and a build function")
	}
	catalog.Lock()
	defer catalog.Unlock()
	if _, dup := catalog.entries[cfg.Name]; dup {
		panic("common_tools: RegisterConfiguration called twice for " + cfg.Name)
	}
	catalog.entries[cfg.Name] = cfg
}

// Configurations returns the catalog sorted by tool name.
func Configurations() []ToolConfiguration {
	catalog.RLock()
	defer catalog.RUnlock()
	out := make([]ToolConfiguration, 0, len(catalog.entries))
	for _, cfg := range catalog.entries {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ToolRegistry holds the live tools by name.
type ToolRegistry struct {
	mu     sync.RWMutex
	tools  map[string]models.FunctionDeclaration
	logger *zap.Logger
}

func NewToolRegistry(logger *zap.Logger) *ToolRegistry {
	logger = applog.OrNop(logger)
	return &ToolRegistry{
		tools:  make(map[string]models.FunctionDeclaration),
		logger: logger,
	}
}

func (r *ToolRegistry) Register(decl models.FunctionDeclaration) error {
	if decl.Name == "" {
		return fmt.Errorf("tool name must not be empty")
	}
	if decl.Callable == nil {
		return fmt.Errorf("tool %s has no callable", decl.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[decl.Name]; exists {
		return fmt.Errorf("tool %s already registered", decl.Name)
	}
	r.tools[decl.Name] = decl
	return nil
}

func (r *ToolRegistry) Get(name string) (models.FunctionDeclaration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	decl, ok := r.tools[name]
	return decl, ok
}

func (r *ToolRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Declarations returns the registered tools sorted by name.
func (r *ToolRegistry) Declarations() []models.FunctionDeclaration {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.FunctionDeclaration, 0, len(names))
	for _, name := range names {
		out = append(out, r.tools[name])
	}
	return out
}

// Configure builds and registers every catalog tool whose conditions hold
// and returns the names it registered.
func (r *ToolRegistry) Configure(env Environment, deps Dependencies) ([]string, error) {
	return r.apply(Configurations(), env, deps)
}

func (r *ToolRegistry) apply(configs []ToolConfiguration, env Environment, deps Dependencies) ([]string, error) {
	deps = deps.withDefaults()
	var registered []string

	for _, cfg := range configs {
		if !cfg.enabled(env) {
			r.logger.Debug("tool disabled by property", zap.String("tool", cfg.Name), zap.String("prefix", cfg.Prefix))
			continue
		}
		if _, exists := r.Get(cfg.Name); exists {
			r.logger.Debug("tool already registered, keeping existing", zap.String("tool", cfg.Name))
			continue
		}

		decl, err := cfg.Build(deps, env)
		if errors.Is(err, ErrToolDisabled) {
			r.logger.Debug("tool disabled by its properties", zap.String("tool", cfg.Name))
			continue
		}
		if err != nil {
			return registered, fmt.Errorf("build tool %s: %w", cfg.Name, err)
		}
		decl.Name = cfg.Name
		if decl.Description == "" {
			decl.Description = cfg.Description
		}
		if err := r.Register(decl); err != nil {
			return registered, err
		}
		r.logger.Info("tool registered", zap.String("tool", cfg.Name))
		registered = append(registered, cfg.Name)
	}
	return registered, nil
}

func (c ToolConfiguration) enabled(env Environment) bool {
	v, ok := env.Lookup(c.Prefix + ".enabled")
	if !ok {
		return c.MatchIfMissing
	}
	return strings.EqualFold(strings.TrimSpace(v), "true")
}
