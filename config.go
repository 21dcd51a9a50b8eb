package agentstudio

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Desarso/agentstudio/chat"
	"github.com/Desarso/agentstudio/common_tools"
	"github.com/Desarso/agentstudio/models/openai"
	"github.com/Desarso/agentstudio/stores"
)

const (
	DefaultListenAddr = ":8080"
	DefaultSQLitePath = "studio.sqlite"

	// StoreTypeNone keeps memory in process and disables run traces.
	StoreTypeNone = "none"
)

// Config is the studio configuration, usually loaded from a YAML file.
type Config struct {
	Server ServerConfig       `yaml:"server"`
	Store  stores.StoreConfig `yaml:"store"`
	Debug  bool               `yaml:"debug"`
	// ToolCalling holds the tool properties as nested YAML, e.g.
	// toolcalling: {dockerhub: {enabled: true}}.
	ToolCalling map[string]any `yaml:"toolcalling"`
	// AllowedTools restricts which tools the agent may execute. Empty allows all.
	AllowedTools []string       `yaml:"allowed_tools,omitempty"`
	Clients      []ClientConfig `yaml:"clients"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// ClientConfig declares one chat client.
type ClientConfig struct {
	Name         string         `yaml:"name"`
	Provider     string         `yaml:"provider"` // openai, dashscope, openrouter, groq, cerebras, gemini
	Model        string         `yaml:"model"`
	BaseURL      string         `yaml:"base_url,omitempty"`
	APIKeyEnv    string         `yaml:"api_key_env,omitempty"`
	SystemPrompt string         `yaml:"system_prompt,omitempty"`
	SystemParams map[string]any `yaml:"system_params,omitempty"`
	Options      openai.Options `yaml:"options,omitempty"`
	Memory       MemoryConfig   `yaml:"memory,omitempty"`
}

type MemoryConfig struct {
	Enabled bool `yaml:"enabled"`
	Window  int  `yaml:"window,omitempty"`
}

// DefaultConfig returns a config with a local SQLite store and no clients.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{ListenAddr: DefaultListenAddr},
		Store:  *stores.NewStoreConfig("sqlite", DefaultSQLitePath),
	}
}

// LoadConfig reads a YAML config file. A .env file in the working directory,
// when present, is loaded first and ${VAR} references in the file are expanded.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env file")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}
	return ParseConfig(data)
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvRefs replaces ${NAME} with the environment value. Bare $ text is kept.
func expandEnvRefs(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}

// ParseConfig decodes YAML over DefaultConfig.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expandEnvRefs(string(data))), cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Clients))
	for i, client := range c.Clients {
		if strings.TrimSpace(client.Name) == "" {
			return fmt.Errorf("clients[%d]: name is required", i)
		}
		if seen[client.Name] {
			return fmt.Errorf("clients[%d]: duplicate client name %s", i, client.Name)
		}
		seen[client.Name] = true
		if _, ok := providers[strings.ToLower(client.Provider)]; !ok {
			return fmt.Errorf("clients[%d] %s: unknown provider %q", i, client.Name, client.Provider)
		}
	}
	return nil
}

// ToolEnvironment flattens ToolCalling into dotted property keys under "toolcalling".
func (c *Config) ToolEnvironment() common_tools.Environment {
	env := common_tools.Environment{}
	flatten("toolcalling", c.ToolCalling, env)
	return env
}

func flatten(prefix string, value any, out common_tools.Environment) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(prefix+"."+k, v[k], out)
		}
	case nil:
	default:
		out[prefix] = fmt.Sprint(v)
	}
}

// WithListenAddr sets the HTTP listen address
func (c *Config) WithListenAddr(addr string) *Config {
	c.Server.ListenAddr = addr
	return c
}

// WithDebug toggles debug logging
func (c *Config) WithDebug(debug bool) *Config {
	c.Debug = debug
	return c
}

// WithSQLiteStore sets a SQLite store with the specified database path
func (c *Config) WithSQLiteStore(dbPath string) *Config {
	c.Store = *stores.NewStoreConfig("sqlite", dbPath)
	return c
}

// WithPostgresStore sets a PostgreSQL store with the specified connection parameters
func (c *Config) WithPostgresStore(host, user, password, dbname string, port int) *Config {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		host, user, password, dbname, port)
	c.Store = *stores.NewStoreConfig("postgres", dsn)
	return c
}

// WithoutStore keeps conversation memory in process and skips run traces
func (c *Config) WithoutStore() *Config {
	c.Store = *stores.NewStoreConfig(StoreTypeNone, "")
	return c
}

// WithClient appends a chat client declaration
func (c *Config) WithClient(client ClientConfig) *Config {
	c.Clients = append(c.Clients, client)
	return c
}

// WithAllowedTools restricts tool execution to the named tools
func (c *Config) WithAllowedTools(names ...string) *Config {
	c.AllowedTools = append(c.AllowedTools, names...)
	return c
}

// WithToolProperty sets one tool property, e.g. ("dockerhub.enabled", "false")
func (c *Config) WithToolProperty(key, value string) *Config {
	if c.ToolCalling == nil {
		c.ToolCalling = make(map[string]any)
	}
	parts := strings.Split(key, ".")
	node := c.ToolCalling
	for _, p := range parts[:len(parts)-1] {
		child, ok := node[p].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[p] = child
		}
		node = child
	}
	node[parts[len(parts)-1]] = value
	return c
}

// portableOptions is the part of the client options every provider understands.
func (cc ClientConfig) portableOptions() chat.Options {
	opts := cc.Options.Options.Clone()
	if opts.Model == "" {
		opts.Model = cc.Model
	}
	return opts
}
