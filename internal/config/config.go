package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted when building a Config.
const (
	EnvAPIToken = "PAI_API_TOKEN"
	EnvBaseDir  = "PAI_DIR"
	EnvAPIURL   = "PAIHOOKS_API_URL"
	EnvHome     = "HOME"
)

const (
	DefaultAPIBaseURL   = "https://web-production-3c90d.up.railway.app"
	DefaultAPITimeout   = 30 * time.Second
	DefaultStdinTimeout = 5 * time.Second
	DefaultTitle        = "Processing request..."
)

// Config represents the complete paihooks configuration
type Config struct {
	API       APIConfig    `yaml:"api"`
	Paths     PathsConfig  `yaml:"paths"`
	Documents []Document   `yaml:"documents"`
	Docs      DocsConfig   `yaml:"docs"`
	Prompt    PromptConfig `yaml:"prompt"`
}

// APIConfig configures the remote context API
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`

	// Token is only ever read from the environment.
	Token string `yaml:"-"`
}

// PathsConfig configures local filesystem paths
type PathsConfig struct {
	BaseDir string `yaml:"base_dir"`
}

// Document is a single synced markdown file
type Document struct {
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
	Path     string `yaml:"path"`
}

// DocsConfig configures the pre-commit documentation updater
type DocsConfig struct {
	DocDir   string     `yaml:"doc_dir"`
	Readme   string     `yaml:"readme"`
	SelfPath string     `yaml:"self_path"`
	Areas    []AreaRule `yaml:"areas"`
}

// AreaRule maps staged paths matching any of Patterns to an area and,
// optionally, the documentation file describing it.
type AreaRule struct {
	Area     string   `yaml:"area"`
	Patterns []string `yaml:"patterns"`
	DocFile  string   `yaml:"doc_file"`
}

// PromptConfig configures the prompt-submit hook
type PromptConfig struct {
	ContextFile  string        `yaml:"context_file"`
	StdinTimeout time.Duration `yaml:"stdin_timeout"`
	TitleCommand string        `yaml:"title_command"`
	DefaultTitle string        `yaml:"default_title"`
}

// Getenv looks up an environment variable. os.Getenv satisfies it.
type Getenv func(key string) string

// Load reads the configuration file at path, overlays the environment and
// applies defaults. An empty path, or a missing file when optional is set,
// yields a configuration built from the environment alone.
func Load(path string, optional bool, getenv Getenv) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	var cfg Config

	if path != "" {
		// Expand environment variables in path
		path = os.Expand(path, getenv)

		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case optional && errors.Is(err, os.ErrNotExist):
			// fall through to environment-only config
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg.expandEnv(getenv)
	cfg.applyEnv(getenv)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a configuration from the environment only.
func FromEnv(getenv Getenv) (*Config, error) {
	return Load("", true, getenv)
}

// expandEnv expands environment variables in all string fields
func (c *Config) expandEnv(getenv Getenv) {
	expand := func(s string) string { return os.Expand(s, getenv) }

	c.API.BaseURL = expand(c.API.BaseURL)
	c.Paths.BaseDir = expand(c.Paths.BaseDir)
	for i := range c.Documents {
		c.Documents[i].Path = expand(c.Documents[i].Path)
	}
	c.Prompt.ContextFile = expand(c.Prompt.ContextFile)
	c.Prompt.TitleCommand = expand(c.Prompt.TitleCommand)
}

// applyEnv overlays values that always come from the environment.
func (c *Config) applyEnv(getenv Getenv) {
	c.API.Token = strings.TrimSpace(getenv(EnvAPIToken))

	if u := getenv(EnvAPIURL); u != "" {
		c.API.BaseURL = u
	}

	if dir := getenv(EnvBaseDir); dir != "" {
		c.Paths.BaseDir = dir
	} else if c.Paths.BaseDir == "" {
		if home := getenv(EnvHome); home != "" {
			c.Paths.BaseDir = filepath.Join(home, ".claude")
		}
	}
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultAPIBaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}

	if len(c.Documents) == 0 {
		c.Documents = DefaultDocuments(c.Paths.BaseDir)
	}
	for i, doc := range c.Documents {
		if doc.Path != "" && !filepath.IsAbs(doc.Path) && c.Paths.BaseDir != "" {
			c.Documents[i].Path = filepath.Join(c.Paths.BaseDir, doc.Path)
		}
	}

	if c.Docs.DocDir == "" {
		c.Docs.DocDir = "documentation"
	}
	if c.Docs.Readme == "" {
		c.Docs.Readme = "README.md"
	}
	if c.Docs.SelfPath == "" {
		c.Docs.SelfPath = "hooks/update-documentation.ts"
	}
	if len(c.Docs.Areas) == 0 {
		c.Docs.Areas = DefaultAreas(c.Docs.DocDir)
	}

	if c.Prompt.ContextFile == "" {
		c.Prompt.ContextFile = filepath.Join(c.contextDir(), "MINIMAL.md")
	}
	if c.Prompt.StdinTimeout == 0 {
		c.Prompt.StdinTimeout = DefaultStdinTimeout
	}
	if c.Prompt.TitleCommand == "" {
		c.Prompt.TitleCommand = "bun " + filepath.Join(c.Paths.BaseDir, "hooks", "update-tab-title.ts")
	}
	if c.Prompt.DefaultTitle == "" {
		c.Prompt.DefaultTitle = DefaultTitle
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https: %s", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}

	// The base directory anchors every document and hash record.
	if c.Paths.BaseDir == "" {
		return fmt.Errorf("paths.base_dir is required (set %s or %s)", EnvBaseDir, EnvHome)
	}
	if !filepath.IsAbs(c.Paths.BaseDir) {
		return fmt.Errorf("paths.base_dir must be an absolute path: %s", c.Paths.BaseDir)
	}

	seen := make(map[string]bool, len(c.Documents))
	for i, doc := range c.Documents {
		if doc.Name == "" {
			return fmt.Errorf("documents[%d].name is required", i)
		}
		if strings.ContainsAny(doc.Name, `/\`) {
			return fmt.Errorf("documents[%d].name must not contain path separators: %s", i, doc.Name)
		}
		if seen[doc.Name] {
			return fmt.Errorf("duplicate document name: %s", doc.Name)
		}
		seen[doc.Name] = true
		if !strings.HasPrefix(doc.Endpoint, "/") {
			return fmt.Errorf("documents[%d].endpoint must start with /: %s", i, doc.Endpoint)
		}
		if doc.Path == "" {
			return fmt.Errorf("documents[%d].path is required", i)
		}
	}

	for i, rule := range c.Docs.Areas {
		if rule.Area == "" {
			return fmt.Errorf("docs.areas[%d].area is required", i)
		}
		if len(rule.Patterns) == 0 {
			return fmt.Errorf("docs.areas[%d].patterns must not be empty", i)
		}
		for _, pattern := range rule.Patterns {
			if !doublestar.ValidatePattern(pattern) {
				return fmt.Errorf("docs.areas[%d]: invalid pattern %q", i, pattern)
			}
		}
	}

	if c.Prompt.StdinTimeout < 0 {
		return fmt.Errorf("prompt.stdin_timeout must not be negative")
	}

	return nil
}

// HasToken reports whether an API token is configured
func (c *Config) HasToken() bool {
	return c.API.Token != ""
}

// CacheDir returns the directory holding hash records
func (c *Config) CacheDir() string {
	return filepath.Join(c.Paths.BaseDir, ".cache")
}

func (c *Config) contextDir() string {
	return filepath.Join(c.Paths.BaseDir, "skills", "PAI")
}

// DefaultDocuments returns the five context documents kept in sync with the
// remote API.
func DefaultDocuments(baseDir string) []Document {
	dir := filepath.Join(baseDir, "skills", "PAI")
	return []Document{
		{Name: "SKILL.md", Endpoint: "/api/skill", Path: filepath.Join(dir, "SKILL.md")},
		{Name: "PERSONAL.md", Endpoint: "/api/personal", Path: filepath.Join(dir, "PERSONAL.md")},
		{Name: "CONTACTS.md", Endpoint: "/api/contacts", Path: filepath.Join(dir, "CONTACTS.md")},
		{Name: "TODOS.md", Endpoint: "/api/todos", Path: filepath.Join(dir, "TODOS.md")},
		{Name: "FOLLOW_UPS.md", Endpoint: "/api/followups", Path: filepath.Join(dir, "FOLLOW_UPS.md")},
	}
}

// DefaultAreas returns the built-in path to area mapping. Order matters:
// the first matching rule wins.
func DefaultAreas(docDir string) []AreaRule {
	doc := func(name string) string { return docDir + "/" + name }
	return []AreaRule{
		{Area: "skills", Patterns: []string{"skills/**"}, DocFile: doc("skills-system.md")},
		{Area: "commands", Patterns: []string{"commands/**"}, DocFile: doc("command-system.md")},
		{Area: "hooks", Patterns: []string{"hooks/**"}, DocFile: doc("hook-system.md")},
		{Area: "agents", Patterns: []string{"agents/**"}, DocFile: doc("agent-system.md")},
		{Area: "voice", Patterns: []string{"voice-server/**"}, DocFile: doc("voice-system.md")},
		{Area: "dependencies", Patterns: []string{"package.json", "bun.lockb"}},
		{Area: "mcp-servers", Patterns: []string{".mcp.json"}},
		{Area: "settings", Patterns: []string{"settings.json"}},
	}
}
