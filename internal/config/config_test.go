package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) Getenv {
	return func(key string) string { return m[key] }
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: "https://context.example.com/"
  timeout: 10s

paths:
  base_dir: "/home/user/.claude"

documents:
  - name: "NOTES.md"
    endpoint: "/api/notes"
    path: "notes/NOTES.md"

docs:
  readme: "README.md"
  areas:
    - area: "plugins"
      patterns: ["plugins/**"]
      doc_file: "documentation/plugins.md"

prompt:
  stdin_timeout: 2s
  title_command: "my-titler --fast"
`)

	cfg, err := Load(path, false, envMap(map[string]string{EnvAPIToken: " secret \n"}))
	require.NoError(t, err)

	assert.Equal(t, "https://context.example.com", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, "secret", cfg.API.Token)
	assert.True(t, cfg.HasToken())

	require.Len(t, cfg.Documents, 1)
	assert.Equal(t, "/home/user/.claude/notes/NOTES.md", cfg.Documents[0].Path)

	require.Len(t, cfg.Docs.Areas, 1)
	assert.Equal(t, "plugins", cfg.Docs.Areas[0].Area)
	assert.Equal(t, "documentation", cfg.Docs.DocDir)
	assert.Equal(t, "hooks/update-documentation.ts", cfg.Docs.SelfPath)

	assert.Equal(t, 2*time.Second, cfg.Prompt.StdinTimeout)
	assert.Equal(t, "my-titler --fast", cfg.Prompt.TitleCommand)
	assert.Equal(t, "/home/user/.claude/skills/PAI/MINIMAL.md", cfg.Prompt.ContextFile)
	assert.Equal(t, DefaultTitle, cfg.Prompt.DefaultTitle)
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		EnvBaseDir:  "/srv/pai",
		EnvAPIToken: "tok",
	}))
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIBaseURL, cfg.API.BaseURL)
	assert.Equal(t, DefaultAPITimeout, cfg.API.Timeout)
	assert.Equal(t, "/srv/pai/.cache", cfg.CacheDir())
	assert.Equal(t, DefaultStdinTimeout, cfg.Prompt.StdinTimeout)
	assert.Equal(t, "bun /srv/pai/hooks/update-tab-title.ts", cfg.Prompt.TitleCommand)

	names := make([]string, 0, len(cfg.Documents))
	for _, doc := range cfg.Documents {
		names = append(names, doc.Name)
		assert.Equal(t, "/srv/pai/skills/PAI/"+doc.Name, doc.Path)
	}
	assert.Equal(t, []string{"SKILL.md", "PERSONAL.md", "CONTACTS.md", "TODOS.md", "FOLLOW_UPS.md"}, names)
	assert.Len(t, cfg.Docs.Areas, 8)
}

func TestFromEnv_HomeFallback(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{EnvHome: "/home/alex"}))
	require.NoError(t, err)

	assert.Equal(t, "/home/alex/.claude", cfg.Paths.BaseDir)
	assert.False(t, cfg.HasToken())
}

func TestFromEnv_BaseDirWinsOverFile(t *testing.T) {
	path := writeConfig(t, "paths:\n  base_dir: /from/file\n")

	cfg, err := Load(path, false, envMap(map[string]string{EnvBaseDir: "/from/env", EnvHome: "/home/x"}))
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Paths.BaseDir)

	cfg, err = Load(path, false, envMap(map[string]string{EnvHome: "/home/x"}))
	require.NoError(t, err)
	assert.Equal(t, "/from/file", cfg.Paths.BaseDir)
}

func TestLoad_ExpandsFromInjectedEnv(t *testing.T) {
	path := writeConfig(t, `
paths:
  base_dir: "${PAIHOOKS_TEST_ROOT}/pai"
prompt:
  title_command: "$PAIHOOKS_TEST_TITLER --fast"
`)
	t.Setenv("PAIHOOKS_TEST_ROOT", "/from/process")

	cfg, err := Load(path, false, envMap(map[string]string{
		"PAIHOOKS_TEST_ROOT":   "/from/lookup",
		"PAIHOOKS_TEST_TITLER": "titler",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/from/lookup/pai", cfg.Paths.BaseDir)
	assert.Equal(t, "titler --fast", cfg.Prompt.TitleCommand)
}

func TestFromEnv_APIURLOverride(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{EnvBaseDir: "/srv/pai", EnvAPIURL: "http://127.0.0.1:9000/"}))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.API.BaseURL)
}

func TestLoad_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")
	env := envMap(map[string]string{EnvBaseDir: "/srv/pai"})

	_, err := Load(missing, false, env)
	assert.Error(t, err)

	cfg, err := Load(missing, true, env)
	require.NoError(t, err)
	assert.Equal(t, "/srv/pai", cfg.Paths.BaseDir)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "api: [unterminated\n")
	_, err := Load(path, false, envMap(map[string]string{EnvBaseDir: "/srv/pai"}))
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{
			API:   APIConfig{BaseURL: "https://api.example.com", Timeout: time.Second},
			Paths: PathsConfig{BaseDir: "/srv/pai"},
		}
		cfg.Documents = DefaultDocuments(cfg.Paths.BaseDir)
		cfg.Docs.Areas = DefaultAreas("documentation")
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad scheme", mutate: func(c *Config) { c.API.BaseURL = "ftp://x" }, wantErr: true},
		{name: "missing base dir", mutate: func(c *Config) { c.Paths.BaseDir = "" }, wantErr: true},
		{name: "relative base dir", mutate: func(c *Config) { c.Paths.BaseDir = "rel/dir" }, wantErr: true},
		{name: "duplicate document", mutate: func(c *Config) { c.Documents = append(c.Documents, c.Documents[0]) }, wantErr: true},
		{name: "document name with slash", mutate: func(c *Config) { c.Documents[0].Name = "a/b" }, wantErr: true},
		{name: "endpoint without slash", mutate: func(c *Config) { c.Documents[0].Endpoint = "api/skill" }, wantErr: true},
		{name: "area without patterns", mutate: func(c *Config) { c.Docs.Areas[0].Patterns = nil }, wantErr: true},
		{name: "invalid area pattern", mutate: func(c *Config) { c.Docs.Areas[0].Patterns = []string{"skills/[a"} }, wantErr: true},
		{name: "negative stdin timeout", mutate: func(c *Config) { c.Prompt.StdinTimeout = -time.Second }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
