package docs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGitClient implements git.Client for testing.
type mockGitClient struct {
	root      string
	staged    []string
	stagedErr error
	addErr    error
	added     []string
	addCalled bool
}

func (m *mockGitClient) TopLevel(_ context.Context) (string, error) {
	return m.root, nil
}

func (m *mockGitClient) StagedFiles(_ context.Context) ([]string, error) {
	return m.staged, m.stagedErr
}

func (m *mockGitClient) Add(_ context.Context, paths ...string) error {
	m.addCalled = true
	m.added = append(m.added, paths...)
	return m.addErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

var fixedNow = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

const (
	readmeBefore = "# PAI\n\n**📅 v0.9.2 - Something old (2025-03-01)**\n"
	docBefore    = "# Skills System\n\nHow skills load.\n"
)

// setupRepo writes a README and every area doc file into a temp root.
func setupRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"README.md":                       readmeBefore,
		"documentation/skills-system.md":  docBefore,
		"documentation/command-system.md": "# Commands\n",
		"documentation/hook-system.md":    "# Hooks\n\n---\n<!-- Last Updated: 2025-01-01 -->\n",
		"documentation/agent-system.md":   "# Agents\n",
		"documentation/voice-system.md":   "# Voice\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func readRel(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, rel))
	require.NoError(t, err)
	return string(data)
}

func newTestUpdater(gitClient *mockGitClient, out io.Writer) *Updater {
	u := NewUpdater(defaultDocsConfig(), gitClient, out, testLogger(), false)
	u.Now = func() time.Time { return fixedNow }
	return u
}

func TestRun_SkillsChange(t *testing.T) {
	root := setupRepo(t)
	gitClient := &mockGitClient{root: root, staged: []string{"skills/PAI/SKILL.md"}}

	report, err := newTestUpdater(gitClient, io.Discard).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"README.md", "documentation/skills-system.md"}, report.Updated)
	assert.True(t, report.Staged)
	assert.Equal(t, report.Updated, gitClient.added)

	assert.Equal(t, "# PAI\n\n**📅 v0.9.2 - Updated: skills (2026-10-14)**\n", readRel(t, root, "README.md"))
	assert.Equal(t, "# Skills System\n\nHow skills load.\n\n---\n<!-- Last Updated: 2026-10-14 -->\n",
		readRel(t, root, "documentation/skills-system.md"))

	// Other area docs are untouched
	assert.Equal(t, "# Commands\n", readRel(t, root, "documentation/command-system.md"))
	assert.Equal(t, "# Hooks\n\n---\n<!-- Last Updated: 2025-01-01 -->\n", readRel(t, root, "documentation/hook-system.md"))
}

func TestRun_OnlyDocumentationStaged(t *testing.T) {
	for name, staged := range map[string][]string{
		"documentation": {"documentation/skills-system.md", "documentation/extra.md"},
		"readme":        {"README.md"},
		"self":          {"hooks/update-documentation.ts"},
		"mixed":         {"README.md", "documentation/hook-system.md", "hooks/update-documentation.ts"},
	} {
		t.Run(name, func(t *testing.T) {
			root := setupRepo(t)
			gitClient := &mockGitClient{root: root, staged: staged}

			var out bytes.Buffer
			report, err := newTestUpdater(gitClient, &out).Run(context.Background())
			require.NoError(t, err)

			assert.Empty(t, report.Updated)
			assert.False(t, gitClient.addCalled)
			assert.Equal(t, readmeBefore, readRel(t, root, "README.md"))
			assert.Equal(t, docBefore, readRel(t, root, "documentation/skills-system.md"))
			assert.Contains(t, out.String(), "Only documentation files changed")
		})
	}
}

func TestRun_NothingStaged(t *testing.T) {
	root := setupRepo(t)
	gitClient := &mockGitClient{root: root}

	var out bytes.Buffer
	report, err := newTestUpdater(gitClient, &out).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, report.Updated)
	assert.Contains(t, out.String(), "No staged files to process")
}

func TestRun_UnmappedChangeUpdatesReadmeOnly(t *testing.T) {
	root := setupRepo(t)
	gitClient := &mockGitClient{root: root, staged: []string{"src/index.ts"}}

	report, err := newTestUpdater(gitClient, io.Discard).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"README.md"}, report.Updated)
	assert.Contains(t, readRel(t, root, "README.md"), "Documentation and maintenance updates (2026-10-14)")
}

func TestRun_MultipleAreas(t *testing.T) {
	root := setupRepo(t)
	gitClient := &mockGitClient{root: root, staged: []string{
		"hooks/new-hook.ts", "agents/a.md", "settings.json", "hooks/other.ts",
	}}

	report, err := newTestUpdater(gitClient, io.Discard).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"README.md", "documentation/hook-system.md", "documentation/agent-system.md"}, report.Updated)
	assert.Contains(t, readRel(t, root, "README.md"), "Updated: hooks, agents, settings (2026-10-14)")
	assert.Equal(t, "# Hooks\n\n---\n<!-- Last Updated: 2026-10-14 -->\n", readRel(t, root, "documentation/hook-system.md"))
}

func TestRun_MissingFilesAreSkipped(t *testing.T) {
	root := t.TempDir()
	gitClient := &mockGitClient{root: root, staged: []string{"skills/a.md", "voice-server/x.ts"}}

	var out bytes.Buffer
	report, err := newTestUpdater(gitClient, &out).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, report.Updated)
	assert.False(t, gitClient.addCalled)
	assert.Contains(t, out.String(), "README.md not found, skipping")
	assert.Contains(t, out.String(), "documentation/voice-system.md not found, skipping")
}

func TestRun_ReadmeWithoutVersionLine(t *testing.T) {
	root := setupRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# no version\n"), 0644))
	gitClient := &mockGitClient{root: root, staged: []string{"skills/a.md"}}

	report, err := newTestUpdater(gitClient, io.Discard).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"documentation/skills-system.md"}, report.Updated)
	assert.Equal(t, "# no version\n", readRel(t, root, "README.md"))
}

func TestRun_StageFailureIsReported(t *testing.T) {
	root := setupRepo(t)
	gitClient := &mockGitClient{root: root, staged: []string{"skills/a.md"}, addErr: errors.New("index.lock exists")}

	var out bytes.Buffer
	report, err := newTestUpdater(gitClient, &out).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Staged)
	assert.Len(t, report.Updated, 2)
	assert.Contains(t, out.String(), "Error staging files")
}

func TestRun_StagedFilesError(t *testing.T) {
	gitClient := &mockGitClient{root: t.TempDir(), stagedErr: errors.New("not a git repository")}

	_, err := newTestUpdater(gitClient, io.Discard).Run(context.Background())
	assert.Error(t, err)
}

func TestRun_DryRun(t *testing.T) {
	root := setupRepo(t)
	gitClient := &mockGitClient{root: root, staged: []string{"skills/a.md"}}

	u := newTestUpdater(gitClient, io.Discard)
	u.dryRun = true
	report, err := u.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"README.md", "documentation/skills-system.md"}, report.Updated)
	assert.False(t, gitClient.addCalled)
	assert.Equal(t, readmeBefore, readRel(t, root, "README.md"))
	assert.Equal(t, docBefore, readRel(t, root, "documentation/skills-system.md"))
}

func TestRun_DateFollowsClock(t *testing.T) {
	root := setupRepo(t)
	gitClient := &mockGitClient{root: root, staged: []string{"skills/a.md"}}

	u := newTestUpdater(gitClient, io.Discard)
	today := time.Now()
	u.Now = func() time.Time { return today }
	_, err := u.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, readRel(t, root, "README.md"), "("+today.UTC().Format(DateLayout)+")**")
}
