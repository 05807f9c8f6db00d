package git

import (
	"context"
	"os/exec"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schaermu/paihooks/internal/testutil"
)

// initRepo creates a repository with one committed file.
func initRepo(t *testing.T) string {
	t.Helper()
	return testutil.InitGitRepo(t, map[string]string{
		"README.md":     "# readme\n",
		"skills/old.md": "old\n",
	})
}

func run(t *testing.T, dir string, args ...string) string {
	t.Helper()
	return testutil.Git(t, dir, args...)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	testutil.WriteFile(t, dir, name, content)
}

func TestStagedFiles(t *testing.T) {
	ctx := context.Background()
	dir := initRepo(t)

	writeFile(t, dir, "skills/new skill.md", "new\n")
	writeFile(t, dir, "hooks/hook.ts", "hook\n")
	writeFile(t, dir, "unstaged.txt", "not staged\n")
	run(t, dir, "add", "skills/new skill.md", "hooks/hook.ts")
	run(t, dir, "rm", "-q", "skills/old.md")

	files, err := NewShellClient(dir).StagedFiles(ctx)
	require.NoError(t, err)

	sort.Strings(files)
	assert.Equal(t, []string{"hooks/hook.ts", "skills/new skill.md"}, files, "deletions and unstaged files are excluded")
}

func TestStagedFiles_NothingStaged(t *testing.T) {
	dir := initRepo(t)

	files, err := NewShellClient(dir).StagedFiles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestStagedFiles_NotARepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	_, err := NewShellClient(t.TempDir()).StagedFiles(context.Background())
	assert.Error(t, err)
}

func TestAdd(t *testing.T) {
	ctx := context.Background()
	dir := initRepo(t)
	client := NewShellClient(dir)

	writeFile(t, dir, "README.md", "# changed\n")
	writeFile(t, dir, "documentation/-odd.md", "odd name\n")
	require.NoError(t, client.Add(ctx, "README.md", "documentation/-odd.md"))

	files, err := client.StagedFiles(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"README.md", "documentation/-odd.md"}, files)

	assert.NoError(t, client.Add(ctx), "no paths is a no-op")
}

func TestTopLevel(t *testing.T) {
	dir := initRepo(t)
	sub := filepath.Join(dir, "skills")

	top, err := NewShellClient(sub).TopLevel(context.Background())
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(top)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestInsertGitFlags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		flags []string
		want  []string
	}{
		{
			name:  "insert before subcommand",
			args:  []string{"git", "diff", "--cached"},
			flags: []string{"-C", "/repo"},
			want:  []string{"git", "-C", "/repo", "diff", "--cached"},
		},
		{
			name:  "empty args",
			args:  []string{},
			flags: []string{"-C", "/repo"},
			want:  []string{"-C", "/repo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, insertGitFlags(tt.args, tt.flags...))
		})
	}
}
