package docs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schaermu/paihooks/internal/config"
	"github.com/schaermu/paihooks/internal/git"
	"github.com/schaermu/paihooks/internal/hashcache"
)

// Report describes what one updater run did
type Report struct {
	Analysis *Analysis
	Updated  []string // repository-relative paths rewritten (and staged)
	Staged   bool
}

// Updater rewrites documentation for the staged changes of a repository
type Updater struct {
	cfg        config.DocsConfig
	git        git.Client
	classifier *Classifier
	logger     *slog.Logger
	out        console
	dryRun     bool

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewUpdater creates an updater. Progress lines go to out.
func NewUpdater(cfg config.DocsConfig, gitClient git.Client, out io.Writer, logger *slog.Logger, dryRun bool) *Updater {
	return &Updater{
		cfg:        cfg,
		git:        gitClient,
		classifier: NewClassifier(cfg),
		logger:     logger,
		out:        console{w: out},
		dryRun:     dryRun,
		Now:        time.Now,
	}
}

// Run analyzes staged files and updates the affected documentation. File
// level failures are logged and skipped; only failing to talk to git at all
// is returned as an error.
func (u *Updater) Run(ctx context.Context) (*Report, error) {
	u.out.head("📚 Checking for documentation updates...")

	root, err := u.git.TopLevel(ctx)
	if err != nil {
		return nil, err
	}

	staged, err := u.git.StagedFiles(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{Analysis: &Analysis{DocUpdates: map[string]bool{}}}
	if len(staged) == 0 {
		u.out.ok("No staged files to process")
		return report, nil
	}

	analysis := u.classifier.Analyze(staged)
	report.Analysis = analysis
	if len(analysis.ChangedFiles) == 0 {
		u.out.ok("Only documentation files changed, no updates needed")
		return report, nil
	}

	u.out.info("📋 Analyzing %d changed files...", len(analysis.ChangedFiles))
	if len(analysis.Areas) > 0 {
		u.out.info("🔍 Affected areas: %s", strings.Join(analysis.Areas, ", "))
	} else {
		u.out.info("🔍 No documentation areas affected")
	}

	date := u.Now().UTC().Format(DateLayout)

	if analysis.NeedsReadmeUpdate && u.updateReadme(root, analysis, date) {
		report.Updated = append(report.Updated, u.cfg.Readme)
	}

	for _, docFile := range analysis.DocFiles(u.cfg.Areas) {
		if u.updateDoc(root, docFile, date) {
			report.Updated = append(report.Updated, docFile)
		}
	}

	if len(report.Updated) == 0 {
		u.out.ok("No documentation updates required")
		return report, nil
	}

	if u.dryRun {
		u.out.info("[dry-run] would stage: %s", strings.Join(report.Updated, ", "))
		return report, nil
	}

	if err := u.git.Add(ctx, report.Updated...); err != nil {
		u.logger.Error("failed to stage documentation files", "files", report.Updated, "error", err)
		u.out.warn("Error staging files: %v", err)
	} else {
		report.Staged = true
		u.out.info("📝 Staged updated documentation files")
	}

	u.out.ok("Documentation updated successfully")
	u.out.info("   Updated files: %s", strings.Join(report.Updated, ", "))
	return report, nil
}

func (u *Updater) updateReadme(root string, analysis *Analysis, date string) bool {
	return u.rewrite(root, u.cfg.Readme, func(content string) (string, error) {
		updated, ok := RewriteVersionLine(content, ChangeSummary(analysis.Areas), date)
		if !ok {
			return "", errNoVersionLine
		}
		return updated, nil
	})
}

func (u *Updater) updateDoc(root, docFile, date string) bool {
	return u.rewrite(root, docFile, func(content string) (string, error) {
		return StampLastUpdated(content, date), nil
	})
}

var errNoVersionLine = errors.New("no version line found")

// rewrite applies fn to a repository file. It reports whether the file
// content changed and was written.
func (u *Updater) rewrite(root, rel string, fn func(string) (string, error)) bool {
	path := filepath.Join(root, filepath.FromSlash(rel))

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			u.out.warn("%s not found, skipping", rel)
		} else {
			u.logger.Error("failed to read documentation file", "path", rel, "error", err)
			u.out.warn("Error updating %s: %v", rel, err)
		}
		return false
	}

	updated, err := fn(string(data))
	if errors.Is(err, errNoVersionLine) {
		u.out.warn("%s has no version line, skipping", rel)
		return false
	}
	if err != nil {
		u.out.warn("Error updating %s: %v", rel, err)
		return false
	}
	if updated == string(data) {
		u.logger.Debug("documentation already current", "path", rel)
		return false
	}

	if u.dryRun {
		u.out.info("[dry-run] would update %s", rel)
		return true
	}

	if err := hashcache.WriteFileAtomic(path, []byte(updated), 0644); err != nil {
		u.logger.Error("failed to write documentation file", "path", rel, "error", err)
		u.out.warn("Error updating %s: %v", rel, fmt.Errorf("write: %w", err))
		return false
	}

	u.out.ok("Updated %s", rel)
	return true
}
