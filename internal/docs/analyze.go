// Package docs keeps the repository documentation in step with the code it
// describes. It runs as a pre-commit step: staged paths are classified into
// areas, the documentation file of every touched area gets a fresh
// "Last Updated" marker, and the README version line is re-dated.
package docs

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/lo"

	"github.com/schaermu/paihooks/internal/config"
)

// Analysis is the result of classifying one set of staged files
type Analysis struct {
	ChangedFiles      []string
	Areas             []string        // affected areas in first-seen order
	DocUpdates        map[string]bool // doc file -> needs update
	NeedsReadmeUpdate bool
}

// Classifier maps staged paths to areas
type Classifier struct {
	rules    []config.AreaRule
	docDir   string
	readme   string
	selfPath string
}

// NewClassifier creates a classifier from the docs configuration
func NewClassifier(cfg config.DocsConfig) *Classifier {
	return &Classifier{
		rules:    cfg.Areas,
		docDir:   strings.TrimSuffix(cfg.DocDir, "/") + "/",
		readme:   cfg.Readme,
		selfPath: cfg.SelfPath,
	}
}

// IsExcluded reports whether a staged path must never trigger a rewrite:
// documentation, the README and the updater itself. Rewriting in response
// to those would loop.
func (c *Classifier) IsExcluded(path string) bool {
	return strings.HasPrefix(path, c.docDir) ||
		path == c.readme ||
		(c.selfPath != "" && strings.HasPrefix(path, c.selfPath))
}

// Relevant drops excluded paths
func (c *Classifier) Relevant(files []string) []string {
	return lo.Reject(files, func(f string, _ int) bool { return c.IsExcluded(f) })
}

// Rule returns the first area rule matching path
func (c *Classifier) Rule(path string) (config.AreaRule, bool) {
	for _, rule := range c.rules {
		for _, pattern := range rule.Patterns {
			// Patterns are validated at load time; a malformed one simply never matches
			if ok, _ := doublestar.Match(pattern, path); ok {
				return rule, true
			}
		}
	}
	return config.AreaRule{}, false
}

// Analyze classifies files. Excluded paths are ignored.
func (c *Classifier) Analyze(files []string) *Analysis {
	relevant := c.Relevant(files)
	analysis := &Analysis{
		ChangedFiles:      relevant,
		DocUpdates:        make(map[string]bool),
		NeedsReadmeUpdate: len(relevant) > 0,
	}

	for _, file := range relevant {
		rule, ok := c.Rule(file)
		if !ok {
			continue
		}
		if !lo.Contains(analysis.Areas, rule.Area) {
			analysis.Areas = append(analysis.Areas, rule.Area)
		}
		if rule.DocFile != "" {
			analysis.DocUpdates[rule.DocFile] = true
		}
	}

	return analysis
}

// DocFiles returns the documentation files needing an update in the order
// their areas were first seen.
func (a *Analysis) DocFiles(rules []config.AreaRule) []string {
	var files []string
	for _, area := range a.Areas {
		for _, rule := range rules {
			if rule.Area == area && rule.DocFile != "" && a.DocUpdates[rule.DocFile] && !lo.Contains(files, rule.DocFile) {
				files = append(files, rule.DocFile)
			}
		}
	}
	return files
}
