package sync

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/schaermu/paihooks/internal/config"
)

// Outcome is the result of pulling a single document
type Outcome string

const (
	OutcomeSynced              Outcome = "synced"
	OutcomeSkippedLocalChanges Outcome = "skipped_local_changes"
	OutcomeSkippedNoChanges    Outcome = "skipped_no_changes"
	OutcomeError               Outcome = "error"
)

// PullResult records what happened to one document during a pull
type PullResult struct {
	Document config.Document
	Outcome  Outcome
	Err      error // set when Outcome is OutcomeError
}

// PullSummary aggregates the per-document pull results
type PullSummary struct {
	Results []PullResult
}

// Count returns how many documents ended with outcome
func (s *PullSummary) Count(outcome Outcome) int {
	return lo.CountBy(s.Results, func(r PullResult) bool { return r.Outcome == outcome })
}

// Lines renders the human readable summary printed after a pull
func (s *PullSummary) Lines() []string {
	var lines []string
	if n := s.Count(OutcomeSkippedLocalChanges); n > 0 {
		lines = append(lines, fmt.Sprintf("⚠️  %d file(s) have local changes - not overwritten", n))
	}
	if n := s.Count(OutcomeSynced); n > 0 {
		lines = append(lines, fmt.Sprintf("✅ Pulled %d file(s) from API", n))
	}
	if n := s.Count(OutcomeSkippedNoChanges); n > 0 {
		lines = append(lines, fmt.Sprintf("✨ %d file(s) already up to date", n))
	}
	if n := s.Count(OutcomeError); n > 0 {
		lines = append(lines, fmt.Sprintf("❌ %d file(s) failed to sync", n))
	}
	return lines
}

// PushResult records what happened to one changed document during a push
type PushResult struct {
	Document config.Document
	Hash     string // hash of the content that was (or would have been) pushed
	Err      error
}

// PushSummary aggregates the results for documents that had local changes.
// Unchanged documents do not appear.
type PushSummary struct {
	Results []PushResult
	DryRun  bool
}

// Changed returns how many documents had local changes
func (s *PushSummary) Changed() int {
	return len(s.Results)
}

// Pushed returns how many changed documents were stored remotely
func (s *PushSummary) Pushed() int {
	return lo.CountBy(s.Results, func(r PushResult) bool { return r.Err == nil })
}

// Lines renders the human readable summary printed after a push
func (s *PushSummary) Lines() []string {
	changed, pushed := s.Changed(), s.Pushed()
	switch {
	case changed == 0:
		return []string{"✨ No changes detected, API already up to date"}
	case s.DryRun:
		return []string{fmt.Sprintf("🔎 %d changed file(s) would be pushed", changed)}
	case pushed == changed:
		return []string{fmt.Sprintf("✅ Synced %d/%d changed files to API", pushed, changed)}
	default:
		return []string{fmt.Sprintf("⚠️  Synced %d/%d files (some failed)", pushed, changed)}
	}
}
