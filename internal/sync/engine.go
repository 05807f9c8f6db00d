package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/schaermu/paihooks/internal/api"
	"github.com/schaermu/paihooks/internal/config"
	"github.com/schaermu/paihooks/internal/hashcache"
)

// ErrMissingToken is returned before any network call when no API token is
// configured.
var ErrMissingToken = errors.New(config.EnvAPIToken + " not set, skipping API sync")

// Engine synchronizes the configured documents with the remote API
type Engine struct {
	cfg    *config.Config
	remote api.Remote
	cache  *hashcache.Store
	logger *slog.Logger
	dryRun bool
}

// NewEngine creates a new sync engine
func NewEngine(cfg *config.Config, remote api.Remote, cache *hashcache.Store, logger *slog.Logger, dryRun bool) *Engine {
	return &Engine{
		cfg:    cfg,
		remote: remote,
		cache:  cache,
		logger: logger,
		dryRun: dryRun,
	}
}

// Pull fetches every document concurrently and writes the ones that changed
// remotely. Per-document failures are recorded in the summary and never
// abort the batch.
func (e *Engine) Pull(ctx context.Context) (*PullSummary, error) {
	if !e.cfg.HasToken() {
		return nil, ErrMissingToken
	}

	e.logger.Info("pulling documents", "count", len(e.cfg.Documents), "api", e.cfg.API.BaseURL, "cache", e.cache.Dir())

	results := make([]PullResult, len(e.cfg.Documents))
	var g errgroup.Group
	for i, doc := range e.cfg.Documents {
		g.Go(func() error {
			outcome, err := e.pullDocument(ctx, doc)
			results[i] = PullResult{Document: doc, Outcome: outcome, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return &PullSummary{Results: results}, nil
}

func (e *Engine) pullDocument(ctx context.Context, doc config.Document) (Outcome, error) {
	logger := e.logger.With("document", doc.Name)

	content, err := e.remote.Fetch(ctx, doc.Endpoint)
	if err != nil {
		logger.Error("failed to fetch document", "endpoint", doc.Endpoint, "error", err)
		return OutcomeError, err
	}

	if strings.TrimSpace(content) == "" {
		err := fmt.Errorf("API returned empty content for %s", doc.Name)
		logger.Warn("API returned empty content, keeping local file", "endpoint", doc.Endpoint)
		return OutcomeError, err
	}

	localHash := hashcache.LocalHash(doc.Path)
	cachedHash, hasRecord := e.cache.Get(doc.Name)

	remoteHash := hashcache.Sum([]byte(content))
	if remoteHash == localHash {
		// Local and remote agree, so the record must too
		if cachedHash != remoteHash {
			e.recordHash(logger, doc.Name, remoteHash)
		}
		logger.Debug("document already up to date")
		return OutcomeSkippedNoChanges, nil
	}

	// Unpushed local edits are never overwritten
	if localHash != "" && hasRecord && localHash != cachedHash {
		logger.Warn("local file has unpushed changes, skipping pull to preserve edits",
			"path", doc.Path,
			"hint", "close your session to push changes, then start a new one")
		return OutcomeSkippedLocalChanges, nil
	}

	if err := hashcache.WriteFileAtomic(doc.Path, []byte(content), 0644); err != nil {
		logger.Error("failed to write document", "path", doc.Path, "error", err)
		return OutcomeError, fmt.Errorf("failed to write %s: %w", doc.Path, err)
	}
	e.recordHash(logger, doc.Name, remoteHash)

	logger.Info("pulled document", "path", doc.Path, "bytes", len(content))
	return OutcomeSynced, nil
}

// Push stores every locally changed document remotely, one at a time. A
// failed push leaves the hash record untouched so the next run retries it.
func (e *Engine) Push(ctx context.Context) (*PushSummary, error) {
	if !e.cfg.HasToken() {
		return nil, ErrMissingToken
	}

	e.logger.Info("checking for local changes to push", "count", len(e.cfg.Documents), "cache", e.cache.Dir())

	summary := &PushSummary{DryRun: e.dryRun}
	for _, doc := range e.cfg.Documents {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		logger := e.logger.With("document", doc.Name)

		data, err := os.ReadFile(doc.Path)
		if err != nil {
			logger.Debug("local file unreadable, nothing to push", "path", doc.Path, "error", err)
			continue
		}

		currentHash := hashcache.Sum(data)
		if cachedHash, ok := e.cache.Get(doc.Name); ok && cachedHash == currentHash {
			continue
		}

		result := PushResult{Document: doc, Hash: currentHash}
		if e.dryRun {
			logger.Info("[dry-run] would push", "endpoint", doc.Endpoint)
			summary.Results = append(summary.Results, result)
			continue
		}

		logger.Info("detected changes, pushing to API", "endpoint", doc.Endpoint)
		if err := e.remote.Store(ctx, doc.Endpoint, string(data)); err != nil {
			logger.Error("failed to push document", "endpoint", doc.Endpoint, "error", err)
			result.Err = err
		} else {
			e.recordHash(logger, doc.Name, currentHash)
			logger.Info("pushed document")
		}
		summary.Results = append(summary.Results, result)
	}

	return summary, nil
}

// recordHash stores a hash record, logging rather than failing. A missing
// record only makes the next run more permissive.
func (e *Engine) recordHash(logger *slog.Logger, name, hash string) {
	if err := e.cache.Put(name, hash); err != nil {
		logger.Error("failed to save hash record", "error", err)
	}
}
