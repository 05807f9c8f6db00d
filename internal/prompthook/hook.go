package prompthook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/schaermu/paihooks/internal/config"
)

// minBackgroundMessage is the prompt length above which a richer title is
// requested.
const minBackgroundMessage = 3

// Hook wires the prompt-submit steps together
type Hook struct {
	cfg      config.PromptConfig
	launcher Starter
	logger   *slog.Logger

	// Stdin carries the host payload. StdinIsTerminal skips reading it.
	Stdin           io.Reader
	StdinIsTerminal bool
	// Stdout receives the context block spliced into the prompt.
	Stdout io.Writer
	// Terminal receives the title escape sequences.
	Terminal io.Writer
}

// New creates a hook. Streams must be set by the caller.
func New(cfg config.PromptConfig, launcher Starter, logger *slog.Logger) *Hook {
	return &Hook{
		cfg:      cfg,
		launcher: launcher,
		logger:   logger,
	}
}

// Run executes the hook. The returned error describes the first hard
// failure (an unreadable payload); cosmetic failures are logged and
// swallowed. Callers at the process boundary are expected to report the
// error and still exit successfully.
func (h *Hook) Run(ctx context.Context) error {
	input := &Input{}
	if !h.StdinIsTerminal {
		var err error
		input, err = ReadInput(ctx, h.Stdin, h.cfg.StdinTimeout)
		if err != nil {
			return fmt.Errorf("context loader: %w", err)
		}
	}

	h.logger.Debug("prompt hook invoked",
		"session_id", input.SessionID,
		"event", input.HookEventName,
		"prompt_chars", len(input.Prompt))

	h.injectContext()

	title := DeriveTitle(input.Prompt, h.cfg.DefaultTitle)
	if h.Terminal != nil {
		SetTitle(h.Terminal, TitlePrefix+title)
	}

	h.requestRicherTitle(input.Prompt)
	return nil
}

func (h *Hook) injectContext() {
	path := h.cfg.ContextFile

	content, err := LoadContext(path)
	switch {
	case errors.Is(err, ErrContextMissing):
		h.logger.Warn("global context file not found", "path", path)
		return
	case errors.Is(err, ErrContextEmpty):
		h.logger.Warn("global context file is empty", "path", path)
		return
	case err != nil:
		h.logger.Warn("failed to load global context", "path", path, "error", err)
		return
	}

	if err := WriteContext(h.Stdout, content); err != nil {
		h.logger.Warn("failed to write global context", "error", err)
		return
	}
	h.logger.Info("global context loaded",
		"path", path,
		"chars", len(content),
		"size", humanize.Bytes(uint64(len(content))))
}

// requestRicherTitle launches the background titler. Its outcome is
// intentionally unobserved.
func (h *Hook) requestRicherTitle(prompt string) {
	if h.launcher == nil {
		return
	}
	message := StripInjectedContext(prompt)
	if len(message) <= minBackgroundMessage {
		return
	}
	if err := h.launcher.Start(message); err != nil {
		h.logger.Debug("background title process not started", "error", err)
	}
}
