package prompthook

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Delimiters wrapping the injected context block
const (
	ContextOpenTag  = "<user-prompt-submit-hook>"
	ContextCloseTag = "</user-prompt-submit-hook>"
)

var (
	ErrContextMissing = errors.New("context file not found")
	ErrContextEmpty   = errors.New("context file is empty")
)

// LoadContext reads the context file at path. A missing file or one holding
// only whitespace yields ErrContextMissing or ErrContextEmpty.
func LoadContext(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrContextMissing, path)
		}
		return "", fmt.Errorf("failed to read context file: %w", err)
	}

	content := string(data)
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: %s", ErrContextEmpty, path)
	}
	return content, nil
}

// WriteContext writes content wrapped in the context delimiters
func WriteContext(w io.Writer, content string) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n%s\n", ContextOpenTag, content, ContextCloseTag)
	return err
}

// StripInjectedContext returns the user's own text from a prompt that may
// already carry an injected context block.
func StripInjectedContext(prompt string) string {
	before, _, _ := strings.Cut(prompt, ContextOpenTag)
	return strings.TrimSpace(before)
}
