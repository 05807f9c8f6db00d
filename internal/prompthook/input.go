// Package prompthook implements the prompt-submit hook: it injects a minimal
// context file into the host's prompt and retitles the terminal tab after the
// prompt being worked on.
package prompthook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tidwall/gjson"
)

// ErrStdinTimeout is returned when the host does not close stdin in time
var ErrStdinTimeout = errors.New("timeout reading from stdin")

// Input is the JSON payload the host writes to the hook's stdin
type Input struct {
	SessionID      string
	Prompt         string
	TranscriptPath string
	HookEventName  string
}

// ReadInput reads r until EOF, giving up after timeout. On timeout the
// reading goroutine is abandoned; the hook process exits shortly after.
func ReadInput(ctx context.Context, r io.Reader, timeout time.Duration) (*Input, error) {
	type result struct {
		data []byte
		err  error
	}

	ch := make(chan result, 1)
	go func() {
		data, err := io.ReadAll(r)
		ch <- result{data: data, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", res.err)
		}
		return ParseInput(res.data)
	case <-timer.C:
		return nil, ErrStdinTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ParseInput decodes the hook payload. Unknown fields are ignored and
// missing ones are left empty.
func ParseInput(data []byte) (*Input, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid hook input: not valid JSON")
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("invalid hook input: expected a JSON object")
	}

	return &Input{
		SessionID:      root.Get("session_id").String(),
		Prompt:         root.Get("prompt").String(),
		TranscriptPath: root.Get("transcript_path").String(),
		HookEventName:  root.Get("hook_event_name").String(),
	}, nil
}
