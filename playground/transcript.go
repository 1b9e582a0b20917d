package playground

import (
	"strings"
	"sync"
)

// Token identifies one evaluation run. Zero is never issued.
type Token uint64

// Transcript is the console pane. It owns the current run token so that
// checking currency and writing happen under one lock.
type Transcript struct {
	onChange func()
	lines    []string
	mu       sync.Mutex
	current  Token
}

// begin issues a new token and makes it current.
func (t *Transcript) begin() Token {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current++
	return t.current
}

// Current returns the current token.
func (t *Transcript) Current() Token {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// IsCurrent reports whether tok still owns the console.
func (t *Transcript) IsCurrent(tok Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tok == t.current
}

// Append adds a line if tok is current and reports whether it did.
func (t *Transcript) Append(tok Token, line string) bool {
	t.mu.Lock()
	if tok != t.current {
		t.mu.Unlock()
		return false
	}
	t.lines = append(t.lines, line)
	t.mu.Unlock()
	t.changed()
	return true
}

// Clear empties the transcript if tok is current.
func (t *Transcript) Clear(tok Token) bool {
	t.mu.Lock()
	if tok != t.current {
		t.mu.Unlock()
		return false
	}
	t.lines = nil
	t.mu.Unlock()
	t.changed()
	return true
}

// Lines returns a copy of the transcript.
func (t *Transcript) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// String joins the transcript with newlines.
func (t *Transcript) String() string {
	return strings.Join(t.Lines(), "\n")
}

// onChange runs outside the lock; UI callbacks may read the transcript.
func (t *Transcript) changed() {
	if t.onChange != nil {
		t.onChange()
	}
}

// runConsole is the view of the transcript handed to one run's host code.
type runConsole struct {
	t   *Transcript
	tok Token
}

func (c runConsole) Log(msg string) { c.t.Append(c.tok, msg) }
func (c runConsole) Clear()         { c.t.Clear(c.tok) }
