package logger

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// lineWindow keeps the most recent lines written to a log file.
type lineWindow struct {
	lines   [][]byte
	next    int
	filled  bool
	pending int // lines written since the file was last compacted
}

func newLineWindow(capacity int) *lineWindow {
	return &lineWindow{lines: make([][]byte, capacity)}
}

func (lw *lineWindow) push(line []byte) {
	lw.lines[lw.next] = append(lw.lines[lw.next][:0], line...)
	lw.next++

	if lw.next == len(lw.lines) {
		lw.next = 0
		lw.filled = true
	}

	lw.pending++
}

// snapshot returns the retained lines oldest first.
func (lw *lineWindow) snapshot() [][]byte {
	if !lw.filled {
		return lw.lines[:lw.next]
	}

	out := make([][]byte, 0, len(lw.lines))
	out = append(out, lw.lines[lw.next:]...)

	return append(out, lw.lines[:lw.next]...)
}

// Rotator is an io.Writer appending to a log file that is periodically
// compacted so it never holds much more than maxLines lines.
type Rotator struct {
	mu       sync.Mutex
	file     *os.File
	path     string
	maxLines int
	window   *lineWindow
}

// NewRotator opens (or creates) path for appending.
// A maxLines of zero or less disables compaction.
func NewRotator(path string, maxLines int) (*Rotator, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file %s: %w", path, err)
	}

	r := &Rotator{
		file:     file,
		path:     path,
		maxLines: maxLines,
	}

	if maxLines > 0 {
		r.window = newLineWindow(maxLines)
	}

	return r, nil
}

// Write implements io.Writer.
func (r *Rotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.file.Write(p)
	if err != nil || r.window == nil {
		return n, err
	}

	for line := range bytes.SplitSeq(bytes.TrimRight(p, "\n"), []byte("\n")) {
		if len(line) == 0 {
			continue
		}

		r.window.push(line)
	}

	// Compacting on every write would rewrite the file constantly, so the file
	// is allowed to grow to twice the limit first.
	if r.window.pending >= r.maxLines*2 {
		if err := r.compact(); err != nil {
			return n, fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	return n, nil
}

// Sync flushes the underlying file.
func (r *Rotator) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.file.Sync()
}

// Close closes the underlying file.
func (r *Rotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.file.Close()
}

// compact replaces the log file with the retained window.
func (r *Rotator) compact() error {
	var buf bytes.Buffer
	for _, line := range r.window.snapshot() {
		buf.Write(line)
		buf.WriteByte('\n')
	}

	temp, err := os.CreateTemp(filepath.Dir(r.path), "kasuki-log-")
	if err != nil {
		return err
	}

	tempPath := temp.Name()

	if _, err := temp.Write(buf.Bytes()); err != nil {
		temp.Close()
		os.Remove(tempPath)

		return err
	}

	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	r.file.Close()

	// Windows refuses to rename over an existing file.
	os.Remove(r.path)

	if err := os.Rename(tempPath, r.path); err != nil {
		return err
	}

	file, err := os.OpenFile(r.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	r.file = file
	r.window.pending = r.window.countRetained()

	return nil
}

func (lw *lineWindow) countRetained() int {
	if lw.filled {
		return len(lw.lines)
	}

	return lw.next
}
