package store

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ListFile is a newline separated URL list written while a group is being
// crawled. Every entry is written as soon as it is known; Finalize strips
// the trailing separator once the group is complete. An interrupted run
// therefore leaves a list with one extra newline and nothing worse.
type ListFile struct {
	path string
	f    *os.File
	w    *bufio.Writer
	n    int
}

// CreateList creates (or truncates) the list file at path.
func CreateList(path string) (*ListFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create list folder: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600) //nolint:gosec // path is built inside the stash
	if err != nil {
		return nil, fmt.Errorf("failed to create list file: %w", err)
	}
	return &ListFile{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

// Path returns the list file path.
func (l *ListFile) Path() string {
	return l.path
}

// Len returns the number of entries appended.
func (l *ListFile) Len() int {
	return l.n
}

// Append writes url and a separator, flushing so the entry survives a crash.
func (l *ListFile) Append(url string) error {
	if _, err := l.w.WriteString(url + "\n"); err != nil {
		return fmt.Errorf("failed to append to list: %w", err)
	}
	if err := l.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush list: %w", err)
	}
	l.n++
	return nil
}

// Finalize closes the file and removes the trailing separator.
func (l *ListFile) Finalize() error {
	if err := l.Close(); err != nil {
		return err
	}
	info, err := os.Stat(l.path)
	if err != nil {
		return fmt.Errorf("failed to stat list: %w", err)
	}
	if info.Size() == 0 {
		return nil
	}
	if err := os.Truncate(l.path, info.Size()-1); err != nil {
		return fmt.Errorf("failed to finalize list: %w", err)
	}
	return nil
}

// Close flushes and closes the file without finalizing it.
func (l *ListFile) Close() error {
	if l.f == nil {
		return nil
	}
	flushErr := l.w.Flush()
	closeErr := l.f.Close()
	l.f = nil
	if err := errors.Join(flushErr, closeErr); err != nil {
		return fmt.Errorf("failed to close list: %w", err)
	}
	return nil
}

// ReadList returns the entries of a list file. Blank entries, including the
// one left by an unfinalized list, are dropped.
func ReadList(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is built inside the stash
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("list %s: %w", path, fs.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read list: %w", err)
	}
	return splitList(data), nil
}

// WriteList writes entries as a finalized list.
func WriteList(path string, entries []string) error {
	return writeReplace(path, []byte(strings.Join(entries, "\n")))
}

func splitList(data []byte) []string {
	var entries []string
	for line := range bytes.SplitSeq(data, []byte("\n")) {
		entry := strings.TrimSpace(string(line))
		if entry == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// writeReplace atomically replaces the file at path.
func writeReplace(path string, data []byte) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return writeNew(path, data)
}
