package report

import (
	"io"
)

// Writer renders a workbook to some destination.
type Writer interface {
	// Write outputs the workbook and returns the number of bytes written.
	Write(wb *Workbook) (int, error)
}

// MultiWriter writes the same workbook with several Writers, for example
// the spreadsheet and its markdown summary.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Add appends w to the writers.
func (m *MultiWriter) Add(w Writer) {
	m.writers = append(m.writers, w)
}

// Len returns the number of writers.
func (m *MultiWriter) Len() int {
	return len(m.writers)
}

// Write outputs the workbook with every Writer in order.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(wb *Workbook) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(wb)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// countingWriter counts bytes passing through to w.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
