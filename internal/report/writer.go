package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/intelscan/intelscan/internal/model"
)

// Format names accepted by the export and investigate commands.
const (
	// FormatJSON selects machine-readable JSON output.
	FormatJSON = "json"

	// FormatMarkdown selects Markdown output.
	FormatMarkdown = "markdown"
)

// Writer outputs an investigation report in one format.
//
// Design decision: We use an interface to allow different output formats
// and destinations. The same report can go to stdout, a file, or both
// with the same API.
type Writer interface {
	// Write outputs the report to the configured destination.
	Write(ctx context.Context, report *model.Report) error

	// Format returns the name of the output format.
	Format() string
}

// MultiWriter writes a report through several Writers in turn. This is
// how one investigation run emits JSON and Markdown together.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes through all provided
// Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report through every configured Writer.
// Stops on the first error encountered.
func (m *MultiWriter) Write(ctx context.Context, report *model.Report) error {
	for _, w := range m.writers {
		if err := w.Write(ctx, report); err != nil {
			return fmt.Errorf("%s writer failed: %w", w.Format(), err)
		}
	}
	return nil
}

// Format returns the formats of the underlying writers joined by "+".
func (m *MultiWriter) Format() string {
	formats := make([]string, 0, len(m.writers))
	for _, w := range m.writers {
		formats = append(formats, w.Format())
	}
	return strings.Join(formats, "+")
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// Filename returns the conventional report file name for one subject,
// for example intelscan_report_alice_20260214_153040.json.
func Filename(subject, format string, at time.Time) string {
	ext := "txt"
	switch format {
	case FormatJSON:
		ext = "json"
	case FormatMarkdown:
		ext = "md"
	}
	return fmt.Sprintf("intelscan_report_%s_%s.%s",
		sanitizeSubject(subject), at.Format("20060102_150405"), ext)
}

// sanitizeSubject maps characters that are unsafe in file names to
// underscores. Usernames can contain path separators and shells choke
// on spaces.
func sanitizeSubject(subject string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, subject)
}
