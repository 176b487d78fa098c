package records

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Stream names one of the input datasets
type Stream string

const (
	StreamClassification Stream = "classification"
	StreamRelationships  Stream = "relationships"
	StreamPrefix2ASv4    Stream = "prefix2as_v4"
	StreamPrefix2ASv6    Stream = "prefix2as_v6"
	StreamAS2Org         Stream = "as2org"
	StreamOrganizations  Stream = "organizations"
)

// CommentMarker flags a line to be skipped wherever it appears
const CommentMarker = "#"

// maxLineSize bounds a single input line
const maxLineSize = 1 << 20

// Stats counts what a scan saw
type Stats struct {
	Lines    int `json:"lines"`
	Records  int `json:"records"`
	Comments int `json:"comments"`
	Skipped  int `json:"skipped"`
}

// Options controls how lines that cannot be tokenized are treated
type Options struct {
	// Strict turns an untokenizable line into a *ParseError instead of a
	// silently skipped line.
	Strict bool
}

// scanLines drives parse over every non-comment, non-blank line of r
func scanLines(r io.Reader, stream Stream, opts Options, parse func(line string) error) (Stats, error) {
	var stats Stats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		stats.Lines++
		line := scanner.Text()

		if strings.Contains(line, CommentMarker) {
			stats.Comments++
			continue
		}
		if strings.TrimSpace(line) == "" {
			stats.Skipped++
			continue
		}

		if err := parse(line); err != nil {
			if opts.Strict {
				return stats, wrapLineError(stream, stats.Lines, err)
			}
			stats.Skipped++
			continue
		}
		stats.Records++
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("failed to read %s stream: %w", stream, err)
	}
	return stats, nil
}

func wrapLineError(stream Stream, line int, err error) error {
	if pe, ok := err.(*ParseError); ok {
		pe.Stream = stream
		pe.Line = line
		return pe
	}
	return &ParseError{Stream: stream, Line: line, Cause: err}
}

// splitFields splits a pipe-delimited line and checks the field count
func splitFields(line string, want int) ([]string, error) {
	fields := strings.Split(line, "|")
	if len(fields) < want {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrTooFewFields, len(fields), want)
	}
	return fields, nil
}
