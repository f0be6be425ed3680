package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/mvp-joe/codescope/internal/consolidate"
	"github.com/mvp-joe/codescope/internal/extract"
)

// Mode selects the artifact format.
type Mode string

const (
	ModeText Mode = "text"
	ModeJSON Mode = "json"
)

// Delimiter separates entries in the text artifact.
const Delimiter = "\n---------\n\n"

// Options controls serialization.
type Options struct {
	Compress           bool // gzip the complete artifact and append .gz
	CollapseBlankLines bool // text mode: collapse runs of blank lines
}

// Write serializes result in mode to destination and returns the path
// actually written. Any error here is fatal to the run.
func Write(result *consolidate.Result, mode Mode, destination string, opts Options) (string, error) {
	var data []byte
	switch mode {
	case ModeText:
		data = RenderText(result.Entries, opts.CollapseBlankLines)
	case ModeJSON:
		var err error
		data, err = RenderJSON(result.Records)
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unknown output mode %q", mode)
	}
	return writeArtifact(data, destination, opts.Compress)
}

// WriteText writes the text artifact.
func WriteText(entries []consolidate.Entry, destination string, opts Options) (string, error) {
	return writeArtifact(RenderText(entries, opts.CollapseBlankLines), destination, opts.Compress)
}

// WriteJSON writes the JSON summary artifact.
func WriteJSON(records []extract.Record, destination string, opts Options) (string, error) {
	data, err := RenderJSON(records)
	if err != nil {
		return "", err
	}
	return writeArtifact(data, destination, opts.Compress)
}

// RenderText emits a path header and the content of each entry.
func RenderText(entries []consolidate.Entry, collapse bool) []byte {
	var buf bytes.Buffer
	for i, e := range entries {
		if i > 0 {
			buf.WriteString(Delimiter)
		}
		fmt.Fprintf(&buf, "**File: %s**\n\n", e.Path)
		content := e.Content
		if collapse {
			content = CollapseBlankLines(content)
		}
		buf.WriteString(content)
		if content != "" && !strings.HasSuffix(content, "\n") {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

// RenderJSON emits records as an indented JSON array.
func RenderJSON(records []extract.Record) ([]byte, error) {
	if records == nil {
		records = []extract.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}
	return append(data, '\n'), nil
}

// CollapseBlankLines reduces every run of blank lines to a single one.
func CollapseBlankLines(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for i, line := range lines {
		isBlank := strings.TrimSpace(line) == ""
		// keep the empty element produced by a trailing newline
		if isBlank && blank && i != len(lines)-1 {
			continue
		}
		blank = isBlank
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// ArtifactPath returns destination with .gz appended when compressing.
func ArtifactPath(destination string, compress bool) string {
	if compress && !strings.HasSuffix(destination, ".gz") {
		return destination + ".gz"
	}
	return destination
}

// Compress gzips data as a single stream.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress output: %w", err)
	}
	if err := gw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress output: %w", err)
	}
	return buf.Bytes(), nil
}

func writeArtifact(data []byte, destination string, compress bool) (string, error) {
	path := ArtifactPath(destination, compress)
	if compress {
		var err error
		if data, err = Compress(data); err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	// Atomic write: write to temp file, then rename
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write temp output: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to rename output: %w", err)
	}
	return path, nil
}
