// Package extraction turns uploaded document files into plain text for the
// evaluation pipeline.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// Extraction failure sentinels. Every extractor failure wraps one of these so
// callers see a uniform error surface regardless of file type.
var (
	ErrUnsupported = errors.New("unsupported document type")
	ErrUnreadable  = errors.New("document could not be read")
)

// DefaultMaxFileBytes caps how much of a document is read.
const DefaultMaxFileBytes int64 = 4 << 20

// Extractor produces plain text from a document file.
type Extractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// Plain extracts text from plain-text document formats.
type Plain struct {
	maxBytes int64
}

// NewPlain creates a plain-text extractor. maxBytes <= 0 uses the default
// cap.
func NewPlain(maxBytes int64) *Plain {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}
	return &Plain{maxBytes: maxBytes}
}

var plainExtensions = map[string]struct{}{
	".txt":  {},
	".md":   {},
	".text": {},
}

// ExtractText reads the file and returns its text with normalized line
// endings.
func (p *Plain) ExtractText(_ context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := plainExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	if info.Size() > p.maxBytes {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", ErrUnreadable, path, p.maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", ErrUnreadable, path)
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.TrimSpace(text), nil
}

// Result is the extraction outcome for one file.
type Result struct {
	Path     string
	Filename string
	Text     string
	Err      error
}

// ExtractAll runs the extractor over the given paths with bounded
// concurrency, preserving input order. Per-file failures land in the result,
// never abort the batch.
func ExtractAll(ctx context.Context, ex Extractor, paths []string, concurrency int) []Result {
	if concurrency <= 0 {
		concurrency = 4
	}

	results := make([]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			text, err := ex.ExtractText(ctx, path)
			results[i] = Result{
				Path:     path,
				Filename: filepath.Base(path),
				Text:     text,
				Err:      err,
			}
			return nil
		})
	}

	// Goroutines only record per-file errors, so Wait cannot fail.
	_ = g.Wait()
	return results
}
