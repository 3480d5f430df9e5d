package extraction

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPlainExtractText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cv_maria_silva.txt", "line one\r\nline two\n")

	text, err := NewPlain(0).ExtractText(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", text)
}

func TestPlainRejectsUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cv.pdf", "%PDF-1.4")

	_, err := NewPlain(0).ExtractText(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestPlainRejectsMissingFile(t *testing.T) {
	_, err := NewPlain(0).ExtractText(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestPlainRejectsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "big.txt", "0123456789")

	_, err := NewPlain(5).ExtractText(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestPlainRejectsBinaryContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bin.txt")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x01}, 0o644))

	_, err := NewPlain(0).ExtractText(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestExtractAllPreservesOrderAndIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	good1 := writeFile(t, dir, "maria_silva_cv.txt", "cv text")
	bad := writeFile(t, dir, "scan.pdf", "binary")
	good2 := writeFile(t, dir, "joao_costa_cv.txt", "other cv")

	results := ExtractAll(context.Background(), NewPlain(0), []string{good1, bad, good2}, 2)
	require.Len(t, results, 3)

	assert.Equal(t, "maria_silva_cv.txt", results[0].Filename)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "cv text", results[0].Text)

	assert.ErrorIs(t, results[1].Err, ErrUnsupported)

	assert.Equal(t, "other cv", results[2].Text)
	assert.NoError(t, results[2].Err)
}
