package cv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextFromTxt(t *testing.T) {
	dir := t.TempDir()
	p := NewParser(dir)

	text, size, err := p.ExtractText("resume.txt", strings.NewReader("  Go developer, 10 years  "))
	require.NoError(t, err)
	assert.Equal(t, "Go developer, 10 years", text, "extracted text is trimmed")
	assert.Equal(t, int64(26), size)

	// the original upload is kept on disk
	saved, err := os.ReadFile(filepath.Join(dir, "resume.txt"))
	require.NoError(t, err)
	assert.Equal(t, "  Go developer, 10 years  ", string(saved))
}

func TestExtractTextEmptyFile(t *testing.T) {
	p := NewParser(t.TempDir())

	_, _, err := p.ExtractText("resume.txt", strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestExtractTextWhitespaceOnly(t *testing.T) {
	p := NewParser(t.TempDir())

	_, size, err := p.ExtractText("resume.txt", strings.NewReader("   \n\t  "))
	require.Error(t, err)
	assert.Equal(t, int64(7), size)
}

func TestExtractTextUnsupportedExtension(t *testing.T) {
	p := NewParser(t.TempDir())

	_, _, err := p.ExtractText("resume.png", strings.NewReader("binary"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestExtractTextStripsPathComponents(t *testing.T) {
	dir := t.TempDir()
	p := NewParser(dir)

	_, _, err := p.ExtractText("../../etc/resume.txt", strings.NewReader("content"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "resume.txt"))
	assert.NoError(t, err, "upload lands inside the uploads dir regardless of path in the filename")
}
