package cv

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
)

// Parser extracts text from uploaded CV files. Extraction is best
// effort: callers record a failure on the record instead of rejecting
// the upload.
type Parser struct {
	uploadsDir string
}

func NewParser(uploadsDir string) *Parser {
	return &Parser{uploadsDir: uploadsDir}
}

// ExtractText saves the upload and extracts its text. It returns the
// byte size alongside the text; an empty extraction from a non-empty
// file is reported as an error so the failure lands in the record's
// processing outcome.
func (p *Parser) ExtractText(filename string, reader io.Reader) (string, int64, error) {
	filePath := filepath.Join(p.uploadsDir, filepath.Base(filename))
	if err := os.MkdirAll(p.uploadsDir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create uploads dir: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	size, err := io.Copy(file, reader)
	if err != nil {
		return "", size, fmt.Errorf("failed to save file: %w", err)
	}
	if size == 0 {
		return "", 0, fmt.Errorf("file is empty")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	var text string
	switch ext {
	case ".pdf", ".docx", ".doc", ".rtf", ".odt":
		res, err := docconv.ConvertPath(filePath)
		if err != nil {
			return "", size, fmt.Errorf("failed to parse document: %w", err)
		}
		text = res.Body
	case ".txt":
		content, err := os.ReadFile(filePath)
		if err != nil {
			return "", size, fmt.Errorf("failed to read text file: %w", err)
		}
		text = string(content)
	default:
		return "", size, fmt.Errorf("unsupported file type: %s", ext)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", size, fmt.Errorf("extracted empty text from %s", filename)
	}
	return text, size, nil
}
