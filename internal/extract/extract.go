// Package extract turns uploaded files into plain text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	ContentTypeText = "text/plain"
	ContentTypePDF  = "application/pdf"
)

var (
	ErrUnsupportedMediaType = errors.New("apenas .txt e .pdf são permitidos")
	ErrEmptyText            = errors.New("arquivo sem texto extraível")
)

// MediaType returns the bare media type of a Content-Type header value, lower-cased.
func MediaType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

// Supported reports whether files of contentType can be extracted.
func Supported(contentType string) bool {
	switch MediaType(contentType) {
	case ContentTypeText, ContentTypePDF:
		return true
	}
	return false
}

// Text extracts the text of data according to contentType. Unsupported types fail before data is
// inspected, and results with no visible text fail with ErrEmptyText.
func Text(contentType string, data []byte) (string, error) {
	var text string
	switch MediaType(contentType) {
	case ContentTypeText:
		text = decodeText(data)
	case ContentTypePDF:
		var err error
		text, err = pdfText(data)
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMediaType, contentType)
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

// decodeText reads data as UTF-8, dropping invalid byte sequences.
func decodeText(data []byte) string {
	return strings.ToValidUTF8(string(data), "")
}

// pdfText concatenates the text of every page, one page per line group.
func pdfText(data []byte) (text string, err error) {
	// The PDF reader panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to extract page %d: %w", i, err)
		}
		if content != "" {
			pages = append(pages, content)
		}
	}
	return strings.Join(pages, "\n"), nil
}
