// Package extract recovers plain text from uploaded documents.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"plagcheck/internal/model"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrOCRUnavailable  = errors.New("image text recognition (OCR) is not available")
	ErrInvalidEncoding = errors.New("text is not valid UTF-8")
)

const (
	mimeText = "text/plain"
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimePDF  = "application/pdf"
	mimeHTML = "text/html"
)

type kind int

const (
	kindUnknown kind = iota
	kindText
	kindDocx
	kindPDF
	kindHTML
	kindImage
)

// Text returns the NFC-normalised text of f. The extension decides the format; the
// declared content type is used when the extension is not recognised.
func Text(f model.UploadedFile) (string, error) {
	var (
		text string
		err  error
	)
	switch detect(f) {
	case kindText:
		if !utf8.Valid(f.Data) {
			return "", ErrInvalidEncoding
		}
		text = string(f.Data)
	case kindDocx:
		text, err = docxText(f.Data)
	case kindPDF:
		text, err = pdfText(f.Data)
	case kindHTML:
		text, err = htmlText(f.Data)
	case kindImage:
		return "", ErrOCRUnavailable
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, f.Name)
	}
	if err != nil {
		return "", err
	}
	return norm.NFC.String(text), nil
}

func detect(f model.UploadedFile) kind {
	switch strings.ToLower(filepath.Ext(f.Name)) {
	case ".txt", ".text", ".md":
		return kindText
	case ".docx":
		return kindDocx
	case ".pdf":
		return kindPDF
	case ".html", ".htm":
		return kindHTML
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return kindImage
	}

	ct := strings.ToLower(f.ContentType)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch {
	case ct == mimeText:
		return kindText
	case ct == mimeDocx:
		return kindDocx
	case ct == mimePDF:
		return kindPDF
	case ct == mimeHTML:
		return kindHTML
	case strings.HasPrefix(ct, "image/"):
		return kindImage
	}
	return kindUnknown
}
