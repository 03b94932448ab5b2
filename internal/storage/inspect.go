package storage

import (
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
)

const pdfMIME = "application/pdf"

// DetectMIME sniffs the content type of r and rewinds it.
func DetectMIME(r io.ReadSeeker) (string, error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("detect mime type: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}
	return mt.String(), nil
}

// IsPDF reports whether mimeType names a PDF, ignoring parameters.
func IsPDF(mimeType string) bool {
	return strings.HasPrefix(mimeType, pdfMIME)
}

// PDFPageCount returns the number of pages of the PDF in r.
func PDFPageCount(r io.ReaderAt, size int64) (n int, err error) {
	// The parser panics on some malformed input.
	defer func() {
		if p := recover(); p != nil {
			n, err = 0, fmt.Errorf("read pdf: %v", p)
		}
	}()
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return 0, fmt.Errorf("read pdf: %w", err)
	}
	return reader.NumPage(), nil
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DocumentKey builds a unique object key for a file uploaded to a case.
func DocumentKey(caseID, filename string) string {
	base := unsafeKeyChars.ReplaceAllString(path.Base(strings.ReplaceAll(filename, "\\", "/")), "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "file"
	}
	return path.Join("documents", caseID, uuid.New().String()+"-"+base)
}
