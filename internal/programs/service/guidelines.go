package service

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/innovo-consulting/funding-console/internal/programs/domain"
	"rsc.io/pdf"
)

const MaxGuidelineSize = 50 << 20

// InspectGuideline checks that content is a readable PDF and counts its
// pages. The backend only accepts PDFs; checking here keeps a bad file from
// leaving a program without guidelines.
func InspectGuideline(name string, content []byte) (domain.Guideline, error) {
	if len(content) == 0 {
		return domain.Guideline{}, fmt.Errorf("%s: empty file: %w", name, domain.ErrNotPDF)
	}
	if len(content) > MaxGuidelineSize {
		return domain.Guideline{}, fmt.Errorf("%s: larger than %d MB", name, MaxGuidelineSize>>20)
	}
	if mt := mimetype.Detect(content); !mt.Is("application/pdf") {
		return domain.Guideline{}, fmt.Errorf("%s: detected %s: %w", name, mt.String(), domain.ErrNotPDF)
	}

	pages, err := countPages(content)
	if err != nil {
		return domain.Guideline{}, fmt.Errorf("%s: unreadable PDF (%v): %w", name, err, domain.ErrNotPDF)
	}

	return domain.Guideline{
		Name:    filepath.Base(name),
		Content: content,
		Pages:   pages,
	}, nil
}

// countPages recovers from the panics rsc.io/pdf raises on malformed page
// trees.
func countPages(content []byte) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()
	doc, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, err
	}
	return doc.NumPage(), nil
}

// ReadGuideline loads and inspects a PDF from disk.
func ReadGuideline(path string) (domain.Guideline, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.Guideline{}, fmt.Errorf("read guideline: %w", err)
	}
	return InspectGuideline(filepath.Base(path), content)
}
