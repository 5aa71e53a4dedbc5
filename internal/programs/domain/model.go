package domain

import (
	"errors"
	"time"
)

// TemplateSource tells which template collection a program was created
// from.
type TemplateSource string

const (
	SourceSystem TemplateSource = "system"
	SourceUser   TemplateSource = "user"
)

func (s TemplateSource) Valid() bool {
	return s == SourceSystem || s == SourceUser
}

// FundingProgram is a program as listed by the backend.
type FundingProgram struct {
	ID             int            `json:"id" yaml:"id"`
	Title          string         `json:"title" yaml:"title"`
	TemplateSource TemplateSource `json:"template_source" yaml:"template_source"`
	TemplateRef    string         `json:"template_ref" yaml:"template_ref"`
	CreatedAt      *time.Time     `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// Template is a document skeleton a program can be created from.
type Template struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// TemplateList is the answer of /templates/list: two disjoint collections.
type TemplateList struct {
	System []Template `json:"system" yaml:"system"`
	User   []Template `json:"user" yaml:"user"`
}

// Collection returns the templates of source, or nil for an unknown source.
func (l TemplateList) Collection(source TemplateSource) []Template {
	switch source {
	case SourceSystem:
		return l.System
	case SourceUser:
		return l.User
	}
	return nil
}

// Has reports whether ref names a template of source.
func (l TemplateList) Has(source TemplateSource, ref string) bool {
	for _, t := range l.Collection(source) {
		if t.ID == ref {
			return true
		}
	}
	return false
}

// CreateProgramRequest is the body of POST /funding-programs.
type CreateProgramRequest struct {
	Title          string         `json:"title"`
	TemplateSource TemplateSource `json:"template_source"`
	TemplateRef    string         `json:"template_ref"`
}

// CreatedProgram is the part of the create answer the console relies on.
type CreatedProgram struct {
	ID int `json:"id"`
}

// GuidelineDocument is one stored guideline returned by the upload call.
type GuidelineDocument struct {
	ID       int    `json:"id"`
	FileName string `json:"file_name,omitempty"`
}

// Guideline is a local PDF chosen for upload.
type Guideline struct {
	Name    string
	Content []byte
	Pages   int
}

var (
	ErrTitleRequired    = errors.New("title is required")
	ErrSourceRequired   = errors.New("template source must be system or user")
	ErrTemplateRequired = errors.New("template is required")
	ErrUnknownTemplate  = errors.New("template does not belong to the selected source")
	ErrNotPDF           = errors.New("guidelines must be PDF files")
)
