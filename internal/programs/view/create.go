// Package view implements the create-funding-program form independent of
// how it is rendered.
package view

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/innovo-consulting/funding-console/internal/logging"
	"github.com/innovo-consulting/funding-console/internal/programs/domain"
	"github.com/innovo-consulting/funding-console/internal/programs/service"
	sharedview "github.com/innovo-consulting/funding-console/internal/view"
)

const (
	MsgCreateFailed = "Failed to create funding program"
	MsgRolledBack   = "The incomplete program was removed, please try again."
)

type Outcome int

const (
	OutcomeInvalid Outcome = iota
	OutcomeBusy
	OutcomeFailed
	OutcomeCreated
)

// Creator is the backend side of the form.
type Creator interface {
	Create(ctx context.Context, req domain.CreateProgramRequest, guidelines []domain.Guideline) (service.CreateResult, error)
}

// CreateForm is the state of the create modal.
type CreateForm struct {
	Title      string
	Source     domain.TemplateSource
	Ref        string
	Guidelines []domain.Guideline
	Error      string

	submitting atomic.Bool
}

// SelectSource switches the template collection. Picking a different
// source clears the chosen template.
func (f *CreateForm) SelectSource(source domain.TemplateSource) {
	if source != f.Source {
		f.Source = source
		f.Ref = ""
	}
}

func (f *CreateForm) Submitting() bool {
	return f.submitting.Load()
}

// Validate checks the required fields against the loaded templates.
func (f *CreateForm) Validate(templates domain.TemplateList) error {
	switch {
	case strings.TrimSpace(f.Title) == "":
		return domain.ErrTitleRequired
	case !f.Source.Valid():
		return domain.ErrSourceRequired
	case f.Ref == "":
		return domain.ErrTemplateRequired
	case !templates.Has(f.Source, f.Ref):
		return domain.ErrUnknownTemplate
	}
	return nil
}

// Request is the create body for the current form values.
func (f *CreateForm) Request() domain.CreateProgramRequest {
	return domain.CreateProgramRequest{
		Title:          strings.TrimSpace(f.Title),
		TemplateSource: f.Source,
		TemplateRef:    f.Ref,
	}
}

// Submit creates the program and uploads any chosen guidelines. On failure
// the form keeps its values so the user can retry.
func (f *CreateForm) Submit(ctx context.Context, creator Creator, templates domain.TemplateList) (service.CreateResult, Outcome) {
	f.Error = ""
	if err := f.Validate(templates); err != nil {
		f.Error = err.Error()
		return service.CreateResult{}, OutcomeInvalid
	}

	if !f.submitting.CompareAndSwap(false, true) {
		f.Error = sharedview.ErrSubmitting.Error()
		return service.CreateResult{}, OutcomeBusy
	}
	defer f.submitting.Store(false)

	res, err := creator.Create(ctx, f.Request(), f.Guidelines)
	if err != nil {
		logging.NewLogger(ctx).LogError("create_program", err)
		f.Error = MsgCreateFailed
		if errors.Is(err, service.ErrUploadFailed) && res.RolledBack {
			f.Error += ". " + MsgRolledBack
		}
		return res, OutcomeFailed
	}
	return res, OutcomeCreated
}
