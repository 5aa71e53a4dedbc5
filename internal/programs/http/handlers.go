package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/innovo-consulting/funding-console/internal/apiclient"
	"github.com/innovo-consulting/funding-console/internal/auth"
	"github.com/innovo-consulting/funding-console/internal/auth/middleware"
	"github.com/innovo-consulting/funding-console/internal/logging"
	"github.com/innovo-consulting/funding-console/internal/programs/domain"
	"github.com/innovo-consulting/funding-console/internal/programs/service"
	programsview "github.com/innovo-consulting/funding-console/internal/programs/view"
	"github.com/innovo-consulting/funding-console/internal/web"
)

const (
	msgListFailed      = "Failed to load funding programs"
	msgTemplatesFailed = "Failed to load templates"
)

// List renders the programs of the current viewer.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	page := web.Programs{}

	programs, err := h.service(c).List(ctx)
	if err != nil {
		if reportUnauthenticated(c, err) {
			return
		}
		logging.NewLogger(ctx).LogError("list_programs", err)
		page.ListError = msgListFailed
	}
	page.Programs = programs

	c.HTML(http.StatusOK, web.ProgramsPage, page)
}

// NewProgram renders the list with the create modal open. The modal form
// is re-rendered through this handler when the viewer picks a template
// source, so query parameters mirror the form fields.
func (h *Handler) NewProgram(c *gin.Context) {
	ctx := c.Request.Context()
	svc := h.service(c)

	var (
		programs  []domain.FundingProgram
		templates domain.TemplateList
		listErr   error
		tErr      error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		programs, listErr = svc.List(gctx)
		return unauthenticatedOnly(listErr)
	})
	g.Go(func() error {
		templates, tErr = svc.Templates(gctx)
		return unauthenticatedOnly(tErr)
	})
	if err := g.Wait(); err != nil {
		reportUnauthenticated(c, err)
		return
	}

	// prev_source is the source the modal was last rendered with; the ref
	// only survives when the viewer kept that source.
	form := &programsview.CreateForm{
		Title:  c.Query("title"),
		Source: domain.TemplateSource(c.Query("prev_source")),
		Ref:    c.Query("template_ref"),
	}
	form.SelectSource(domain.TemplateSource(c.Query("template_source")))
	if !templates.Has(form.Source, form.Ref) {
		form.Ref = ""
	}

	page := web.Programs{
		Programs: programs,
		Modal: &web.CreateModal{
			Form:       form,
			Options:    templates.Collection(form.Source),
			Submitting: h.inflight.Busy(createKey(c)),
		},
	}
	logger := logging.NewLogger(ctx)
	if listErr != nil {
		logger.LogError("list_programs", listErr)
		page.ListError = msgListFailed
	}
	if tErr != nil {
		logger.LogError("list_templates", tErr)
		page.Modal.TemplatesError = msgTemplatesFailed
	}

	c.HTML(http.StatusOK, web.ProgramsPage, page)
}

// Create handles the modal's submit: create the program, upload the chosen
// guidelines, then go back to the list which re-fetches.
func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	logger := logging.NewLogger(ctx)
	svc := h.service(c)

	form := &programsview.CreateForm{
		Title:  c.PostForm("title"),
		Source: domain.TemplateSource(c.PostForm("template_source")),
		Ref:    c.PostForm("template_ref"),
	}
	modal := &web.CreateModal{Form: form}

	templates, err := svc.Templates(ctx)
	if err != nil {
		if reportUnauthenticated(c, err) {
			return
		}
		logger.LogError("list_templates", err)
		form.Error = programsview.MsgCreateFailed
		modal.TemplatesError = msgTemplatesFailed
		h.renderModal(c, http.StatusBadGateway, modal)
		return
	}
	modal.Options = templates.Collection(form.Source)

	guidelines, err := readGuidelines(c)
	if err != nil {
		form.Error = err.Error()
		h.renderModal(c, http.StatusUnprocessableEntity, modal)
		return
	}
	form.Guidelines = guidelines

	done, err := h.inflight.Begin(createKey(c))
	if err != nil {
		form.Error = err.Error()
		modal.Submitting = true
		h.renderModal(c, http.StatusConflict, modal)
		return
	}
	defer done()

	var createErr error
	creator := creatorFunc(func(ctx context.Context, req domain.CreateProgramRequest, g []domain.Guideline) (service.CreateResult, error) {
		res, err := svc.Create(ctx, req, g)
		createErr = err
		return res, err
	})

	res, outcome := form.Submit(ctx, creator, templates)
	switch outcome {
	case programsview.OutcomeCreated:
		logger.LogInfof("create_program", "program %d created with %d guideline(s)", res.ProgramID, len(guidelines))
		c.Redirect(http.StatusSeeOther, middleware.ProgramsPath)
	case programsview.OutcomeInvalid:
		h.renderModal(c, http.StatusUnprocessableEntity, modal)
	default:
		if reportUnauthenticated(c, createErr) {
			return
		}
		h.renderModal(c, http.StatusBadGateway, modal)
	}
}

// renderModal shows the modal again over the current list with the
// viewer's inputs preserved.
func (h *Handler) renderModal(c *gin.Context, status int, modal *web.CreateModal) {
	page := web.Programs{Modal: modal}
	programs, err := h.service(c).List(c.Request.Context())
	if err != nil {
		if reportUnauthenticated(c, err) {
			return
		}
		page.ListError = msgListFailed
	}
	page.Programs = programs
	c.HTML(status, web.ProgramsPage, page)
}

type creatorFunc func(ctx context.Context, req domain.CreateProgramRequest, guidelines []domain.Guideline) (service.CreateResult, error)

func (f creatorFunc) Create(ctx context.Context, req domain.CreateProgramRequest, guidelines []domain.Guideline) (service.CreateResult, error) {
	return f(ctx, req, guidelines)
}

// readGuidelines loads and checks every file posted under "files". A form
// without files yields none.
func readGuidelines(c *gin.Context) ([]domain.Guideline, error) {
	mf, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("read upload: %w", err)
	}

	var out []domain.Guideline
	for _, fh := range mf.File[apiclient.FilesField] {
		g, err := readGuideline(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func readGuideline(fh *multipart.FileHeader) (domain.Guideline, error) {
	if fh.Size > service.MaxGuidelineSize {
		return domain.Guideline{}, fmt.Errorf("%s: file too large", fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return domain.Guideline{}, fmt.Errorf("%s: %w", fh.Filename, err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, service.MaxGuidelineSize+1))
	if err != nil {
		return domain.Guideline{}, fmt.Errorf("%s: %w", fh.Filename, err)
	}
	return service.InspectGuideline(fh.Filename, content)
}

// reportUnauthenticated hands an expired session to the error boundary.
func reportUnauthenticated(c *gin.Context, err error) bool {
	if !errors.Is(err, apiclient.ErrUnauthenticated) {
		return false
	}
	_ = c.Error(err)
	c.Abort()
	return true
}

func unauthenticatedOnly(err error) error {
	if errors.Is(err, apiclient.ErrUnauthenticated) {
		return err
	}
	return nil
}

func createKey(c *gin.Context) string {
	return auth.SessionID(c) + ":create"
}
