package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/innovo-consulting/funding-console/internal/apiclient"
	"github.com/innovo-consulting/funding-console/internal/logging"
	"github.com/innovo-consulting/funding-console/internal/metrics"
	"github.com/innovo-consulting/funding-console/internal/programs/domain"
)

const (
	programsPath  = "/funding-programs"
	templatesPath = "/templates/list"
)

// ErrUploadFailed wraps a failed guideline upload that followed a
// successful create. The program exists; its guidelines do not.
var ErrUploadFailed = errors.New("guideline upload failed")

// CreateResult describes what a create call left behind on the backend.
type CreateResult struct {
	ProgramID  int
	Uploaded   []domain.GuidelineDocument
	RolledBack bool
}

// ProgramService handles funding program calls against the backend.
type ProgramService struct {
	client   *apiclient.Client
	rollback bool
}

// NewProgramService creates a service. With rollback set, a program whose
// guideline upload fails is deleted again.
func NewProgramService(client *apiclient.Client, rollback bool) *ProgramService {
	return &ProgramService{client: client, rollback: rollback}
}

// List returns all funding programs visible to the caller.
func (s *ProgramService) List(ctx context.Context) ([]domain.FundingProgram, error) {
	items, err := apiclient.Get[[]domain.FundingProgram](ctx, s.client, programsPath)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.FundingProgram{}
	}
	return items, nil
}

// Templates returns the system and user template collections.
func (s *ProgramService) Templates(ctx context.Context) (domain.TemplateList, error) {
	return apiclient.Get[domain.TemplateList](ctx, s.client, templatesPath)
}

// Create creates the program record and, only when guidelines were given,
// uploads them against the new program's id. The two calls are separate
// round trips.
func (s *ProgramService) Create(ctx context.Context, req domain.CreateProgramRequest, guidelines []domain.Guideline) (CreateResult, error) {
	logger := logging.NewLogger(ctx)

	created, err := apiclient.Post[domain.CreatedProgram](ctx, s.client, programsPath, req)
	if err != nil {
		return CreateResult{}, fmt.Errorf("create program: %w", err)
	}
	res := CreateResult{ProgramID: created.ID}
	logger.LogInfof("create_program", "created program id=%d title=%q", created.ID, req.Title)

	if len(guidelines) == 0 {
		return res, nil
	}

	files := make([]apiclient.File, 0, len(guidelines))
	for _, g := range guidelines {
		files = append(files, apiclient.File{Name: g.Name, Content: g.Content})
	}

	docs, err := apiclient.UploadFiles[[]domain.GuidelineDocument](ctx, s.client, uploadPath(created.ID), files)
	if err != nil {
		logger.LogError("upload_guidelines", err)
		if s.rollback && !errors.Is(err, apiclient.ErrUnauthenticated) {
			res.RolledBack = s.deleteOrphan(ctx, created.ID)
		}
		return res, fmt.Errorf("%w for program %d: %w", ErrUploadFailed, created.ID, err)
	}
	metrics.RecordGuidelineUpload(len(files))
	res.Uploaded = docs
	return res, nil
}

// deleteOrphan removes a program whose guidelines could not be attached.
// It runs on a context detached from the caller so an aborted request
// still cleans up.
func (s *ProgramService) deleteOrphan(ctx context.Context, id int) bool {
	logger := logging.NewLogger(ctx)
	if _, err := apiclient.Delete[struct{}](context.WithoutCancel(ctx), s.client, programPath(id)); err != nil {
		logger.LogErrorf("rollback_program", "program %d left without guidelines: %v", id, err)
		return false
	}
	logger.LogInfof("rollback_program", "deleted program %d after failed upload", id)
	return true
}

func programPath(id int) string {
	return fmt.Sprintf("%s/%d", programsPath, id)
}

func uploadPath(id int) string {
	return fmt.Sprintf("%s/%d/guidelines/upload", programsPath, id)
}
