package web

import (
	authview "github.com/innovo-consulting/funding-console/internal/auth/view"
	"github.com/innovo-consulting/funding-console/internal/programs/domain"
	programsview "github.com/innovo-consulting/funding-console/internal/programs/view"
)

const (
	LoginPage    = "login.html"
	ProgramsPage = "programs.html"
)

// Login is the data of the login/signup screen.
type Login struct {
	Form       *authview.LoginForm
	Submitting bool
}

// Programs is the data of the programs list, optionally with the create
// modal open.
type Programs struct {
	Programs  []domain.FundingProgram
	ListError string
	Modal     *CreateModal
}

type CreateModal struct {
	Form           *programsview.CreateForm
	Options        []domain.Template
	TemplatesError string
	Submitting     bool
}
