package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/innovo-consulting/funding-console/internal/programs/domain"
	"github.com/innovo-consulting/funding-console/internal/session"
	"github.com/innovo-consulting/funding-console/internal/testutil"
)

type env struct {
	backend   *testutil.Backend
	tokenFile string
	dir       string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	backend := testutil.NewBackend(t)
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token.json")

	t.Setenv("API_URL", backend.URL)
	t.Setenv("TOKEN_FILE", tokenFile)
	t.Setenv("APP_ENV", "test")
	return &env{backend: backend, tokenFile: tokenFile, dir: dir}
}

func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *env) storedToken(t *testing.T) string {
	t.Helper()
	tok, err := session.NewFileStore(e.tokenFile).Get(context.Background(), session.TokenKey)
	if err != nil {
		return ""
	}
	return tok
}

func (e *env) login(t *testing.T) {
	t.Helper()
	_, err := e.run(t, "login", "--email", "anna@innovo-consulting.de", "--password", "secret1")
	require.NoError(t, err)
}

func TestLogin_StoresToken(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "login", "--email", "Anna@Innovo-Consulting.de", "--password", "secret1")

	require.NoError(t, err)
	assert.Contains(t, out, "logged in")
	assert.Equal(t, "valid-token", e.storedToken(t))

	out, err = e.run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "token stored in "+e.tokenFile)
}

func TestLogin_Rejected(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "login", "--email", "anna@innovo-consulting.de", "--password", "nope-nope")
	assert.EqualError(t, err, "Invalid email or password")

	_, err = e.run(t, "login", "--email", "anna@example.com", "--password", "secret1")
	assert.EqualError(t, err, "Email must end with @innovo-consulting.de or @aiio.de")
	assert.Empty(t, e.storedToken(t))
}

func TestRegister(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "register", "--email", "ben@aiio.de", "--password", "secret2")

	require.NoError(t, err)
	assert.Contains(t, out, "Account created successfully. Please log in.")
	assert.Empty(t, e.storedToken(t))
}

func TestLogout(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	_, err := e.run(t, "logout")
	require.NoError(t, err)
	assert.Empty(t, e.storedToken(t))

	out, err := e.run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "not logged in")
}

func TestProgramsList_RequiresLogin(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "programs", "list")

	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Empty(t, e.backend.Calls())
}

func TestProgramsList_Formats(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	e.backend.SeedProgram(domain.FundingProgram{ID: 5, Title: "ZIM 2025", TemplateSource: domain.SourceSystem, TemplateRef: "tpl1"})

	out, err := e.run(t, "programs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ZIM 2025")
	assert.Contains(t, out, "TITLE")

	out, err = e.run(t, "programs", "list", "-o", "json")
	require.NoError(t, err)
	var fromJSON []domain.FundingProgram
	require.NoError(t, json.Unmarshal([]byte(out), &fromJSON))
	assert.Equal(t, "ZIM 2025", fromJSON[0].Title)

	out, err = e.run(t, "programs", "list", "-o", "yaml")
	require.NoError(t, err)
	var fromYAML []domain.FundingProgram
	require.NoError(t, yaml.Unmarshal([]byte(out), &fromYAML))
	assert.Equal(t, domain.SourceSystem, fromYAML[0].TemplateSource)

	_, err = e.run(t, "programs", "list", "-o", "xml")
	assert.Error(t, err)
}

func TestProgramsList_Empty(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	out, err := e.run(t, "programs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No funding programs yet.")
}

func TestProgramsList_ExpiredSessionLogsOut(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	e.backend.SetExpired(true)

	_, err := e.run(t, "programs", "list")

	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Empty(t, e.storedToken(t))
}

func TestProgramsCreate_WithGuidelines(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	pdfPath := filepath.Join(e.dir, "call.pdf")
	require.NoError(t, os.WriteFile(pdfPath, testutil.MinimalPDF(2), 0o600))

	out, err := e.run(t, "programs", "create", "--title", "Horizon", "--source", "system", "--template", "tpl1", "--guideline", pdfPath)

	require.NoError(t, err)
	assert.Contains(t, out, "created funding program 1 with 1 guideline(s)")
	calls := e.backend.CallsTo("POST", "/funding-programs/1/guidelines/upload")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"call.pdf"}, calls[0].Files)
}

func TestProgramsCreate_UploadFailureNamesOrphan(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	e.backend.NextProgramID = 9
	e.backend.SetFailUpload(true)
	pdfPath := filepath.Join(e.dir, "call.pdf")
	require.NoError(t, os.WriteFile(pdfPath, testutil.MinimalPDF(1), 0o600))

	_, err := e.run(t, "programs", "create", "--title", "Horizon", "--source", "system", "--template", "tpl1", "--guideline", pdfPath)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to create funding program")
	assert.Contains(t, err.Error(), "program 9 was created without guidelines")
	assert.Len(t, e.backend.Programs(), 1)
}

func TestProgramsCreate_UploadFailureRolledBack(t *testing.T) {
	e := newEnv(t)
	t.Setenv("ROLLBACK_ORPHANED_PROGRAMS", "true")
	e.login(t)
	e.backend.SetFailUpload(true)
	pdfPath := filepath.Join(e.dir, "call.pdf")
	require.NoError(t, os.WriteFile(pdfPath, testutil.MinimalPDF(1), 0o600))

	_, err := e.run(t, "programs", "create", "--title", "Horizon", "--source", "system", "--template", "tpl1", "--guideline", pdfPath)

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "created without guidelines")
	assert.Contains(t, err.Error(), "was removed")
	assert.Empty(t, e.backend.Programs())
}

func TestProgramsCreate_Invalid(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	_, err := e.run(t, "programs", "create", "--title", "Horizon", "--source", "user", "--template", "tpl1")

	assert.EqualError(t, err, domain.ErrUnknownTemplate.Error())
	assert.Empty(t, e.backend.CallsTo("POST", "/funding-programs"))
}

func TestProgramsCreate_RejectsNonPDF(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	txt := filepath.Join(e.dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o600))

	_, err := e.run(t, "programs", "create", "--title", "Horizon", "--source", "system", "--template", "tpl1", "--guideline", txt)

	assert.ErrorIs(t, err, domain.ErrNotPDF)
	assert.Empty(t, e.backend.CallsTo("POST", "/funding-programs"))
}

func TestTemplatesList(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	out, err := e.run(t, "templates", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "Standard grant")
	assert.Contains(t, out, "My template")
}
