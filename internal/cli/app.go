// Package cli drives the console's flows from a terminal.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/innovo-consulting/funding-console/config"
	"github.com/innovo-consulting/funding-console/internal/apiclient"
	authservice "github.com/innovo-consulting/funding-console/internal/auth/service"
	programsservice "github.com/innovo-consulting/funding-console/internal/programs/service"
	"github.com/innovo-consulting/funding-console/internal/session"
)

// ErrSessionExpired replaces apiclient.ErrUnauthenticated at the command
// boundary.
var ErrSessionExpired = errors.New("session expired, run `console login`")

// ErrNotLoggedIn is returned by commands that need a token when none is
// stored.
var ErrNotLoggedIn = errors.New("not logged in, run `console login`")

// App is one CLI invocation: a session on the token file and a client that
// reads its bearer token from that session.
type App struct {
	cfg     *config.Config
	session *session.Session
	client  *apiclient.Client
	out     io.Writer
}

func NewApp(ctx context.Context, cfg *config.Config, out io.Writer) (*App, error) {
	store := session.NewFileStore(cfg.Session.TokenFile)
	sess := session.New(store, session.TokenKey)
	if err := sess.Load(ctx); err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}

	client := apiclient.New(cfg.API.BaseURL, sess,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithUploadTimeout(cfg.API.UploadTimeout),
	)
	client.OnUnauthorized(func(ctx context.Context, _ *apiclient.HTTPError) {
		if sess.IsAuthenticated() {
			_ = sess.Logout(ctx)
		}
	})

	return &App{cfg: cfg, session: sess, client: client, out: out}, nil
}

func (a *App) Session() *session.Session { return a.session }

func (a *App) auth() *authservice.AuthService {
	return authservice.NewAuthService(a.client)
}

func (a *App) programs() *programsservice.ProgramService {
	return programsservice.NewProgramService(a.client, a.cfg.API.RollbackOrphanedPrograms)
}

// requireSession is the CLI's route guard.
func (a *App) requireSession() error {
	if !a.session.IsAuthenticated() {
		return ErrNotLoggedIn
	}
	return nil
}

// translate maps backend errors onto what the terminal user should do.
func translate(err error) error {
	if errors.Is(err, apiclient.ErrUnauthenticated) {
		return ErrSessionExpired
	}
	return err
}
