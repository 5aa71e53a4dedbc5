// Package view implements the login/signup form independent of how it is
// rendered.
package view

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/innovo-consulting/funding-console/internal/apiclient"
	"github.com/innovo-consulting/funding-console/internal/auth/domain"
	"github.com/innovo-consulting/funding-console/internal/logging"
	sharedview "github.com/innovo-consulting/funding-console/internal/view"
)

type Mode string

const (
	ModeLogin  Mode = "login"
	ModeSignup Mode = "signup"
)

// ParseMode maps anything but "signup" to ModeLogin.
func ParseMode(s string) Mode {
	if Mode(s) == ModeSignup {
		return ModeSignup
	}
	return ModeLogin
}

const (
	MsgNoToken    = "No token received from server."
	MsgAuthFailed = "Authentication failed."
	MsgNetwork    = "Network error. Is the backend running?"
	MsgRegistered = "Account created successfully. Please log in."
)

type Outcome int

const (
	// OutcomeInvalid: rejected before any request was sent.
	OutcomeInvalid Outcome = iota
	// OutcomeBusy: a previous submission is still running.
	OutcomeBusy
	// OutcomeFailed: the backend refused or could not be reached.
	OutcomeFailed
	// OutcomeAuthenticated: the session now holds a token.
	OutcomeAuthenticated
	// OutcomeRegistered: account created, form back in login mode.
	OutcomeRegistered
)

// Authenticator is the backend side of the form.
type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.AuthResponse, error)
	Register(ctx context.Context, creds domain.Credentials) (domain.AuthResponse, error)
}

// TokenSink receives the token of a successful login.
type TokenSink interface {
	Login(ctx context.Context, token string) error
}

// LoginForm is the state of the login/signup screen.
type LoginForm struct {
	Mode     Mode
	Email    string
	Password string
	Error    string
	Success  string

	submitting atomic.Bool
}

func NewLoginForm(mode Mode) *LoginForm {
	return &LoginForm{Mode: mode}
}

// Submitting reports whether a submission is running.
func (f *LoginForm) Submitting() bool {
	return f.submitting.Load()
}

// Submit validates the form and sends it in the current mode. Error and
// Success are reset first and describe the result afterwards.
func (f *LoginForm) Submit(ctx context.Context, auth Authenticator, sink TokenSink) Outcome {
	f.Error, f.Success = "", ""

	creds := domain.Credentials{Email: f.Email, Password: f.Password}
	if err := creds.Validate(); err != nil {
		f.Error = err.Error()
		return OutcomeInvalid
	}

	if !f.submitting.CompareAndSwap(false, true) {
		f.Error = sharedview.ErrSubmitting.Error()
		return OutcomeBusy
	}
	defer f.submitting.Store(false)

	logger := logging.NewLogger(ctx)

	if f.Mode == ModeSignup {
		resp, err := auth.Register(ctx, creds)
		if err != nil {
			f.Error = failureMessage(err)
			logger.LogWarnf("register", "registration failed: %v", err)
			return OutcomeFailed
		}
		if !resp.Success {
			f.Error = fallback(resp.Message, MsgAuthFailed)
			return OutcomeFailed
		}
		f.Email, f.Password = "", ""
		f.Mode = ModeLogin
		f.Success = MsgRegistered
		return OutcomeRegistered
	}

	resp, err := auth.Login(ctx, creds)
	if err != nil {
		f.Error = failureMessage(err)
		logger.LogWarnf("login", "login failed: %v", err)
		return OutcomeFailed
	}
	if !resp.Success {
		f.Error = fallback(resp.Message, MsgAuthFailed)
		return OutcomeFailed
	}
	if resp.AccessToken == "" {
		f.Error = MsgNoToken
		return OutcomeFailed
	}
	if err := sink.Login(ctx, resp.AccessToken); err != nil {
		// the session is authenticated in memory; only persistence failed
		logger.LogError("login", err)
	}
	f.Password = ""
	return OutcomeAuthenticated
}

// failureMessage keeps messages the backend chose to show and hides
// transport details behind a generic text.
func failureMessage(err error) string {
	var he *apiclient.HTTPError
	if errors.As(err, &he) {
		return fallback(he.Message, MsgAuthFailed)
	}
	return MsgNetwork
}

func fallback(msg, def string) string {
	if msg == "" {
		return def
	}
	return msg
}
