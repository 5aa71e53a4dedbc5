package view

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/innovo-consulting/funding-console/internal/apiclient"
	"github.com/innovo-consulting/funding-console/internal/auth/domain"
	"github.com/innovo-consulting/funding-console/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	loginCalls    int
	registerCalls int
	resp          domain.AuthResponse
	err           error
	got           domain.Credentials
	during        func()
}

func (f *fakeAuth) Login(_ context.Context, c domain.Credentials) (domain.AuthResponse, error) {
	f.loginCalls++
	f.got = c
	if f.during != nil {
		f.during()
	}
	return f.resp, f.err
}

func (f *fakeAuth) Register(_ context.Context, c domain.Credentials) (domain.AuthResponse, error) {
	f.registerCalls++
	f.got = c
	return f.resp, f.err
}

func newSession(t *testing.T) (*session.Session, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	return session.New(store, session.TokenKey), store
}

func TestSubmit_InvalidEmailSendsNothing(t *testing.T) {
	for _, email := range []string{"nope", "anna@gmail.com", "anna@aiio.de.com", "a b@aiio.de"} {
		auth := &fakeAuth{}
		sess, _ := newSession(t)
		f := &LoginForm{Mode: ModeLogin, Email: email, Password: "secret1"}

		assert.Equal(t, OutcomeInvalid, f.Submit(context.Background(), auth, sess), email)
		assert.Equal(t, domain.ErrEmailNotAllowed.Error(), f.Error)
		assert.Zero(t, auth.loginCalls)
		assert.False(t, f.Submitting())
	}
}

func TestSubmit_ShortPasswordSendsNothing(t *testing.T) {
	auth := &fakeAuth{}
	sess, _ := newSession(t)
	f := &LoginForm{Mode: ModeSignup, Email: "anna@aiio.de", Password: "12345"}

	assert.Equal(t, OutcomeInvalid, f.Submit(context.Background(), auth, sess))
	assert.Equal(t, "Password must be at least 6 characters.", f.Error)
	assert.Zero(t, auth.registerCalls)
}

func TestSubmit_LoginStoresToken(t *testing.T) {
	auth := &fakeAuth{resp: domain.AuthResponse{Success: true, AccessToken: "abc"}}
	sess, store := newSession(t)
	f := &LoginForm{Mode: ModeLogin, Email: "Anna@Innovo-Consulting.de", Password: "secret1"}

	assert.Equal(t, OutcomeAuthenticated, f.Submit(context.Background(), auth, sess))
	assert.Empty(t, f.Error)
	assert.True(t, sess.IsAuthenticated())

	stored, err := store.Get(context.Background(), session.TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "abc", stored)
}

func TestSubmit_LoginWithoutToken(t *testing.T) {
	auth := &fakeAuth{resp: domain.AuthResponse{Success: true}}
	sess, _ := newSession(t)
	f := &LoginForm{Mode: ModeLogin, Email: "anna@aiio.de", Password: "secret1"}

	assert.Equal(t, OutcomeFailed, f.Submit(context.Background(), auth, sess))
	assert.Equal(t, MsgNoToken, f.Error)
	assert.False(t, sess.IsAuthenticated())
}

func TestSubmit_LoginRefused(t *testing.T) {
	sess, _ := newSession(t)

	withMsg := &fakeAuth{resp: domain.AuthResponse{Success: false, Message: "Account locked"}}
	f := &LoginForm{Mode: ModeLogin, Email: "anna@aiio.de", Password: "secret1"}
	assert.Equal(t, OutcomeFailed, f.Submit(context.Background(), withMsg, sess))
	assert.Equal(t, "Account locked", f.Error)

	withoutMsg := &fakeAuth{resp: domain.AuthResponse{Success: false}}
	assert.Equal(t, OutcomeFailed, f.Submit(context.Background(), withoutMsg, sess))
	assert.Equal(t, MsgAuthFailed, f.Error)
}

func TestSubmit_TransportFailure(t *testing.T) {
	auth := &fakeAuth{err: errors.New("dial tcp: connection refused")}
	sess, _ := newSession(t)
	f := &LoginForm{Mode: ModeLogin, Email: "anna@aiio.de", Password: "secret1"}

	assert.Equal(t, OutcomeFailed, f.Submit(context.Background(), auth, sess))
	assert.Equal(t, MsgNetwork, f.Error)
	assert.False(t, f.Submitting())
}

func TestSubmit_ServerDetailIsShown(t *testing.T) {
	auth := &fakeAuth{err: &apiclient.HTTPError{Status: http.StatusUnauthorized, Message: "Invalid email or password"}}
	sess, _ := newSession(t)
	f := &LoginForm{Mode: ModeLogin, Email: "anna@aiio.de", Password: "secret1"}

	assert.Equal(t, OutcomeFailed, f.Submit(context.Background(), auth, sess))
	assert.Equal(t, "Invalid email or password", f.Error)

	bare := &fakeAuth{err: &apiclient.HTTPError{Status: http.StatusBadGateway}}
	f.Submit(context.Background(), bare, sess)
	assert.Equal(t, MsgAuthFailed, f.Error)
}

func TestSubmit_SignupReturnsToLogin(t *testing.T) {
	auth := &fakeAuth{resp: domain.AuthResponse{Success: true, Message: "User registered successfully"}}
	sess, _ := newSession(t)
	f := &LoginForm{Mode: ModeSignup, Email: "anna@aiio.de", Password: "secret1"}

	assert.Equal(t, OutcomeRegistered, f.Submit(context.Background(), auth, sess))
	assert.Equal(t, ModeLogin, f.Mode)
	assert.Empty(t, f.Email)
	assert.Empty(t, f.Password)
	assert.Equal(t, MsgRegistered, f.Success)
	assert.Empty(t, f.Error)
	assert.False(t, sess.IsAuthenticated())
	assert.Equal(t, 1, auth.registerCalls)
	assert.Zero(t, auth.loginCalls)
}

func TestSubmit_RejectsWhileSubmitting(t *testing.T) {
	sess, _ := newSession(t)
	f := &LoginForm{Mode: ModeLogin, Email: "anna@aiio.de", Password: "secret1"}

	var inner Outcome
	auth := &fakeAuth{resp: domain.AuthResponse{Success: true, AccessToken: "abc"}}
	auth.during = func() {
		assert.True(t, f.Submitting())
		nested := &LoginForm{Mode: ModeLogin, Email: f.Email, Password: "secret1"}
		nested.submitting.Store(true)
		inner = nested.Submit(context.Background(), &fakeAuth{}, sess)
	}

	assert.Equal(t, OutcomeAuthenticated, f.Submit(context.Background(), auth, sess))
	assert.Equal(t, OutcomeBusy, inner)
	assert.False(t, f.Submitting())
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeSignup, ParseMode("signup"))
	assert.Equal(t, ModeLogin, ParseMode("login"))
	assert.Equal(t, ModeLogin, ParseMode(""))
	assert.Equal(t, ModeLogin, ParseMode("admin"))
}
