package bootstrap

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/innovo-consulting/funding-console/config"
	"github.com/innovo-consulting/funding-console/internal/apiclient"
	"github.com/innovo-consulting/funding-console/internal/logging"
	"github.com/innovo-consulting/funding-console/internal/metrics"
	"github.com/innovo-consulting/funding-console/internal/session"
)

// OpenSessionStore picks the browser token store: redis when REDIS_URL is
// set, an in-process map otherwise. The returned close func is never nil.
func OpenSessionStore(ctx context.Context, cfg config.SessionConfig) (session.TokenStore, func() error, error) {
	if cfg.RedisURL == "" {
		logging.L().Warn("REDIS_URL not set, browser sessions are kept in memory")
		return session.NewMemoryStore(), func() error { return nil }, nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rdb, err := session.DialRedis(dialCtx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return session.NewRedisStore(rdb, cfg.TTL), rdb.Close, nil
}

// NewSessionManager creates the manager and records every login/logout.
func NewSessionManager(store session.TokenStore) *session.Manager {
	mgr := session.NewManager(store)
	mgr.OnChange(func(sid string, st session.State) {
		metrics.RecordSessionTransition(st.IsAuthenticated)
		logging.L().Info("session changed",
			zap.String("session", shortID(sid)),
			zap.Bool("authenticated", st.IsAuthenticated))
	})
	return mgr
}

// ExpireOnUnauthorized clears the token of the session carried by the
// request context whenever the backend answers 401. Navigation is left to
// the error boundary.
func ExpireOnUnauthorized(client *apiclient.Client) {
	client.OnUnauthorized(func(ctx context.Context, he *apiclient.HTTPError) {
		s, ok := session.FromContext(ctx)
		if !ok || !s.IsAuthenticated() {
			return
		}
		if err := s.Logout(ctx); err != nil {
			logging.NewLogger(ctx).LogError("session_expired", err)
		}
	})
}

// shortID keeps full session ids out of the logs.
func shortID(sid string) string {
	if len(sid) > 8 {
		return sid[:8]
	}
	return sid
}
