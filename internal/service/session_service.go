package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bookworm/bookworm-web/internal/cache"
	"github.com/bookworm/bookworm-web/internal/config"
	"github.com/bookworm/bookworm-web/internal/gate"
	"github.com/bookworm/bookworm-web/internal/logger"
)

// SessionService ends sessions. The credential itself lives in a cookie, so the
// server side of logout is dropping everything cached for the user.
type SessionService struct {
	cache cache.Store
	log   zerolog.Logger
}

func NewSessionService(store cache.Store, log zerolog.Logger) *SessionService {
	if store == nil {
		store = cache.Nop{}
	}
	return &SessionService{
		cache: store,
		log:   logger.Component(log, "session_service"),
	}
}

// Logout forgets the user's cached pages. A nil session is a no-op.
func (s *SessionService) Logout(ctx context.Context, sess *gate.Session) {
	if sess == nil || sess.Subject == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, config.CacheKey.UserTag(sess.Subject)); err != nil {
		s.log.Warn().Err(err).Str("subject", sess.Subject).Msg("failed to drop cached pages on logout")
		return
	}
	s.log.Debug().Str("subject", sess.Subject).Msg("session ended")
}
