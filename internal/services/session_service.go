package services

import (
	"context"
	"strings"

	domain "github.com/Noore22/Cake-Craft/internal/domain"
	"github.com/Noore22/Cake-Craft/internal/platform/requestctx"
)

type sessionService struct {
	user *User
}

// NewSessionService returns a provider that reports the configured demo user as
// signed in. A user without an id yields anonymous sessions.
func NewSessionService(user User) SessionService {
	if strings.TrimSpace(user.ID) == "" {
		return &sessionService{}
	}
	u := user
	u.Favorites = append([]string(nil), user.Favorites...)
	return &sessionService{user: &u}
}

// Current prefers a session already attached to the request context.
func (s *sessionService) Current(ctx context.Context) Session {
	if ctx != nil {
		if session := requestctx.Session(ctx); session != nil {
			if _, ok := domain.SessionUser(session); ok {
				return session
			}
		}
	}
	if s.user == nil {
		return domain.Anonymous{}
	}
	u := *s.user
	u.Favorites = append([]string(nil), s.user.Favorites...)
	return domain.SignedIn{User: u}
}
