package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"myblog/internal/domain"
)

// SessionCodec signs and verifies session cookie values.
type SessionCodec interface {
	Sign(value string) string
	Verify(token string) (string, bool)
}

// Guard turns session cookies into identities and holds every ownership rule.
// Stores call it before any mutation and never compare owner ids themselves.
type Guard struct {
	codec  SessionCodec
	users  UserService
	logger logrus.FieldLogger
}

func NewGuard(codec SessionCodec, users UserService, logger logrus.FieldLogger) *Guard {
	if logger == nil {
		logger = logrus.New()
	}
	return &Guard{codec: codec, users: users, logger: logger}
}

// IssueSession returns the cookie value identifying user.
func (g *Guard) IssueSession(user *domain.User) string {
	return g.codec.Sign(user.Username)
}

// ResolveIdentity returns nil for anonymous callers. Only storage failures are reported as errors.
func (g *Guard) ResolveIdentity(ctx context.Context, cookieValue string) (*domain.User, error) {
	if cookieValue == "" {
		return nil, nil
	}
	username, ok := g.codec.Verify(cookieValue)
	if !ok {
		g.logger.WithError(domain.ErrMalformedSession).Debug("ignoring session cookie")
		return nil, nil
	}
	user, err := g.users.Lookup(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			g.logger.WithField("username", username).Debug("session user no longer exists")
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// RequireUser rejects anonymous actors.
func (g *Guard) RequireUser(actor *domain.User) error {
	if actor == nil {
		return domain.ErrPermissionDenied
	}
	return nil
}

// RequireOwner allows only the owner of an entity.
func (g *Guard) RequireOwner(ownerID int64, actor *domain.User) error {
	if actor == nil || actor.ID != ownerID {
		return domain.ErrPermissionDenied
	}
	return nil
}

// RequireNotOwner allows any signed-in user except the owner.
func (g *Guard) RequireNotOwner(ownerID int64, actor *domain.User) error {
	if actor == nil {
		return domain.ErrPermissionDenied
	}
	if actor.ID == ownerID {
		return domain.ErrSelfVoteForbidden
	}
	return nil
}
