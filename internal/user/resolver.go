package user

import (
	"context"
	"errors"
	"strings"

	"github.com/mwielgus/StockWatch/internal/session"
)

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrAccountNotFound = errors.New("user account not found")
)

// ResolvedUser is the durable identity watchlist rows are keyed by.
type ResolvedUser struct {
	UserID string
	Email  string
}

type Resolver interface {
	// ResolvePersistentUserID maps the authenticated session to the identifier
	// persisted rows are keyed by. The session token may carry a transient id
	// while storage holds the durable key, so the stored record wins.
	ResolvePersistentUserID(ctx context.Context) (ResolvedUser, error)

	// ResolveUserIDByEmail is the session-less variant used by background
	// jobs that already know the account email.
	ResolveUserIDByEmail(ctx context.Context, email string) (string, error)
}

func (s *service) ResolvePersistentUserID(ctx context.Context) (ResolvedUser, error) {
	sessionUser, ok := session.FromContext(ctx)
	if !ok {
		return ResolvedUser{}, ErrUnauthorized
	}

	email := strings.TrimSpace(sessionUser.Email)
	if email == "" {
		return ResolvedUser{}, ErrUnauthorized
	}

	externalID, id, err := s.repo.findIdentityByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return ResolvedUser{}, err
	}

	// Priority: stored external id, stored primary key, session-supplied id.
	userID := strings.TrimSpace(externalID)
	if userID == "" {
		userID = id
	}
	if userID == "" {
		userID = strings.TrimSpace(sessionUser.ID)
	}
	if userID == "" {
		return ResolvedUser{}, ErrAccountNotFound
	}

	return ResolvedUser{UserID: userID, Email: email}, nil
}

func (s *service) ResolveUserIDByEmail(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrUnauthorized
	}

	externalID, id, err := s.repo.findIdentityByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	userID := strings.TrimSpace(externalID)
	if userID == "" {
		userID = id
	}
	if userID == "" {
		return "", ErrAccountNotFound
	}
	return userID, nil
}
