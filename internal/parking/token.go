package parking

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"parking-allocation-backend/internal/model"
	"parking-allocation-backend/internal/store"
)

// ErrUserNotFound is returned when an email resolves to no account.
var ErrUserNotFound = errors.New("user not found")

// TokenGrant is the result of issuing a fresh scan token.
type TokenGrant struct {
	Token  string `json:"token"`
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
}

// SessionStatus reports whether a user is currently parked.
type SessionStatus struct {
	HasActiveSession bool           `json:"hasActiveSession"`
	Session          *model.Session `json:"session"`
	Token            string         `json:"token"`
}

// IssueToken generates a new opaque scan token for the user, replacing any
// previous one. Tokens are reusable across many arrival/departure cycles;
// their lifecycle is independent of sessions.
func (g *Gateway) IssueToken(ctx context.Context, email string) (*TokenGrant, error) {
	user, err := g.store.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate scan token: %w", err)
	}
	token := hex.EncodeToString(buf)

	if err := g.store.SetScanToken(ctx, user.ID, token); err != nil {
		return nil, err
	}
	return &TokenGrant{Token: token, UserID: user.ID, Email: user.Email}, nil
}

// CurrentSession returns the user's open session, if any, along with their
// current scan token.
func (g *Gateway) CurrentSession(ctx context.Context, email string) (*SessionStatus, error) {
	user, err := g.store.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	open, err := g.store.FindOpenSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &SessionStatus{
		HasActiveSession: open != nil,
		Session:          open,
		Token:            user.ScanToken,
	}, nil
}
