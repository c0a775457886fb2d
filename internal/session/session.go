// Package session backs the browser login flow. A session is a small claims
// record (user id plus one-shot flash messages) that lives either entirely
// inside a signed cookie or server-side behind an opaque identifier.
package session

import (
	"context"
	"errors"
	"net/http"
)

var (
	// ErrNoSession means the request carries no resolvable session. The
	// browser flow treats this as anonymous, never as a hard error.
	ErrNoSession = errors.New("no valid session")

	// ErrNotFound means an identifier was presented but the store has no
	// live entry for it (revoked, expired or never issued).
	ErrNotFound = errors.New("session not found")
)

// Claims is the data a session carries
type Claims struct {
	UserID  int64    `json:"user_id"`
	Flashes []string `json:"flashes,omitempty"`
}

// Store holds server-side session state behind opaque identifiers. An
// identifier the store does not know authenticates no one.
type Store interface {
	Create(ctx context.Context, claims *Claims) (string, error)
	Resolve(ctx context.Context, id string) (*Claims, error)
	Save(ctx context.Context, id string, claims *Claims) error
	Revoke(ctx context.Context, id string) error
}

// Manager is the contract the web handlers program against. Both the
// signed-cookie variant and the store-backed variant satisfy it.
type Manager interface {
	// Current resolves the request's session claims, ErrNoSession when
	// anonymous. Routes that don't call it never pay for decoding.
	Current(r *http.Request) (*Claims, error)
	// Login starts a session for the user; TTL is fixed at creation.
	Login(w http.ResponseWriter, r *http.Request, userID int64) error
	// Logout destroys the session; the identifier resolves to no one afterwards.
	Logout(w http.ResponseWriter, r *http.Request) error
	// Flash queues a one-shot message for the next render.
	Flash(w http.ResponseWriter, r *http.Request, message string) error
	// PopFlashes returns queued messages and clears them atomically.
	PopFlashes(w http.ResponseWriter, r *http.Request) ([]string, error)
}
