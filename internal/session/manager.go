package session

import (
	"errors"
	"net/http"
	"time"
)

const idCookieName = "todo_session_id"

// StoreManager keeps claims server-side and hands the browser only an
// opaque identifier. Revocation is real: after Logout the identifier
// resolves to no one even if the cookie survives.
type StoreManager struct {
	store  Store
	ttl    time.Duration
	secure bool
}

func NewStoreManager(store Store, ttl time.Duration, secure bool) *StoreManager {
	return &StoreManager{store: store, ttl: ttl, secure: secure}
}

func (m *StoreManager) Current(r *http.Request) (*Claims, error) {
	id, ok := m.sessionID(r)
	if !ok {
		return nil, ErrNoSession
	}

	claims, err := m.store.Resolve(r.Context(), id)
	if err != nil {
		return nil, ErrNoSession
	}

	return claims, nil
}

func (m *StoreManager) Login(w http.ResponseWriter, r *http.Request, userID int64) error {
	claims := &Claims{UserID: userID}

	// Carry over flashes queued on the anonymous session, then drop it
	if oldID, ok := m.sessionID(r); ok {
		if old, err := m.store.Resolve(r.Context(), oldID); err == nil {
			claims.Flashes = old.Flashes
		}
		_ = m.store.Revoke(r.Context(), oldID)
	}

	id, err := m.store.Create(r.Context(), claims)
	if err != nil {
		return err
	}

	m.setCookie(w, id, int(m.ttl.Seconds()))
	return nil
}

func (m *StoreManager) Logout(w http.ResponseWriter, r *http.Request) error {
	if id, ok := m.sessionID(r); ok {
		if err := m.store.Revoke(r.Context(), id); err != nil {
			return err
		}
	}

	m.setCookie(w, "", -1)
	return nil
}

func (m *StoreManager) Flash(w http.ResponseWriter, r *http.Request, message string) error {
	if id, ok := m.sessionID(r); ok {
		claims, err := m.store.Resolve(r.Context(), id)
		if err == nil {
			claims.Flashes = append(claims.Flashes, message)
			return m.store.Save(r.Context(), id, claims)
		}
	}

	// No live session yet: open an anonymous one to hold the message
	id, err := m.store.Create(r.Context(), &Claims{Flashes: []string{message}})
	if err != nil {
		return err
	}

	m.setCookie(w, id, int(m.ttl.Seconds()))
	return nil
}

func (m *StoreManager) PopFlashes(_ http.ResponseWriter, r *http.Request) ([]string, error) {
	id, ok := m.sessionID(r)
	if !ok {
		return nil, nil
	}

	claims, err := m.store.Resolve(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	flashes := claims.Flashes
	if len(flashes) == 0 {
		return nil, nil
	}

	claims.Flashes = nil
	if err := m.store.Save(r.Context(), id, claims); err != nil {
		return nil, err
	}

	return flashes, nil
}

func (m *StoreManager) sessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(idCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (m *StoreManager) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     idCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
