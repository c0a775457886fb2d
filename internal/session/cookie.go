package session

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	cookieName = "todo_session"

	userIDKey = "user_id"
)

// CookieManager signs the entire claims record into the cookie value
// itself. Resolving is pure verification, no server lookup; nothing is
// revoked server-side, expiry comes from the cookie MaxAge and the signed
// timestamp handling inside gorilla/sessions.
type CookieManager struct {
	store *sessions.CookieStore
}

func NewCookieManager(secret []byte, ttl time.Duration, secure bool) *CookieManager {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieManager{store: store}
}

func (m *CookieManager) Current(r *http.Request) (*Claims, error) {
	sess, err := m.store.Get(r, cookieName)
	if err != nil {
		// Missing or tampered cookie authenticates no one
		return nil, ErrNoSession
	}

	userID, ok := sess.Values[userIDKey].(int64)
	if !ok {
		return nil, ErrNoSession
	}

	return &Claims{UserID: userID}, nil
}

func (m *CookieManager) Login(w http.ResponseWriter, r *http.Request, userID int64) error {
	sess, _ := m.store.Get(r, cookieName)
	sess.Values[userIDKey] = userID
	return sess.Save(r, w)
}

func (m *CookieManager) Logout(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, cookieName)
	delete(sess.Values, userIDKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

func (m *CookieManager) Flash(w http.ResponseWriter, r *http.Request, message string) error {
	sess, _ := m.store.Get(r, cookieName)
	sess.AddFlash(message)
	return sess.Save(r, w)
}

// PopFlashes reads and clears the queued messages in one step; saving the
// session persists the cleared state back into the cookie.
func (m *CookieManager) PopFlashes(w http.ResponseWriter, r *http.Request) ([]string, error) {
	sess, _ := m.store.Get(r, cookieName)

	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}

	if err := sess.Save(r, w); err != nil {
		return nil, err
	}

	flashes := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			flashes = append(flashes, s)
		}
	}
	return flashes, nil
}
