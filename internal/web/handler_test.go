package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-todo-api/internal/database"
	"github.com/redmonkez12/go-todo-api/internal/session"
	"github.com/redmonkez12/go-todo-api/internal/user"
)

// Digest of the password "secret"
const secretHash = "$2b$12$mV7rTpEAAk77iXtRufmnnuTLLk3lF1OmBhir3Qehnk9s.aPaED30q"

type stubDirectory struct {
	users map[string]*database.User
}

func (d *stubDirectory) GetByEmail(_ context.Context, email string) (*database.User, error) {
	u, ok := d.users[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (d *stubDirectory) GetByIDWithTodos(_ context.Context, id int64) (*database.User, error) {
	for _, u := range d.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func newTestHandler() *Handler {
	sessions := session.NewStoreManager(session.NewMemoryStore(time.Hour), time.Hour, false)
	directory := &stubDirectory{
		users: map[string]*database.User{
			"johndoe@example.com": {
				ID:             1,
				Email:          "johndoe@example.com",
				HashedPassword: secretHash,
				FName:          "John",
				LName:          "Doe",
				Todos: []*database.Todo{
					{ID: 1, Text: "Buy groceries", OwnerID: 1},
				},
			},
		},
	}
	return NewHandler(sessions, directory)
}

func replay(r *http.Request, cookies []*http.Cookie) *http.Request {
	for _, c := range cookies {
		if c.MaxAge >= 0 {
			r.AddCookie(c)
		}
	}
	return r
}

func login(t *testing.T, h *Handler, email, password string) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{"email": {email}, "password": {password}}
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	h.LoginSubmit(w, r)
	return w
}

func TestHome_AnonymousRedirectsToLogin(t *testing.T) {
	h := newTestHandler()

	w := httptest.NewRecorder()
	h.Home(w, httptest.NewRequest(http.MethodGet, "/home", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestLoginFlow(t *testing.T) {
	h := newTestHandler()

	w := login(t, h, "johndoe@example.com", "secret")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/home", w.Header().Get("Location"))
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	// The session cookie unlocks the home page
	w = httptest.NewRecorder()
	h.Home(w, replay(httptest.NewRequest(http.MethodGet, "/home", nil), cookies))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "John")
	assert.Contains(t, body, "johndoe@example.com")
	assert.Contains(t, body, "Buy groceries")
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newTestHandler()

	w := login(t, h, "johndoe@example.com", "wrong")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// The failure message shows exactly once on the login page
	cookies := w.Result().Cookies()
	w = httptest.NewRecorder()
	h.LoginPage(w, replay(httptest.NewRequest(http.MethodGet, "/login", nil), cookies))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Incorrect email or password.")

	w = httptest.NewRecorder()
	h.LoginPage(w, replay(httptest.NewRequest(http.MethodGet, "/login", nil), cookies))
	assert.NotContains(t, w.Body.String(), "Incorrect email or password.")
}

func TestLogin_UnknownEmail(t *testing.T) {
	h := newTestHandler()

	w := login(t, h, "nobody@example.com", "secret")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestLoginPage_AuthenticatedRedirectsHome(t *testing.T) {
	h := newTestHandler()

	cookies := login(t, h, "johndoe@example.com", "secret").Result().Cookies()

	w := httptest.NewRecorder()
	h.LoginPage(w, replay(httptest.NewRequest(http.MethodGet, "/login", nil), cookies))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/home", w.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	h := newTestHandler()

	cookies := login(t, h, "johndoe@example.com", "secret").Result().Cookies()

	w := httptest.NewRecorder()
	h.Logout(w, replay(httptest.NewRequest(http.MethodGet, "/logout", nil), cookies))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// The old cookie no longer grants access
	w = httptest.NewRecorder()
	h.Home(w, replay(httptest.NewRequest(http.MethodGet, "/home", nil), cookies))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}
