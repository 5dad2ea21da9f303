package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMe(t *testing.T) {
	f := newAPIFixture(t)
	w := f.do(t, http.MethodGet, "/api/auth/me", f.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := dataOf(t, w)
	assert.Equal(t, f.user.ID, me["id"])
	assert.Equal(t, "ada", me["auth_user_id"])
	assert.Equal(t, "UTC", me["timezone"])
	assert.Equal(t, map[string]any{}, me["settings"])
}

func TestUpdateSettings(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPut, "/api/auth/me/settings", f.token, map[string]any{"pomodoro": 25})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, map[string]any{"pomodoro": float64(25)}, dataOf(t, w)["settings"])

	w = f.do(t, http.MethodPut, "/api/auth/me/settings", f.token, `[1,2,3]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(t, http.MethodPut, "/api/auth/me/settings", f.token, `{"a":`+strings.Repeat(" ", maxSettingsBytes)+`1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogout(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/auth/logout", f.token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "sid" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "login cookie must be expired")

	w = f.do(t, http.MethodGet, "/api/auth/me", f.token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestBearerTokenIsAccepted(t *testing.T) {
	f := newAPIFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+f.token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTags(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createTag(t, "Reading")

	w := f.do(t, http.MethodPost, "/api/tags", f.token, map[string]any{"name": "reading", "color": "#fff"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = f.do(t, http.MethodPost, "/api/tags", f.token, map[string]any{"name": "Bad", "color": "blue"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(t, http.MethodPost, "/api/tags", f.token, map[string]any{"color": "#fff"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.createSession(t, map[string]any{"name": "Book", "start_at": "2024-01-01T15:00:00Z", "tag_id": id})
	w = f.do(t, http.MethodDelete, "/api/tags/"+id, f.token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	spare := f.createTag(t, "spare")
	w = f.do(t, http.MethodDelete, "/api/tags/"+spare, f.token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
