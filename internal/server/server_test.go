package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MatheusWesley/api-projects-management/internal/config"
	"github.com/MatheusWesley/api-projects-management/internal/database"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newClient(t *testing.T) *client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	cfg := &config.Config{SessionSecret: "test-secret", CORSAllowedOrigins: []string{"*"}}
	store, err := NewSessionStore(cfg)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &client{t: t, handler: NewRouter(cfg, db, store, nil, logger)}
}

func (c *client) do(method, path string, body any, headers ...string) (*httptest.ResponseRecorder, envelope) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		c.cookies = cookies
	}

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func (c *client) signupAndLogin(email string) {
	c.t.Helper()
	w, _ := c.do(http.MethodPost, "/api/auth/signup", map[string]string{"name": email, "email": email, "password": "supersecret"})
	require.Equal(c.t, http.StatusCreated, w.Code)
	w, _ = c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": "supersecret"})
	require.Equal(c.t, http.StatusOK, w.Code)
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

type item struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PriorityOrder int    `json:"priority_order"`
	Version       int    `json:"version"`
}

func TestHealth(t *testing.T) {
	c := newClient(t)

	w, _ := c.do(http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	c := newClient(t)

	for _, path := range []string{"/api/projects", "/api/items/x", "/api/auth/me"} {
		w, env := c.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.False(t, env.Success)
	}
}

func TestKanbanFlow(t *testing.T) {
	c := newClient(t)
	c.signupAndLogin("owner@example.com")

	w, env := c.do(http.MethodPost, "/api/projects", map[string]string{"name": "Website"})
	require.Equal(t, http.StatusCreated, w.Code)
	project := decode[struct {
		ID string `json:"id"`
	}](t, env.Data)

	w, env = c.do(http.MethodPost, "/api/projects/"+project.ID+"/items", map[string]string{"title": "Fix login", "type": "bug"})
	require.Equal(t, http.StatusCreated, w.Code)
	a := decode[item](t, env.Data)
	assert.Equal(t, 0, a.PriorityOrder)

	w, env = c.do(http.MethodPost, "/api/projects/"+project.ID+"/items", map[string]string{"title": "Add search", "type": "story"})
	require.Equal(t, http.StatusCreated, w.Code)
	b := decode[item](t, env.Data)
	assert.Equal(t, 1, b.PriorityOrder)

	w, _ = c.do(http.MethodPatch, "/api/items/"+a.ID+"/status", map[string]string{"status": "in_progress"}, "If-Match", `"1"`)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = c.do(http.MethodPatch, "/api/items/"+a.ID+"/status", map[string]string{"status": "done"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = c.do(http.MethodPatch, "/api/items/"+a.ID+"/priority", map[string]int{"priority_order": 5}, "If-Match", `"1"`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	w, env = c.do(http.MethodGet, "/api/projects/"+project.ID+"/kanban", nil)
	require.Equal(t, http.StatusOK, w.Code)
	board := decode[map[string][]item](t, env.Data)
	require.Len(t, board["todo"], 1)
	assert.Equal(t, b.ID, board["todo"][0].ID)
	assert.Empty(t, board["in_progress"])
	require.Len(t, board["done"], 1)
	assert.Equal(t, a.ID, board["done"][0].ID)

	w, env = c.do(http.MethodGet, "/api/projects/"+project.ID+"/backlog", nil)
	require.Equal(t, http.StatusOK, w.Code)
	backlog := decode[[]item](t, env.Data)
	require.Len(t, backlog, 1)
	assert.Equal(t, b.ID, backlog[0].ID)

	w, _ = c.do(http.MethodPost, "/api/projects/"+project.ID+"/items/generate", map[string]string{"text": "plan the launch"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w, _ = c.do(http.MethodDelete, "/api/projects/"+project.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = c.do(http.MethodGet, "/api/items/"+b.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOtherUsersCannotTouchProject(t *testing.T) {
	owner := newClient(t)
	owner.signupAndLogin("owner@example.com")
	_, env := owner.do(http.MethodPost, "/api/projects", map[string]string{"name": "Private"})
	project := decode[struct {
		ID string `json:"id"`
	}](t, env.Data)
	_, env = owner.do(http.MethodPost, "/api/projects/"+project.ID+"/items", map[string]string{"title": "Secret", "type": "task"})
	secret := decode[item](t, env.Data)

	intruder := &client{t: t, handler: owner.handler}
	intruder.signupAndLogin("intruder@example.com")

	w, env := intruder.do(http.MethodGet, "/api/projects/"+project.ID+"/kanban", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	w, _ = intruder.do(http.MethodPatch, "/api/items/"+secret.ID+"/status", map[string]string{"status": "done"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = owner.do(http.MethodGet, "/api/items/"+secret.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "todo", decode[item](t, env.Data).Status)
}

func TestLogoutEndsSession(t *testing.T) {
	c := newClient(t)
	c.signupAndLogin("owner@example.com")

	w, _ := c.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = c.do(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = c.do(http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	c := newClient(t)

	w, env := c.do(http.MethodGet, "/api/nope", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}
