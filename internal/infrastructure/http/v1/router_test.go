package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebook/internal/app"
	appctx "sitebook/internal/core/context"
	"sitebook/internal/core/id"
	"sitebook/internal/domain"
	"sitebook/internal/domain/auth"
	"sitebook/internal/domain/project"
	"sitebook/internal/domain/user"
	"sitebook/internal/infrastructure/storage/postgres"
	"sitebook/pkg/logger"
)

type fixture struct {
	router *gin.Engine
	svc    *app.Services
}

func newFixture(t *testing.T, store *replayStore) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos, txm := app.NewMemoryRepos()
	svc := app.New(repos, txm, app.Options{JWT: auth.DefaultJWTConfig("router-test")})

	cfg := RouterConfig{
		Logger:       logger.NewNop(),
		JWTValidator: svc.JWT,
		Services:     svc,
	}
	if store != nil {
		cfg.Idempotency = store
	}
	return &fixture{router: NewRouter(cfg), svc: svc}
}

func (f *fixture) token(t *testing.T, role string, sites ...string) string {
	t.Helper()
	token, _, err := f.svc.JWT.GenerateAccessToken(appctx.UserContext{
		UserID:        id.New().String(),
		Role:          role,
		AssignedSites: sites,
	})
	require.NoError(t, err)
	return token
}

func (f *fixture) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuthAndRoles(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(http.MethodGet, "/api/v1/admin/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "UNAUTHORIZED", env.Code)

	w = f.do(http.MethodGet, "/api/v1/admin/projects", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodGet, "/api/v1/admin/projects", f.token(t, appctx.RoleSiteManager), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", decode(t, w).Code)

	w = f.do(http.MethodGet, "/api/v1/site/projects", f.token(t, appctx.RoleAdmin), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLoginThenCreateProject(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	_, err := f.svc.Users.Register(ctx, user.CreateInput{
		Name: "Owner", Email: "owner@example.com", Password: "secret123", Role: appctx.RoleAdmin,
	})
	require.NoError(t, err)

	w := f.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "owner@example.com", "password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "owner@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &session))
	require.NotEmpty(t, session.Token)

	w = f.do(http.MethodGet, "/api/v1/auth/me", session.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodPost, "/api/v1/admin/projects", session.Token, map[string]any{
		"name": "Tower A", "location": "Pune", "startDate": "2026-01-10", "endDate": "2026-12-31",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created project.Project
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))
	assert.Equal(t, "Tower A", created.Name)
	assert.Equal(t, project.StatusRunning, created.Status)
	assert.True(t, created.Expenses.IsZero())

	w = f.do(http.MethodGet, "/api/v1/admin/projects/"+created.ID.String(), session.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/v1/admin/projects/not-an-id", session.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w).Code)

	w = f.do(http.MethodGet, "/api/v1/admin/projects/"+id.New().String(), session.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateProject_ValidationEnvelope(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(http.MethodPost, "/api/v1/admin/projects", f.token(t, appctx.RoleAdmin), map[string]any{
		"location": "Pune",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
	assert.Equal(t, "invalid request body", env.Error)
}

func TestSiteProjectsAreScoped(t *testing.T) {
	f := newFixture(t, nil)
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: id.New().String(), Role: appctx.RoleAdmin})

	mine := project.NewProject("Mine", "Pune", time.Now(), time.Time{})
	other := project.NewProject("Other", "Nashik", time.Now(), time.Time{})
	require.NoError(t, f.svc.Projects.Create(ctx, mine))
	require.NoError(t, f.svc.Projects.Create(ctx, other))

	token := f.token(t, appctx.RoleSiteManager, mine.ID.String())
	w := f.do(http.MethodGet, "/api/v1/site/projects", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var page struct {
		Items      []project.Project `json:"items"`
		TotalCount int64             `json:"totalCount"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, mine.ID, page.Items[0].ID)

	w = f.do(http.MethodGet, "/api/v1/site/projects/"+mine.ID.String(), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/v1/site/projects/"+other.ID.String(), token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	env := decode(t, w)
	assert.Equal(t, "FORBIDDEN", env.Code)
	assert.NotContains(t, w.Body.String(), "Nashik")
}

func TestIdempotentReplay(t *testing.T) {
	store := newReplayStore()
	f := newFixture(t, store)
	token := f.token(t, appctx.RoleAdmin)
	body := map[string]any{"name": "Tower B", "location": "Pune"}

	first := f.do(http.MethodPost, "/api/v1/admin/projects", token, body, "X-Idempotency-Key", "k-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := f.do(http.MethodPost, "/api/v1/admin/projects", token, body, "X-Idempotency-Key", "k-1")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	list, err := f.svc.Projects.List(context.Background(), domain.DefaultListFilter())
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

// replayStore keeps completed responses in memory.
type replayStore struct {
	mu   sync.Mutex
	done map[string]*postgres.IdempotencyReplay
}

func newReplayStore() *replayStore {
	return &replayStore{done: make(map[string]*postgres.IdempotencyReplay)}
}

func (s *replayStore) AcquireKey(_ context.Context, key, _, _, _ string) (*postgres.IdempotencyReplay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done[key], nil
}

func (s *replayStore) CompleteKey(_ context.Context, key string, statusCode int, contentType string, response any) error {
	body, err := json.Marshal(response)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done[key] = &postgres.IdempotencyReplay{StatusCode: statusCode, ContentType: contentType, Body: body}
	return nil
}

func (s *replayStore) FailKey(_ context.Context, key string, _ int, _ string, _ any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.done, key)
	return nil
}
