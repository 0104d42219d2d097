package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/social-feed/config"
	"github.com/d60-Lab/social-feed/internal/api/handler"
	"github.com/d60-Lab/social-feed/internal/docstore"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/internal/service"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Auth:   config.AuthConfig{Mode: "header", UIDHeader: "X-User-Uid"},
		Social: config.SocialConfig{FollowerCap: 10, FeedLimit: 50},
	}
}

func newUserServer(t *testing.T) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	store := docstore.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	users := service.NewUserService(repository.NewUserRepository(store), nil, 10)
	return NewUserRouter(testConfig(), handler.NewUserHandler(users))
}

func do(t *testing.T, h http.Handler, method, path, uid string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if uid != "" {
		req.Header.Set("X-User-Uid", uid)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func createUser(t *testing.T, h http.Handler, uid string) {
	t.Helper()
	w := do(t, h, http.MethodPost, "/users", uid, map[string]string{
		"name": uid, "username": "name-" + uid,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestFollowEndpoint(t *testing.T) {
	h := newUserServer(t)
	createUser(t, h, "a")
	createUser(t, h, "b")

	w := do(t, h, http.MethodPost, "/users/b/followers", "a", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env struct {
		Code int `json:"code"`
		Data struct {
			TargetUserID   string `json:"targetUserId"`
			FollowersCount int    `json:"followersCount"`
			FollowingCount int    `json:"followingCount"`
			Following      bool   `json:"following"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "b", env.Data.TargetUserID)
	assert.Equal(t, 1, env.Data.FollowersCount)
	assert.True(t, env.Data.Following)

	// 自我关注是 400
	w = do(t, h, http.MethodPost, "/users/a/followers", "a", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 目标不存在是 404
	w = do(t, h, http.MethodPost, "/users/ghost/followers", "a", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 无身份头被当空 uid 拒绝
	w = do(t, h, http.MethodPost, "/users/b/followers", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnfollowEndpoint(t *testing.T) {
	h := newUserServer(t)
	createUser(t, h, "a")
	createUser(t, h, "b")

	w := do(t, h, http.MethodPost, "/users/b/followers", "a", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodDelete, "/users/b/followers", "a", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// 边已不存在，再删仍是 200
	w = do(t, h, http.MethodDelete, "/users/b/followers", "a", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFollowersListEndpoint(t *testing.T) {
	h := newUserServer(t)
	createUser(t, h, "a")
	createUser(t, h, "b")
	createUser(t, h, "c")

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/users/a/followers", "b", nil).Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/users/a/followers", "c", nil).Code)

	w := do(t, h, http.MethodGet, "/users/a/followers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data struct {
			UserID    string   `json:"userId"`
			Count     int      `json:"count"`
			Followers []string `json:"followers"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, 2, env.Data.Count)
	assert.ElementsMatch(t, []string{"b", "c"}, env.Data.Followers)
}

func TestGetUserByUsernameEndpoint(t *testing.T) {
	h := newUserServer(t)
	createUser(t, h, "a")

	w := do(t, h, http.MethodGet, "/users/username/name-a", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/users/username/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateUserValidation(t *testing.T) {
	h := newUserServer(t)

	// 缺 username 由绑定校验拦下
	w := do(t, h, http.MethodPost, "/users", "a", map[string]string{"name": "A"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimitReturns429(t *testing.T) {
	mr := miniredis.RunT(t)
	store := docstore.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	users := service.NewUserService(repository.NewUserRepository(store), nil, 10)

	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0, Burst: 1}
	h := NewUserRouter(cfg, handler.NewUserHandler(users))

	// 桶里只有一枚令牌且不回填
	w := do(t, h, http.MethodGet, "/users", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/users", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var env struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, http.StatusTooManyRequests, env.Code)
}

func TestHealthz(t *testing.T) {
	h := newUserServer(t)
	w := do(t, h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
