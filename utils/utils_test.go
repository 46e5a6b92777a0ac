package utils

import (
	"Go_Site/config"
	"Go_Site/model"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSanitizeDisplayName(t *testing.T) {
	good := map[string]string{
		"hero.jpg":         "hero.jpg",
		"  spaced name.png": "spaced name.png",
		"ünïcode.webp":     "ünïcode.webp",
	}
	for in, want := range good {
		got, err := SanitizeDisplayName(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	for _, bad := range []string{"", "  ", "a/b.png", `a\b.png`, ".", "..", "tab\tname", string(make([]byte, 256))} {
		_, err := SanitizeDisplayName(bad)
		assert.ErrorIs(t, err, ErrInvalidName, "%q", bad)
	}
}

func TestFormatFromName(t *testing.T) {
	assert.Equal(t, "jpg", FormatFromName("Photo.JPG"))
	assert.Equal(t, "", FormatFromName("noext"))
}

func TestTokenRoundTrip(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	token, err := GenerateToken(7, "admin@example.com", true, false, time.Minute)
	require.NoError(t, err)
	claims, err := VerifyToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims.UserId)
	assert.True(t, claims.Admin)

	expired, err := GenerateToken(7, "admin@example.com", true, false, -time.Minute)
	require.NoError(t, err)
	_, err = VerifyToken(expired)
	assert.Error(t, err)

	config.AppConfig.JWTSecret = "rotated"
	_, err = VerifyToken(token)
	assert.Error(t, err)
}

func newAdminEngine() *gin.Engine {
	r := gin.New()
	r.GET("/admin", AuthMiddleware(), AdminMiddleware(), func(c *gin.Context) {
		Success(c, c.GetString("email"))
	})
	return r
}

func TestAdminMiddleware(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"
	r := newAdminEngine()
	adminToken, _ := GenerateToken(1, "a@example.com", false, true, time.Minute)
	userToken, _ := GenerateToken(2, "u@example.com", false, false, time.Minute)

	cases := []struct {
		header string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"Token " + adminToken, http.StatusUnauthorized},
		{"Bearer garbage", http.StatusUnauthorized},
		{"Bearer " + userToken, http.StatusForbidden},
		{"Bearer " + adminToken, http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.status, w.Code, tc.header)
	}
}

func TestFailWithStatus(t *testing.T) {
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		FailWithStatus(c, http.StatusConflict, errors.New("in use"), gin.H{"count": 2})
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"code":-1,"msg":"in use","data":{"count":2}}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(nil))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSAllowList(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://admin.example.com/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAssetCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	ctx := context.Background()
	cache := NewAssetCache(NewRedisCache(client), time.Minute)

	_, ok := cache.Get(ctx, "a1")
	assert.False(t, ok)

	cache.Set(ctx, &model.Asset{ID: "a1", Name: "one.png", Bytes: 9})
	got, ok := cache.Get(ctx, "a1")
	require.True(t, ok)
	assert.Equal(t, "one.png", got.Name)
	assert.True(t, mr.Exists("asset:a1"))
	assert.Len(t, mr.Keys(), 1)

	mr.FastForward(2 * time.Minute)
	_, ok = cache.Get(ctx, "a1")
	assert.False(t, ok)

	cache.Set(ctx, &model.Asset{ID: "a1", Name: "one.png"})
	cache.Invalidate(ctx, "a1")
	_, ok = cache.Get(ctx, "a1")
	assert.False(t, ok)
	assert.Empty(t, mr.Keys())
}

func TestNilAssetCache(t *testing.T) {
	var cache *AssetCache
	cache.Set(context.Background(), &model.Asset{ID: "x"})
	cache.Invalidate(context.Background(), "x")
	_, ok := cache.Get(context.Background(), "x")
	assert.False(t, ok)
	_, ok = NewAssetCache(nil, time.Minute).Get(context.Background(), "x")
	assert.False(t, ok)
}

func TestInitLoggerWritesFile(t *testing.T) {
	saved := Log
	t.Cleanup(func() { Log = saved })
	path := filepath.Join(t.TempDir(), "site.log")

	logger := InitLogger(LoggerOptions{Level: "debug", File: path, JSON: true})
	logger.Info("hello file")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello file"`)
}
