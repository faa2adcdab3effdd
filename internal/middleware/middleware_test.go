package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/care-portal/internal/model"
	"github.com/jwalitptl/care-portal/pkg/auth"
	"github.com/jwalitptl/care-portal/pkg/httputil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewJWTManager("secret", "care-portal", time.Hour)
	m := NewAuthMiddleware(tokens)

	r := gin.New()
	r.Use(m.Authenticate())
	r.GET("/whoami", func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		require.True(t, ok)
		fromCtx, ok := auth.FromContext(c.Request.Context())
		require.True(t, ok)
		assert.Equal(t, identity, fromCtx)
		c.String(http.StatusOK, identity.SubjectID.String())
	})
	r.GET("/clinicians-only", m.RequireRole(model.RoleClinician), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	patient := auth.Identity{SubjectID: uuid.New(), Role: model.RolePatient}
	token, _, err := tokens.Generate(patient)
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "error", decode(t, w).Status)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Basic "+token)
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
	})

	t.Run("foreign signature", func(t *testing.T) {
		other, _, err := auth.NewJWTManager("other", "care-portal", time.Hour).Generate(patient)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+other)
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := serve(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, patient.SubjectID.String(), w.Body.String())
	})

	t.Run("role denied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/clinicians-only", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, serve(r, req).Code)
	})
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Every(time.Hour), Burst: 2})
	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	request := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1"))
	assert.Equal(t, http.StatusOK, request("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1"))
	assert.Equal(t, http.StatusOK, request("10.0.0.2"))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(HeaderXRequestID)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	w = serve(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode(t, w).Message)
}

func TestTimeout_SetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(time.Second))
	r.GET("/", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}
