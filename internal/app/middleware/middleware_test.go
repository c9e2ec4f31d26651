package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ak/sba/internal/infrastructure/config"
	"github.com/ak/sba/internal/infrastructure/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testJWT = JWTConfig{Secret: "s3cret", Issuer: "sba", AccessTokenTTL: time.Hour}

func protected(cfg JWTConfig, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{JWTMiddleware(cfg)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, GetSubject(c))
	})
	r.GET("/private", handlers...)
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWTMiddleware(t *testing.T) {
	r := protected(testJWT)

	token, err := GenerateToken(testJWT, "grower-1", []string{"admin"})
	require.NoError(t, err)

	rec := get(r, "/private", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "grower-1", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, "/private", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/private", "not-a-token").Code)

	other, err := GenerateToken(JWTConfig{Secret: "other", Issuer: "sba", AccessTokenTTL: time.Hour}, "x", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/private", other).Code)

	foreign, err := GenerateToken(JWTConfig{Secret: testJWT.Secret, Issuer: "elsewhere", AccessTokenTTL: time.Hour}, "x", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/private", foreign).Code)
}

func TestJWTMiddleware_Expired(t *testing.T) {
	cfg := testJWT
	cfg.AccessTokenTTL = -time.Minute
	token, err := GenerateToken(cfg, "grower-1", nil)
	require.NoError(t, err)

	_, err = ValidateToken(token, cfg.Secret)
	require.ErrorIs(t, err, ErrTokenExpired)

	rec := get(protected(cfg), "/private", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"TOKEN_EXPIRED"`)
}

func TestJWTMiddleware_ErrorCodes(t *testing.T) {
	r := protected(testJWT)

	rec := get(r, "/private", "")
	assert.Contains(t, rec.Body.String(), `"code":"UNAUTHORIZED"`)

	rec = get(r, "/private", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"TOKEN_INVALID"`)

	foreign, err := GenerateToken(JWTConfig{Secret: testJWT.Secret, Issuer: "elsewhere", AccessTokenTTL: time.Hour}, "x", nil)
	require.NoError(t, err)
	rec = get(r, "/private", foreign)
	assert.Contains(t, rec.Body.String(), `"code":"TOKEN_INVALID"`)
	assert.Contains(t, rec.Body.String(), "invalid token issuer")
}

func TestGenerateToken_RequiresSecret(t *testing.T) {
	_, err := GenerateToken(JWTConfig{}, "grower-1", nil)
	assert.Error(t, err)
}

func TestRequireRole(t *testing.T) {
	r := protected(testJWT, RequireRole("admin"))

	admin, err := GenerateToken(testJWT, "a", []string{"admin"})
	require.NoError(t, err)
	viewer, err := GenerateToken(testJWT, "v", []string{"viewer"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, get(r, "/private", admin).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/private", viewer).Code)
}

func TestBodySizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodySizeLimit(8, zap.NewNop()))
	r.POST("/echo", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("0123456789"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("0123"))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(requestid.New(), RecoveryMiddleware(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) {
		panic("kaboom")
	})

	rec := get(r, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New(config.MetricsConfig{Enabled: true, Namespace: "sba"})
	r := gin.New()
	r.Use(MetricsMiddleware(m))
	r.GET("/items/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	get(r, "/items/1", "")
	get(r, "/items/2", "")
	get(r, "/nowhere", "")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `sba_http_requests_total{method="GET",route="/items/:id",status="200"} 2`)
	assert.Contains(t, body, `route="unmatched"`)
}

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())

	type brewRequest struct {
		Stage string `binding:"required,brewstage"`
		Unit  string `binding:"omitempty,carbunit"`
	}

	tests := []struct {
		name    string
		req     brewRequest
		wantErr bool
	}{
		{"stage and unit", brewRequest{Stage: "veg", Unit: "g"}, false},
		{"stage only", brewRequest{Stage: "late-flower"}, false},
		{"unknown stage", brewRequest{Stage: "harvest"}, true},
		{"unknown unit", brewRequest{Stage: "veg", Unit: "oz"}, true},
		{"missing stage", brewRequest{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
