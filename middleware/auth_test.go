package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"backend_zgt/config"
	"backend_zgt/models"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:    "test-secret-key-for-auth-middleware-tests",
			Issuer:    "zgt-system",
			ExpiresIn: time.Hour,
		},
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	cfg := testAuthConfig()
	user := &models.User{Username: "operator1", Role: "operator"}
	user.ID = 7

	token, err := GenerateToken(user, cfg)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ParseToken(token, cfg)
	assert.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "operator1", claims.Username)
	assert.Equal(t, "operator", claims.Role)
	assert.Equal(t, "zgt-system", claims.Issuer)
}

func TestParseToken_WrongSecret(t *testing.T) {
	cfg := testAuthConfig()
	user := &models.User{Username: "operator1", Role: "operator"}

	token, err := GenerateToken(user, cfg)
	assert.NoError(t, err)

	other := testAuthConfig()
	other.JWT.Secret = "another-secret-key-that-does-not-match"

	_, err = ParseToken(token, other)
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	cfg := testAuthConfig()
	cfg.JWT.ExpiresIn = -time.Minute

	user := &models.User{Username: "operator1", Role: "operator"}
	token, err := GenerateToken(user, cfg)
	assert.NoError(t, err)

	_, err = ParseToken(token, cfg)
	assert.Error(t, err)
}

func newAuthTestRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", RequireAuth(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetCurrentUserID(c)})
	})
	r.GET("/admin", RequireAuth(cfg), RequireRole("admin"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	cfg := testAuthConfig()
	r := newAuthTestRouter(cfg)

	// Без заголовка
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Не Bearer
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic abc123")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Валидный токен
	user := &models.User{Username: "operator1", Role: "operator"}
	user.ID = 3
	token, err := GenerateToken(user, cfg)
	assert.NoError(t, err)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":3`)
}

func TestRequireRole(t *testing.T) {
	cfg := testAuthConfig()
	r := newAuthTestRouter(cfg)

	operator := &models.User{Username: "operator1", Role: "operator"}
	operatorToken, err := GenerateToken(operator, cfg)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+operatorToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := &models.User{Username: "admin1", Role: "admin"}
	adminToken, err := GenerateToken(admin, cfg)
	assert.NoError(t, err)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
