package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func authRouter(cfg AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(cfg))
	r.GET("/api/notes", func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})
	r.GET("/api/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func acceptToken(userID string) func(string) (map[string]interface{}, error) {
	return func(token string) (map[string]interface{}, error) {
		if token != "good-token" {
			return nil, errors.New("bad token")
		}
		return map[string]interface{}{"user_id": userID}, nil
	}
}

func TestAuthAcceptsValidToken(t *testing.T) {
	router := authRouter(AuthConfig{TokenValidator: acceptToken("user-7")})

	req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "user-7" {
		t.Errorf("user id = %q", rec.Body.String())
	}
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	router := authRouter(AuthConfig{TokenValidator: acceptToken("user-7")})

	req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	router := authRouter(AuthConfig{TokenValidator: acceptToken("user-7")})

	req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	req.Header.Set("Authorization", "Basic abc123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	router := authRouter(AuthConfig{TokenValidator: acceptToken("user-7")})

	req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	req.Header.Set("Authorization", "Bearer tampered")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthSkipPaths(t *testing.T) {
	router := authRouter(AuthConfig{
		TokenValidator: acceptToken("user-7"),
		SkipPaths:      []string{"/api/health"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 without auth", rec.Code)
	}
}
