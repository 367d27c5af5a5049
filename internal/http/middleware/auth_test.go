package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const authTestSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, claims)
	s, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func authRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BearerIdentity(authTestSecret))
	r.GET("/whoami", func(c *gin.Context) {
		uid, _ := c.Get("userID")
		s, _ := uid.(string)
		c.String(http.StatusOK, s)
	})
	return r
}

func TestBearerIdentity_NoHeader_PassesThroughAnonymously(t *testing.T) {
	r := authRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "" {
		t.Fatalf("expected no identity, got %q", w.Body.String())
	}
}

func TestBearerIdentity_NonBearerScheme_Ignored(t *testing.T) {
	r := authRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "" {
		t.Fatalf("non-bearer scheme should pass anonymously: %d %q", w.Code, w.Body.String())
	}
}

func TestBearerIdentity_ValidToken_SetsUserID(t *testing.T) {
	r := authRouter(t)

	tok := signToken(t, jwt.SigningMethodHS256, authTestSecret, jwt.MapClaims{
		"sub": "u42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	if w.Body.String() != "u42" {
		t.Fatalf("expected sub claim as identity, got %q", w.Body.String())
	}
}

func TestBearerIdentity_Rejections(t *testing.T) {
	cases := []struct {
		name  string
		token string
	}{
		{"garbage token", "not.a.jwt"},
		{"wrong secret", signTokenHelper(jwt.SigningMethodHS256, "other-secret", jwt.MapClaims{"sub": "u1"})},
		{"expired", signTokenHelper(jwt.SigningMethodHS256, authTestSecret, jwt.MapClaims{
			"sub": "u1",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})},
		{"missing sub", signTokenHelper(jwt.SigningMethodHS256, authTestSecret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := authRouter(t)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.Header.Set("Authorization", "Bearer "+tc.token)
			r.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d body=%s", w.Code, w.Body.String())
			}
		})
	}
}

// signTokenHelper is the non-failing variant for table construction.
func signTokenHelper(method jwt.SigningMethod, secret string, claims jwt.MapClaims) string {
	tok := jwt.NewWithClaims(method, claims)
	s, _ := tok.SignedString([]byte(secret))
	return s
}
