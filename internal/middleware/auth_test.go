package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BearerAuth(AuthConfig{TokenAPI: token}))
	r.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestBearerAuth(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"sem header", "", http.StatusUnauthorized},
		{"formato inválido", "Token abc", http.StatusUnauthorized},
		{"token errado", "Bearer errado", http.StatusUnauthorized},
		{"token correto", "Bearer segredo", http.StatusOK},
		{"bearer case-insensitive", "bearer segredo", http.StatusOK},
	}

	r := setupRouter("segredo")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, esperado %d", w.Code, tt.wantStatus)
			}
		})
	}
}
