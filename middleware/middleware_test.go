package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"hrtracker/model"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func signToken(t *testing.T, secret, userID string, ttl time.Duration) string {
	t.Helper()
	claims := model.AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func authRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", AccessTokenMiddleware(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.GetString("userId")})
	})
	return r
}

func TestAccessTokenMiddleware(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Token abc", http.StatusUnauthorized},
		{"bad signature", "Bearer " + signToken(t, "other", "e1", time.Hour), http.StatusForbidden},
		{"expired", "Bearer " + signToken(t, testSecret, "e1", -time.Hour), http.StatusForbidden},
		{"no user", "Bearer " + signToken(t, testSecret, "", time.Hour), http.StatusUnauthorized},
		{"valid", "Bearer " + signToken(t, testSecret, "e1", time.Hour), http.StatusOK},
	}
	r := authRouter()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func newDeduper(t *testing.T) *RedisDeduper {
	t.Helper()
	m, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() {
		if cerr := client.Close(); cerr != nil {
			t.Logf("redis close: %v", cerr)
		}
	})
	return NewRedisDeduper(client, time.Minute)
}

func TestRedisDeduperNamespacesByUser(t *testing.T) {
	d := newDeduper(t)
	ctx := context.Background()
	if ok, err := d.Add(ctx, "u1", "k"); err != nil || !ok {
		t.Fatalf("first add = %v, %v", ok, err)
	}
	if ok, _ := d.Add(ctx, "u1", "k"); ok {
		t.Fatal("duplicate key accepted for same user")
	}
	if ok, _ := d.Add(ctx, "u2", "k"); !ok {
		t.Fatal("key of another user rejected")
	}
	if err := d.Remove(ctx, "u1", "k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if ok, _ := d.Add(ctx, "u1", "k"); !ok {
		t.Fatal("released key not accepted again")
	}
}

func TestIdempotentMiddleware(t *testing.T) {
	d := newDeduper(t)
	status := http.StatusCreated
	r := gin.New()
	r.POST("/task", AccessTokenMiddleware(testSecret), Idempotent(d, quietLogger()), func(c *gin.Context) {
		c.JSON(status, gin.H{})
	})
	token := "Bearer " + signToken(t, testSecret, "e1", time.Hour)
	send := func(key string) int {
		req := httptest.NewRequest(http.MethodPost, "/task", nil)
		req.Header.Set("Authorization", token)
		if key != "" {
			req.Header.Set(IdempotencyHeader, key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if got := send("a"); got != http.StatusCreated {
		t.Fatalf("first request = %d", got)
	}
	if got := send("a"); got != http.StatusConflict {
		t.Fatalf("replay = %d, want 409", got)
	}
	if got := send(""); got != http.StatusCreated {
		t.Fatalf("request without key = %d", got)
	}

	status = http.StatusBadRequest
	if got := send("b"); got != http.StatusBadRequest {
		t.Fatalf("failing request = %d", got)
	}
	status = http.StatusCreated
	if got := send("b"); got != http.StatusCreated {
		t.Fatalf("retry after failure = %d, want 201", got)
	}
}
