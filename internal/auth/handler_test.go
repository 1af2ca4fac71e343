package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedidoflow/pedidoflow/internal/shared"
)

// commitWriter persists the session before the first header write, the
// same ordering the app middleware uses.
type commitWriter struct {
	http.ResponseWriter
	sess          *shared.Session
	manager       *shared.SessionManager
	ctx           context.Context
	headerWritten bool
}

func (w *commitWriter) WriteHeader(statusCode int) {
	if !w.headerWritten {
		w.headerWritten = true
		_ = w.manager.Commit(w.ctx, w.ResponseWriter, w.sess)
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *commitWriter) Write(b []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func testServer(t *testing.T) (*httptest.Server, *mockUserRepo) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(client, "pedidoflow_session", "test-secret", time.Hour, false)

	repo := repoWithUser(t, "v@pedidoflow.com.br", "segredo123", true)
	handler := NewHandler(NewService(repo, slog.Default()), sessions, repo, nil, slog.Default())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessions.Load(req.Context(), req)
			require.NoError(t, err)
			ctx := shared.ContextWithSession(req.Context(), sess)
			next.ServeHTTP(&commitWriter{ResponseWriter: w, sess: sess, manager: sessions, ctx: ctx}, req.WithContext(ctx))
		})
	})
	RegisterRoutes(r, handler)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, repo
}

func TestLoginMeLogoutFlow(t *testing.T) {
	srv, _ := testServer(t)

	resp, err := http.Post(srv.URL+"/auth/login", "application/json",
		strings.NewReader(`{"email":"v@pedidoflow.com.br","password":"segredo123"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "pedidoflow_session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "login must set the session cookie")

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/me", nil)
	require.NoError(t, err)
	req.AddCookie(cookie)

	meResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer meResp.Body.Close()
	assert.Equal(t, http.StatusOK, meResp.StatusCode)

	logoutReq, err := http.NewRequest(http.MethodPost, srv.URL+"/auth/logout", nil)
	require.NoError(t, err)
	logoutReq.AddCookie(cookie)

	logoutResp, err := http.DefaultClient.Do(logoutReq)
	require.NoError(t, err)
	defer logoutResp.Body.Close()
	require.Equal(t, http.StatusOK, logoutResp.StatusCode)

	afterReq, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/me", nil)
	require.NoError(t, err)
	afterReq.AddCookie(cookie)

	afterResp, err := http.DefaultClient.Do(afterReq)
	require.NoError(t, err)
	defer afterResp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, afterResp.StatusCode)
}

func TestLoginSenhaErrada(t *testing.T) {
	srv, _ := testServer(t)

	resp, err := http.Post(srv.URL+"/auth/login", "application/json",
		strings.NewReader(`{"email":"v@pedidoflow.com.br","password":"errada"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMeSemSessao(t *testing.T) {
	srv, _ := testServer(t)

	resp, err := http.Get(srv.URL + "/auth/me")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
