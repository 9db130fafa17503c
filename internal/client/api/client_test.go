package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mkowalczyk/allerlog/internal/client/token"
	"github.com/mkowalczyk/allerlog/internal/common"
)

// testBackend is an httptest server with a counting refresh endpoint and a
// protected route that only accepts the refreshed token.
type testBackend struct {
	srv          *httptest.Server
	mux          *http.ServeMux
	refreshCalls atomic.Int64
	logoutCalls  atomic.Int64
	refreshFails bool

	mu       sync.Mutex
	lastAuth string
}

func newBackend(t *testing.T) *testBackend {
	t.Helper()
	b := &testBackend{mux: http.NewServeMux()}

	b.mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.refreshCalls.Add(1)
		if b.refreshFails {
			http.Error(w, `{"message":"no refresh token"}`, http.StatusUnauthorized)
			return
		}
		// Simulate the slow exchange concurrent 401s pile up behind.
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte(`{"accessToken":"NEW_TOKEN"}`))
	})
	b.mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		b.logoutCalls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	b.mux.HandleFunc("GET /protected", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.lastAuth = r.Header.Get("Authorization")
		b.mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer NEW_TOKEN" {
			http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"authorized":true}`))
	})

	b.srv = httptest.NewServer(b.mux)
	t.Cleanup(b.srv.Close)
	return b
}

func newClient(t *testing.T, b *testBackend, tok string) (*Client, *token.Store) {
	t.Helper()
	store := token.NewStore(filepath.Join(t.TempDir(), "token"))
	if tok != "" {
		require.NoError(t, store.Set(tok))
	}
	return New(b.srv.URL, store), store
}

func TestClient_AttachesBearerHeader(t *testing.T) {
	b := newBackend(t)
	var got string
	b.mux.HandleFunc("GET /needs-auth", func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	})

	c, _ := newClient(t, b, "OLD_TOKEN")
	require.NoError(t, c.Get(context.Background(), "/needs-auth", nil))
	require.Equal(t, "Bearer OLD_TOKEN", got)
}

func TestClient_NoHeaderWithoutToken(t *testing.T) {
	b := newBackend(t)
	var got string
	b.mux.HandleFunc("GET /open", func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	})

	c, _ := newClient(t, b, "")
	require.NoError(t, c.Get(context.Background(), "/open", nil))
	require.Empty(t, got)
}

func TestClient_RefreshesOn401AndRetriesOnce(t *testing.T) {
	b := newBackend(t)
	c, store := newClient(t, b, "OLD_TOKEN")

	var out struct {
		Authorized bool `json:"authorized"`
	}
	require.NoError(t, c.Get(context.Background(), "/protected", &out))
	require.True(t, out.Authorized)
	require.EqualValues(t, 1, b.refreshCalls.Load())
	require.Equal(t, "NEW_TOKEN", store.Get())
}

func TestClient_SingleRefreshForConcurrent401s(t *testing.T) {
	b := newBackend(t)
	c, _ := newClient(t, b, "OLD_TOKEN")

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.Get(context.Background(), "/protected", nil)
		}(i)
	}
	wg.Wait()

	require.EqualValues(t, 1, b.refreshCalls.Load())
	for _, err := range errs {
		require.NoError(t, err)
	}
}

func TestClient_RetriedRequestFailsWithoutSecondRefresh(t *testing.T) {
	b := newBackend(t)
	b.mux.HandleFunc("GET /fail-twice", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"nope"}`, http.StatusUnauthorized)
	})

	c, _ := newClient(t, b, "OLD_TOKEN")
	err := c.Get(context.Background(), "/fail-twice", nil)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusUnauthorized, httpErr.Status)
	require.EqualValues(t, 1, b.refreshCalls.Load())
}

func TestClient_NoRefreshForAuthEndpoints(t *testing.T) {
	b := newBackend(t)
	b.mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"bad credentials"}`, http.StatusUnauthorized)
	})
	b.mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"bad input"}`, http.StatusUnauthorized)
	})

	c, _ := newClient(t, b, "OLD_TOKEN")
	require.Error(t, c.Post(context.Background(), common.PathLogin, map[string]string{}, nil))
	require.Error(t, c.Post(context.Background(), common.PathRegister, map[string]string{}, nil))
	require.EqualValues(t, 0, b.refreshCalls.Load())
}

func TestClient_NoRefreshWithoutStoredToken(t *testing.T) {
	b := newBackend(t)
	c, _ := newClient(t, b, "")

	err := c.Get(context.Background(), "/protected", nil)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.EqualValues(t, 0, b.refreshCalls.Load())
}

func TestClient_FailedRefreshClearsTokenAndNotifiesLogout(t *testing.T) {
	b := newBackend(t)
	b.refreshFails = true
	c, store := newClient(t, b, "OLD_TOKEN")

	err := c.Get(context.Background(), "/protected", nil)
	require.ErrorIs(t, err, common.ErrAuthExpired)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusUnauthorized, httpErr.Status)

	require.Empty(t, store.Get())
	require.EqualValues(t, 1, b.refreshCalls.Load())
	require.EqualValues(t, 1, b.logoutCalls.Load())
}

func TestClient_RefreshGuardReleasedAfterSettle(t *testing.T) {
	b := newBackend(t)
	b.mux.HandleFunc("GET /always-401", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{}`, http.StatusUnauthorized)
	})

	c, store := newClient(t, b, "OLD_TOKEN")
	require.Error(t, c.Get(context.Background(), "/always-401", nil))
	require.EqualValues(t, 1, b.refreshCalls.Load())

	// A later 401 must be able to start a new refresh cycle.
	require.NoError(t, store.Set("STALE_AGAIN"))
	require.Error(t, c.Get(context.Background(), "/always-401", nil))
	require.EqualValues(t, 2, b.refreshCalls.Load())
}

func TestClient_NonAuthFailurePropagatesUnchanged(t *testing.T) {
	b := newBackend(t)
	b.mux.HandleFunc("GET /missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"entry not found"}`, http.StatusNotFound)
	})

	c, _ := newClient(t, b, "OLD_TOKEN")
	err := c.Get(context.Background(), "/missing", nil)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusNotFound, httpErr.Status)
	require.Equal(t, "entry not found", httpErr.ServerMessage())
	require.EqualValues(t, 0, b.refreshCalls.Load())
}

func TestClient_NetworkErrorClassified(t *testing.T) {
	store := token.NewStore(filepath.Join(t.TempDir(), "token"))
	c := New("http://127.0.0.1:1", store, WithTimeout(200*time.Millisecond))

	err := c.Get(context.Background(), "/anything", nil)
	require.ErrorIs(t, err, common.ErrNetwork)
}

func TestClient_PostPutDeleteRoundTrip(t *testing.T) {
	b := newBackend(t)
	b.mux.HandleFunc("POST /api/echo", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok":true}`))
	})
	b.mux.HandleFunc("PUT /api/echo", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	})
	b.mux.HandleFunc("DELETE /api/echo", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	c, _ := newClient(t, b, "OLD_TOKEN")
	ctx := context.Background()

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.Post(ctx, "/api/echo", map[string]int{"a": 1}, &out))
	require.True(t, out.OK)
	require.NoError(t, c.Put(ctx, "/api/echo", map[string]int{"a": 2}, nil))
	require.NoError(t, c.Delete(ctx, "/api/echo"))
}
