package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func TestBasicRouter(t *testing.T) {
	t.Run("Filters By Method", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "pong")
		}))

		get := httptest.NewRecorder()
		router.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if get.Code != http.StatusOK || get.Body.String() != "pong" {
			t.Errorf("unexpected GET response %d %q", get.Code, get.Body.String())
		}

		post := httptest.NewRecorder()
		router.ServeHTTP(post, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if post.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405 for POST, got %d", post.Code)
		}
	})

	t.Run("First Registered Middleware Runs First", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("outer"), mark("inner"))
		router.Handle(http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if len(order) != 3 || order[0] != "outer" || order[1] != "inner" || order[2] != "handler" {
			t.Errorf("unexpected execution order %v", order)
		}
	})

	t.Run("Registers Every Declared Route", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(NewOAuthHandler(&oauth2.Config{}, "state"))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=wrong", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected the callback route to be served, got %d", rec.Code)
		}
	})
}

// tokenEndpoint fakes the provider's token exchange.
func tokenEndpoint(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token":"token123","token_type":"Bearer","expires_in":3600}`)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOAuthHandler(t *testing.T) {
	t.Run("Delivers The Exchanged Token", func(t *testing.T) {
		provider := tokenEndpoint(t)
		config := &oauth2.Config{Endpoint: oauth2.Endpoint{TokenURL: provider.URL}}
		handler := NewOAuthHandler(config, "state-1")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state-1&code=abc", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Signed in") {
			t.Errorf("expected the success page, got %q", rec.Body.String())
		}

		result := <-handler.Result()
		if result.Error() != nil {
			t.Fatalf("expected no error, got %v", result.Error())
		}
		if result.Token == nil || result.Token.AccessToken != "token123" {
			t.Errorf("unexpected token %+v", result.Token)
		}
	})

	t.Run("Rejects A State Mismatch", func(t *testing.T) {
		handler := NewOAuthHandler(&oauth2.Config{}, "state-1")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=forged&code=abc", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if result := <-handler.Result(); result.Error() == nil {
			t.Error("expected a state mismatch error")
		}
	})

	t.Run("Reports The Provider Denial", func(t *testing.T) {
		handler := NewOAuthHandler(&oauth2.Config{}, "state-1")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
			"/callback?state=state-1&error=access_denied&error_description=user+declined", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-handler.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected the denial reason, got %v", result.Error())
		}
	})

	t.Run("Accepts Only One Callback", func(t *testing.T) {
		provider := tokenEndpoint(t)
		config := &oauth2.Config{Endpoint: oauth2.Endpoint{TokenURL: provider.URL}}
		handler := NewOAuthHandler(config, "state-1")

		first := httptest.NewRecorder()
		handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/callback?state=state-1&code=abc", nil))
		if first.Code != http.StatusOK {
			t.Fatalf("first callback: %d", first.Code)
		}

		replay := httptest.NewRecorder()
		handler.ServeHTTP(replay, httptest.NewRequest(http.MethodGet, "/callback?state=state-1&code=abc", nil))
		if replay.Code != http.StatusBadRequest {
			t.Errorf("expected the replay to be rejected, got %d", replay.Code)
		}
	})
}
