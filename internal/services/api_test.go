package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Frederikmahipal/ba-client/internal/shared"
	"golang.org/x/oauth2"
)

func TestAPIService(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		api := NewAPIService("", nil)
		if api.baseURL != "http://localhost:4000/api/spotify" {
			t.Errorf("unexpected default base URL %s", api.baseURL)
		}
		if api.httpClient == nil {
			t.Error("expected a default HTTP client")
		}
	})

	t.Run("Attaches Bearer Token", func(t *testing.T) {
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			io.WriteString(w, `{}`)
		}))
		defer server.Close()

		api := NewAPIService(server.URL, server.Client())
		api.SetTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "token123", TokenType: "Bearer"}))

		if _, err := api.Get(context.Background(), "/player"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gotAuth != "Bearer token123" {
			t.Errorf("expected bearer header, got %q", gotAuth)
		}
	})

	t.Run("No Token Source Means No Header", func(t *testing.T) {
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			io.WriteString(w, `{}`)
		}))
		defer server.Close()

		api := NewAPIService(server.URL, server.Client())
		if _, err := api.Get(context.Background(), "/player"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gotAuth != "" {
			t.Errorf("expected no auth header, got %q", gotAuth)
		}
	})

	t.Run("Failing Token Source Is Not Authenticated", func(t *testing.T) {
		api := NewAPIService("http://localhost:0", nil)
		api.SetTokenSource(failingTokenSource{})

		_, err := api.Get(context.Background(), "/player")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Detects JSON Responses", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"is_playing": true}`)
		}))
		defer server.Close()

		api := NewAPIService(server.URL, server.Client())
		resp, err := api.Get(context.Background(), "/player")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !resp.IsJSON {
			t.Error("expected the response to be recognized as JSON")
		}
		data, ok := resp.JSONData.(map[string]any)
		if !ok || data["is_playing"] != true {
			t.Errorf("unexpected JSON data %v", resp.JSONData)
		}
	})

	t.Run("Keeps Non JSON Bodies Raw", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "plain text")
		}))
		defer server.Close()

		api := NewAPIService(server.URL, server.Client())
		resp, err := api.Get(context.Background(), "/health")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.IsJSON {
			t.Error("expected IsJSON false")
		}
		if !strings.Contains(string(resp.Body), "plain text") {
			t.Errorf("unexpected body %q", resp.Body)
		}
	})

	t.Run("Put Sends JSON Content Type", func(t *testing.T) {
		var gotContentType string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotContentType = r.Header.Get("Content-Type")
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		api := NewAPIService(server.URL, server.Client())
		if _, err := api.Put(context.Background(), "/player", []byte(`{}`)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gotContentType != "application/json" {
			t.Errorf("expected JSON content type, got %q", gotContentType)
		}
	})
}

type failingTokenSource struct{}

func (failingTokenSource) Token() (*oauth2.Token, error) {
	return nil, errors.New("refresh failed")
}
