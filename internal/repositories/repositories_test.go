package repositories

import (
	"errors"
	"testing"
	"time"

	"github.com/Frederikmahipal/ba-client/internal/shared"
	"golang.org/x/oauth2"
)

func newTestRepository(t *testing.T) *SessionRepository {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return NewSessionRepository(db)
}

func testToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
}

func TestSessionRepositorySave(t *testing.T) {
	t.Run("Round Trips A Token", func(t *testing.T) {
		repo := newTestRepository(t)
		token := testToken()

		if err := repo.Save("Spotify", token); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		session, err := repo.Get("Spotify")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if session.Token.AccessToken != token.AccessToken {
			t.Errorf("expected access token %q, got %q", token.AccessToken, session.Token.AccessToken)
		}
		if session.Token.RefreshToken != token.RefreshToken {
			t.Errorf("expected refresh token %q, got %q", token.RefreshToken, session.Token.RefreshToken)
		}
		if !session.Token.Expiry.Equal(token.Expiry) {
			t.Errorf("expected expiry %v, got %v", token.Expiry, session.Token.Expiry)
		}
	})

	t.Run("Upserts Per Provider", func(t *testing.T) {
		repo := newTestRepository(t)

		if err := repo.Save("Spotify", testToken()); err != nil {
			t.Fatalf("first save: %v", err)
		}

		replacement := testToken()
		replacement.AccessToken = "rotated"
		if err := repo.Save("Spotify", replacement); err != nil {
			t.Fatalf("second save: %v", err)
		}

		session, err := repo.Get("Spotify")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if session.Token.AccessToken != "rotated" {
			t.Errorf("expected the replacement token, got %q", session.Token.AccessToken)
		}
	})

	t.Run("Rejects Empty Tokens", func(t *testing.T) {
		repo := newTestRepository(t)

		if err := repo.Save("Spotify", nil); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for nil, got %v", err)
		}
		if err := repo.Save("Spotify", &oauth2.Token{}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for empty, got %v", err)
		}
	})

	t.Run("Defaults The Token Type", func(t *testing.T) {
		repo := newTestRepository(t)
		token := testToken()
		token.TokenType = ""

		if err := repo.Save("Spotify", token); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		session, err := repo.Get("Spotify")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if session.Token.TokenType != "Bearer" {
			t.Errorf("expected Bearer, got %q", session.Token.TokenType)
		}
	})
}

func TestSessionRepositoryGet(t *testing.T) {
	t.Run("Missing Session", func(t *testing.T) {
		repo := newTestRepository(t)

		if _, err := repo.Get("Spotify"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Handles Null Refresh Token", func(t *testing.T) {
		repo := newTestRepository(t)
		token := testToken()
		token.RefreshToken = ""

		if err := repo.Save("Spotify", token); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		session, err := repo.Get("Spotify")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if session.Token.RefreshToken != "" {
			t.Errorf("expected an empty refresh token, got %q", session.Token.RefreshToken)
		}
	})
}

func TestSessionRepositoryDelete(t *testing.T) {
	t.Run("Removes The Session", func(t *testing.T) {
		repo := newTestRepository(t)

		if err := repo.Save("Spotify", testToken()); err != nil {
			t.Fatalf("save: %v", err)
		}
		if err := repo.Delete("Spotify"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := repo.Get("Spotify"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated after delete, got %v", err)
		}
	})

	t.Run("Missing Session", func(t *testing.T) {
		repo := newTestRepository(t)

		if err := repo.Delete("Spotify"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}
