// package repositories provides the persistence layer for OAuth sessions.
//
// Playback state (currently playing, queue, history) is deliberately never
// persisted; only the credentials needed to rebuild a session across runs
// live in the database.
package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Frederikmahipal/ba-client/internal/shared"
	"golang.org/x/oauth2"
)

// Session is a persisted OAuth session for a streaming provider.
type Session struct {
	ID        string
	Provider  string
	Token     oauth2.Token
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionRepository stores one OAuth session per provider.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository with the given database connection.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save upserts the session for a provider, replacing any prior token.
func (r *SessionRepository) Save(provider string, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidInput)
	}

	query := `
		INSERT INTO sessions (id, provider, access_token, refresh_token, token_type, expiry, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(provider) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			updated_at = CURRENT_TIMESTAMP
	`

	tokenType := token.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	var expiry any
	if !token.Expiry.IsZero() {
		expiry = token.Expiry.UTC()
	}

	_, err := r.db.Exec(query, shared.GenerateID(), provider, token.AccessToken, token.RefreshToken, tokenType, expiry)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Get retrieves the session for a provider.
func (r *SessionRepository) Get(provider string) (*Session, error) {
	query := `
		SELECT id, provider, access_token, refresh_token, token_type, expiry, created_at, updated_at
		FROM sessions
		WHERE provider = ?
	`

	var (
		session      Session
		refreshToken sql.NullString
		expiry       sql.NullTime
	)

	err := r.db.QueryRow(query, provider).Scan(
		&session.ID,
		&session.Provider,
		&session.Token.AccessToken,
		&refreshToken,
		&session.Token.TokenType,
		&expiry,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no session for %s", shared.ErrNotAuthenticated, provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	session.Token.RefreshToken = refreshToken.String
	if expiry.Valid {
		session.Token.Expiry = expiry.Time
	}

	return &session, nil
}

// Delete removes the session for a provider.
func (r *SessionRepository) Delete(provider string) error {
	result, err := r.db.Exec("DELETE FROM sessions WHERE provider = ?", provider)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: no session for %s", shared.ErrNotAuthenticated, provider)
	}
	return nil
}
