package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Frederikmahipal/ba-client/internal/server"
	"github.com/Frederikmahipal/ba-client/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin runs the OAuth2 authorization code flow.
//
// Starts a local HTTP server, opens the browser for user authorization,
// exchanges the auth code for tokens, and persists the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml", shared.ErrMissingCredentials)
	}

	token, err := r.doOAuth(ctx, "authorization")
	if err != nil {
		return err
	}

	if err := r.spotify.AuthenticateToken(ctx, token); err != nil {
		return err
	}
	r.saveSession(token)

	r.writePlainln("✓ Authorization successful")
	r.writePlain("You can now use: ba-client now\n")

	return nil
}

// AuthStatus reports whether a usable session exists.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify transport not initialized", shared.ErrServiceUnavailable)
	}

	sessions, closeDB, err := r.openSessions()
	if err != nil {
		return err
	}
	defer closeDB()

	session, err := sessions.Get(r.spotify.Name())
	if err != nil {
		r.writePlain("✗ Not authenticated\n")
		r.writePlain("Run 'ba-client auth login' to sign in\n")
		return nil
	}

	r.writePlain("✓ Session found for %s\n", session.Provider)
	if session.Token.Expiry.IsZero() {
		r.writePlain("Expiry: unknown\n")
	} else if session.Token.Expiry.Before(time.Now()) {
		if session.Token.RefreshToken != "" {
			r.writePlain("Access token expired; will refresh on next use\n")
		} else {
			r.writePlain("✗ Session expired, run 'ba-client auth login'\n")
		}
	} else {
		r.writePlain("Expires: %s\n", session.Token.Expiry.Local().Format(time.RFC1123))
	}
	return nil
}

// AuthImportCurl creates a session from a cURL command copied out of the
// browser's network inspector, for accounts where the OAuth app is not set up.
func (r *Runner) AuthImportCurl(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}
	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var (
		headers *shared.CurlHeaders
		err     error
	)
	if curlFile != "" {
		headers, err = shared.ParseCurlFile(curlFile)
	} else {
		headers, err = shared.ParseCurlCommand([]byte(curlCmd))
	}
	if err != nil {
		return fmt.Errorf("failed to parse cURL command: %w", err)
	}

	bearer, err := headers.BearerToken()
	if err != nil {
		return err
	}

	token := &oauth2.Token{AccessToken: bearer, TokenType: "Bearer"}
	if r.spotify != nil {
		if err := r.spotify.AuthenticateToken(ctx, token); err != nil {
			return err
		}
		r.saveSession(token)
	} else {
		r.logger.Warn("no Spotify credentials configured, session not verified")
	}

	r.writePlain("✓ Session imported\n")
	r.writePlain("Note: browser tokens expire quickly and cannot be refreshed\n")
	return nil
}

// AuthLogout deletes the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	sessions, closeDB, err := r.openSessions()
	if err != nil {
		return err
	}
	defer closeDB()

	provider := "Spotify"
	if r.spotify != nil {
		provider = r.spotify.Name()
	}

	if err := sessions.Delete(provider); err != nil {
		return err
	}
	return r.writePlain("✓ Session deleted\n")
}

// doOAuth runs the callback server half of the authorization code flow.
func (r *Runner) doOAuth(ctx context.Context, prefix string) (*oauth2.Token, error) {
	state := shared.GenerateID()

	authURL := r.spotify.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(r.spotify.OAuthConfig(), state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server for %s at %v", prefix, serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify %s...\n", prefix)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}
