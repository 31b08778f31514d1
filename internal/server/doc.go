// Package server provides HTTP routing, middleware, and the OAuth callback
// handler for the login flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Current Usage
//
// When the user runs the auth command, a temporary HTTP server starts on the
// configured host/port, the browser is opened to the authorization URL, and
// the server shuts down after the callback delivers the token. The token is
// then persisted through the session repository so later commands can rebuild
// the transport session without a new login.
package server
