package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

const loginSuccessPage = `<!DOCTYPE html>
<html>
<head>
    <title>ba-client</title>
    <style>
        body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center;
               height: 100vh; margin: 0; background: #121212; }
        main { text-align: center; background: #181818; color: #fff;
               padding: 2rem 3rem; border-radius: 8px; }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #b3b3b3; margin: 0; }
    </style>
</head>
<body>
    <main>
        <h1>Signed in</h1>
        <p>ba-client is connected. You can close this tab.</p>
    </main>
</body>
</html>
`

// OAuthResult is the outcome of one authorization attempt: a token or the
// reason the flow failed.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler receives the authorization-code callback on the loopback
// server. It accepts exactly one callback per flow; anything after the
// first, replayed or forged, is rejected.
type OAuthHandler struct {
	config  *oauth2.Config
	state   string
	results chan OAuthResult

	mu      sync.Mutex
	handled bool
	sent    bool
}

// NewOAuthHandler creates a handler bound to one flow. The state token must
// be freshly random per flow; the callback is dropped when it does not echo
// it back.
func NewOAuthHandler(config *oauth2.Config, state string) *OAuthHandler {
	return &OAuthHandler{
		config:  config,
		state:   state,
		results: make(chan OAuthResult, 1),
	}
}

// Routes returns the paths this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{"/callback"}
}

// Result returns the channel carrying the flow's single outcome. The channel
// is closed after delivery.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.results
}

// ServeHTTP validates the callback, exchanges the code for a token, and
// delivers the outcome through the result channel.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.handled {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.handled = true
	h.mu.Unlock()

	query := r.URL.Query()

	if query.Get("state") != h.state {
		h.deliver(OAuthResult{err: fmt.Errorf("state mismatch in callback")})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		err := fmt.Errorf("authorization denied: %s (%s)",
			query.Get("error"), query.Get("error_description"))
		h.deliver(OAuthResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(context.Background(), code)
	if err != nil {
		h.deliver(OAuthResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.deliver(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, loginSuccessPage)
}

// deliver sends the outcome exactly once and closes the channel.
func (h *OAuthHandler) deliver(result OAuthResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sent {
		return
	}
	h.sent = true
	h.results <- result
	close(h.results)
}
