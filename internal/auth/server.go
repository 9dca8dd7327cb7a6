package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

// LoginTimeout bounds how long the callback server waits for the browser
const LoginTimeout = 5 * time.Minute

var (
	// ErrStateMismatch means the callback did not carry the state we issued
	ErrStateMismatch = errors.New("oauth state mismatch")
	// ErrNoCode means Fitbit redirected back without an authorization code
	ErrNoCode = errors.New("no authorization code in callback")
)

const connectedPage = `<!DOCTYPE html>
<html>
<head><title>healthdash</title></head>
<body style="font-family: system-ui; text-align: center; margin-top: 20vh;">
<h1 style="color: #0EA5E9;">Fitbit connected</h1>
<p>Return to the terminal; this tab can be closed.</p>
</body>
</html>`

// callback is the outcome of one redirect from Fitbit
type callback struct {
	code string
	err  error
}

// callbackHandler accepts the first redirect that matches state and reports
// it on done. Later requests are answered but ignored.
func callbackHandler(state string, done chan<- callback) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var cb callback
		switch {
		case q.Get("state") != state:
			cb.err = ErrStateMismatch
		case q.Get("error") != "":
			cb.err = fmt.Errorf("fitbit denied access: %s %s", q.Get("error"), q.Get("error_description"))
		case q.Get("code") == "":
			cb.err = ErrNoCode
		default:
			cb.code = q.Get("code")
		}

		if cb.err != nil {
			http.Error(w, cb.err.Error(), http.StatusBadRequest)
		} else {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			io.WriteString(w, connectedPage)
		}

		select {
		case done <- cb:
		default:
		}
	})
}

// listenAddr returns the host:port and path the redirect URL points at
func listenAddr(redirectURL string) (addr, path string, err error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return "", "", fmt.Errorf("parsing redirect URL: %w", err)
	}
	if u.Scheme != "http" {
		return "", "", fmt.Errorf("redirect URL %q must use http on this machine", redirectURL)
	}
	host, port := u.Hostname(), u.Port()
	if port == "" {
		port = "80"
	}
	if host == "localhost" {
		host = "127.0.0.1"
	}
	path = u.Path
	if path == "" {
		path = "/"
	}
	return net.JoinHostPort(host, port), path, nil
}

// Authenticate runs the authorization code flow. It serves the redirect URL
// locally, prints the consent URL to out and exchanges the returned code.
func Authenticate(ctx context.Context, cfg *oauth2.Config, out io.Writer) (*AuthResult, error) {
	addr, path, err := listenAddr(cfg.RedirectURL)
	if err != nil {
		return nil, err
	}

	state, err := newState()
	if err != nil {
		return nil, fmt.Errorf("generating state: %w", err)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}

	done := make(chan callback, 1)
	mux := http.NewServeMux()
	mux.Handle(path, callbackHandler(state, done))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	defer shutdown(server)

	serveErr := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	fmt.Fprintf(out, "\nOpen this URL to connect Fitbit:\n\n  %s\n\nWaiting for Fitbit to redirect to %s ...\n",
		cfg.AuthCodeURL(state), cfg.RedirectURL)

	ctx, cancel := context.WithTimeout(ctx, LoginTimeout)
	defer cancel()

	var cb callback
	select {
	case cb = <-done:
	case err := <-serveErr:
		return nil, fmt.Errorf("callback server: %w", err)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("no callback within %v", LoginTimeout)
		}
		return nil, ctx.Err()
	}
	if cb.err != nil {
		return nil, cb.err
	}

	token, err := cfg.Exchange(ctx, cb.code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code for token: %w", err)
	}

	return &AuthResult{
		Token:        token,
		FitbitUserID: ExtractFitbitUserID(token),
		Scope:        ExtractScope(token),
	}, nil
}

func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func shutdown(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}
