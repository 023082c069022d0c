// Command homeboard-sheets-auth runs the OAuth consent flow once and saves
// the token the sheets backend reads through GOOGLE_OAUTH_TOKEN_FILE.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/oauth2"

	"homeboard/internal/cli"
	"homeboard/internal/log"
	"homeboard/internal/sources/google"
)

func main() {
	cli.LoadEnvFile()
	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentSheets)

	o := google.OAuth{
		ClientJSON: os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"),
		ClientFile: os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"),
		TokenFile:  os.Getenv("GOOGLE_OAUTH_TOKEN_FILE"),
	}
	if o.TokenFile == "" {
		o.TokenFile = "token.json"
	}

	cfg, err := o.Config()
	if err != nil {
		logger.Error("OAuth client configuration failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	redirectPort := os.Getenv("OAUTH_REDIRECT_PORT")
	if redirectPort == "" {
		redirectPort = "8085"
	}
	// The OAuth client must list this URI among its authorized redirects.
	cfg.RedirectURL = "http://localhost:" + redirectPort + "/callback"

	state, err := newState()
	if err != nil {
		logger.Error("Failed to generate state", log.FieldError, err.Error())
		os.Exit(1)
	}

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	mux := http.NewServeMux()
	srv := &http.Server{Addr: "localhost:" + redirectPort, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	mux.HandleFunc("GET /callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if e := q.Get("error"); e != "" {
			http.Error(w, "OAuth error: "+e, http.StatusBadRequest)
			errCh <- fmt.Errorf("authorization denied: %s", e)
			return
		}
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
		codeCh <- q.Get("code")
	})
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	defer srv.Close()

	fmt.Printf("Open this URL to authorize read-only access to your spreadsheets:\n%s\n",
		cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	select {
	case code := <-codeCh:
		tok, err := cfg.Exchange(ctx, code)
		if err != nil {
			logger.Error("Token exchange failed", log.FieldError, err.Error())
			os.Exit(1)
		}
		if err := google.SaveToken(o.TokenFile, tok); err != nil {
			logger.Error("Failed to save token", log.FieldError, err.Error())
			os.Exit(1)
		}
		logger.Info("Saved token", "token_file", o.TokenFile)
	case err := <-errCh:
		logger.Error("Authorization failed", log.FieldError, err.Error())
		os.Exit(1)
	case <-ctx.Done():
		logger.Error("Authorization aborted", log.FieldError, ctx.Err().Error())
		os.Exit(1)
	}
}

func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
