package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// OAuth is the installed-app alternative to a service account: a client
// secret plus a token minted once by cmd/homeboard-sheets-auth.
type OAuth struct {
	ClientJSON string
	ClientFile string
	TokenFile  string
}

func (o OAuth) enabled() bool {
	return strings.TrimSpace(o.TokenFile) != ""
}

func (o OAuth) clientSecret() ([]byte, error) {
	switch {
	case o.ClientJSON != "":
		return []byte(o.ClientJSON), nil
	case strings.TrimSpace(o.ClientFile) != "":
		b, err := os.ReadFile(o.ClientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing oauth client (set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE)")
	}
}

// Config returns the read-only Sheets OAuth config for the client secret.
func (o OAuth) Config() (*oauth2.Config, error) {
	secret, err := o.clientSecret()
	if err != nil {
		return nil, err
	}
	cfg, err := goauth.ConfigFromJSON(secret, gsheet.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	return cfg, nil
}

func (o OAuth) clientOption(ctx context.Context) (goption.ClientOption, error) {
	cfg, err := o.Config()
	if err != nil {
		return nil, err
	}
	tok, err := LoadToken(o.TokenFile)
	if err != nil {
		return nil, err
	}
	return goption.WithTokenSource(cfg.TokenSource(ctx, tok)), nil
}

// LoadToken reads a token written by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()

	var tok oauth2.Token
	if err := json.NewDecoder(f).Decode(&tok); err != nil {
		return nil, fmt.Errorf("decode token %s: %w", path, err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, fmt.Errorf("token %s has neither access nor refresh token", path)
	}
	return &tok, nil
}

// SaveToken writes tok to path, readable by the owner only.
func SaveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		f.Close()
		return fmt.Errorf("write token: %w", err)
	}
	return f.Close()
}
