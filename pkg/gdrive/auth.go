package gdrive

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/drivesync/drivesync/pkg/errors"
	"github.com/drivesync/drivesync/pkg/logging"
)

// AuthConfig locates the OAuth client secrets and the persisted token.
type AuthConfig struct {
	// CredentialsFile is the OAuth client secrets JSON (never committed).
	CredentialsFile string
	// TokenFile is where the user token is persisted after first run.
	TokenFile string
	// Interactive allows the console consent flow when no valid token
	// exists. When false, a missing token is an AUTH error.
	Interactive bool
	// Scopes defaults to the full Drive scope when empty.
	Scopes []string
}

// NewService builds an authenticated Drive service. Tokens are loaded
// from the token file, refreshed transparently, and persisted back after
// the consent flow. Authentication failures are permanent errors; the
// retry policy never retries them.
func NewService(ctx context.Context, cfg AuthConfig) (*drive.Service, error) {
	logger := logging.GetLogger("gdrive.auth")

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{drive.DriveScope}
	}

	secrets, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrAuth,
			"credentials file missing: %s", cfg.CredentialsFile)
	}

	oauthCfg, err := google.ConfigFromJSON(secrets, scopes...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrAuth, "invalid credentials file")
	}

	token, err := tokenFromFile(cfg.TokenFile)
	if err != nil {
		logger.Debug().Err(err).Str("tokenFile", cfg.TokenFile).Msg("No stored token")
		if !cfg.Interactive {
			return nil, errors.New(errors.ErrAuth, "no valid token and interactive mode disabled")
		}
		token, err = tokenFromConsent(ctx, oauthCfg, os.Stdin, os.Stdout)
		if err != nil {
			return nil, err
		}
		if err := saveToken(cfg.TokenFile, token); err != nil {
			logger.Warn().Err(err).Str("tokenFile", cfg.TokenFile).Msg("Failed to persist token")
		} else {
			logger.Info().Str("tokenFile", cfg.TokenFile).Msg("Token stored")
		}
	}

	// Refreshes happen inside the token source; persist whatever the
	// final token is so the next run skips the refresh round trip.
	source := oauthCfg.TokenSource(ctx, token)
	svc, err := drive.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrAuth, "failed to build drive service")
	}

	fresh, err := source.Token()
	if err != nil {
		// An expired or revoked grant shows up here, before any Drive
		// call is made. Surfacing it as AUTH keeps it out of the retry
		// schedule.
		return nil, errors.Wrap(err, errors.ErrAuth,
			"stored token is no longer valid; delete it to re-run the consent flow")
	}
	if fresh.AccessToken != token.AccessToken {
		if err := saveToken(cfg.TokenFile, fresh); err != nil {
			logger.Warn().Err(err).Str("tokenFile", cfg.TokenFile).Msg("Failed to persist refreshed token")
		} else {
			logger.Debug().Str("tokenFile", cfg.TokenFile).Msg("Refreshed token stored")
		}
	}

	return svc, nil
}

// tokenFromFile loads a persisted OAuth token.
func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("corrupt token file %s: %w", path, err)
	}
	return token, nil
}

// tokenFromConsent runs the console consent flow: print the auth URL,
// read the verification code, exchange it for a token.
func tokenFromConsent(ctx context.Context, cfg *oauth2.Config, in io.Reader, out io.Writer) (*oauth2.Token, error) {
	url := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Open the following URL in your browser, then paste the authorization code:\n%v\n> ", url)

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return nil, errors.New(errors.ErrAuth, "no authorization code provided")
	}
	code := scanner.Text()

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrAuth, "authorization code exchange failed")
	}
	return token, nil
}

// saveToken persists the token with owner-only permissions.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}
