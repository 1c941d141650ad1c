package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	driveapi "google.golang.org/api/drive/v3"

	"scribe/internal/services"
)

// tokenFile is the authorized-user JSON layout google.golang.org libraries
// understand, so tokens saved here stay portable.
type tokenFile struct {
	Type         string `json:"type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
}

// oauthConfig loads the client-secrets file and derives the OAuth config,
// pinning the redirect to this daemon's callback endpoint.
func (s *Service) oauthConfig() (*oauth2.Config, error) {
	data, err := os.ReadFile(s.cfg.CredentialsPath)
	if err != nil {
		return nil, services.Wrap(services.ErrCredential, "drive", "oauth-config",
			"read client secrets", err)
	}
	conf, err := google.ConfigFromJSON(data, driveapi.DriveReadonlyScope)
	if err != nil {
		return nil, services.Wrap(services.ErrCredential, "drive", "oauth-config",
			"parse client secrets", err)
	}
	if s.cfg.RedirectBaseURL != "" {
		conf.RedirectURL = strings.TrimSuffix(s.cfg.RedirectBaseURL, "/") + "/oauth2callback"
	}
	return conf, nil
}

// HasToken reports whether a saved refresh token exists.
func (s *Service) HasToken() bool {
	info, err := os.Stat(s.cfg.TokenPath)
	return err == nil && !info.IsDir()
}

// AuthURL returns the consent URL that starts the OAuth flow.
func (s *Service) AuthURL(state string) (string, error) {
	conf, err := s.oauthConfig()
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	), nil
}

// Exchange trades the callback code for tokens and persists the refresh
// token.
func (s *Service) Exchange(ctx context.Context, code string) error {
	conf, err := s.oauthConfig()
	if err != nil {
		return err
	}
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return services.Wrap(services.ErrCredential, "drive", "exchange",
			"exchange authorization code", err)
	}
	if token.RefreshToken == "" {
		return services.Wrap(services.ErrCredential, "drive", "exchange",
			"authorization response carried no refresh token", nil)
	}
	return s.saveToken(conf, token.RefreshToken)
}

func (s *Service) saveToken(conf *oauth2.Config, refreshToken string) error {
	payload, err := json.Marshal(tokenFile{
		Type:         "authorized_user",
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
		RefreshToken: refreshToken,
	})
	if err != nil {
		return fmt.Errorf("drive: encode token: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.cfg.TokenPath), 0o700); err != nil {
		return fmt.Errorf("drive: token dir: %w", err)
	}
	tmp := s.cfg.TokenPath + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("drive: write token: %w", err)
	}
	if err := os.Rename(tmp, s.cfg.TokenPath); err != nil {
		return fmt.Errorf("drive: replace token: %w", err)
	}
	return nil
}

func (s *Service) loadToken() (*tokenFile, error) {
	data, err := os.ReadFile(s.cfg.TokenPath)
	if err != nil {
		return nil, services.Wrap(services.ErrCredential, "drive", "load-token",
			"no saved token, authenticate first", err)
	}
	var token tokenFile
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, services.Wrap(services.ErrCredential, "drive", "load-token",
			"parse saved token", err)
	}
	if token.RefreshToken == "" {
		return nil, services.Wrap(services.ErrCredential, "drive", "load-token",
			"saved token has no refresh token", nil)
	}
	return &token, nil
}

// DeleteToken removes the saved refresh token. Missing files are not an
// error.
func (s *Service) DeleteToken() error {
	if err := os.Remove(s.cfg.TokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("drive: delete token: %w", err)
	}
	return nil
}

// classify maps transport errors onto the failure taxonomy. An invalid_grant
// response means the refresh token is revoked or expired: the token file is
// deleted so the next pass immediately demands re-authentication.
func (s *Service) classify(operation string, err error) error {
	if err == nil {
		return nil
	}
	if isInvalidGrant(err) {
		_ = s.DeleteToken()
		return services.Wrap(services.ErrCredential, "drive", operation,
			"refresh token rejected (invalid_grant), re-authentication required", err)
	}
	return fmt.Errorf("drive %s: %w", operation, err)
}

func isInvalidGrant(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.ErrorCode == "invalid_grant" {
			return true
		}
		return bytes.Contains(retrieveErr.Body, []byte("invalid_grant"))
	}
	return false
}
