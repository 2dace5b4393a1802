package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"

	"megakeep/internal/config"
	"megakeep/internal/infrastructure/logger"
)

// DriveAuth runs a small local HTTP server that walks the Google OAuth flow
// and prints the resulting refresh token, so gdrive accounts can be
// provisioned for the keeper.
type DriveAuth struct {
	config *oauth2.Config
	logger *logger.Logger
	server *http.Server
}

func NewDriveAuth(log *logger.Logger, cfg *config.GDriveProvider) (*DriveAuth, error) {
	if cfg.ClientSecretFile == "" {
		return nil, errors.New("providers.gdrive.client_secret_file is required for auth mode")
	}

	b, err := os.ReadFile(cfg.ClientSecretFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(b, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret: %w", err)
	}

	return &DriveAuth{
		config: oauthCfg,
		logger: log,
	}, nil
}

// Start launches the auth server in a goroutine.
func (s *DriveAuth) Start(addr string) {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /auth/gdrive", func(w http.ResponseWriter, r *http.Request) {
		authURL := s.config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
		http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
	})

	mux.HandleFunc("GET /auth/gdrive/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code parameter", http.StatusBadRequest)
			return
		}

		token, err := s.config.Exchange(r.Context(), code)
		if err != nil {
			http.Error(w, fmt.Sprintf("token exchange failed: %v", err), http.StatusInternalServerError)
			return
		}

		tokenJSON, err := json.MarshalIndent(token, "", "  ")
		if err != nil {
			http.Error(w, "failed to marshal token", http.StatusInternalServerError)
			return
		}

		if token.RefreshToken == "" {
			fmt.Fprintln(w, "No refresh token returned. Revoke app access and re-authorize.")
			return
		}

		fmt.Fprintf(w, "Refresh Token:\n%s\n\nFull Token JSON:\n%s", token.RefreshToken, tokenJSON)
	})

	s.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		s.logger.Infof("Google Drive auth server listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("Auth server error: %v", err)
		}
	}()
}

func (s *DriveAuth) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown auth server: %w", err)
	}
	s.logger.Infof("Auth server stopped")
	return nil
}

// RunDriveAuth replaces the normal keep-alive run with the OAuth helper,
// blocking until the context is cancelled.
func (a *App) RunDriveAuth(ctx context.Context) error {
	auth, err := NewDriveAuth(a.logger, &a.config.Providers.GDrive)
	if err != nil {
		return err
	}

	auth.Start(a.config.Providers.GDrive.AuthAddr)
	a.logger.Infof("Visit http://localhost%s/auth/gdrive to authorize", a.config.Providers.GDrive.AuthAddr)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return auth.Shutdown(shutdownCtx)
}
