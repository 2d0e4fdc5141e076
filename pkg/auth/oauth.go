package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	// ClientSecretsFile is the Google API credentials.json downloaded from
	// the cloud console, placed in the data directory.
	ClientSecretsFile = "credentials.json"

	// TokenFile caches the user's access and refresh token.
	TokenFile = "token.json"

	// LocalhostAuthPort is where the local server captures the OAuth redirect.
	LocalhostAuthPort = "6789"
)

// CalendarScopes are the scopes needed to mirror tasks as events.
var CalendarScopes = []string{
	calendar.CalendarEventsScope,
	calendar.CalendarReadonlyScope,
}

// Flow runs the installed-app OAuth flow with files kept in Dir.
type Flow struct {
	Dir string
	Log *logrus.Entry
	// Out receives the consent URL.
	Out io.Writer
}

func NewFlow(dir string, logger *logrus.Logger) *Flow {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Flow{Dir: dir, Log: logger.WithField("component", "auth"), Out: os.Stdout}
}

func (f *Flow) TokenPath() string {
	return filepath.Join(f.Dir, TokenFile)
}

// Config creates an oauth2.Config from the client secrets file.
func (f *Flow) Config(scopes []string) (*oauth2.Config, error) {
	clientSecretsFile := filepath.Join(f.Dir, ClientSecretsFile)
	b, err := os.ReadFile(clientSecretsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file %s: %w", clientSecretsFile, err)
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	config.RedirectURL = f.normalizeRedirect(config.RedirectURL)
	return config, nil
}

// normalizeRedirect forces localhost and out-of-band redirects onto the
// port the local listener uses.
func (f *Flow) normalizeRedirect(redirect string) string {
	if redirect == "urn:ietf:wg:oauth:2.0:oob" {
		fixed := fmt.Sprintf("http://localhost:%s/oauth2callback", LocalhostAuthPort)
		f.Log.WithField("redirect", fixed).Info("overriding out-of-band redirect")
		return fixed
	}

	parsedURL, err := url.Parse(redirect)
	if err != nil {
		f.Log.WithError(err).WithField("redirect", redirect).Warn("could not parse redirect URL, using it as is")
		return redirect
	}
	if parsedURL.Hostname() != "localhost" && parsedURL.Hostname() != "127.0.0.1" {
		f.Log.WithField("redirect", redirect).Warn("redirect is neither a localhost callback nor out-of-band")
		return redirect
	}
	if parsedURL.Port() != LocalhostAuthPort {
		if parsedURL.Port() != "" {
			f.Log.WithFields(logrus.Fields{"configured": parsedURL.Port(), "expected": LocalhostAuthPort}).Warn("redirect port mismatch, forcing expected port")
		}
		parsedURL.Host = net.JoinHostPort(parsedURL.Hostname(), LocalhostAuthPort)
	}
	return parsedURL.String()
}

// Client returns an authenticated *http.Client. It loads the cached token
// or runs the browser flow when there is none; refreshed tokens are saved
// back to disk.
func (f *Flow) Client(ctx context.Context, scopes []string) (*http.Client, error) {
	config, err := f.Config(scopes)
	if err != nil {
		return nil, err
	}

	tokenFile := f.TokenPath()
	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		f.Log.WithField("path", tokenFile).Info("no cached token, starting web authorization flow")
		tok, err = f.tokenFromWeb(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("failed to get token from web: %w", err)
		}
		if err := saveToken(tokenFile, tok); err != nil {
			return nil, err
		}
	}

	src := config.TokenSource(ctx, tok)
	current, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	if current.AccessToken != tok.AccessToken || current.RefreshToken != tok.RefreshToken {
		f.Log.Debug("token refreshed, saving")
		if err := saveToken(tokenFile, current); err != nil {
			f.Log.WithError(err).Warn("could not save refreshed token")
		}
	}
	return oauth2.NewClient(ctx, src), nil
}

// tokenFromWeb runs the authorization code flow through a local server.
func (f *Flow) tokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%s", LocalhostAuthPort))
	if err != nil {
		return nil, fmt.Errorf("failed to start listener on port %s: %w", LocalhostAuthPort, err)
	}
	defer listener.Close()

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				select {
				case errCh <- errors.New("authorization code not found in redirect URL"):
				default:
				}
				return
			}
			fmt.Fprintf(w, "Authentication successful! You can close this window.")
			select {
			case codeCh <- code:
			default:
			}
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errCh <- fmt.Errorf("HTTP server error: %w", err):
			default:
			}
		}
	}()
	defer server.Shutdown(context.Background())

	// AccessTypeOffline makes Google return a refresh token.
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Fprintf(f.Out, "Please open the following URL in your browser to authorize nowtask:\n%s\n", authURL)
	f.Log.Info("waiting for authorization code")

	select {
	case code := <-codeCh:
		exCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		tok, err := config.Exchange(exCtx, code)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve token from Google: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		return nil, errors.New("authorization timed out, please try again")
	}
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", file, err)
	}
	return tok, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("could not create token directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache OAuth token to %s: %w", path, err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// Reset removes the cached token so the next Client call re-authorizes.
func (f *Flow) Reset() error {
	err := os.Remove(f.TokenPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not delete token file %s: %w", f.TokenPath(), err)
	}
	return nil
}

// CalendarService creates an authenticated Google Calendar service.
func (f *Flow) CalendarService(ctx context.Context) (*calendar.Service, error) {
	client, err := f.Client(ctx, CalendarScopes)
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated client for Calendar API: %w", err)
	}
	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Google Calendar service: %w", err)
	}
	return srv, nil
}
