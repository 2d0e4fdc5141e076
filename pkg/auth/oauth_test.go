package auth

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

func testFlow(t *testing.T) *Flow {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewFlow(t.TempDir(), l)
}

func TestNormalizeRedirect(t *testing.T) {
	f := testFlow(t)
	cases := map[string]string{
		"urn:ietf:wg:oauth:2.0:oob":       "http://localhost:6789/oauth2callback",
		"http://localhost":                "http://localhost:6789",
		"http://127.0.0.1:8080/cb":        "http://127.0.0.1:6789/cb",
		"http://localhost:6789/cb":        "http://localhost:6789/cb",
		"https://example.com/oauth2/back": "https://example.com/oauth2/back",
	}
	for in, want := range cases {
		if got := f.normalizeRedirect(in); got != want {
			t.Errorf("normalizeRedirect(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestConfigFromCredentials(t *testing.T) {
	f := testFlow(t)
	if _, err := f.Config(CalendarScopes); err == nil {
		t.Fatal("Expected error without credentials.json")
	}

	creds := `{"installed":{"client_id":"id","client_secret":"secret","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`
	if err := os.WriteFile(filepath.Join(f.Dir, ClientSecretsFile), []byte(creds), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := f.Config(CalendarScopes)
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	if cfg.ClientID != "id" || !strings.HasSuffix(cfg.RedirectURL, ":"+LocalhostAuthPort) {
		t.Errorf("Unexpected config %+v", cfg)
	}
}

func TestTokenFileRoundTripAndReset(t *testing.T) {
	f := testFlow(t)
	tok := &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: time.Now().Add(time.Hour).UTC()}
	if err := saveToken(f.TokenPath(), tok); err != nil {
		t.Fatalf("saveToken failed: %v", err)
	}
	got, err := tokenFromFile(f.TokenPath())
	if err != nil {
		t.Fatalf("tokenFromFile failed: %v", err)
	}
	if got.AccessToken != "a" || got.RefreshToken != "r" {
		t.Errorf("Unexpected token %+v", got)
	}

	if err := f.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if _, err := os.Stat(f.TokenPath()); !os.IsNotExist(err) {
		t.Error("Expected token file to be removed")
	}
	if err := f.Reset(); err != nil {
		t.Errorf("Expected Reset of missing token to succeed, got %v", err)
	}
}
