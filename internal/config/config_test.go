package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSource() Map {
	return Map{
		KeyBaseURL:      "https://h/ws/v2.8",
		KeyRepositoryID: "R1",
		KeyToken:        "tok",
	}
}

func TestResolve_MissingFieldOrder(t *testing.T) {
	tests := []struct {
		name    string
		src     Map
		missing string
	}{
		{"empty", Map{}, KeyBaseURL},
		{"only token", Map{KeyToken: "t"}, KeyBaseURL},
		{"base url only", Map{KeyBaseURL: "https://h"}, KeyRepositoryID},
		{"no token", Map{KeyBaseURL: "https://h", KeyRepositoryID: "R1"}, KeyToken},
		{"empty token counts as missing", Map{KeyBaseURL: "https://h", KeyRepositoryID: "R1", KeyToken: ""}, KeyToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Resolve(tt.src)
			require.Error(t, err)
			assert.Nil(t, cfg)

			var cerr *Error
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, MissingField, cerr.Kind)
			assert.Equal(t, tt.missing, cerr.Field)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestResolve_Defaults(t *testing.T) {
	cfg, err := Resolve(validSource())
	require.NoError(t, err)

	assert.Equal(t, "https://h/ws/v2.8", cfg.BaseURL)
	assert.Equal(t, "R1", cfg.RepositoryID)
	assert.Equal(t, "tok", cfg.Token)
	assert.Equal(t, DefaultAppGUID, cfg.AppGUID)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Len(t, cfg.SessionUUID, 36)
}

func TestResolve_SessionUUIDFreshPerResolution(t *testing.T) {
	a, err := Resolve(validSource())
	require.NoError(t, err)
	b, err := Resolve(validSource())
	require.NoError(t, err)

	assert.NotEqual(t, a.SessionUUID, b.SessionUUID)
}

func TestResolve_ExplicitOptionalValues(t *testing.T) {
	src := validSource()
	src[KeyAppGUID] = "my-app"
	src[KeySessionUUID] = "fixed-session"
	src[KeyHTTPTimeout] = "5s"

	cfg, err := Resolve(src)
	require.NoError(t, err)
	assert.Equal(t, "my-app", cfg.AppGUID)
	assert.Equal(t, "fixed-session", cfg.SessionUUID)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
}

func TestResolve_InvalidTimeout(t *testing.T) {
	src := validSource()
	src[KeyHTTPTimeout] = "soon"

	_, err := Resolve(src)
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, InvalidValue, cerr.Kind)
	assert.Equal(t, KeyHTTPTimeout, cerr.Field)
}

func TestResolveLogin(t *testing.T) {
	lc, err := ResolveLogin(Map{KeyTokenFile: "/tmp/tok.json"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLoginURL, lc.LoginURL)
	assert.Equal(t, DefaultStorageKey, lc.StorageKey)
	assert.Equal(t, 120*time.Second, lc.Timeout)
	assert.Equal(t, "/tmp/tok.json", lc.TokenFile)

	lc, err = ResolveLogin(Map{KeyLoginURL: "https://login", KeyStorageKey: "k", KeyLoginTimeout: "10"})
	require.NoError(t, err)
	assert.Equal(t, "https://login", lc.LoginURL)
	assert.Equal(t, "k", lc.StorageKey)
	assert.Equal(t, 10*time.Second, lc.Timeout)

	_, err = ResolveLogin(Map{KeyLoginTimeout: "-3"})
	require.Error(t, err)
}

func TestLayered(t *testing.T) {
	src := Layered{
		Map{KeyToken: ""},
		nil,
		Map{KeyToken: "from-second", KeyBaseURL: "https://second"},
		Map{KeyBaseURL: "https://third"},
	}

	v, ok := src.Lookup(KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "from-second", v)

	v, _ = src.Lookup(KeyBaseURL)
	assert.Equal(t, "https://second", v)

	_, ok = src.Lookup(KeyRepositoryID)
	assert.False(t, ok)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
base_url: "https://h/ws/v2.8"
repository_id: "R1"
app_guid: "app"
token_store: "keyring"
login:
  url: "https://login.example"
  timeout: "30"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://h/ws/v2.8", m[KeyBaseURL])
	assert.Equal(t, "R1", m[KeyRepositoryID])
	assert.Equal(t, "app", m[KeyAppGUID])
	assert.Equal(t, "keyring", m[KeyTokenStore])
	assert.Equal(t, "https://login.example", m[KeyLoginURL])
	assert.Equal(t, "30", m[KeyLoginTimeout])
	_, ok := m[KeyToken]
	assert.False(t, ok)

	_, err = Resolve(m)
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, KeyToken, cerr.Field)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: [unclosed"), 0o644))
	_, err = LoadFile(path)
	require.Error(t, err)
}

func TestTokenFileDefault(t *testing.T) {
	assert.Equal(t, "/x/token.json", TokenFile(Map{KeyTokenFile: "/x/token.json"}))
	assert.Equal(t, "token.json", filepath.Base(TokenFile(Map{})))
	assert.Equal(t, AppName, filepath.Base(filepath.Dir(TokenFile(Map{}))))
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_FileUnderEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repository_id: from-file\nlog_level: debug\n"), 0o644))
	t.Setenv(KeyRepositoryID, "from-env")

	src, err := Load(path)
	require.NoError(t, err)

	v, _ := src.Lookup(KeyRepositoryID)
	assert.Equal(t, "from-env", v)
	v, _ = src.Lookup(KeyLogLevel)
	assert.Equal(t, "debug", v)
}

func TestTokenStore(t *testing.T) {
	kind, err := TokenStore(Map{})
	require.NoError(t, err)
	assert.Equal(t, TokenStoreFile, kind)

	kind, err = TokenStore(Map{KeyTokenStore: "keyring"})
	require.NoError(t, err)
	assert.Equal(t, TokenStoreKeyring, kind)

	_, err = TokenStore(Map{KeyTokenStore: "vault"})
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, InvalidValue, cerr.Kind)
	assert.Equal(t, KeyTokenStore, cerr.Field)

	lc, err := ResolveLogin(Map{KeyTokenStore: "keyring"})
	require.NoError(t, err)
	assert.Equal(t, TokenStoreKeyring, lc.TokenStore)

	_, err = ResolveLogin(Map{KeyTokenStore: "vault"})
	require.Error(t, err)
}
