// Package config resolves connection settings for the ProjectWise WSG client
// and the login utility.
//
// Values come from a Source, normally the process environment layered over an
// optional YAML file. Resolution never touches the network or the disk itself.
package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
)

const AppName = "projectwise-mcp"

const (
	KeyBaseURL      = "PW_WSG_BASE_URL"
	KeyRepositoryID = "PW_REPOSITORY_ID"
	KeyToken        = "PW_TOKEN"
	KeyAppGUID      = "PW_APP_GUID"
	KeySessionUUID  = "PW_SESSION_UUID"
	KeyHTTPTimeout  = "PW_HTTP_TIMEOUT"
	KeyTokenFile    = "PW_TOKEN_FILE"
	KeyTokenStore   = "PW_TOKEN_STORE"
	KeyLogLevel     = "PW_LOG_LEVEL"
	KeyConfigFile   = "PW_CONFIG"
	KeyLoginURL     = "PW_LOGIN_URL"
	KeyStorageKey   = "PW_OIDC_STORAGE_KEY"
	KeyLoginTimeout = "PW_LOGIN_TIMEOUT"
)

const (
	DefaultAppGUID      = "projectwise-mcp-server"
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultLoginURL     = "https://projectwise365.bentley.com/"
	DefaultStorageKey   = "oidc.user:https://imsoidc.bentley.com/:projectwise-365"
	DefaultLoginTimeout = 120 * time.Second
)

// Token store backends selectable with PW_TOKEN_STORE.
const (
	TokenStoreFile    = "file"
	TokenStoreKeyring = "keyring"
)

// ErrorKind classifies configuration failures.
type ErrorKind int

const (
	MissingField ErrorKind = iota + 1
	InvalidValue
)

func (k ErrorKind) String() string {
	switch k {
	case MissingField:
		return "missing field"
	case InvalidValue:
		return "invalid value"
	default:
		return "unknown"
	}
}

// Error reports a configuration value that is absent or unusable.
type Error struct {
	Kind  ErrorKind
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Kind == MissingField {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Config is the immutable connection configuration for the WSG client.
type Config struct {
	BaseURL      string
	RepositoryID string
	Token        string
	AppGUID      string
	SessionUUID  string
	HTTPTimeout  time.Duration
}

// Resolve builds a Config from src. Required fields are checked in a fixed
// order (base URL, repository ID, token) and the first missing one is reported.
func Resolve(src Source) (*Config, error) {
	cfg := &Config{}
	for _, req := range []struct {
		key string
		dst *string
	}{
		{KeyBaseURL, &cfg.BaseURL},
		{KeyRepositoryID, &cfg.RepositoryID},
		{KeyToken, &cfg.Token},
	} {
		v, ok := lookup(src, req.key)
		if !ok {
			return nil, &Error{Kind: MissingField, Field: req.key}
		}
		*req.dst = v
	}

	cfg.AppGUID = DefaultAppGUID
	if v, ok := lookup(src, KeyAppGUID); ok {
		cfg.AppGUID = v
	}

	if v, ok := lookup(src, KeySessionUUID); ok {
		cfg.SessionUUID = v
	} else {
		cfg.SessionUUID = uuid.NewString()
	}

	cfg.HTTPTimeout = DefaultHTTPTimeout
	if v, ok := lookup(src, KeyHTTPTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, &Error{Kind: InvalidValue, Field: KeyHTTPTimeout, Err: err}
		}
		cfg.HTTPTimeout = d
	}

	return cfg, nil
}

// LoginConfig parameterizes the browser login utility.
type LoginConfig struct {
	LoginURL   string
	StorageKey string
	Timeout    time.Duration
	TokenFile  string
	TokenStore string
}

// ResolveLogin builds a LoginConfig from src. Every field has a default.
func ResolveLogin(src Source) (*LoginConfig, error) {
	lc := &LoginConfig{
		LoginURL:   DefaultLoginURL,
		StorageKey: DefaultStorageKey,
		Timeout:    DefaultLoginTimeout,
		TokenFile:  TokenFile(src),
	}
	store, err := TokenStore(src)
	if err != nil {
		return nil, err
	}
	lc.TokenStore = store
	if v, ok := lookup(src, KeyLoginURL); ok {
		lc.LoginURL = v
	}
	if v, ok := lookup(src, KeyStorageKey); ok {
		lc.StorageKey = v
	}
	if v, ok := lookup(src, KeyLoginTimeout); ok {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			if err == nil {
				err = fmt.Errorf("must be a positive number of seconds, got %d", secs)
			}
			return nil, &Error{Kind: InvalidValue, Field: KeyLoginTimeout, Err: err}
		}
		lc.Timeout = time.Duration(secs) * time.Second
	}
	return lc, nil
}

// TokenFile returns the token artifact location, defaulting under the XDG config home.
func TokenFile(src Source) string {
	if v, ok := lookup(src, KeyTokenFile); ok {
		return v
	}
	return filepath.Join(xdg.ConfigHome, AppName, "token.json")
}

// TokenStore returns the configured token backend, TokenStoreFile by default.
func TokenStore(src Source) (string, error) {
	v, ok := lookup(src, KeyTokenStore)
	if !ok {
		return TokenStoreFile, nil
	}
	switch v {
	case TokenStoreFile, TokenStoreKeyring:
		return v, nil
	}
	return "", &Error{Kind: InvalidValue, Field: KeyTokenStore, Err: fmt.Errorf("want %q or %q, got %q", TokenStoreFile, TokenStoreKeyring, v)}
}

// FilePath returns the YAML config file location. The second result reports
// whether it was set explicitly.
func FilePath(src Source) (string, bool) {
	if v, ok := lookup(src, KeyConfigFile); ok {
		return v, true
	}
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml"), false
}

func lookup(src Source, key string) (string, bool) {
	if src == nil {
		return "", false
	}
	v, ok := src.Lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
