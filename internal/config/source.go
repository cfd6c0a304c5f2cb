package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source supplies configuration values by key.
type Source interface {
	Lookup(key string) (string, bool)
}

// Env reads from the process environment.
type Env struct{}

func (Env) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Map is a fixed set of values, mostly useful for tests.
type Map map[string]string

func (m Map) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Layered consults each source in order and returns the first non-empty value.
type Layered []Source

func (l Layered) Lookup(key string) (string, bool) {
	for _, s := range l {
		if s == nil {
			continue
		}
		if v, ok := s.Lookup(key); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// fileConfig is the on-disk YAML layout.
type fileConfig struct {
	BaseURL      string `yaml:"base_url"`
	RepositoryID string `yaml:"repository_id"`
	Token        string `yaml:"token"`
	AppGUID      string `yaml:"app_guid"`
	SessionUUID  string `yaml:"session_uuid"`
	HTTPTimeout  string `yaml:"http_timeout"`
	TokenFile    string `yaml:"token_file"`
	TokenStore   string `yaml:"token_store"`
	LogLevel     string `yaml:"log_level"`

	Login struct {
		URL        string `yaml:"url"`
		StorageKey string `yaml:"storage_key"`
		Timeout    string `yaml:"timeout"`
	} `yaml:"login"`
}

// LoadFile reads a YAML config file into a Map keyed by the environment variable names.
func LoadFile(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	m := Map{}
	set := func(key, value string) {
		if value != "" {
			m[key] = value
		}
	}
	set(KeyBaseURL, fc.BaseURL)
	set(KeyRepositoryID, fc.RepositoryID)
	set(KeyToken, fc.Token)
	set(KeyAppGUID, fc.AppGUID)
	set(KeySessionUUID, fc.SessionUUID)
	set(KeyHTTPTimeout, fc.HTTPTimeout)
	set(KeyTokenFile, fc.TokenFile)
	set(KeyTokenStore, fc.TokenStore)
	set(KeyLogLevel, fc.LogLevel)
	set(KeyLoginURL, fc.Login.URL)
	set(KeyStorageKey, fc.Login.StorageKey)
	set(KeyLoginTimeout, fc.Login.Timeout)
	return m, nil
}

// Load layers the process environment over the YAML config file. The file is
// optional unless its path was given explicitly (flag or PW_CONFIG).
func Load(path string) (Source, error) {
	explicit := path != ""
	if !explicit {
		path, explicit = FilePath(Env{})
	}

	fileSrc, err := LoadFile(path)
	if err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return Env{}, nil
	}
	return Layered{Env{}, fileSrc}, nil
}
