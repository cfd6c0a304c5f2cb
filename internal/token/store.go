package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

// ErrNoToken is returned by a Store that holds no token record.
var ErrNoToken = errors.New("no stored token")

// Store persists the token record.
type Store interface {
	Save(rec *Record) error
	Load() (*Record, error)
}

// FileStore keeps the record as a JSON file.
type FileStore struct {
	Path string
}

func (s FileStore) Save(rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	// Write then rename so a reader never sees a half-written record.
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func (s FileStore) Load() (*Record, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrNoToken, s.Path)
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	return decodeRecord(data)
}

func (s FileStore) String() string { return s.Path }

const (
	keyringService = "projectwise-mcp"
	keyringUser    = "access_token"
)

// KeyringStore keeps the record in the OS credential store.
type KeyringStore struct {
	Service string
	User    string
}

func NewKeyringStore() KeyringStore {
	return KeyringStore{Service: keyringService, User: keyringUser}
}

func (s KeyringStore) Save(rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := keyring.Set(s.Service, s.User, string(data)); err != nil {
		return fmt.Errorf("failed to store token in credential store: %w", err)
	}
	return nil
}

func (s KeyringStore) Load() (*Record, error) {
	data, err := keyring.Get(s.Service, s.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("%w in credential store", ErrNoToken)
		}
		return nil, fmt.Errorf("failed to read token from credential store: %w", err)
	}
	return decodeRecord([]byte(data))
}

// Delete removes the stored record. A missing record is not an error.
func (s KeyringStore) Delete() error {
	if err := keyring.Delete(s.Service, s.User); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete token from credential store: %w", err)
	}
	return nil
}

func (s KeyringStore) String() string { return "keyring:" + s.Service }

func decodeRecord(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse token record: %w", err)
	}
	if rec.AccessToken == "" {
		return nil, fmt.Errorf("%w: record has no access_token", ErrNoToken)
	}
	return &rec, nil
}
