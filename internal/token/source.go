package token

import "github.com/hjanuschka/projectwise-mcp/internal/config"

// Source exposes a stored token as the PW_TOKEN configuration value. It is
// meant to be layered after the environment so an explicit token wins.
type Source struct {
	Store Store
}

func (s Source) Lookup(key string) (string, bool) {
	if key != config.KeyToken || s.Store == nil {
		return "", false
	}
	rec, err := s.Store.Load()
	if err != nil {
		return "", false
	}
	return rec.AccessToken, true
}

// StoreFor returns the token backend src selects with PW_TOKEN_STORE.
func StoreFor(src config.Source) (Store, error) {
	kind, err := config.TokenStore(src)
	if err != nil {
		return nil, err
	}
	if kind == config.TokenStoreKeyring {
		return NewKeyringStore(), nil
	}
	return FileStore{Path: config.TokenFile(src)}, nil
}

// WithStoredToken layers the configured token store after src itself.
func WithStoredToken(src config.Source) (config.Source, error) {
	store, err := StoreFor(src)
	if err != nil {
		return nil, err
	}
	return config.Layered{src, Source{Store: store}}, nil
}
