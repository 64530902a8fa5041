// Package storage persists client session state, one namespace per site
// origin, the way browser local storage does.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	configDirName  = "homebuddy"
	storageDirName = "storage"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// IsBackend reports whether name is a backend Open accepts.
func IsBackend(name string) bool {
	switch strings.ToLower(name) {
	case BackendFile, BackendSQLite, BackendMemory:
		return true
	}
	return false
}

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Storage is a string key/value store scoped to a single origin.
type Storage interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
	// Clear deletes every key.
	Clear() error
	// Keys returns the stored keys in sorted order.
	Keys() ([]string, error)
	Close() error
}

// Options configures Open.
type Options struct {
	Backend string
	Dir     string // empty = ~/.config/homebuddy/storage
	Origin  string
	// Keyring routes the listed keys to the OS keychain.
	Keyring     bool
	KeyringKeys []string
}

// Open returns the storage backend described by opts.
func Open(opts Options) (Storage, error) {
	var (
		store Storage
		err   error
	)

	switch strings.ToLower(opts.Backend) {
	case BackendMemory:
		store = NewMemory()
	case BackendFile, "":
		dir, derr := resolveDir(opts.Dir)
		if derr != nil {
			return nil, derr
		}
		store, err = OpenFile(filepath.Join(dir, Slug(opts.Origin)+".json"))
	case BackendSQLite:
		dir, derr := resolveDir(opts.Dir)
		if derr != nil {
			return nil, derr
		}
		store, err = OpenSQLite(filepath.Join(dir, "storage.sqlite"), opts.Origin)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	if opts.Keyring {
		store = NewKeyring(store, opts.Origin, opts.KeyringKeys...)
	}

	return store, nil
}

// DefaultDir returns ~/.config/homebuddy/storage.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", configDirName, storageDirName), nil
}

func resolveDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return DefaultDir()
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns an origin into a filesystem-safe name.
func Slug(origin string) string {
	s := strings.ToLower(origin)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.Trim(slugPattern.ReplaceAllString(s, "-"), "-")
	if s == "" {
		return "default"
	}
	return s
}
