package storage

import (
	"errors"
	"fmt"
	"sort"

	"github.com/zalando/go-keyring"
)

const keyringService = "homebuddy-cli"

// Keyring wraps a Storage and keeps selected keys (the session token) in the
// OS keychain/credential manager instead.
type Keyring struct {
	inner  Storage
	origin string
	secret map[string]bool
}

// NewKeyring routes keys to the keychain and everything else to inner.
func NewKeyring(inner Storage, origin string, keys ...string) *Keyring {
	secret := make(map[string]bool, len(keys))
	for _, k := range keys {
		secret[k] = true
	}
	return &Keyring{inner: inner, origin: origin, secret: secret}
}

// keyringKey returns a unique keychain entry per origin and key
func (k *Keyring) keyringKey(key string) string {
	return fmt.Sprintf("%s-%s", Slug(k.origin), key)
}

func (k *Keyring) Get(key string) (string, bool, error) {
	if !k.secret[key] {
		return k.inner.Get(key)
	}
	v, err := keyring.Get(keyringService, k.keyringKey(key))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to load %q from keychain: %w", key, err)
	}
	return v, true, nil
}

func (k *Keyring) Set(key, value string) error {
	if !k.secret[key] {
		return k.inner.Set(key, value)
	}
	if err := keyring.Set(keyringService, k.keyringKey(key), value); err != nil {
		return fmt.Errorf("failed to save %q to keychain: %w", key, err)
	}
	return nil
}

func (k *Keyring) Remove(key string) error {
	if !k.secret[key] {
		return k.inner.Remove(key)
	}
	if err := keyring.Delete(keyringService, k.keyringKey(key)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete %q from keychain: %w", key, err)
	}
	return nil
}

func (k *Keyring) Clear() error {
	for key := range k.secret {
		if err := k.Remove(key); err != nil {
			return err
		}
	}
	return k.inner.Clear()
}

func (k *Keyring) Keys() ([]string, error) {
	keys, err := k.inner.Keys()
	if err != nil {
		return nil, err
	}
	for key := range k.secret {
		if _, ok, err := k.Get(key); err != nil {
			return nil, err
		} else if ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (k *Keyring) Close() error {
	return k.inner.Close()
}
