// Package credential keeps secrets such as the backend API token in the
// system keyring rather than in the config file.
package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "cloudconsole"

// APITokenKey is the entry holding the backend bearer token.
const APITokenKey = "api-token"

// Store reads and writes named secrets.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Keyring is a Store backed by a keyring.Keyring. The ring is opened on
// first use so that commands which never touch a secret never prompt.
type Keyring struct {
	open func() (keyring.Keyring, error)
	ring keyring.Keyring
}

// NewKeyring returns the system keyring for this application.
func NewKeyring() *Keyring {
	return &Keyring{open: openSystemKeyring}
}

// NewKeyringWith wraps an already opened ring.
func NewKeyringWith(ring keyring.Keyring) *Keyring {
	return &Keyring{ring: ring}
}

// openSystemKeyring returns a configured keyring instance.
func openSystemKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/cloudconsole/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("cloudconsole-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

func (k *Keyring) resolve() (keyring.Keyring, error) {
	if k.ring == nil {
		ring, err := k.open()
		if err != nil {
			return nil, err
		}
		k.ring = ring
	}
	return k.ring, nil
}

// Get retrieves a credential value by key. A missing key is reported as
// an error satisfying IsNotFound.
func (k *Keyring) Get(key string) (string, error) {
	ring, err := k.resolve()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key.
func (k *Keyring) Set(key string, value string) error {
	ring, err := k.resolve()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: serviceName + " " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key. Deleting a missing key is not an
// error.
func (k *Keyring) Delete(key string) error {
	ring, err := k.resolve()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

// IsNotFound reports whether err means the key has no stored value.
func IsNotFound(err error) bool {
	return errors.Is(err, keyring.ErrKeyNotFound)
}

// Lookup returns the stored value for key, or "" when there is none.
func Lookup(s Store, key string) (string, error) {
	v, err := s.Get(key)
	if IsNotFound(err) {
		return "", nil
	}
	return v, err
}
