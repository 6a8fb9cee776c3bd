// Copyright (C) 2021  Lukas Dietrich <lukas@lukasdietrich.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package secrets

import (
	"errors"
	"fmt"
	"sync"

	"github.com/99designs/keyring"
	"github.com/google/wire"
	"github.com/spf13/viper"
)

// WireSet provides the credential store.
var WireSet = wire.NewSet(
	NewStore,
)

// ErrNoCredential is returned by Resolve, if neither a password nor a keyring key is
// configured.
var ErrNoCredential = errors.New("no credential configured")

func init() {
	viper.SetDefault("secrets.service", "briefpost")
	viper.SetDefault("secrets.file.foldername", "~/.config/briefpost/credentials")
}

// Store looks up credentials in the configuration and the system keyring. The keyring is
// opened on first use, so configurations without keyring references never touch it.
type Store struct {
	open func() (keyring.Keyring, error)

	once sync.Once
	ring keyring.Keyring
	err  error
}

func NewStore() *Store {
	return NewStoreWithKeyring(openKeyring)
}

// NewStoreWithKeyring creates a store using open to obtain the keyring.
func NewStoreWithKeyring(open func() (keyring.Keyring, error)) *Store {
	return &Store{open: open}
}

func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: viper.GetString("secrets.service"),
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  viper.GetString("secrets.file.foldername"),
		FilePasswordFunc:         keyring.TerminalPrompt,
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("could not open keyring: %w", err)
	}

	return ring, nil
}

func (s *Store) keyring() (keyring.Keyring, error) {
	s.once.Do(func() {
		s.ring, s.err = s.open()
	})

	return s.ring, s.err
}

// Get retrieves a credential by key from the keyring.
func (s *Store) Get(key string) (string, error) {
	ring, err := s.keyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("could not get credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential by key in the keyring.
func (s *Store) Set(key, value string) error {
	ring, err := s.keyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: fmt.Sprintf("briefpost: %s", key),
	})
	if err != nil {
		return fmt.Errorf("could not set credential %q: %w", key, err)
	}

	return nil
}

// Resolve returns the password configured below prefix. `<prefix>.password` is used
// verbatim, otherwise `<prefix>.keyring` names the keyring entry to look up.
func (s *Store) Resolve(prefix string) (string, error) {
	if password := viper.GetString(prefix + ".password"); password != "" {
		return password, nil
	}

	if key := viper.GetString(prefix + ".keyring"); key != "" {
		return s.Get(key)
	}

	return "", fmt.Errorf("%s: %w", prefix, ErrNoCredential)
}
