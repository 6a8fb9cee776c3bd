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
	"testing"

	"github.com/99designs/keyring"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArrayStore(items ...keyring.Item) *Store {
	return NewStoreWithKeyring(func() (keyring.Keyring, error) {
		return keyring.NewArrayKeyring(items), nil
	})
}

func TestResolvePassword(t *testing.T) {
	defer viper.Reset()

	viper.Set("transports.mail.password", "hunter2")
	viper.Set("transports.mail.keyring", "ignored")

	store := NewStoreWithKeyring(func() (keyring.Keyring, error) {
		t.Fatal("keyring must not be opened")
		return nil, nil
	})

	password, err := store.Resolve("transports.mail")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", password)
}

func TestResolveKeyring(t *testing.T) {
	defer viper.Reset()

	viper.Set("transports.mail.keyring", "mail-password")

	store := newArrayStore(keyring.Item{Key: "mail-password", Data: []byte("s3cret")})

	password, err := store.Resolve("transports.mail")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", password)
}

func TestResolveKeyringMissingItem(t *testing.T) {
	defer viper.Reset()

	viper.Set("transports.mail.keyring", "mail-password")

	_, err := newArrayStore().Resolve("transports.mail")
	assert.ErrorIs(t, err, keyring.ErrKeyNotFound)
}

func TestResolveNothingConfigured(t *testing.T) {
	_, err := newArrayStore().Resolve("transports.nothing")
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestSetThenGet(t *testing.T) {
	store := newArrayStore()

	require.NoError(t, store.Set("key", "value"))

	value, err := store.Get("key")
	require.NoError(t, err)
	assert.Equal(t, "value", value)
}

func TestKeyringOpenedOnce(t *testing.T) {
	calls := 0
	store := NewStoreWithKeyring(func() (keyring.Keyring, error) {
		calls++
		return nil, errors.New("no backend")
	})

	_, err := store.Get("a")
	assert.EqualError(t, err, "no backend")

	_, err = store.Get("b")
	assert.EqualError(t, err, "no backend")

	assert.Equal(t, 1, calls)
}
