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

package transport_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukasdietrich/briefpost/internal/transport"

	mocktransport "github.com/lukasdietrich/briefpost/internal/mocks/transport"
)

func TestNotFoundError(t *testing.T) {
	assert.EqualError(t, &transport.NotFoundError{ID: "work"}, `transport "work" not found`)
	assert.EqualError(t, &transport.NotFoundError{ID: "work", Reason: "gone"}, `transport "work" not found: gone`)
	assert.ErrorIs(t, &transport.NotFoundError{ID: "work"}, transport.ErrNotFound)
}

func newTestRegistry(created *int) *transport.Registry {
	return transport.NewRegistry(map[string]transport.Factory{
		"fake": func(id string) (transport.Transport, error) {
			*created++

			fake := new(mocktransport.Transport)
			fake.On("ID").Return(id)

			return fake, nil
		},
		"broken": func(id string) (transport.Transport, error) {
			return nil, errors.New("misconfigured")
		},
	})
}

func TestRegistryResolveCaches(t *testing.T) {
	viper.Set("transports.work.type", "fake")
	defer viper.Set("transports.work.type", "")

	var created int
	registry := newTestRegistry(&created)

	first, err := registry.Resolve(context.TODO(), "work")
	require.NoError(t, err)
	assert.Equal(t, "work", first.ID())

	second, err := registry.Resolve(context.TODO(), "work")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, created)
}

func TestRegistryResolveNotConfigured(t *testing.T) {
	var created int
	registry := newTestRegistry(&created)

	_, err := registry.Resolve(context.TODO(), "unknown")

	var notFound *transport.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "unknown", notFound.ID)

	_, err = registry.Resolve(context.TODO(), "")
	assert.ErrorIs(t, err, transport.ErrNotFound)
}

func TestRegistryResolveUnknownType(t *testing.T) {
	viper.Set("transports.carrier.type", "pigeon")
	defer viper.Set("transports.carrier.type", "")

	var created int
	_, err := newTestRegistry(&created).Resolve(context.TODO(), "carrier")

	assert.ErrorIs(t, err, transport.ErrNotFound)
	assert.EqualError(t, err, `transport "carrier" not found: unknown type "pigeon"`)
}

func TestRegistryResolveFactoryError(t *testing.T) {
	viper.Set("transports.bad.type", "broken")
	defer viper.Set("transports.bad.type", "")

	var created int
	_, err := newTestRegistry(&created).Resolve(context.TODO(), "bad")

	assert.EqualError(t, err, `could not create transport "bad": misconfigured`)
	assert.NotErrorIs(t, err, transport.ErrNotFound)
}

func TestRegistryRegister(t *testing.T) {
	manual := new(mocktransport.Transport)
	manual.On("ID").Return("manual")

	var created int
	registry := newTestRegistry(&created)
	registry.Register(manual)

	actual, err := registry.Resolve(context.TODO(), "manual")
	require.NoError(t, err)
	assert.Same(t, manual, actual)
}

func TestRegistryForAccount(t *testing.T) {
	viper.Set("accounts.alice.transport", "work")
	viper.Set("transports.default", "fallback")

	defer func() {
		viper.Set("accounts.alice.transport", "")
		viper.Set("transports.default", "")
	}()

	var created int
	registry := newTestRegistry(&created)

	assert.Equal(t, "work", registry.ForAccount("alice"))
	assert.Equal(t, "bob", registry.ForAccount("bob"))
	assert.Equal(t, "fallback", registry.ForAccount(""))
}

func TestRegistryClose(t *testing.T) {
	connected := new(mocktransport.Transport)
	connected.On("ID").Return("connected")
	connected.On("IsConnected").Return(true)
	connected.On("Disconnect", context.TODO()).Return(errors.New("ignored"))

	idle := new(mocktransport.Transport)
	idle.On("ID").Return("idle")
	idle.On("IsConnected").Return(false)

	var created int
	registry := newTestRegistry(&created)
	registry.Register(connected)
	registry.Register(idle)

	registry.Close(context.TODO())

	connected.AssertExpectations(t)
	idle.AssertNotCalled(t, "Disconnect", context.TODO())
}
