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

package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefpost/internal/log"
	"github.com/lukasdietrich/briefpost/internal/secrets"
)

func init() {
	viper.SetDefault("transports.default", "")
}

// Factory creates the transport with id from its configuration below `transports.<id>`.
type Factory func(id string) (Transport, error)

// Registry creates transports on first use and keeps them for later dispatches, so
// that connections can be shared.
type Registry struct {
	factories map[string]Factory

	mu         sync.Mutex
	transports map[string]Transport
}

// NewRegistry creates a registry with a factory per transport type.
func NewRegistry(factories map[string]Factory) *Registry {
	return &Registry{
		factories:  factories,
		transports: make(map[string]Transport),
	}
}

// NewDefaultRegistry registers the smtp, ses, gmail and spool transports.
func NewDefaultRegistry(tlsConfig *tls.Config, secrets *secrets.Store, fs afero.Fs) *Registry {
	return NewRegistry(map[string]Factory{
		typeSMTP: func(id string) (Transport, error) {
			return NewSMTPTransport(id, SMTPOptionsFromViper(id), tlsConfig, secrets), nil
		},
		typeSES: func(id string) (Transport, error) {
			return NewSESTransport(id, SESOptionsFromViper(id)), nil
		},
		typeGmail: func(id string) (Transport, error) {
			return NewGmailTransport(id, GmailOptionsFromViper(id)), nil
		},
		typeSpool: func(id string) (Transport, error) {
			return NewSpoolTransport(id, SpoolOptionsFromViper(id), fs), nil
		},
	})
}

// Register adds a transport instance, replacing a configured one with the same id.
func (r *Registry) Register(transport Transport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.transports[transport.ID()] = transport
}

func (r *Registry) Resolve(ctx context.Context, id string) (Transport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if transport, ok := r.transports[id]; ok {
		return transport, nil
	}

	if id == "" {
		return nil, &NotFoundError{ID: id, Reason: "no transport configured"}
	}

	kind := viper.GetString(fmt.Sprintf("transports.%s.type", id))
	if kind == "" {
		return nil, &NotFoundError{ID: id}
	}

	factory, ok := r.factories[kind]
	if !ok {
		return nil, &NotFoundError{ID: id, Reason: fmt.Sprintf("unknown type %q", kind)}
	}

	transport, err := factory(id)
	if err != nil {
		return nil, fmt.Errorf("could not create transport %q: %w", id, err)
	}

	log.DebugContext(ctx).
		Str("id", id).
		Str("type", kind).
		Msg("created transport")

	r.transports[id] = transport
	return transport, nil
}

// ForAccount reads `accounts.<id>.transport` and defaults to the account id itself.
// Without an account `transports.default` is used.
func (r *Registry) ForAccount(accountID string) string {
	if accountID == "" {
		return viper.GetString("transports.default")
	}

	if id := viper.GetString(fmt.Sprintf("accounts.%s.transport", accountID)); id != "" {
		return id
	}

	return accountID
}

// Close disconnects every connected transport.
func (r *Registry) Close(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, transport := range r.transports {
		if !transport.IsConnected() {
			continue
		}

		if err := transport.Disconnect(ctx); err != nil {
			log.WarnContext(ctx).Err(err).Str("id", id).Msg("could not disconnect transport")
		}
	}
}
