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

// Package transport hands composed messages to the network.
package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/lukasdietrich/briefpost/internal/models"
)

var (
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("transport not found")
	// ErrNotConnected is returned by Send, if Connect was not called before.
	ErrNotConnected = errors.New("transport is not connected")
)

// NotFoundError is returned when no transport is configured for an id.
type NotFoundError struct {
	ID     string
	Reason string
}

func (e *NotFoundError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("transport %q not found: %s", e.ID, e.Reason)
	}

	return fmt.Sprintf("transport %q not found", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ProviderFlags describe capabilities of the provider behind a transport.
type ProviderFlags struct {
	// DisableSentFolder is set by providers, that keep their own copy of sent mail.
	DisableSentFolder bool
}

// Transport delivers messages to their recipients.
type Transport interface {
	// ID returns the configured id of the transport.
	ID() string
	IsConnected() bool
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	// Send transmits message to recipients. The message must not contain any private
	// headers at this point.
	Send(ctx context.Context, message *models.Message, sender, recipients models.AddressSet) error
	Flags() ProviderFlags
}

// Resolver looks up transports by id.
type Resolver interface {
	// Resolve returns the transport with id or a NotFoundError.
	Resolve(ctx context.Context, id string) (Transport, error)
	// ForAccount returns the transport id configured for an account.
	ForAccount(accountID string) string
}

// envelopeStrings returns the smtp envelope with domains in their ascii form.
func envelopeStrings(sender, recipients models.AddressSet) (string, []string, error) {
	var from string

	if !sender.IsEmpty() {
		ascii, err := sender.First().ASCII()
		if err != nil {
			return "", nil, fmt.Errorf("invalid sender %q: %w", sender.First(), err)
		}

		from = ascii
	}

	to := make([]string, 0, recipients.Len())

	for _, recipient := range recipients.Slice() {
		ascii, err := recipient.ASCII()
		if err != nil {
			return "", nil, fmt.Errorf("invalid recipient %q: %w", recipient, err)
		}

		to = append(to, ascii)
	}

	return from, to, nil
}
