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

package log

import (
	"context"

	"github.com/rs/zerolog"
)

type fieldDispatch struct{}
type fieldTransport struct{}
type fieldFolder struct{}

// WithDispatch attaches the correlation id of a dispatch call.
func WithDispatch(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, fieldDispatch{}, id)
}

// WithTransport attaches the id of the transport in use.
func WithTransport(ctx context.Context, transportID string) context.Context {
	return context.WithValue(ctx, fieldTransport{}, transportID)
}

// WithFolder attaches the uri of the folder in use.
func WithFolder(ctx context.Context, uri string) context.Context {
	return context.WithValue(ctx, fieldFolder{}, uri)
}

func appendContextFields(ctx context.Context, event *zerolog.Event) *zerolog.Event {
	if id, ok := ctx.Value(fieldDispatch{}).(string); ok {
		event.Str("dispatch", id)
	}

	if transportID, ok := ctx.Value(fieldTransport{}).(string); ok {
		event.Str("transport", transportID)
	}

	if uri, ok := ctx.Value(fieldFolder{}).(string); ok {
		event.Str("folder", uri)
	}

	return event
}
