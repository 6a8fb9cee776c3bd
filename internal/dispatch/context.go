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

package dispatch

import (
	"context"
	"fmt"

	"github.com/lukasdietrich/briefpost/internal/directive"
	"github.com/lukasdietrich/briefpost/internal/envelope"
	"github.com/lukasdietrich/briefpost/internal/filter"
	"github.com/lukasdietrich/briefpost/internal/folder"
	"github.com/lukasdietrich/briefpost/internal/log"
	"github.com/lukasdietrich/briefpost/internal/models"
	"github.com/lukasdietrich/briefpost/internal/transport"
)

// dispatchContext is the state of a single Send call. It is owned by that call and
// never shared.
type dispatchContext struct {
	ctx context.Context

	// original is the message as handed to Send, directives included.
	original *models.Message
	// message is the wire form without any directive headers.
	message    *models.Message
	directives *directive.Directives
	removed    directive.Removed
	envelope   *envelope.Envelope

	transport transport.Transport
	filter    filter.Driver
	info      models.MessageInfo

	errorLog []string

	sentFolder folder.Folder
}

// recover appends a recoverable problem to the error log.
func (dc *dispatchContext) recover(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	log.WarnContext(dc.ctx).
		Str("problem", message).
		Msg("post-processing problem")

	dc.errorLog = append(dc.errorLog, message)
}

func (dc *dispatchContext) cancelled() error {
	return dc.ctx.Err()
}

// providerFlags returns the flags of the resolved transport, if any.
func (dc *dispatchContext) providerFlags() transport.ProviderFlags {
	if dc.transport == nil {
		return transport.ProviderFlags{}
	}

	return dc.transport.Flags()
}
