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

	"github.com/lukasdietrich/briefpost/internal/log"
)

// deliver transmits the wire form of the message. Messages without recipients are
// not transmitted at all.
func (p *Pipeline) deliver(dc *dispatchContext) error {
	recipients := dc.envelope.Recipients

	if recipients.IsEmpty() {
		log.DebugContext(dc.ctx).Msg("no recipients, skipping delivery")
		return nil
	}

	t := dc.transport

	// transports are shared between dispatches. The lease keeps a connection open
	// until the last dispatch using it is done.
	p.leases.acquire(t.ID())

	disconnect := func() error {
		// the connection is closed even if the dispatch was cancelled.
		return t.Disconnect(context.WithoutCancel(dc.ctx))
	}

	didConnect := false

	if !t.IsConnected() {
		if err := t.Connect(dc.ctx); err != nil {
			p.releaseTransport(dc, false, disconnect) // nolint:errcheck
			return fmt.Errorf("could not connect transport %q: %w", t.ID(), err)
		}

		didConnect = true
	}

	log.DebugContext(dc.ctx).
		Str("sender", dc.envelope.Sender.String()).
		Int("recipients", recipients.Len()).
		Msg("sending message")

	sendErr := t.Send(dc.ctx, dc.message, dc.envelope.Sender, recipients)

	if err := p.releaseTransport(dc, didConnect, disconnect); err != nil {
		if sendErr == nil && p.options.StrictDisconnect {
			return fmt.Errorf("could not disconnect transport %q: %w", t.ID(), err)
		}
	}

	if sendErr != nil {
		if IsCancelled(sendErr) {
			return sendErr
		}

		return fmt.Errorf("could not send message: %w", sendErr)
	}

	log.InfoContext(dc.ctx).
		Int("recipients", recipients.Len()).
		Msg("message sent")

	return nil
}

func (p *Pipeline) releaseTransport(dc *dispatchContext, didConnect bool, disconnect func() error) error {
	err := p.leases.release(dc.transport.ID(), didConnect, disconnect)
	if err != nil {
		log.WarnContext(dc.ctx).
			Err(err).
			Msg("could not disconnect transport")
	}

	return err
}
