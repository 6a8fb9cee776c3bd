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

// Package dispatch sends composed messages through their transport and files the
// sent copies into folders.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefpost/internal/crypto"
	"github.com/lukasdietrich/briefpost/internal/directive"
	"github.com/lukasdietrich/briefpost/internal/envelope"
	"github.com/lukasdietrich/briefpost/internal/filter"
	"github.com/lukasdietrich/briefpost/internal/folder"
	"github.com/lukasdietrich/briefpost/internal/log"
	"github.com/lukasdietrich/briefpost/internal/models"
	"github.com/lukasdietrich/briefpost/internal/transport"
)

func init() {
	viper.SetDefault("dispatch.strictDisconnect", false)
}

// PipelineOptions configure the behaviour of a Pipeline.
type PipelineOptions struct {
	// StrictDisconnect makes a failed disconnect after a successful send fatal.
	StrictDisconnect bool
}

func PipelineOptionsFromViper() PipelineOptions {
	return PipelineOptions{
		StrictDisconnect: viper.GetBool("dispatch.strictDisconnect"),
	}
}

// Pipeline runs dispatches synchronously on the calling goroutine.
type Pipeline struct {
	transports transport.Resolver
	folders    folder.Resolver
	filters    filter.Builder
	ids        crypto.IDGenerator
	options    PipelineOptions
	leases     *leases
}

func NewPipeline(
	transports transport.Resolver,
	folders folder.Resolver,
	filters filter.Builder,
	ids crypto.IDGenerator,
	options PipelineOptions,
) *Pipeline {
	return &Pipeline{
		transports: transports,
		folders:    folders,
		filters:    filters,
		ids:        ids,
		options:    options,
		leases:     newLeases(),
	}
}

// Send delivers message to its recipients, copies it into every post-to folder and
// archives it in a sent folder. Afterwards the originating draft and source message
// are updated.
//
// A nil error or a *PostProcessingError mean the message was sent. Every other error
// is fatal, see IsDelivered.
func (p *Pipeline) Send(ctx context.Context, message *models.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id, err := p.ids.GenerateID()
	if err != nil {
		return fmt.Errorf("could not generate dispatch id: %w", err)
	}

	ctx = log.WithDispatch(ctx, id)

	dc, err := p.prepare(ctx, message)
	if err != nil {
		return err
	}

	if err := p.deliver(dc); err != nil {
		return err
	}

	if err := dc.cancelled(); err != nil {
		return err
	}

	if err := p.postTo(dc); err != nil {
		return err
	}

	if err := dc.cancelled(); err != nil {
		return err
	}

	archived, err := p.postProcess(dc)
	if err != nil {
		return err
	}

	if !archived {
		return &ArchiveError{Messages: dc.errorLog}
	}

	if err := dc.cancelled(); err != nil {
		return err
	}

	p.cleanup(dc)

	if err := dc.cancelled(); err != nil {
		return err
	}

	if len(dc.errorLog) > 0 {
		log.WarnContext(ctx).
			Int("problems", len(dc.errorLog)).
			Msg("message sent, but post-processing had problems")

		return &PostProcessingError{Messages: dc.errorLog}
	}

	log.InfoContext(ctx).Msg("message dispatched")
	return nil
}

// prepare separates the directives from the message and resolves everything the
// stages need up front.
func (p *Pipeline) prepare(ctx context.Context, message *models.Message) (*dispatchContext, error) {
	stripped, directives, removed := directive.Extract(ctx, message.Header())

	env, err := envelope.Resolve(stripped)
	if err != nil {
		return nil, fmt.Errorf("could not resolve envelope: %w", err)
	}

	dc := dispatchContext{
		ctx:        ctx,
		original:   message,
		message:    message.WithHeader(stripped),
		directives: directives,
		removed:    removed,
		envelope:   env,
		info:       models.MessageInfo{Flags: models.FlagSeen},
	}

	transportID := directives.TransportID
	if transportID == "" {
		transportID = p.transports.ForAccount(directives.AccountID)
	}

	dc.transport, err = p.transports.Resolve(ctx, transportID)
	if err != nil {
		if !env.Recipients.IsEmpty() || !errors.Is(err, transport.ErrNotFound) {
			return nil, err
		}

		log.DebugContext(ctx).
			Err(err).
			Msg("no transport for a message without recipients")
	}

	if dc.transport != nil {
		dc.ctx = log.WithTransport(dc.ctx, dc.transport.ID())
	}

	dc.filter, err = p.filters.Build(dc.ctx, filter.PurposeOutgoing)
	if err != nil {
		log.WarnContext(dc.ctx).
			Err(err).
			Msg("could not build outgoing filters, continuing without")

		dc.filter = nil
	}

	return &dc, nil
}
