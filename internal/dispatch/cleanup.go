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
	"github.com/lukasdietrich/briefpost/internal/log"
	"github.com/lukasdietrich/briefpost/internal/models"
)

const draftFlags = models.FlagDeleted | models.FlagSeen

// cleanup updates the originating draft and source message. Failures are logged and
// never change the outcome of the dispatch.
func (p *Pipeline) cleanup(dc *dispatchContext) {
	if err := p.cleanupDraft(dc.ctx, dc.directives); err != nil {
		log.WarnContext(dc.ctx).
			Err(err).
			Msg("could not clean up draft")
	}

	if err := p.cleanupSource(dc.ctx, dc.directives); err != nil {
		log.WarnContext(dc.ctx).
			Err(err).
			Msg("could not update source message")
	}
}

// HandleDraftHeaders marks the draft, that message was composed from, as deleted. A
// message without draft headers is left alone.
func (p *Pipeline) HandleDraftHeaders(ctx context.Context, message *models.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return p.cleanupDraft(ctx, directive.Parse(ctx, message.Header()))
}

// HandleSourceHeaders sets the flags of the message, that message replies to or
// forwards. A message without source headers is left alone.
func (p *Pipeline) HandleSourceHeaders(ctx context.Context, message *models.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return p.cleanupSource(ctx, directive.Parse(ctx, message.Header()))
}

// UnsubscribeFolder removes the folder at uri from the subscribed folders of its store.
func (p *Pipeline) UnsubscribeFolder(ctx context.Context, uri string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return p.folders.Unsubscribe(log.WithFolder(ctx, uri), uri)
}

func (p *Pipeline) cleanupDraft(ctx context.Context, d *directive.Directives) error {
	if !d.HasDraft() {
		return nil
	}

	return p.setFlags(ctx, d.DraftFolderURI, d.DraftMessageID, draftFlags, draftFlags)
}

func (p *Pipeline) cleanupSource(ctx context.Context, d *directive.Directives) error {
	if !d.HasSource() {
		return nil
	}

	return p.setFlags(ctx, d.SourceFolderURI, d.SourceMessageID, d.SourceFlags, d.SourceFlags)
}

func (p *Pipeline) setFlags(ctx context.Context, uri, id string, flags, mask models.Flags) error {
	ctx = log.WithFolder(ctx, uri)

	target, err := p.folders.Resolve(ctx, uri)
	if err != nil {
		return err
	}

	if err := target.SetFlags(ctx, id, flags, mask); err != nil {
		return fmt.Errorf("could not set flags of %q: %w", id, err)
	}

	if err := target.Synchronize(ctx, false); err != nil {
		return fmt.Errorf("could not synchronize: %w", err)
	}

	log.DebugContext(ctx).
		Str("id", id).
		Stringer("flags", flags).
		Msg("updated message flags")

	return nil
}
