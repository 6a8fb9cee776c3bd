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

	"github.com/lukasdietrich/briefpost/internal/directive"
	"github.com/lukasdietrich/briefpost/internal/folder"
	"github.com/lukasdietrich/briefpost/internal/log"
	"github.com/lukasdietrich/briefpost/internal/models"
)

// postProcess filters and archives the message with its original headers. It reports
// false if not even the local sent folder accepted the message. A non-nil error is
// always a cancellation.
func (p *Pipeline) postProcess(dc *dispatchContext) (bool, error) {
	restored := dc.message.WithHeader(directive.Restore(dc.message.Header(), dc.removed))

	if dc.filter != nil {
		if err := dc.filter.Apply(dc.ctx, restored, &dc.info); err != nil {
			if IsCancelled(err) {
				return false, err
			}

			dc.recover("could not apply outgoing filters: %v", err)
		}
	}

	if dc.providerFlags().DisableSentFolder {
		log.DebugContext(dc.ctx).Msg("provider keeps sent messages, skipping archive")
		return true, nil
	}

	defer p.releaseSentFolder(dc)

	return p.archive(dc, restored)
}

func (p *Pipeline) archive(dc *dispatchContext, message *models.Message) (bool, error) {
	localURI := p.folders.LocalURI(folder.LocalSent)
	targetURI := dc.directives.SentFolderURI

	if targetURI != "" && targetURI != localURI {
		target, err := p.folders.Resolve(log.WithFolder(dc.ctx, targetURI), targetURI)
		if err != nil {
			if IsCancelled(err) {
				return false, err
			}

			dc.recover("could not open sent folder %q, falling back to local Sent: %v", targetURI, err)
		} else {
			dc.sentFolder = target

			err := p.appendSent(dc, target, message)
			if err == nil {
				return true, nil
			}

			if IsCancelled(err) {
				return false, err
			}

			dc.recover("could not append to %q, falling back to local Sent: %v", targetURI, err)
			p.releaseSentFolder(dc)
		}
	}

	local, err := p.folders.Local(log.WithFolder(dc.ctx, localURI), folder.LocalSent)
	if err == nil {
		dc.sentFolder = local
		err = p.appendSent(dc, local, message)
	}

	if err != nil {
		if IsCancelled(err) {
			return false, err
		}

		dc.recover("failed to append to local Sent: %v", err)
		return false, nil
	}

	return true, nil
}

func (p *Pipeline) appendSent(dc *dispatchContext, target folder.Folder, message *models.Message) error {
	ctx := log.WithFolder(dc.ctx, target.URI())

	id, err := target.Append(ctx, message, dc.info)
	if err != nil {
		return err
	}

	log.DebugContext(ctx).
		Str("id", id).
		Msg("archived sent message")

	return nil
}

// releaseSentFolder synchronizes the resolved sent folder. Failures are only logged.
func (p *Pipeline) releaseSentFolder(dc *dispatchContext) {
	target := dc.sentFolder
	if target == nil {
		return
	}

	dc.sentFolder = nil
	ctx := log.WithFolder(context.WithoutCancel(dc.ctx), target.URI())

	if err := target.Synchronize(ctx, false); err != nil {
		log.WarnContext(ctx).
			Err(err).
			Msg("could not synchronize sent folder")
	}
}
