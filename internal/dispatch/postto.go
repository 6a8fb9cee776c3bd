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
	"fmt"

	"github.com/lukasdietrich/briefpost/internal/log"
)

// postTo appends the wire form to every post-to folder in directive order. The
// first failure aborts the dispatch, folders are never substituted.
func (p *Pipeline) postTo(dc *dispatchContext) error {
	for _, uri := range dc.directives.PostToURIs {
		if err := dc.cancelled(); err != nil {
			return err
		}

		ctx := log.WithFolder(dc.ctx, uri)

		target, err := p.folders.Resolve(ctx, uri)
		if err != nil {
			return fmt.Errorf("could not open post-to folder %q: %w", uri, err)
		}

		id, err := target.Append(ctx, dc.message, dc.info)
		if err != nil {
			return fmt.Errorf("could not append to post-to folder %q: %w", uri, err)
		}

		log.DebugContext(ctx).
			Str("id", id).
			Msg("posted message to folder")
	}

	return nil
}
