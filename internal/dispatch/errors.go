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
	"errors"
	"strings"
)

// PostProcessingError is returned when a message was delivered, but filtering or
// archiving ran into problems. The message must not be sent again.
type PostProcessingError struct {
	Messages []string
}

func (e *PostProcessingError) Error() string {
	return strings.Join(e.Messages, "\n\n")
}

// ArchiveError is returned when no sent folder, not even the local one, accepted the
// message. The message is considered to be still in its outbox.
type ArchiveError struct {
	Messages []string
}

func (e *ArchiveError) Error() string {
	return strings.Join(e.Messages, "\n\n")
}

// IsDelivered reports whether err is the outcome of a dispatch, that counts as sent.
func IsDelivered(err error) bool {
	var postProcessing *PostProcessingError
	return err == nil || errors.As(err, &postProcessing)
}

// IsCancelled reports whether err is caused by a cancelled or expired context.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
