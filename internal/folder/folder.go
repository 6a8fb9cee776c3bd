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

package folder

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/lukasdietrich/briefpost/internal/models"
)

var (
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("folder not found")
	// ErrMessageNotFound is returned when a message id is unknown to a folder.
	ErrMessageNotFound = errors.New("message not found")
	// ErrUnsupported is returned by stores that cannot perform an operation.
	ErrUnsupported = errors.New("operation not supported by folder")
)

// NotFoundError is returned when a uri does not name an existing folder.
type NotFoundError struct {
	URI string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("folder %q not found", e.URI)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Folder is a handle to a mailbox. Handles are safe for concurrent use.
type Folder interface {
	// URI returns the canonical uri of the folder.
	URI() string
	// Append stores a copy of the message and returns its id within the folder.
	Append(ctx context.Context, message *models.Message, info models.MessageInfo) (string, error)
	// SetFlags replaces the flags selected by mask of the message with id.
	SetFlags(ctx context.Context, id string, flags, mask models.Flags) error
	// Synchronize writes pending changes. If expunge is set, messages flagged as
	// deleted are removed.
	Synchronize(ctx context.Context, expunge bool) error
}

// Browser is implemented by folders, whose messages can be read back.
type Browser interface {
	// List returns the ids of all messages not flagged as deleted, in the order they were
	// appended.
	List(ctx context.Context) ([]string, error)
	// Message reads the message with id.
	Message(ctx context.Context, id string) (*models.Message, error)
}

// Store opens folders of one or more uri schemes.
type Store interface {
	// Schemes returns the uri schemes handled by the store.
	Schemes() []string
	// Open returns a handle to an existing folder.
	Open(ctx context.Context, uri *url.URL) (Folder, error)
	// Unsubscribe removes the folder from the subscribed folders.
	Unsubscribe(ctx context.Context, uri *url.URL) error
}

// Kind names one of the well-known local folders.
type Kind int

const (
	LocalSent Kind = iota
	LocalDrafts
	LocalOutbox
)

func (k Kind) String() string {
	switch k {
	case LocalSent:
		return "sent"
	case LocalDrafts:
		return "drafts"
	case LocalOutbox:
		return "outbox"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Resolver turns folder uris into handles.
type Resolver interface {
	// Resolve returns the folder named by uri.
	Resolve(ctx context.Context, uri string) (Folder, error)
	// Local returns one of the well-known local folders.
	Local(ctx context.Context, kind Kind) (Folder, error)
	// LocalURI returns the uri of a well-known local folder.
	LocalURI(kind Kind) string
	// Unsubscribe removes the folder named by uri from the subscribed folders.
	Unsubscribe(ctx context.Context, uri string) error
}
