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
	"io"
	"net/url"
	"os"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/emersion/go-mbox"
	"github.com/emersion/go-message/mail"
	"github.com/spf13/afero"

	"github.com/lukasdietrich/briefpost/internal/log"
	"github.com/lukasdietrich/briefpost/internal/models"
)

const (
	mboxScheme      = "mbox"
	mboxDefaultFrom = "MAILER-DAEMON"
)

// MboxStore appends messages to mbox files, named by the path of `mbox:///path/to/file`.
// The file is created on first append, its directory must exist.
type MboxStore struct {
	fs afero.Fs

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMboxStore(fs afero.Fs) *MboxStore {
	return &MboxStore{
		fs:    fs,
		locks: make(map[string]*sync.Mutex),
	}
}

func (*MboxStore) Schemes() []string {
	return []string{mboxScheme}
}

// lock returns the mutex serializing writes to filename.
func (s *MboxStore) lock(filename string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[filename]
	if !ok {
		lock = new(sync.Mutex)
		s.locks[filename] = lock
	}

	return lock
}

func (s *MboxStore) Open(ctx context.Context, uri *url.URL) (Folder, error) {
	filename := path.Clean(uri.Path)
	if uri.Path == "" || filename == "/" {
		return nil, &NotFoundError{URI: uri.String()}
	}

	info, err := s.fs.Stat(path.Dir(filename))
	if err != nil || !info.IsDir() {
		return nil, &NotFoundError{URI: uri.String()}
	}

	return &MboxFolder{
		store:    s,
		filename: filename,
		lock:     s.lock(filename),
	}, nil
}

func (*MboxStore) Unsubscribe(context.Context, *url.URL) error {
	return fmt.Errorf("mbox: %w", ErrUnsupported)
}

// MboxFolder is an append-only mbox file. Message ids are the 1-based positions of the
// messages within the file.
type MboxFolder struct {
	store    *MboxStore
	filename string
	lock     *sync.Mutex
}

func (f *MboxFolder) URI() string {
	return mboxScheme + "://" + f.filename
}

func (f *MboxFolder) Append(ctx context.Context, message *models.Message, _ models.MessageInfo) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	count, err := f.count()
	if err != nil {
		return "", err
	}

	file, err := f.store.fs.OpenFile(f.filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return "", err
	}

	defer file.Close()

	writer := mbox.NewWriter(file)

	w, err := writer.CreateMessage(envelopeFrom(message), time.Now())
	if err != nil {
		return "", err
	}

	if _, err := message.WriteTo(w); err != nil {
		return "", err
	}

	if err := writer.Close(); err != nil {
		return "", err
	}

	log.DebugContext(ctx).Str("file", f.filename).Msg("appended message to mbox")
	return strconv.Itoa(count + 1), file.Close()
}

func envelopeFrom(message *models.Message) string {
	addresses, err := mail.ParseAddressList(message.Header().Get("From"))
	if err != nil || len(addresses) == 0 {
		return mboxDefaultFrom
	}

	return addresses[0].Address
}

func (*MboxFolder) SetFlags(context.Context, string, models.Flags, models.Flags) error {
	return fmt.Errorf("mbox: %w", ErrUnsupported)
}

// Synchronize is a no-op, every append is written immediately.
func (*MboxFolder) Synchronize(context.Context, bool) error {
	return nil
}

func (f *MboxFolder) List(ctx context.Context) ([]string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	count, err := f.count()
	if err != nil {
		return nil, err
	}

	ids := make([]string, count)
	for i := range ids {
		ids[i] = strconv.Itoa(i + 1)
	}

	return ids, nil
}

func (f *MboxFolder) Message(ctx context.Context, id string) (*models.Message, error) {
	position, err := strconv.Atoi(id)
	if err != nil || position < 1 {
		return nil, fmt.Errorf("%q in %q: %w", id, f.URI(), ErrMessageNotFound)
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	var found *models.Message

	err = f.each(func(index int, r io.Reader) (bool, error) {
		if index+1 < position {
			return true, nil
		}

		message, err := models.ReadMessage(r)
		found = message

		return false, err
	})
	if err != nil {
		return nil, err
	}

	if found == nil {
		return nil, fmt.Errorf("%q in %q: %w", id, f.URI(), ErrMessageNotFound)
	}

	return found, nil
}

func (f *MboxFolder) count() (int, error) {
	var count int

	err := f.each(func(int, io.Reader) (bool, error) {
		count++
		return true, nil
	})

	return count, err
}

// each calls fn for every message until fn returns false. A missing file is empty.
func (f *MboxFolder) each(fn func(int, io.Reader) (bool, error)) error {
	file, err := f.store.fs.Open(f.filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return err
	}

	defer file.Close()

	reader := mbox.NewReader(file)

	for index := 0; ; index++ {
		r, err := reader.NextMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return err
		}

		next, err := fn(index, r)
		if err != nil || !next {
			return err
		}
	}
}
