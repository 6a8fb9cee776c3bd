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

package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefpost/internal/log"
)

func init() {
	viper.SetDefault("storage.blobs.foldername", "data/blobs")
}

// BlobsOptions configure the location of the blob store.
type BlobsOptions struct {
	// Foldername is the base directory of blob files.
	Foldername string
}

// BlobsOptionsFromViper reads `storage.blobs.foldername`.
func BlobsOptionsFromViper() BlobsOptions {
	return BlobsOptions{
		Foldername: viper.GetString("storage.blobs.foldername"),
	}
}

// Blobs is a permanent storage for message contents. Every blob is addressed by a random
// uuid.
type Blobs struct {
	fs    afero.Fs
	newID func() (uuid.UUID, error)
}

// NewBlobs creates the blob folder if needed and returns a store rooted there.
func NewBlobs(fs afero.Fs, opts BlobsOptions) (*Blobs, error) {
	if err := fs.MkdirAll(opts.Foldername, 0700); err != nil {
		return nil, fmt.Errorf("could not create blob folder %q: %w", opts.Foldername, err)
	}

	return &Blobs{
		fs:    afero.NewBasePathFs(fs, opts.Foldername),
		newID: uuid.NewRandom,
	}, nil
}

// Write copies all the data from r to a new blob and returns its id and size.
func (b *Blobs) Write(ctx context.Context, r io.Reader) (string, int64, error) {
	id, err := b.newID()
	if err != nil {
		return "", -1, err
	}

	name := id.String()

	f, err := b.fs.Create(name)
	if err != nil {
		return "", -1, err
	}

	log.DebugContext(ctx).Str("blob", name).Msg("writing blob")

	size, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		b.fs.Remove(name) // nolint:errcheck

		return "", -1, err
	}

	return name, size, f.Close()
}

// Delete removes a blob by id.
func (b *Blobs) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	log.DebugContext(ctx).Str("blob", id).Msg("removing blob")
	return b.fs.Remove(id)
}

// Reader returns a reader to a blob. The responsibility to close the reader is on the
// caller.
func (b *Blobs) Reader(id string) (io.ReadCloser, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	return b.fs.Open(id)
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid blob id %q: %w", id, err)
	}

	return nil
}
