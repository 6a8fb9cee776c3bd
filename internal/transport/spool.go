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

package transport

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefpost/internal/log"
	"github.com/lukasdietrich/briefpost/internal/models"
)

const typeSpool = "spool"

// SpoolOptions name the pickup directory.
type SpoolOptions struct {
	Folder string
}

// SpoolOptionsFromViper reads `transports.<id>.folder`.
func SpoolOptionsFromViper(id string) SpoolOptions {
	return SpoolOptions{
		Folder: viper.GetString("transports." + id + ".folder"),
	}
}

// SpoolTransport writes every message into a directory for a pickup agent. Each message
// `<id>.eml` is accompanied by `<id>.env`, holding the envelope as smtp commands. The
// envelope is written last, its presence marks a complete message.
type SpoolTransport struct {
	id   string
	opts SpoolOptions
	fs   afero.Fs

	mu        sync.Mutex
	connected bool
}

func NewSpoolTransport(id string, opts SpoolOptions, fs afero.Fs) *SpoolTransport {
	return &SpoolTransport{id: id, opts: opts, fs: fs}
}

func (t *SpoolTransport) ID() string {
	return t.id
}

func (*SpoolTransport) Flags() ProviderFlags {
	return ProviderFlags{}
}

func (t *SpoolTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.connected
}

func (t *SpoolTransport) Connect(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.opts.Folder == "" {
		return fmt.Errorf("spool transport %q has no folder", t.id)
	}

	if err := t.fs.MkdirAll(t.opts.Folder, 0700); err != nil {
		return err
	}

	t.connected = true
	return nil
}

func (t *SpoolTransport) Disconnect(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.connected = false
	return nil
}

func (t *SpoolTransport) Send(ctx context.Context, message *models.Message, sender, recipients models.AddressSet) error {
	if !t.IsConnected() {
		return ErrNotConnected
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	from, to, err := envelopeStrings(sender, recipients)
	if err != nil {
		return err
	}

	name := path.Join(t.opts.Folder, uuid.NewString())

	if err := afero.WriteFile(t.fs, name+".eml", message.Bytes(), 0600); err != nil {
		return err
	}

	var envelope strings.Builder

	fmt.Fprintf(&envelope, "MAIL FROM:<%s>\r\n", from)
	for _, recipient := range to {
		fmt.Fprintf(&envelope, "RCPT TO:<%s>\r\n", recipient)
	}

	if err := afero.WriteFile(t.fs, name+".env", []byte(envelope.String()), 0600); err != nil {
		t.fs.Remove(name + ".eml") // nolint:errcheck
		return err
	}

	log.InfoContext(ctx).Str("file", name).Msg("message spooled")
	return nil
}
