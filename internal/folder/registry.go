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
	"fmt"
	"net/url"

	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefpost/internal/log"
)

func init() {
	viper.SetDefault("folders.local.sent", "folder://local/Sent")
	viper.SetDefault("folders.local.drafts", "folder://local/Drafts")
	viper.SetDefault("folders.local.outbox", "folder://local/Outbox")
}

// Locations are the uris of the well-known local folders.
type Locations struct {
	Sent   string
	Drafts string
	Outbox string
}

// LocationsFromViper reads `folders.local.sent`, `folders.local.drafts` and
// `folders.local.outbox`.
func LocationsFromViper() Locations {
	return Locations{
		Sent:   viper.GetString("folders.local.sent"),
		Drafts: viper.GetString("folders.local.drafts"),
		Outbox: viper.GetString("folders.local.outbox"),
	}
}

func (l Locations) uri(kind Kind) string {
	switch kind {
	case LocalSent:
		return l.Sent
	case LocalDrafts:
		return l.Drafts
	case LocalOutbox:
		return l.Outbox
	default:
		return ""
	}
}

func (l Locations) all() []string {
	return []string{l.Sent, l.Drafts, l.Outbox}
}

// Registry dispatches folder uris to the store registered for their scheme.
type Registry struct {
	locations Locations
	stores    map[string]Store
}

// NewRegistry creates a registry of stores. A store registered later replaces earlier
// stores of the same scheme.
func NewRegistry(locations Locations, stores ...Store) *Registry {
	r := Registry{
		locations: locations,
		stores:    make(map[string]Store),
	}

	for _, store := range stores {
		for _, scheme := range store.Schemes() {
			r.stores[scheme] = store
		}
	}

	return &r
}

// NewDefaultRegistry registers the local, imap and mbox stores.
func NewDefaultRegistry(locations Locations, local *LocalStore, imap *IMAPStore, mbox *MboxStore) *Registry {
	return NewRegistry(locations, local, imap, mbox)
}

func (r *Registry) lookup(rawURI string) (Store, *url.URL, error) {
	uri, err := url.Parse(rawURI)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid folder uri %q: %w", rawURI, err)
	}

	store, ok := r.stores[uri.Scheme]
	if !ok {
		return nil, nil, &NotFoundError{URI: rawURI}
	}

	return store, uri, nil
}

func (r *Registry) Resolve(ctx context.Context, rawURI string) (Folder, error) {
	store, uri, err := r.lookup(rawURI)
	if err != nil {
		return nil, err
	}

	log.TraceContext(ctx).Str("uri", rawURI).Msg("resolving folder")
	return store.Open(ctx, uri)
}

func (r *Registry) Local(ctx context.Context, kind Kind) (Folder, error) {
	uri := r.LocalURI(kind)
	if uri == "" {
		return nil, fmt.Errorf("no local folder of kind %s", kind)
	}

	return r.Resolve(ctx, uri)
}

func (r *Registry) LocalURI(kind Kind) string {
	return r.locations.uri(kind)
}

func (r *Registry) Unsubscribe(ctx context.Context, rawURI string) error {
	store, uri, err := r.lookup(rawURI)
	if err != nil {
		return err
	}

	log.InfoContext(ctx).Str("uri", rawURI).Msg("unsubscribing folder")
	return store.Unsubscribe(ctx, uri)
}
