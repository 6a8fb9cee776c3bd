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

// Package directive separates the pipeline private headers of a composed message from
// the headers that go onto the wire.
package directive

import (
	"context"
	"strings"

	"github.com/lukasdietrich/briefpost/internal/log"
	"github.com/lukasdietrich/briefpost/internal/models"
)

// Every header starting with Prefix is a directive header and never leaves the
// pipeline. The names are shared with the composer and external tooling.
const (
	Prefix = "X-Evolution"

	HeaderAccount       = "X-Evolution-Account"
	HeaderTransport     = "X-Evolution-Transport"
	HeaderSentFolder    = "X-Evolution-Fcc"
	HeaderPostTo        = "X-Evolution-PostTo"
	HeaderSourceFolder  = "X-Evolution-Source-Folder"
	HeaderSourceMessage = "X-Evolution-Source-Message"
	HeaderSourceFlags   = "X-Evolution-Source-Flags"
	HeaderDraftFolder   = "X-Evolution-Draft-Folder"
	HeaderDraftMessage  = "X-Evolution-Draft-Message"
)

// Directives are the delivery instructions carried by a message.
type Directives struct {
	AccountID     string
	TransportID   string
	SentFolderURI string
	PostToURIs    []string

	DraftFolderURI string
	DraftMessageID string

	SourceFolderURI string
	SourceMessageID string
	SourceFlags     models.Flags
}

// HasDraft reports whether the message was saved as a draft before.
func (d *Directives) HasDraft() bool {
	return d.DraftFolderURI != "" && d.DraftMessageID != ""
}

// HasSource reports whether the message replies to or forwards another message.
func (d *Directives) HasSource() bool {
	return d.SourceFolderURI != "" && d.SourceMessageID != "" && d.SourceFlags != 0
}

// Removal is a header field taken out of a header, remembered with its position.
type Removal struct {
	Index int
	Field models.HeaderField
}

// Removed is the list of fields taken out by Extract in ascending index order.
type Removed []Removal

// IsDirective reports whether key names a directive header.
func IsDirective(key string) bool {
	return len(key) >= len(Prefix) && strings.EqualFold(key[:len(Prefix)], Prefix)
}

// Extract splits header into the wire header without any directive fields, the parsed
// directives and the removed fields. The input header is not modified.
func Extract(ctx context.Context, header models.Header) (models.Header, *Directives, Removed) {
	var (
		stripped models.Header
		removed  Removed
	)

	for i, field := range header {
		if IsDirective(field.Key) {
			removed = append(removed, Removal{Index: i, Field: field})
			continue
		}

		stripped = append(stripped, field)
	}

	return stripped, Parse(ctx, header), removed
}

// Parse reads the directives of header without removing anything. Missing directives
// stay empty, defaults are applied by the consumer.
func Parse(ctx context.Context, header models.Header) *Directives {
	var d Directives

	for _, field := range header {
		if !IsDirective(field.Key) {
			continue
		}

		value := strings.TrimSpace(field.Value)

		switch {
		case strings.EqualFold(field.Key, HeaderAccount):
			d.AccountID = value
		case strings.EqualFold(field.Key, HeaderTransport):
			d.TransportID = value
		case strings.EqualFold(field.Key, HeaderSentFolder):
			d.SentFolderURI = value
		case strings.EqualFold(field.Key, HeaderPostTo):
			if value != "" {
				d.PostToURIs = append(d.PostToURIs, value)
			}
		case strings.EqualFold(field.Key, HeaderDraftFolder):
			d.DraftFolderURI = value
		case strings.EqualFold(field.Key, HeaderDraftMessage):
			d.DraftMessageID = value
		case strings.EqualFold(field.Key, HeaderSourceFolder):
			d.SourceFolderURI = value
		case strings.EqualFold(field.Key, HeaderSourceMessage):
			d.SourceMessageID = value
		case strings.EqualFold(field.Key, HeaderSourceFlags):
			d.SourceFlags = parseSourceFlags(ctx, value)
		}
	}

	return &d
}

func parseSourceFlags(ctx context.Context, value string) models.Flags {
	flags, unknown := models.ParseSourceFlags(value)

	for _, token := range unknown {
		log.WarnContext(ctx).
			Str("token", token).
			Msg("ignoring unknown source flag")
	}

	return flags
}

// Restore puts the removed fields back at their original positions. Fields that are
// already present in header with the same value are not duplicated. Repeated removed
// fields are all restored.
func Restore(header models.Header, removed Removed) models.Header {
	restored := header.Clone()

	for _, removal := range removed {
		if header.Contains(removal.Field) {
			continue
		}

		index := removal.Index
		if index > len(restored) {
			index = len(restored)
		}

		restored = append(restored, models.HeaderField{})
		copy(restored[index+1:], restored[index:])
		restored[index] = removal.Field
	}

	return restored
}
