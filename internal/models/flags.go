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

package models

import (
	"strings"
)

// Flags are the system flags of a stored message.
type Flags uint32

const (
	FlagAnswered Flags = 1 << iota
	FlagDeleted
	FlagDraft
	FlagFlagged
	FlagSeen
	FlagAnsweredAll
	FlagForwarded
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagAnswered, "ANSWERED"},
	{FlagDeleted, "DELETED"},
	{FlagDraft, "DRAFT"},
	{FlagFlagged, "FLAGGED"},
	{FlagSeen, "SEEN"},
	{FlagAnsweredAll, "ANSWERED_ALL"},
	{FlagForwarded, "FORWARDED"},
}

// sourceFlagTokens are the tokens accepted in a source flags directive.
var sourceFlagTokens = map[string]Flags{
	"ANSWERED":     FlagAnswered,
	"ANSWERED_ALL": FlagAnswered | FlagAnsweredAll,
	"FORWARDED":    FlagForwarded,
	"SEEN":         FlagSeen,
}

// ParseSourceFlags parses space separated symbolic flag tokens. Unknown tokens are
// returned instead of failing the whole value.
func ParseSourceFlags(raw string) (Flags, []string) {
	var (
		flags   Flags
		unknown []string
	)

	for _, token := range strings.Fields(raw) {
		flag, ok := sourceFlagTokens[strings.ToUpper(token)]
		if !ok {
			unknown = append(unknown, token)
			continue
		}

		flags |= flag
	}

	return flags, unknown
}

// ParseFlags parses space separated flag names as printed by String. Unknown names are
// returned instead of failing the whole value.
func ParseFlags(raw string) (Flags, []string) {
	var (
		flags   Flags
		unknown []string
	)

tokens:
	for _, token := range strings.Fields(raw) {
		for _, entry := range flagNames {
			if strings.EqualFold(entry.name, token) {
				flags |= entry.flag
				continue tokens
			}
		}

		unknown = append(unknown, token)
	}

	return flags, unknown
}

func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

// Apply sets the bits of flags selected by mask and keeps all others.
func (f Flags) Apply(flags, mask Flags) Flags {
	return (f &^ mask) | (flags & mask)
}

func (f Flags) String() string {
	var names []string

	for _, entry := range flagNames {
		if f.Has(entry.flag) {
			names = append(names, entry.name)
		}
	}

	return strings.Join(names, " ")
}

// MessageInfo is the baseline metadata stored alongside an appended message.
type MessageInfo struct {
	Flags Flags
}
