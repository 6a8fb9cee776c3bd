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

import "strings"

// HeaderField is a single header line. Keys keep the spelling they were parsed with.
type HeaderField struct {
	Key   string
	Value string
}

// Header is the ordered list of header fields of a message. Keys may repeat.
type Header []HeaderField

// Get returns the value of the first field matching key, ignoring case.
func (h Header) Get(key string) string {
	for _, field := range h {
		if strings.EqualFold(field.Key, key) {
			return field.Value
		}
	}

	return ""
}

// Values returns the values of all fields matching key in order.
func (h Header) Values(key string) []string {
	var values []string

	for _, field := range h {
		if strings.EqualFold(field.Key, key) {
			values = append(values, field.Value)
		}
	}

	return values
}

func (h Header) Has(key string) bool {
	for _, field := range h {
		if strings.EqualFold(field.Key, key) {
			return true
		}
	}

	return false
}

// Contains reports whether an identical field (key ignoring case, exact value) exists.
func (h Header) Contains(field HeaderField) bool {
	for _, f := range h {
		if strings.EqualFold(f.Key, field.Key) && f.Value == field.Value {
			return true
		}
	}

	return false
}

func (h Header) Clone() Header {
	if h == nil {
		return nil
	}

	return append(Header(nil), h...)
}
