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

package crypto

import (
	"crypto/rand"
	"encoding/base32"
	"io"
	"strings"
)

// IDGenerator generates the correlation ids attached to every dispatch.
type IDGenerator interface {
	GenerateID() (string, error)
}

// NewIDGenerator creates an id generator reading from the system random source.
func NewIDGenerator() IDGenerator {
	return &randomIDGenerator{random: rand.Reader}
}

var idEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

type randomIDGenerator struct {
	random io.Reader
}

// GenerateID returns 80 random bits as 16 lowercase base32 characters.
func (r randomIDGenerator) GenerateID() (string, error) {
	const byteLength = 10

	b := make([]byte, byteLength)
	if _, err := io.ReadFull(r.random, b); err != nil {
		return "", err
	}

	return strings.ToLower(idEncoding.EncodeToString(b)), nil
}
