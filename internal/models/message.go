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
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/emersion/go-message/textproto"
)

// Message is a composed mail. A Message is never mutated after construction,
// header changes produce a new Message sharing the body.
type Message struct {
	header Header
	body   []byte

	// folded holds the original bytes of parsed fields, including line folding and
	// the trailing CRLF. Fields without an entry are folded when written.
	folded map[HeaderField][]byte
}

func NewMessage(header Header, body []byte) *Message {
	return &Message{
		header: header.Clone(),
		body:   body,
	}
}

// ReadMessage parses the header block of r and keeps the remainder as opaque body.
func ReadMessage(r io.Reader) (*Message, error) {
	br := bufio.NewReader(r)

	parsed, err := textproto.ReadHeader(br)
	if err != nil {
		return nil, fmt.Errorf("could not read message header: %w", err)
	}

	var (
		header Header
		folded = make(map[HeaderField][]byte)
	)

	fields := parsed.Fields()
	for fields.Next() {
		field := HeaderField{
			Key:   rawKey(fields),
			Value: fields.Value(),
		}

		header = append(header, field)

		if raw, err := fields.Raw(); err == nil {
			if _, ok := folded[field]; !ok {
				folded[field] = raw
			}
		}
	}

	body, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("could not read message body: %w", err)
	}

	return &Message{header: header, body: body, folded: folded}, nil
}

// rawKey recovers the original spelling of the key, textproto canonicalizes it.
func rawKey(fields textproto.HeaderFields) string {
	raw, err := fields.Raw()
	if err != nil {
		return fields.Key()
	}

	colon := bytes.IndexByte(raw, ':')
	if colon < 0 {
		return fields.Key()
	}

	return string(bytes.TrimSpace(raw[:colon]))
}

// Header returns a copy of the header fields.
func (m *Message) Header() Header {
	return m.header.Clone()
}

// WithHeader returns a new message with header replacing the current one. Fields
// taken over from the parsed header keep their original folding.
func (m *Message) WithHeader(header Header) *Message {
	return &Message{
		header: header.Clone(),
		body:   m.body,
		folded: m.folded,
	}
}

func (m *Message) Body() []byte {
	return m.body
}

// WriteTo writes the wire form of the message.
func (m *Message) WriteTo(w io.Writer) (int64, error) {
	header, err := m.wireHeader()
	if err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	if err := textproto.WriteHeader(&buf, header); err != nil {
		return 0, err
	}

	n, err := buf.WriteTo(w)
	if err != nil {
		return n, err
	}

	written, err := w.Write(m.body)
	return n + int64(written), err
}

func (m *Message) wireHeader() (textproto.Header, error) {
	var header textproto.Header

	// textproto writes the most recently added field first
	for i := len(m.header) - 1; i >= 0; i-- {
		raw, err := m.rawField(m.header[i])
		if err != nil {
			return header, err
		}

		header.AddRaw(raw)
	}

	return header, nil
}

func (m *Message) rawField(field HeaderField) ([]byte, error) {
	if raw, ok := m.folded[field]; ok {
		return raw, nil
	}

	var scratch textproto.Header
	scratch.Add(field.Key, field.Value)

	raw, err := scratch.Raw(field.Key)
	if err != nil {
		return nil, fmt.Errorf("could not format header field %q: %w", field.Key, err)
	}

	// the canonical key has the same length, only its case differs
	return append([]byte(field.Key), raw[len(field.Key):]...), nil
}

// Bytes returns the wire form of the message.
func (m *Message) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = m.WriteTo(&buf)
	return buf.Bytes()
}

func (m *Message) Size() int64 {
	return int64(len(m.Bytes()))
}
