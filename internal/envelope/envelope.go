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

// Package envelope derives the smtp envelope of a composed message.
package envelope

import (
	"fmt"
	"strings"

	"github.com/emersion/go-message/mail"

	"github.com/lukasdietrich/briefpost/internal/models"
)

// Envelope holds the sender and recipients a message is transmitted with.
type Envelope struct {
	// Sender is taken from Resent-From in resend mode and from From otherwise.
	Sender models.AddressSet
	// Recipients is the union of the (Resent-)To, Cc and Bcc headers. An empty set means
	// nothing is transmitted over the network.
	Recipients models.AddressSet
	// Resent is true when the message is redirected by its Resent-* headers.
	Resent bool
}

var (
	normalHeaders = headerSet{from: "From", to: []string{"To", "Cc", "Bcc"}}
	resentHeaders = headerSet{from: "Resent-From", to: []string{"Resent-To", "Resent-Cc", "Resent-Bcc"}}
)

type headerSet struct {
	from string
	to   []string
}

// Resolve reads the envelope from header. The presence of a Resent-From header
// selects resend mode.
func Resolve(header models.Header) (*Envelope, error) {
	keys := normalHeaders
	resent := header.Has(resentHeaders.from)

	if resent {
		keys = resentHeaders
	}

	sender, err := parseHeader(header, keys.from)
	if err != nil {
		return nil, err
	}

	var recipients models.AddressSet

	for _, key := range keys.to {
		set, err := parseHeader(header, key)
		if err != nil {
			return nil, err
		}

		recipients.Union(set)
	}

	return &Envelope{
		Sender:     sender,
		Recipients: recipients,
		Resent:     resent,
	}, nil
}

func parseHeader(header models.Header, key string) (models.AddressSet, error) {
	var set models.AddressSet

	for _, value := range header.Values(key) {
		if strings.TrimSpace(value) == "" {
			continue
		}

		list, err := parseAddressList(value)
		if err != nil {
			return set, fmt.Errorf("could not parse %s header: %w", key, err)
		}

		set.Add(list...)
	}

	return set, nil
}

func parseAddressList(value string) ([]models.Address, error) {
	parsed, err := mail.ParseAddressList(value)
	if err != nil {
		return nil, err
	}

	addrs := make([]models.Address, 0, len(parsed))

	for _, p := range parsed {
		addr, err := models.ParseUnicode(p.Address)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p.Address, err)
		}

		addrs = append(addrs, addr)
	}

	return addrs, nil
}
