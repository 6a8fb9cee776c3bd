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

// AddressSet is an ordered set of addresses. The first occurrence of an address wins.
type AddressSet struct {
	list []Address
	seen map[string]struct{}
}

// NewAddressSet creates a set containing addrs in order.
func NewAddressSet(addrs ...Address) AddressSet {
	var set AddressSet
	set.Add(addrs...)
	return set
}

// Add appends all addresses that are not yet part of the set.
func (s *AddressSet) Add(addrs ...Address) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}

	for _, addr := range addrs {
		key := addr.key()

		if _, ok := s.seen[key]; ok {
			continue
		}

		s.seen[key] = struct{}{}
		s.list = append(s.list, addr)
	}
}

// Union adds all addresses of other.
func (s *AddressSet) Union(other AddressSet) {
	s.Add(other.list...)
}

func (s AddressSet) Len() int {
	return len(s.list)
}

func (s AddressSet) IsEmpty() bool {
	return len(s.list) == 0
}

// Contains reports whether addr is part of the set.
func (s AddressSet) Contains(addr Address) bool {
	_, ok := s.seen[addr.key()]
	return ok
}

// Slice returns a copy of the addresses in order.
func (s AddressSet) Slice() []Address {
	return append([]Address(nil), s.list...)
}

// First returns the first address, or ZeroAddress for an empty set.
func (s AddressSet) First() Address {
	if len(s.list) == 0 {
		return ZeroAddress
	}

	return s.list[0]
}

func (s AddressSet) Strings() []string {
	strs := make([]string, len(s.list))
	for i, addr := range s.list {
		strs[i] = addr.String()
	}

	return strs
}

func (s AddressSet) String() string {
	return strings.Join(s.Strings(), ", ")
}
