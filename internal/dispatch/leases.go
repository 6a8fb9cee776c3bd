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


package dispatch

import "sync"

// leases counts the dispatches using a transport. A connection opened by any of them
// is closed by the last one to release the transport. Transports connected outside
// of a dispatch are left alone.
type leases struct {
	mu   sync.Mutex
	byID map[string]*transportLease
}

type transportLease struct {
	users  int
	opened bool

	// closing is held while the last user disconnects.
	closing sync.Mutex
}

func newLeases() *leases {
	return &leases{byID: make(map[string]*transportLease)}
}

// acquire registers a user of the transport. It waits for a disconnect started by
// the previous users.
func (l *leases) acquire(id string) {
	l.mu.Lock()

	lease, ok := l.byID[id]
	if !ok {
		lease = new(transportLease)
		l.byID[id] = lease
	}

	lease.users++
	l.mu.Unlock()

	lease.closing.Lock()
	lease.closing.Unlock() // nolint:staticcheck
}

// release unregisters a user, which opened the connection if didConnect is set.
// disconnect is called once the last user is gone and any user opened the connection.
func (l *leases) release(id string, didConnect bool, disconnect func() error) error {
	l.mu.Lock()

	lease := l.byID[id]
	lease.users--
	lease.opened = lease.opened || didConnect

	if lease.users > 0 || !lease.opened {
		l.mu.Unlock()
		return nil
	}

	lease.opened = false
	lease.closing.Lock()
	l.mu.Unlock()

	defer lease.closing.Unlock()
	return disconnect()
}
