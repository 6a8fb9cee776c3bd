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

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type disconnectCounter struct {
	calls int
	err   error
}

func (c *disconnectCounter) disconnect() error {
	c.calls++
	return c.err
}

func TestLeasesLastUserDisconnects(t *testing.T) {
	l := newLeases()
	counter := new(disconnectCounter)

	l.acquire("smtp1")
	l.acquire("smtp1")

	// the first dispatch opened the connection, the second one found it connected
	assert.NoError(t, l.release("smtp1", true, counter.disconnect))
	assert.Zero(t, counter.calls)

	assert.NoError(t, l.release("smtp1", false, counter.disconnect))
	assert.Equal(t, 1, counter.calls)
}

func TestLeasesKeepForeignConnection(t *testing.T) {
	l := newLeases()
	counter := new(disconnectCounter)

	l.acquire("smtp1")
	assert.NoError(t, l.release("smtp1", false, counter.disconnect))
	assert.Zero(t, counter.calls)
}

func TestLeasesSeparateTransports(t *testing.T) {
	l := newLeases()
	counter := &disconnectCounter{err: errors.New("broken pipe")}

	l.acquire("smtp1")
	l.acquire("ses")

	assert.EqualError(t, l.release("ses", true, counter.disconnect), "broken pipe")
	assert.Equal(t, 1, counter.calls)

	assert.NoError(t, l.release("smtp1", false, counter.disconnect))
	assert.Equal(t, 1, counter.calls)
}

func TestLeasesAcquireWaitsForDisconnect(t *testing.T) {
	l := newLeases()
	l.acquire("smtp1")

	started := make(chan struct{})
	unblock := make(chan struct{})

	go l.release("smtp1", true, func() error { // nolint:errcheck
		close(started)
		<-unblock
		return nil
	})

	<-started

	acquired := make(chan struct{})
	go func() {
		l.acquire("smtp1")
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("acquired while disconnecting")
	case <-time.After(50 * time.Millisecond):
	}

	close(unblock)

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("acquire did not return after disconnect")
	}
}
