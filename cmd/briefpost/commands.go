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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lukasdietrich/briefpost/internal/database"
	"github.com/lukasdietrich/briefpost/internal/dispatch"
	"github.com/lukasdietrich/briefpost/internal/folder"
	"github.com/lukasdietrich/briefpost/internal/log"
	"github.com/lukasdietrich/briefpost/internal/models"
	"github.com/lukasdietrich/briefpost/internal/shell"
	"github.com/lukasdietrich/briefpost/internal/transport"
)

const shutdownTimeout = 30 * time.Second

var errUsage = errors.New("wrong number of arguments, see --help")

// Resources are released by every command when it is done.
type Resources struct {
	Conn       database.Conn
	Transports *transport.Registry
}

func (r *Resources) release() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	r.Transports.Close(ctx)

	if err := r.Conn.Close(); err != nil {
		log.Warn().Err(err).Msg("could not close database")
	}
}

type sendCommand struct {
	Resources
	Dispatcher *dispatch.Dispatcher

	mode string `wire:"-"`
}

func (c *sendCommand) run(ctx context.Context, args []string) error {
	defer c.release()
	defer c.closeDispatcher()

	switch c.mode {
	case "unsubscribe":
		if len(args) != 1 {
			return errUsage
		}

		return c.Dispatcher.UnsubscribeFolder(ctx, args[0]).Wait(ctx)

	case "draft", "source":
		if len(args) != 1 {
			return errUsage
		}

		message, err := readMessage(args[0])
		if err != nil {
			return err
		}

		if c.mode == "draft" {
			return c.Dispatcher.HandleDraftHeaders(ctx, message).Wait(ctx)
		}

		return c.Dispatcher.HandleSourceHeaders(ctx, message).Wait(ctx)

	default:
		return c.send(ctx, args)
	}
}

func (c *sendCommand) send(ctx context.Context, filenames []string) error {
	if len(filenames) == 0 {
		return errUsage
	}

	futures := make([]*dispatch.Future, len(filenames))

	for i, filename := range filenames {
		message, err := readMessage(filename)
		if err != nil {
			return err
		}

		futures[i] = c.Dispatcher.DispatchSend(ctx, message, dispatch.PriorityDefault)
	}

	var failed int

	for i, future := range futures {
		err := future.Wait(ctx)

		switch {
		case err == nil:
			fmt.Printf("%s: sent\n", filenames[i])
		case dispatch.IsDelivered(err):
			fmt.Printf("%s: sent, but post-processing had problems:\n\n%v\n\n", filenames[i], err)
		default:
			fmt.Printf("%s: failed: %v\n", filenames[i], err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d messages could not be sent", failed, len(filenames))
	}

	return nil
}

func (c *sendCommand) closeDispatcher() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := c.Dispatcher.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("could not wait for running dispatches")
	}
}

type queueCommand struct {
	Resources
	Queue *dispatch.Queue

	flush bool `wire:"-"`
}

func (c *queueCommand) run(ctx context.Context, args []string) error {
	defer c.release()

	if c.flush {
		if len(args) != 0 {
			return errUsage
		}

		result, err := c.Queue.Flush(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("sent %d queued messages, %d failed\n", result.Sent, result.Failed)
		return nil
	}

	if len(args) == 0 {
		return errUsage
	}

	for _, filename := range args {
		message, err := readMessage(filename)
		if err != nil {
			return err
		}

		id, err := c.Queue.Enqueue(ctx, message)
		if err != nil {
			return fmt.Errorf("could not queue %q: %w", filename, err)
		}

		fmt.Printf("%s: queued as %s\n", filename, id)
	}

	return nil
}

type folderCommand struct {
	Resources
	Local *folder.LocalStore
}

func (c *folderCommand) run(ctx context.Context, args []string) error {
	defer c.release()

	if len(args) != 2 || args[0] != "create" {
		return errUsage
	}

	entity, err := c.Local.Create(ctx, args[1])
	if err != nil {
		return err
	}

	fmt.Printf("created folder://%s\n", entity.Name)
	return nil
}

type shellCommand struct {
	Resources
	Shell *shell.Shell
}

func (c *shellCommand) run(ctx context.Context, args []string) error {
	defer c.release()
	return c.Shell.Run()
}

// readMessage reads a message from filename, or from stdin if filename is "-".
func readMessage(filename string) (*models.Message, error) {
	var r io.Reader = os.Stdin

	if filename != "-" {
		f, err := os.Open(filename)
		if err != nil {
			return nil, err
		}

		defer f.Close()
		r = f
	}

	message, err := models.ReadMessage(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	return message, nil
}
