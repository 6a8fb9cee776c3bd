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
	"context"
	"fmt"

	"github.com/lukasdietrich/briefpost/internal/folder"
	"github.com/lukasdietrich/briefpost/internal/log"
	"github.com/lukasdietrich/briefpost/internal/models"
)

// FlushResult counts the outcome of a flush.
type FlushResult struct {
	Sent   int
	Failed int
}

// Queue keeps messages in the local outbox until they are flushed.
type Queue struct {
	pipeline *Pipeline
	folders  folder.Resolver
}

func NewQueue(pipeline *Pipeline, folders folder.Resolver) *Queue {
	return &Queue{
		pipeline: pipeline,
		folders:  folders,
	}
}

// Enqueue appends message with all its directives to the outbox.
func (q *Queue) Enqueue(ctx context.Context, message *models.Message) (string, error) {
	outbox, err := q.folders.Local(ctx, folder.LocalOutbox)
	if err != nil {
		return "", err
	}

	ctx = log.WithFolder(ctx, outbox.URI())

	id, err := outbox.Append(ctx, message, models.MessageInfo{})
	if err != nil {
		return "", err
	}

	log.InfoContext(ctx).
		Str("id", id).
		Msg("queued message")

	return id, nil
}

// QueuedMessage summarizes a message waiting in the outbox.
type QueuedMessage struct {
	ID      string
	To      string
	Subject string
}

// List returns the messages waiting in the outbox in the order they will be sent.
func (q *Queue) List(ctx context.Context) ([]QueuedMessage, error) {
	_, browser, err := q.outbox(ctx)
	if err != nil {
		return nil, err
	}

	ids, err := browser.List(ctx)
	if err != nil {
		return nil, err
	}

	queued := make([]QueuedMessage, 0, len(ids))

	for _, id := range ids {
		message, err := browser.Message(ctx, id)
		if err != nil {
			return nil, err
		}

		header := message.Header()
		queued = append(queued, QueuedMessage{
			ID:      id,
			To:      header.Get("To"),
			Subject: header.Get("Subject"),
		})
	}

	return queued, nil
}

// Drop removes messages from the outbox without sending them.
func (q *Queue) Drop(ctx context.Context, ids ...string) error {
	outbox, _, err := q.outbox(ctx)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := outbox.SetFlags(ctx, id, draftFlags, draftFlags); err != nil {
			return err
		}
	}

	return outbox.Synchronize(ctx, true)
}

func (q *Queue) outbox(ctx context.Context) (folder.Folder, folder.Browser, error) {
	outbox, err := q.folders.Local(ctx, folder.LocalOutbox)
	if err != nil {
		return nil, nil, err
	}

	browser, ok := outbox.(folder.Browser)
	if !ok {
		return nil, nil, fmt.Errorf("outbox %q cannot be listed", outbox.URI())
	}

	return outbox, browser, nil
}

// Flush dispatches every queued message in order. Messages counting as sent are
// removed from the outbox, all others stay queued. A cancelled ctx stops the flush.
func (q *Queue) Flush(ctx context.Context) (FlushResult, error) {
	var result FlushResult

	outbox, browser, err := q.outbox(ctx)
	if err != nil {
		return result, err
	}

	ctx = log.WithFolder(ctx, outbox.URI())

	ids, err := browser.List(ctx)
	if err != nil {
		return result, err
	}

	defer func() {
		if err := outbox.Synchronize(context.WithoutCancel(ctx), true); err != nil {
			log.WarnContext(ctx).
				Err(err).
				Msg("could not expunge outbox")
		}
	}()

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := q.flushOne(ctx, outbox, browser, id); err != nil {
			if IsCancelled(err) {
				return result, err
			}

			log.ErrorContext(ctx).
				Err(err).
				Str("id", id).
				Msg("could not send queued message")

			result.Failed++
			continue
		}

		result.Sent++
	}

	return result, nil
}

func (q *Queue) flushOne(ctx context.Context, outbox folder.Folder, browser folder.Browser, id string) error {
	message, err := browser.Message(ctx, id)
	if err != nil {
		return err
	}

	err = q.pipeline.Send(ctx, message)
	if !IsDelivered(err) {
		return err
	}

	if err != nil {
		log.WarnContext(ctx).
			Err(err).
			Str("id", id).
			Msg("queued message sent with problems")
	}

	if err := outbox.SetFlags(ctx, id, draftFlags, draftFlags); err != nil {
		log.WarnContext(ctx).
			Err(err).
			Str("id", id).
			Msg("could not remove sent message from outbox")
	}

	return nil
}
