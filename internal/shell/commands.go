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

package shell

import (
	"errors"
	"fmt"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/lukasdietrich/briefpost/internal/dispatch"
	"github.com/lukasdietrich/briefpost/internal/models"
)

var (
	errNoFolders = errors.New("there are no local folders")
	errNoQueued  = errors.New("there are no queued messages")
)

func listFolders(ctx *cmdContext) error {
	folders, err := ctx.local.Folders(ctx)
	if err != nil {
		return err
	}

	ctx.info("(%d) Folders", len(folders))

	for _, f := range folders {
		subscribed := ""
		if !f.Subscribed {
			subscribed = " (unsubscribed)"
		}

		ctx.info("  folder://%s%s", f.Name, subscribed)
	}

	return nil
}

func addFolder(ctx *cmdContext) error {
	name, err := ctx.ask("Folder name: ")
	if err != nil {
		return err
	}

	entity, err := ctx.local.Create(ctx, name)
	if err != nil {
		return err
	}

	ctx.info("Folder %q added with id=%d.", entity.Name, entity.ID)
	return nil
}

func unsubscribeFolders(ctx *cmdContext) error {
	folders, err := selectMultipleFolders(ctx)
	if err != nil {
		return err
	}

	for _, f := range folders {
		uri := "folder://" + f.Name

		if err := ctx.folders.Unsubscribe(ctx, uri); err != nil {
			return fmt.Errorf("could not unsubscribe from %q: %w", uri, err)
		}

		ctx.info("Unsubscribed from %q.", uri)
	}

	return nil
}

func listQueue(ctx *cmdContext) error {
	queued, err := ctx.queue.List(ctx)
	if err != nil {
		return err
	}

	ctx.info("(%d) Queued messages", len(queued))

	for _, message := range queued {
		ctx.info("  %s", describeQueued(message))
	}

	return nil
}

func dropQueue(ctx *cmdContext) error {
	queued, err := selectMultipleQueued(ctx)
	if err != nil {
		return err
	}

	ids := make([]string, len(queued))
	for i, message := range queued {
		ids[i] = message.ID
	}

	if err := ctx.queue.Drop(ctx, ids...); err != nil {
		return err
	}

	ctx.info("Dropped %d queued messages.", len(ids))
	return nil
}

func flushQueue(ctx *cmdContext) error {
	result, err := ctx.queue.Flush(ctx)
	if err != nil {
		return err
	}

	ctx.info("Sent %d queued messages, %d failed.", result.Sent, result.Failed)
	return nil
}

func setSecret(ctx *cmdContext) error {
	key, err := ctx.ask("Keyring key: ")
	if err != nil {
		return err
	}

	password, err := ctx.password("Password: ")
	if err != nil {
		return err
	}

	if err := ctx.secrets.Set(key, string(password)); err != nil {
		return fmt.Errorf("could not store secret %q: %w", key, err)
	}

	ctx.info("Secret %q stored.", key)
	return nil
}

func selectMultipleFolders(ctx *cmdContext) ([]models.FolderEntity, error) {
	folders, err := ctx.local.Folders(ctx)
	if err != nil {
		return nil, err
	}

	if len(folders) == 0 {
		return nil, errNoFolders
	}

	indices, err := fuzzyfinder.FindMulti(folders, mapFolderSearch(folders))
	if err != nil {
		return nil, err
	}

	selected := make([]models.FolderEntity, len(indices))
	for i, index := range indices {
		selected[i] = folders[index]
	}

	return selected, nil
}

func selectMultipleQueued(ctx *cmdContext) ([]dispatch.QueuedMessage, error) {
	queued, err := ctx.queue.List(ctx)
	if err != nil {
		return nil, err
	}

	if len(queued) == 0 {
		return nil, errNoQueued
	}

	indices, err := fuzzyfinder.FindMulti(queued, mapQueuedSearch(queued))
	if err != nil {
		return nil, err
	}

	selected := make([]dispatch.QueuedMessage, len(indices))
	for i, index := range indices {
		selected[i] = queued[index]
	}

	return selected, nil
}

func describeQueued(message dispatch.QueuedMessage) string {
	return fmt.Sprintf("%s  %q to %s", message.ID, message.Subject, message.To)
}

func mapFolderSearch(folders []models.FolderEntity) func(int) string {
	return func(i int) string {
		return folders[i].Name
	}
}

func mapQueuedSearch(queued []dispatch.QueuedMessage) func(int) string {
	return func(i int) string {
		return describeQueued(queued[i])
	}
}
