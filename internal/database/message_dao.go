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

package database

import (
	"context"

	"github.com/lukasdietrich/briefpost/internal/models"
)

type MessageDao interface {
	// Insert inserts a new message.
	Insert(context.Context, Queryer, *models.MessageEntity) error
	// Update updates an existing message.
	Update(context.Context, Queryer, *models.MessageEntity) error
	// FindByID returns a message of a folder, that is not yet deleted.
	FindByID(context.Context, Queryer, *models.FolderEntity, string) (*models.MessageEntity, error)
	// FindByFolder returns all messages of a folder, that are not yet deleted, in the
	// order they were appended.
	FindByFolder(context.Context, Queryer, *models.FolderEntity) ([]models.MessageEntity, error)
	// FindExpungeable returns all messages of a folder flagged as deleted but not yet
	// removed.
	FindExpungeable(context.Context, Queryer, *models.FolderEntity) ([]models.MessageEntity, error)
}

type messageDao struct{}

func NewMessageDao() MessageDao {
	return messageDao{}
}

func (messageDao) Insert(ctx context.Context, q Queryer, message *models.MessageEntity) error {
	const query = `
		insert into "messages" (
			"id" ,
			"folder_id" ,
			"size" ,
			"flags" ,
			"appended_at" ,
			"deleted_at"
		) values (
			:id ,
			:folder_id ,
			:size ,
			:flags ,
			:appended_at ,
			:deleted_at
		) ;
	`

	_, err := execNamedOne(ctx, q, query, message)
	return err
}

func (messageDao) Update(ctx context.Context, q Queryer, message *models.MessageEntity) error {
	const query = `
		update "messages"
		set "folder_id"   = :folder_id ,
			"size"        = :size ,
			"flags"       = :flags ,
			"appended_at" = :appended_at ,
			"deleted_at"  = :deleted_at
		where "id" = :id ;
	`

	_, err := execNamedOne(ctx, q, query, message)
	return err
}

func (messageDao) FindByID(
	ctx context.Context,
	q Queryer,
	folder *models.FolderEntity,
	id string,
) (*models.MessageEntity, error) {
	const query = `
		select *
		from "messages"
		where "folder_id" = $1
		  and "id" = $2
		  and "deleted_at" is null
		limit 1 ;
	`

	var message models.MessageEntity

	if err := selectOne(ctx, q, &message, query, folder.ID, id); err != nil {
		return nil, err
	}

	return &message, nil
}

func (messageDao) FindByFolder(
	ctx context.Context,
	q Queryer,
	folder *models.FolderEntity,
) ([]models.MessageEntity, error) {
	const query = `
		select *
		from "messages"
		where "folder_id" = $1
		  and "deleted_at" is null
		order by "appended_at" asc , "rowid" asc ;
	`

	var messageSlice []models.MessageEntity

	if err := selectSlice(ctx, q, &messageSlice, query, folder.ID); err != nil {
		return nil, err
	}

	return messageSlice, nil
}

func (messageDao) FindExpungeable(
	ctx context.Context,
	q Queryer,
	folder *models.FolderEntity,
) ([]models.MessageEntity, error) {
	const query = `
		select *
		from "messages"
		where "folder_id" = $1
		  and "deleted_at" is null
		  and ( "flags" & $2 ) != 0
		order by "appended_at" asc ;
	`

	var messageSlice []models.MessageEntity

	err := selectSlice(ctx, q, &messageSlice, query, folder.ID, models.FlagDeleted)
	if err != nil {
		return nil, err
	}

	return messageSlice, nil
}
