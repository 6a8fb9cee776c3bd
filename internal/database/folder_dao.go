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

type FolderDao interface {
	// Insert inserts a new folder.
	Insert(context.Context, Queryer, *models.FolderEntity) error
	// Update updates an existing folder.
	Update(context.Context, Queryer, *models.FolderEntity) error
	// FindAll returns all folders ordered by name.
	FindAll(context.Context, Queryer) ([]models.FolderEntity, error)
	// FindByName returns the folder with the given name.
	FindByName(context.Context, Queryer, string) (*models.FolderEntity, error)
}

type folderDao struct{}

func NewFolderDao() FolderDao {
	return folderDao{}
}

func (folderDao) Insert(ctx context.Context, q Queryer, folder *models.FolderEntity) error {
	const query = `
		insert into "folders" (
			"name" ,
			"subscribed"
		) values (
			:name ,
			:subscribed
		) ;
	`

	result, err := execNamedOne(ctx, q, query, folder)
	if err != nil {
		return err
	}

	folder.ID, err = result.LastInsertId()
	return err
}

func (folderDao) Update(ctx context.Context, q Queryer, folder *models.FolderEntity) error {
	const query = `
		update "folders"
		set "name"       = :name ,
			"subscribed" = :subscribed
		where "id" = :id ;
	`

	_, err := execNamedOne(ctx, q, query, folder)
	return err
}

func (folderDao) FindAll(ctx context.Context, q Queryer) ([]models.FolderEntity, error) {
	const query = `
		select *
		from "folders"
		order by "name" asc ;
	`

	var folderSlice []models.FolderEntity

	if err := selectSlice(ctx, q, &folderSlice, query); err != nil {
		return nil, err
	}

	return folderSlice, nil
}

func (folderDao) FindByName(ctx context.Context, q Queryer, name string) (*models.FolderEntity, error) {
	const query = `
		select *
		from "folders"
		where "name" = $1
		limit 1 ;
	`

	var folder models.FolderEntity

	if err := selectOne(ctx, q, &folder, query, name); err != nil {
		return nil, err
	}

	return &folder, nil
}
