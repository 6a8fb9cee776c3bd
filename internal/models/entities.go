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

import "database/sql"

// FolderEntity is a folder of the local folder store.
type FolderEntity struct {
	ID         int64  `db:"id"`
	Name       string `db:"name"`
	Subscribed bool   `db:"subscribed"`
}

// MessageEntity is a message stored in a local folder. The content lives in the blob
// store under ID.
type MessageEntity struct {
	ID         string        `db:"id"`
	FolderID   int64         `db:"folder_id"`
	Size       int64         `db:"size"`
	Flags      Flags         `db:"flags"`
	AppendedAt int64         `db:"appended_at"`
	DeletedAt  sql.NullInt64 `db:"deleted_at"`
}
