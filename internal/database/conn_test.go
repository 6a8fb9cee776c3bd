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
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukasdietrich/briefpost/internal/models"
)

func TestCreateDataSourceName(t *testing.T) {
	viper.Set("storage.database.filename", "somewhere/file.db")
	viper.Set("storage.database.journalmode", "off")

	dsn := createDataSourceName()
	assert.Equal(t, "file:somewhere/file.db?_foreign_keys=true&_journal_mode=off", dsn)
}

func TestOpenConnection(t *testing.T) {
	conn, err := openInMemory()
	require.NoError(t, err)
	require.NotNil(t, conn)

	rows, err := conn.QueryContext(context.Background(), "select 0 where 0 ;")
	require.NoError(t, err)
	require.NotNil(t, rows)

	assert.NoError(t, rows.Close())
	assert.NoError(t, conn.Close())
}

func openInMemory() (Conn, error) {
	viper.Set("storage.database.filename", ":memory:")
	viper.Set("storage.database.journalmode", "memory")

	return OpenConnection()
}

func TestBeginCommit(t *testing.T) {
	conn, err := openInMemory()
	require.NoError(t, err)

	defer conn.Close()

	var (
		ctx       = context.Background()
		folderDao = NewFolderDao()
	)

	tx, err := conn.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, folderDao.Insert(ctx, tx, &models.FolderEntity{Name: "Sent", Subscribed: true}))
	require.NoError(t, tx.Commit())

	folders, err := folderDao.FindAll(ctx, conn)
	require.NoError(t, err)
	require.Len(t, folders, 1)
}

func TestBeginRollbackWith(t *testing.T) {
	conn, err := openInMemory()
	require.NoError(t, err)

	defer conn.Close()

	var (
		ctx             = context.Background()
		folderDao       = NewFolderDao()
		callbackInvoked = false
	)

	tx, err := conn.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, folderDao.Insert(ctx, tx, &models.FolderEntity{Name: "Sent"}))
	require.NoError(t, tx.RollbackWith(func() {
		callbackInvoked = true
	}))

	folders, err := folderDao.FindAll(ctx, conn)
	require.NoError(t, err)
	require.Len(t, folders, 0)

	assert.True(t, callbackInvoked)
}

func TestRollbackWithAfterCommit(t *testing.T) {
	conn, err := openInMemory()
	require.NoError(t, err)

	defer conn.Close()

	tx, err := conn.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	callbackInvoked := false
	assert.Error(t, tx.RollbackWith(func() {
		callbackInvoked = true
	}))

	assert.False(t, callbackInvoked)
}
