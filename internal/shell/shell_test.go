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
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukasdietrich/briefpost/internal/database"
	"github.com/lukasdietrich/briefpost/internal/folder"
	"github.com/lukasdietrich/briefpost/internal/storage"
)

func TestLookup(t *testing.T) {
	s := NewShell(nil, nil, nil, nil)

	cmd, ok := s.commands.lookup([]string{"queue", "flush"})
	require.True(t, ok)
	assert.Equal(t, "flush", cmd.name)
	assert.NotNil(t, cmd.action)

	cmd, ok = s.commands.lookup([]string{"folder"})
	require.True(t, ok)
	assert.Nil(t, cmd.action)
	assert.Len(t, cmd.children, 3)

	_, ok = s.commands.lookup([]string{"domain", "add"})
	assert.False(t, ok)

	_, ok = s.commands.lookup(nil)
	assert.False(t, ok)
}

func TestListFolders(t *testing.T) {
	viper.Set("storage.database.filename", ":memory:")
	viper.Set("storage.database.journalmode", "memory")

	conn, err := database.OpenConnection()
	require.NoError(t, err)
	defer conn.Close()

	blobs, err := storage.NewBlobs(afero.NewMemMapFs(), storage.BlobsOptions{Foldername: "/blobs"})
	require.NoError(t, err)

	local := folder.NewLocalStore(conn, database.NewFolderDao(), database.NewMessageDao(), blobs, folder.LocationsFromViper())

	_, err = local.Create(context.TODO(), "lists/team")
	require.NoError(t, err)
	_, err = local.Create(context.TODO(), "archive")
	require.NoError(t, err)

	ctx := cmdContext{
		Context:  context.TODO(),
		services: services{local: local},
	}

	require.NoError(t, listFolders(&ctx))
	assert.Equal(t, "(2) Folders", ctx.infoLines[0])
	assert.Len(t, ctx.infoLines, 3)
}
