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
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/lukasdietrich/briefpost/internal/models"
)

func TestMessageDaoTestSuite(t *testing.T) {
	suite.Run(t, new(MessageDaoTestSuite))
}

type MessageDaoTestSuite struct {
	baseDatabaseTestSuite

	messageDao MessageDao
	folder     *models.FolderEntity
}

func (s *MessageDaoTestSuite) SetupSuite() {
	s.messageDao = NewMessageDao()
}

func (s *MessageDaoTestSuite) SetupTest() {
	s.baseDatabaseTestSuite.SetupTest()
	s.requireFolders("Sent", "Outbox")
	s.folder = &models.FolderEntity{ID: 1, Name: "Sent"}
}

func (s *MessageDaoTestSuite) TestInsert() {
	message := models.MessageEntity{
		ID:         "m1",
		FolderID:   1,
		Size:       123,
		Flags:      models.FlagSeen,
		AppendedAt: 1000,
	}

	s.Assert().NoError(s.messageDao.Insert(s.ctx, s.conn, &message))

	s.assertQuery(
		`
			select "id", "folder_id", "size", "flags", "appended_at"
			from "messages" ;
		`,
		[]string{"m1", "1", "123", "16", "1000"})
}

func (s *MessageDaoTestSuite) TestInsertDuplicateAndUnknownFolder() {
	message := models.MessageEntity{ID: "m1", FolderID: 1, Size: 1, AppendedAt: 1000}
	s.Require().NoError(s.messageDao.Insert(s.ctx, s.conn, &message))
	s.Assert().True(IsErrUnique(s.messageDao.Insert(s.ctx, s.conn, &message)))

	orphan := models.MessageEntity{ID: "m2", FolderID: 99, Size: 1, AppendedAt: 1000}
	s.Assert().True(IsErrForeignKey(s.messageDao.Insert(s.ctx, s.conn, &orphan)))
}

func (s *MessageDaoTestSuite) TestUpdateUnknown() {
	message := models.MessageEntity{ID: "missing", FolderID: 1}
	s.Assert().True(IsErrNoRows(s.messageDao.Update(s.ctx, s.conn, &message)))
}

func (s *MessageDaoTestSuite) TestUpdateAndFindByID() {
	s.requireExec(`insert into "messages" values ( 'm1', 1, 10, 0, 1000, null ) ;`)

	message, err := s.messageDao.FindByID(s.ctx, s.conn, s.folder, "m1")
	s.Require().NoError(err)

	message.Flags = models.FlagDeleted | models.FlagSeen
	s.Require().NoError(s.messageDao.Update(s.ctx, s.conn, message))

	actual, err := s.messageDao.FindByID(s.ctx, s.conn, s.folder, "m1")
	s.Require().NoError(err)
	s.Assert().Equal(models.FlagDeleted|models.FlagSeen, actual.Flags)
}

func (s *MessageDaoTestSuite) TestFindByIDOtherFolder() {
	s.requireExec(`insert into "messages" values ( 'm1', 2, 10, 0, 1000, null ) ;`)

	_, err := s.messageDao.FindByID(s.ctx, s.conn, s.folder, "m1")
	s.Assert().True(IsErrNoRows(err))
}

func (s *MessageDaoTestSuite) TestFindByFolder() {
	s.requireExec(
		`
			insert into "messages" values
				( 'm3', 1, 10, 0, 3000, null ) ,
				( 'm1', 1, 10, 0, 1000, null ) ,
				( 'm2', 1, 10, 0, 2000, 2500 ) ,
				( 'm4', 2, 10, 0, 1500, null ) ;
		`)

	actual, err := s.messageDao.FindByFolder(s.ctx, s.conn, s.folder)
	s.Require().NoError(err)

	s.Assert().Equal([]models.MessageEntity{
		{ID: "m1", FolderID: 1, Size: 10, AppendedAt: 1000},
		{ID: "m3", FolderID: 1, Size: 10, AppendedAt: 3000},
	}, actual)
}

func (s *MessageDaoTestSuite) TestFindExpungeable() {
	s.requireExec(
		`
			insert into "messages" values
				( 'm1', 1, 10, 2, 1000, null ) ,
				( 'm2', 1, 10, 18, 2000, null ) ,
				( 'm3', 1, 10, 16, 3000, null ) ,
				( 'm4', 1, 10, 2, 4000, 4500 ) ;
		`)

	actual, err := s.messageDao.FindExpungeable(s.ctx, s.conn, s.folder)
	s.Require().NoError(err)

	s.Assert().Equal([]models.MessageEntity{
		{ID: "m1", FolderID: 1, Size: 10, Flags: models.FlagDeleted, AppendedAt: 1000},
		{ID: "m2", FolderID: 1, Size: 10, Flags: models.FlagDeleted | models.FlagSeen, AppendedAt: 2000},
	}, actual)

	s.Assert().Equal(sql.NullInt64{}, actual[0].DeletedAt)
}
