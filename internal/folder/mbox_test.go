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

package folder

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"

	"github.com/lukasdietrich/briefpost/internal/models"
)

func TestMboxStoreTestSuite(t *testing.T) {
	suite.Run(t, new(MboxStoreTestSuite))
}

type MboxStoreTestSuite struct {
	suite.Suite

	fs    afero.Fs
	store *MboxStore
}

func (s *MboxStoreTestSuite) SetupTest() {
	s.fs = afero.NewMemMapFs()
	s.Require().NoError(s.fs.MkdirAll("/var/mail", 0700))

	s.store = NewMboxStore(s.fs)
}

func (s *MboxStoreTestSuite) open(rawURI string) (Folder, error) {
	uri, err := url.Parse(rawURI)
	s.Require().NoError(err)

	return s.store.Open(context.TODO(), uri)
}

func (s *MboxStoreTestSuite) TestOpenMissingDirectory() {
	_, err := s.open("mbox:///nowhere/sent.mbox")
	s.Assert().ErrorIs(err, ErrNotFound)

	_, err = s.open("mbox:///")
	s.Assert().ErrorIs(err, ErrNotFound)
}

func (s *MboxStoreTestSuite) TestAppendAndRead() {
	f, err := s.open("mbox:///var/mail/sent.mbox")
	s.Require().NoError(err)
	s.Assert().Equal("mbox:///var/mail/sent.mbox", f.URI())

	first, err := f.Append(context.TODO(), testMessage("first"), models.MessageInfo{})
	s.Require().NoError(err)
	s.Assert().Equal("1", first)

	second, err := f.Append(context.TODO(), testMessage("second"), models.MessageInfo{})
	s.Require().NoError(err)
	s.Assert().Equal("2", second)

	content, err := afero.ReadFile(s.fs, "/var/mail/sent.mbox")
	s.Require().NoError(err)
	s.Assert().True(strings.HasPrefix(string(content), "From alice@example.com "))

	browser := f.(Browser)

	ids, err := browser.List(context.TODO())
	s.Require().NoError(err)
	s.Assert().Equal([]string{"1", "2"}, ids)

	message, err := browser.Message(context.TODO(), "2")
	s.Require().NoError(err)
	s.Assert().Equal("second", message.Header().Get("Subject"))

	_, err = browser.Message(context.TODO(), "3")
	s.Assert().ErrorIs(err, ErrMessageNotFound)

	_, err = browser.Message(context.TODO(), "zero")
	s.Assert().ErrorIs(err, ErrMessageNotFound)
}

func (s *MboxStoreTestSuite) TestAppendCancelled() {
	f, err := s.open("mbox:///var/mail/sent.mbox")
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = f.Append(ctx, testMessage("cancelled"), models.MessageInfo{})
	s.Assert().ErrorIs(err, context.Canceled)

	exists, err := afero.Exists(s.fs, "/var/mail/sent.mbox")
	s.Require().NoError(err)
	s.Assert().False(exists)
}

func (s *MboxStoreTestSuite) TestUnsupported() {
	f, err := s.open("mbox:///var/mail/sent.mbox")
	s.Require().NoError(err)

	s.Assert().ErrorIs(f.SetFlags(context.TODO(), "1", models.FlagSeen, models.FlagSeen), ErrUnsupported)
	s.Assert().NoError(f.Synchronize(context.TODO(), true))

	uri, _ := url.Parse("mbox:///var/mail/sent.mbox")
	s.Assert().ErrorIs(s.store.Unsubscribe(context.TODO(), uri), ErrUnsupported)
}

func (s *MboxStoreTestSuite) TestEnvelopeFromFallback() {
	message := models.NewMessage(models.Header{{Key: "Subject", Value: "no sender"}}, nil)
	s.Assert().Equal("MAILER-DAEMON", envelopeFrom(message))
}
