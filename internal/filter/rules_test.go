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

package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/lukasdietrich/briefpost/internal/folder"
	"github.com/lukasdietrich/briefpost/internal/models"

	mockfolder "github.com/lukasdietrich/briefpost/internal/mocks/folder"
)

func testMessage() *models.Message {
	return models.NewMessage(models.Header{
		{Key: "From", Value: "alice@example.com"},
		{Key: "To", Value: "team@lists.example.com"},
		{Key: "Subject", Value: "[release] v1.2.0"},
	}, []byte("Hello\r\n"))
}

func TestRuleDriverTestSuite(t *testing.T) {
	suite.Run(t, new(RuleDriverTestSuite))
}

type RuleDriverTestSuite struct {
	suite.Suite

	folders *mockfolder.Resolver
	folder  *mockfolder.Folder
}

func (s *RuleDriverTestSuite) SetupTest() {
	s.folders = new(mockfolder.Resolver)
	s.folder = new(mockfolder.Folder)
}

func (s *RuleDriverTestSuite) TearDownTest() {
	mock.AssertExpectationsForObjects(s.T(), s.folders, s.folder)
}

func (s *RuleDriverTestSuite) driver(options ...RuleOptions) *RuleDriver {
	driver, err := NewRuleDriver(context.TODO(), s.folders, options)
	s.Require().NoError(err)
	return driver
}

func (s *RuleDriverTestSuite) TestHeaderMatchCopiesAndFlags() {
	message := testMessage()
	info := models.MessageInfo{Flags: models.FlagSeen}

	s.folders.On("Resolve", mock.Anything, "folder://lists/team").Return(s.folder, nil)
	s.folder.On("Append", mock.Anything, message, models.MessageInfo{Flags: models.FlagSeen | models.FlagFlagged}).
		Return("1", nil)

	driver := s.driver(RuleOptions{
		Name:    "releases",
		Header:  "subject",
		Pattern: `^\[release\]`,
		CopyTo:  []string{"folder://lists/team"},
		Flags:   "flagged",
	})

	s.Require().NoError(driver.Apply(context.TODO(), message, &info))
	s.Assert().Equal(models.FlagSeen|models.FlagFlagged, info.Flags)
}

func (s *RuleDriverTestSuite) TestNoMatch() {
	info := models.MessageInfo{}

	driver := s.driver(RuleOptions{
		Name:    "boss",
		Header:  "From",
		Pattern: `boss@`,
		CopyTo:  []string{"folder://important"},
		Flags:   "FLAGGED",
	})

	s.Require().NoError(driver.Apply(context.TODO(), testMessage(), &info))
	s.Assert().Zero(info.Flags)
}

func (s *RuleDriverTestSuite) TestMatchWithoutHeader() {
	info := models.MessageInfo{}

	driver := s.driver(RuleOptions{
		Pattern: `(?i)^to: .*@lists\.`,
		Flags:   "SEEN",
	})

	s.Require().NoError(driver.Apply(context.TODO(), testMessage(), &info))
	s.Assert().Equal(models.FlagSeen, info.Flags)
}

func (s *RuleDriverTestSuite) TestCopyError() {
	s.folders.On("Resolve", mock.Anything, "folder://missing").
		Return(nil, &folder.NotFoundError{URI: "folder://missing"})

	driver := s.driver(RuleOptions{
		Name:    "all",
		Pattern: `.`,
		CopyTo:  []string{"folder://missing"},
	})

	err := driver.Apply(context.TODO(), testMessage(), &models.MessageInfo{})
	s.Assert().EqualError(err, `rule "all": folder "folder://missing" not found`)
	s.Assert().ErrorIs(err, folder.ErrNotFound)
}

func (s *RuleDriverTestSuite) TestCancelled() {
	ctx, cancel := context.WithCancel(context.TODO())
	cancel()

	driver := s.driver(RuleOptions{Pattern: `.`, CopyTo: []string{"folder://never"}})

	err := driver.Apply(ctx, testMessage(), &models.MessageInfo{})
	s.Assert().True(errors.Is(err, context.Canceled))
}

func TestNewRuleDriverInvalidPattern(t *testing.T) {
	_, err := NewRuleDriver(context.TODO(), nil, []RuleOptions{{Name: "broken", Pattern: `([`}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `rule "broken": invalid pattern`)
}

func TestNewRuleDriverMissingPattern(t *testing.T) {
	_, err := NewRuleDriver(context.TODO(), nil, []RuleOptions{{}})
	assert.EqualError(t, err, `rule "#1": missing pattern`)
}

func TestRuleBuilderUnknownPurpose(t *testing.T) {
	_, err := NewRuleBuilder(nil).Build(context.TODO(), "incoming")

	assert.ErrorIs(t, err, ErrUnknownPurpose)
}

func TestRuleBuilderFromViper(t *testing.T) {
	viper.Set("filters.outgoing", []map[string]interface{}{
		{"name": "lists", "header": "To", "pattern": "@lists\\.", "flags": "SEEN"},
	})
	defer viper.Set("filters.outgoing", nil)

	driver, err := NewRuleBuilder(nil).Build(context.TODO(), PurposeOutgoing)
	require.NoError(t, err)

	info := models.MessageInfo{}
	require.NoError(t, driver.Apply(context.TODO(), testMessage(), &info))
	assert.Equal(t, models.FlagSeen, info.Flags)
}

func TestRuleBuilderWithoutRules(t *testing.T) {
	driver, err := NewRuleBuilder(nil).Build(context.TODO(), PurposeOutgoing)
	require.NoError(t, err)

	assert.NoError(t, driver.Apply(context.TODO(), testMessage(), &models.MessageInfo{}))
}
