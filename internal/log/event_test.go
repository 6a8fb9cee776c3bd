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

package log

import (
	"context"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"
)

func TestLogEventTestSuite(t *testing.T) {
	suite.Run(t, new(LogEventTestSuite))
}

type LogEventTestSuite struct {
	baseLogTestSuite
}

func (s *LogEventTestSuite) TestTrace() {
	Trace().Msg("TestTrace")
	s.assertMsg("{\"level\":\"trace\",\"message\":\"TestTrace\"}\n")
}

func (s *LogEventTestSuite) TestTraceContext() {
	TraceContext(WithDispatch(context.TODO(), "d1")).Msg("TestTraceContext")
	s.assertMsg("{\"level\":\"trace\",\"dispatch\":\"d1\",\"message\":\"TestTraceContext\"}\n")
}

func (s *LogEventTestSuite) TestDebugContext() {
	DebugContext(WithDispatch(context.TODO(), "d2")).Msg("TestDebugContext")
	s.assertMsg("{\"level\":\"debug\",\"dispatch\":\"d2\",\"message\":\"TestDebugContext\"}\n")
}

func (s *LogEventTestSuite) TestInfo() {
	Info().Msg("TestInfo")
	s.assertMsg("{\"level\":\"info\",\"message\":\"TestInfo\"}\n")
}

func (s *LogEventTestSuite) TestWarnContext() {
	WarnContext(WithDispatch(context.TODO(), "d4")).Msg("TestWarnContext")
	s.assertMsg("{\"level\":\"warn\",\"dispatch\":\"d4\",\"message\":\"TestWarnContext\"}\n")
}

func (s *LogEventTestSuite) TestErrorContext() {
	ErrorContext(WithDispatch(context.TODO(), "d5")).Msg("TestErrorContext")
	s.assertMsg("{\"level\":\"error\",\"dispatch\":\"d5\",\"message\":\"TestErrorContext\"}\n")
}

func (s *LogEventTestSuite) TestSetupUnknownLevel() {
	viper.Set("log.level", "loud")
	defer viper.Set("log.level", "info")

	s.Assert().Error(Setup())
}
