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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSourceFlags(t *testing.T) {
	flags, unknown := ParseSourceFlags("ANSWERED seen  BOGUS FORWARDED")

	assert.Equal(t, FlagAnswered|FlagSeen|FlagForwarded, flags)
	assert.Equal(t, []string{"BOGUS"}, unknown)
}

func TestParseSourceFlagsAnsweredAll(t *testing.T) {
	flags, unknown := ParseSourceFlags("ANSWERED_ALL")

	assert.Empty(t, unknown)
	assert.True(t, flags.Has(FlagAnswered))
	assert.True(t, flags.Has(FlagAnsweredAll))
}

func TestParseSourceFlagsEmpty(t *testing.T) {
	flags, unknown := ParseSourceFlags("")

	assert.Zero(t, flags)
	assert.Empty(t, unknown)
}

func TestFlagsApply(t *testing.T) {
	current := FlagSeen | FlagFlagged

	assert.Equal(t, FlagSeen|FlagFlagged|FlagDeleted,
		current.Apply(FlagDeleted, FlagDeleted))
	assert.Equal(t, FlagFlagged|FlagDeleted,
		current.Apply(FlagDeleted, FlagDeleted|FlagSeen))
}

func TestFlagsString(t *testing.T) {
	assert.Equal(t, "DELETED SEEN", (FlagSeen | FlagDeleted).String())
	assert.Equal(t, "", Flags(0).String())
}

func TestParseFlags(t *testing.T) {
	flags, unknown := ParseFlags("seen FLAGGED answered_all $Junk")

	assert.Equal(t, FlagSeen|FlagFlagged|FlagAnsweredAll, flags)
	assert.Equal(t, []string{"$Junk"}, unknown)
}
