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
	"fmt"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func constraintErr(code sqlite3.ErrNoExtended) error {
	return fmt.Errorf("insert folder: %w", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: code})
}

func TestIsErrNoRows(t *testing.T) {
	assert.True(t, IsErrNoRows(sql.ErrNoRows))
	assert.True(t, IsErrNoRows(fmt.Errorf("find message: %w", sql.ErrNoRows)))
	assert.False(t, IsErrNoRows(sql.ErrTxDone))
	assert.False(t, IsErrNoRows(nil))
}

func TestConstraintErrors(t *testing.T) {
	tests := []struct {
		err        error
		unique     bool
		foreignKey bool
	}{
		{constraintErr(sqlite3.ErrConstraintUnique), true, false},
		{constraintErr(sqlite3.ErrConstraintPrimaryKey), true, false},
		{constraintErr(sqlite3.ErrConstraintForeignKey), false, true},
		{constraintErr(sqlite3.ErrConstraintNotNull), false, false},
		{sqlite3.Error{Code: sqlite3.ErrBusy}, false, false},
		{sql.ErrNoRows, false, false},
	}

	for _, test := range tests {
		assert.Equal(t, test.unique, IsErrUnique(test.err), test.err)
		assert.Equal(t, test.foreignKey, IsErrForeignKey(test.err), test.err)
	}
}
