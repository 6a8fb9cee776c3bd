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

// Package filter runs user defined rules against dispatched messages.
package filter

import (
	"context"
	"errors"

	"github.com/google/wire"

	"github.com/lukasdietrich/briefpost/internal/models"
)

// WireSet provides the rule based filter builder.
var WireSet = wire.NewSet(
	NewRuleBuilder,
	wire.Bind(new(Builder), new(*RuleBuilder)),
)

// PurposeOutgoing selects the rules run on sent messages.
const PurposeOutgoing = "outgoing"

// ErrUnknownPurpose is returned by Build for anything but PurposeOutgoing.
var ErrUnknownPurpose = errors.New("filter: unknown purpose")

// Driver applies a set of rules to a message. Rules may change the baseline info
// the message is archived with.
type Driver interface {
	Apply(ctx context.Context, message *models.Message, info *models.MessageInfo) error
}

// Builder creates a Driver for a purpose.
type Builder interface {
	Build(ctx context.Context, purpose string) (Driver, error)
}
