//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/lukasdietrich/briefpost/internal/certs"
	"github.com/lukasdietrich/briefpost/internal/crypto"
	"github.com/lukasdietrich/briefpost/internal/database"
	"github.com/lukasdietrich/briefpost/internal/dispatch"
	"github.com/lukasdietrich/briefpost/internal/filter"
	"github.com/lukasdietrich/briefpost/internal/folder"
	"github.com/lukasdietrich/briefpost/internal/secrets"
	"github.com/lukasdietrich/briefpost/internal/shell"
	"github.com/lukasdietrich/briefpost/internal/storage"
	"github.com/lukasdietrich/briefpost/internal/transport"
)

var wireSet = wire.NewSet(
	wire.Struct(new(Resources), "*"),
	wire.Struct(new(sendCommand), "*"),
	wire.Struct(new(queueCommand), "*"),
	wire.Struct(new(folderCommand), "*"),
	wire.Struct(new(shellCommand), "*"),

	database.WireSet,
	storage.WireSet,
	certs.WireSet,
	secrets.WireSet,
	folder.WireSet,
	transport.WireSet,
	filter.WireSet,
	crypto.WireSet,
	dispatch.WireSet,
	shell.WireSet,
)

func newSendCommand() (*sendCommand, error) {
	panic(wire.Build(wireSet))
}

func newQueueCommand() (*queueCommand, error) {
	panic(wire.Build(wireSet))
}

func newFolderCommand() (*folderCommand, error) {
	panic(wire.Build(wireSet))
}

func newShellCommand() (*shellCommand, error) {
	panic(wire.Build(wireSet))
}
