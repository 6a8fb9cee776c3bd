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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefpost/internal/log"
)

const usageText = `
Usage:
  briefpost [OPTIONS] COMMAND [ARGS]

  Briefly send email.

Version:
  %s

Commands:
  send FILE...        Send messages right away
  queue FILE...       Put messages into the outbox
  flush               Send every message waiting in the outbox
  draft FILE          Mark the draft a message was composed from as deleted
  source FILE         Flag the message a message replies to or forwards
  unsubscribe URI     Unsubscribe from a folder
  folder create NAME  Create a local folder
  shell               Start an interactive administration shell

Options:
%s
`

var (
	// Version is set at compile-time.
	Version string
)

func main() {
	var configFilename string

	flags := pflag.NewFlagSet("briefpost", pflag.ContinueOnError)
	flags.StringVarP(&configFilename, "config", "c", "", "Path to a configuration file")
	flags.Usage = printUsage(flags)

	if err := flags.Parse(os.Args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}

		log.Fatal().Err(err).Msg("could not parse flags")
	}

	commandName := flags.Arg(1)
	args := flags.Args()[min(2, flags.NArg()):]

	if !isCommand(commandName) {
		flags.Usage()
		os.Exit(2)
	}

	setupConfig(configFilename)
	setupLogger()
	printConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := runCommand(ctx, commandName, args); err != nil {
		stop()
		log.Fatal().Err(err).Str("command", commandName).Msg("command failed")
	}
}

type command interface {
	run(ctx context.Context, args []string) error
}

func isCommand(commandName string) bool {
	switch commandName {
	case "send", "queue", "flush", "draft", "source", "unsubscribe", "folder", "shell":
		return true
	default:
		return false
	}
}

func runCommand(ctx context.Context, commandName string, args []string) error {
	var (
		cmd command
		err error
	)

	switch commandName {
	case "send", "draft", "source", "unsubscribe":
		var send *sendCommand
		if send, err = newSendCommand(); err == nil {
			send.mode = commandName
			cmd = send
		}
	case "queue", "flush":
		var queue *queueCommand
		if queue, err = newQueueCommand(); err == nil {
			queue.flush = commandName == "flush"
			cmd = queue
		}
	case "folder":
		cmd, err = newFolderCommand()
	case "shell":
		cmd, err = newShellCommand()
	}

	if err != nil {
		return fmt.Errorf("could not initialize the application: %w", err)
	}

	return cmd.run(ctx, args)
}

func printUsage(flags *pflag.FlagSet) func() {
	return func() {
		fmt.Fprintf(os.Stderr, usageText,
			Version,
			flags.FlagUsages())
	}
}

func setupLogger() {
	if err := log.Setup(); err != nil {
		log.Fatal().Err(err).Msg("could not setup logging")
	}

	log.Debug().
		Str("level", viper.GetString("log.level")).
		Msg("logging configured")
}

func setupConfig(filename string) {
	viper.SetTypeByDefaultValue(true)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetEnvPrefix("BRIEFPOST")

	if filename != "" {
		readConfig(filename)
	} else {
		log.Info().Msg("no config file provided. using environment only")
	}
}

func readConfig(filename string) {
	log.Info().Str("filename", filename).Msg("loading configuration")
	viper.SetConfigFile(filename)

	if err := viper.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			log.Warn().Err(err).Msg("configuration file missing")
		} else {
			log.Fatal().Err(err).Msg("could not load configuration")
		}
	}
}

func printConfig() {
	keys := viper.AllKeys()
	sort.Strings(keys)

	for _, key := range keys {
		if isSecretKey(key) {
			continue
		}

		v, _ := json.Marshal(viper.Get(key))
		log.Debug().RawJSON(key, v).Msg("configuration")
	}
}

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, ".password") || strings.HasSuffix(key, ".secretaccesskey")
}
