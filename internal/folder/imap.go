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
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefpost/internal/certs"
	"github.com/lukasdietrich/briefpost/internal/log"
	"github.com/lukasdietrich/briefpost/internal/models"
	"github.com/lukasdietrich/briefpost/internal/secrets"
)

const (
	imapScheme  = "imap"
	imapsScheme = "imaps"

	securityNone     = "none"
	securityStartTLS = "starttls"
	securityTLS      = "tls"

	flagForwarded imap.Flag = "$Forwarded"
)

func init() {
	viper.SetDefault("folders.imap.timeout", "1m")
}

// IMAPOptions apply to every imap connection.
type IMAPOptions struct {
	// Timeout limits a single folder operation including connection setup.
	Timeout time.Duration
}

// IMAPOptionsFromViper reads `folders.imap.timeout`.
func IMAPOptionsFromViper() IMAPOptions {
	return IMAPOptions{
		Timeout: viper.GetDuration("folders.imap.timeout"),
	}
}

// IMAPStore opens mailboxes on imap servers. Every operation uses its own connection.
// Credentials are read from `folders.imap.<host>.*`.
type IMAPStore struct {
	opts      IMAPOptions
	tlsConfig *tls.Config
	secrets   *secrets.Store
}

func NewIMAPStore(opts IMAPOptions, tlsConfig *tls.Config, secrets *secrets.Store) *IMAPStore {
	return &IMAPStore{
		opts:      opts,
		tlsConfig: tlsConfig,
		secrets:   secrets,
	}
}

func (*IMAPStore) Schemes() []string {
	return []string{imapScheme, imapsScheme}
}

type imapAccount struct {
	host     string
	address  string
	security string
	username string
	mailbox  string
}

func parseIMAPAccount(uri *url.URL) (imapAccount, error) {
	host := uri.Hostname()
	if host == "" {
		return imapAccount{}, fmt.Errorf("imap uri %q has no host", uri.Redacted())
	}

	prefix := "folders.imap." + host

	account := imapAccount{
		host:     host,
		security: viper.GetString(prefix + ".security"),
		username: viper.GetString(prefix + ".username"),
		mailbox:  strings.Trim(uri.Path, "/"),
	}

	if account.security == "" {
		account.security = securityStartTLS

		if uri.Scheme == imapsScheme {
			account.security = securityTLS
		}
	}

	if uri.User != nil && uri.User.Username() != "" {
		account.username = uri.User.Username()
	}

	if account.mailbox == "" {
		account.mailbox = "INBOX"
	}

	port := uri.Port()
	if port == "" {
		port = "143"

		if account.security == securityTLS {
			port = "993"
		}
	}

	account.address = net.JoinHostPort(host, port)

	return account, nil
}

func (s *IMAPStore) dial(ctx context.Context, account imapAccount) (*imapclient.Client, func(), error) {
	options := imapclient.Options{
		TLSConfig: certs.ForServer(s.tlsConfig, account.host),
	}

	var (
		client *imapclient.Client
		err    error
	)

	switch account.security {
	case securityTLS:
		client, err = imapclient.DialTLS(account.address, &options)
	case securityStartTLS:
		client, err = imapclient.DialStartTLS(account.address, &options)
	case securityNone:
		client, err = imapclient.DialInsecure(account.address, &options)
	default:
		return nil, nil, fmt.Errorf("unknown imap security %q", account.security)
	}

	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to %s: %w", account.address, err)
	}

	password, err := s.secrets.Resolve("folders.imap." + account.host)
	if err != nil {
		client.Close()
		return nil, nil, err
	}

	stopClose := context.AfterFunc(ctx, func() {
		client.Close()
	})

	if err := client.Login(account.username, password).Wait(); err != nil {
		stopClose()
		client.Close()

		return nil, nil, fmt.Errorf("imap login failed: %w", err)
	}

	log.TraceContext(ctx).
		Str("address", account.address).
		Str("username", account.username).
		Msg("imap connection established")

	cleanup := func() {
		stopClose()

		if ctx.Err() == nil {
			if err := client.Logout().Wait(); err != nil {
				log.DebugContext(ctx).Err(err).Msg("imap logout failed")
			}
		}

		client.Close()
	}

	return client, cleanup, nil
}

func (s *IMAPStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout > 0 {
		return context.WithTimeout(ctx, s.opts.Timeout)
	}

	return context.WithCancel(ctx)
}

// Open selects the mailbox once to make sure it exists.
func (s *IMAPStore) Open(ctx context.Context, uri *url.URL) (Folder, error) {
	account, err := parseIMAPAccount(uri)
	if err != nil {
		return nil, err
	}

	folder := IMAPFolder{store: s, account: account, uri: redactedURI(uri)}

	err = folder.session(ctx, func(client *imapclient.Client) error {
		if err := folder.selectMailbox(client, true); err != nil {
			if isNonExistent(err) {
				return &NotFoundError{URI: folder.uri}
			}

			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &folder, nil
}

func (s *IMAPStore) Unsubscribe(ctx context.Context, uri *url.URL) error {
	account, err := parseIMAPAccount(uri)
	if err != nil {
		return err
	}

	folder := IMAPFolder{store: s, account: account, uri: redactedURI(uri)}

	return folder.session(ctx, func(client *imapclient.Client) error {
		return client.Unsubscribe(account.mailbox).Wait()
	})
}

func redactedURI(uri *url.URL) string {
	clean := *uri
	clean.User = nil

	return clean.String()
}

func isNonExistent(err error) bool {
	var imapErr *imap.Error

	return errors.As(err, &imapErr) && imapErr.Code == imap.ResponseCodeNonExistent
}

// IMAPFolder is a mailbox on an imap server. Message ids are uids.
type IMAPFolder struct {
	store   *IMAPStore
	account imapAccount
	uri     string
}

func (f *IMAPFolder) URI() string {
	return f.uri
}

func (f *IMAPFolder) session(ctx context.Context, fn func(*imapclient.Client) error) error {
	ctx, cancel := f.store.withTimeout(log.WithFolder(ctx, f.uri))
	defer cancel()

	client, cleanup, err := f.store.dial(ctx, f.account)
	if err != nil {
		return err
	}

	defer cleanup()

	if err := fn(client); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		return err
	}

	return nil
}

func (f *IMAPFolder) selectMailbox(client *imapclient.Client, readOnly bool) error {
	_, err := client.Select(f.account.mailbox, &imap.SelectOptions{ReadOnly: readOnly}).Wait()
	return err
}

func (f *IMAPFolder) Append(ctx context.Context, message *models.Message, info models.MessageInfo) (string, error) {
	var id string

	err := f.session(ctx, func(client *imapclient.Client) error {
		raw := message.Bytes()

		cmd := client.Append(f.account.mailbox, int64(len(raw)), &imap.AppendOptions{
			Flags: imapFlags(info.Flags),
			Time:  time.Now(),
		})

		if _, err := cmd.Write(raw); err != nil {
			cmd.Close()
			return fmt.Errorf("could not write message: %w", err)
		}

		if err := cmd.Close(); err != nil {
			return err
		}

		data, err := cmd.Wait()
		if err != nil {
			return err
		}

		if data != nil && data.UID != 0 {
			id = strconv.FormatUint(uint64(data.UID), 10)
		}

		return nil
	})

	return id, err
}

func (f *IMAPFolder) SetFlags(ctx context.Context, id string, flags, mask models.Flags) error {
	uid, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return fmt.Errorf("%q in %q: %w", id, f.uri, ErrMessageNotFound)
	}

	var (
		uidSet  = imap.UIDSetNum(imap.UID(uid))
		added   = imapFlags(flags & mask)
		removed = imapFlags(mask &^ flags)
	)

	return f.session(ctx, func(client *imapclient.Client) error {
		if err := f.selectMailbox(client, false); err != nil {
			return err
		}

		if err := storeFlags(client, uidSet, imap.StoreFlagsAdd, added); err != nil {
			return err
		}

		return storeFlags(client, uidSet, imap.StoreFlagsDel, removed)
	})
}

func storeFlags(client *imapclient.Client, uidSet imap.UIDSet, op imap.StoreFlagsOp, flags []imap.Flag) error {
	if len(flags) == 0 {
		return nil
	}

	return client.Store(uidSet, &imap.StoreFlags{
		Op:     op,
		Silent: true,
		Flags:  flags,
	}, nil).Close()
}

// Synchronize expunges the mailbox if requested. Every other change is already on the
// server.
func (f *IMAPFolder) Synchronize(ctx context.Context, expunge bool) error {
	if !expunge {
		return nil
	}

	return f.session(ctx, func(client *imapclient.Client) error {
		if err := f.selectMailbox(client, false); err != nil {
			return err
		}

		return client.Expunge().Close()
	})
}

var imapFlagNames = []struct {
	flag models.Flags
	name imap.Flag
}{
	{models.FlagAnswered, imap.FlagAnswered},
	{models.FlagDeleted, imap.FlagDeleted},
	{models.FlagDraft, imap.FlagDraft},
	{models.FlagFlagged, imap.FlagFlagged},
	{models.FlagSeen, imap.FlagSeen},
	{models.FlagForwarded, flagForwarded},
}

func imapFlags(flags models.Flags) []imap.Flag {
	var names []imap.Flag

	for _, entry := range imapFlagNames {
		if flags.Has(entry.flag) {
			names = append(names, entry.name)
		}
	}

	return names
}
