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

package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefpost/internal/certs"
	"github.com/lukasdietrich/briefpost/internal/log"
	"github.com/lukasdietrich/briefpost/internal/models"
	"github.com/lukasdietrich/briefpost/internal/secrets"
)

const (
	typeSMTP = "smtp"

	securityNone     = "none"
	securityStartTLS = "starttls"
	securityTLS      = "tls"
)

// SMTPOptions configure a submission server.
type SMTPOptions struct {
	Host      string
	Port      int
	Security  string
	Username  string
	LocalName string
	Timeout   time.Duration
}

// SMTPOptionsFromViper reads `transports.<id>.host`, `port`, `security`, `username`,
// `localName` and `timeout`. The port defaults to the one matching the security.
func SMTPOptionsFromViper(id string) SMTPOptions {
	prefix := "transports." + id

	opts := SMTPOptions{
		Host:      viper.GetString(prefix + ".host"),
		Port:      viper.GetInt(prefix + ".port"),
		Security:  viper.GetString(prefix + ".security"),
		Username:  viper.GetString(prefix + ".username"),
		LocalName: viper.GetString(prefix + ".localName"),
		Timeout:   viper.GetDuration(prefix + ".timeout"),
	}

	if opts.Security == "" {
		opts.Security = securityStartTLS
	}

	if opts.Port == 0 {
		switch opts.Security {
		case securityTLS:
			opts.Port = 465
		case securityNone:
			opts.Port = 25
		default:
			opts.Port = 587
		}
	}

	if opts.LocalName == "" {
		opts.LocalName = "localhost"
	}

	if opts.Timeout == 0 {
		opts.Timeout = time.Minute
	}

	return opts
}

func (o SMTPOptions) address() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// SMTPTransport submits messages to a smtp server. One connection is kept between
// Connect and Disconnect. Sends over the same transport are serialized.
type SMTPTransport struct {
	id        string
	opts      SMTPOptions
	tlsConfig *tls.Config
	secrets   *secrets.Store

	mu     sync.Mutex
	conn   net.Conn
	client *smtp.Client
}

func NewSMTPTransport(id string, opts SMTPOptions, tlsConfig *tls.Config, secrets *secrets.Store) *SMTPTransport {
	return &SMTPTransport{
		id:        id,
		opts:      opts,
		tlsConfig: tlsConfig,
		secrets:   secrets,
	}
}

func (t *SMTPTransport) ID() string {
	return t.id
}

func (*SMTPTransport) Flags() ProviderFlags {
	return ProviderFlags{}
}

func (t *SMTPTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.client != nil
}

func (t *SMTPTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, t.opts.Timeout)
	defer cancel()

	conn, client, err := t.dial(ctx)
	if err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})

	err = t.greet(client)

	if !stop() {
		err = ctx.Err()
	}

	if err != nil {
		client.Close()
		return err
	}

	log.DebugContext(ctx).Str("address", t.opts.address()).Msg("connected to smtp server")

	t.conn = conn
	t.client = client

	return nil
}

func (t *SMTPTransport) dial(ctx context.Context) (net.Conn, *smtp.Client, error) {
	var dialer net.Dialer

	conn, err := dialer.DialContext(ctx, "tcp", t.opts.address())
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to %s: %w", t.opts.address(), err)
	}

	tlsConfig := certs.ForServer(t.tlsConfig, t.opts.Host)

	switch t.opts.Security {
	case securityNone:
		return conn, smtp.NewClient(conn), nil

	case securityTLS:
		tlsConn := tls.Client(conn, tlsConfig)
		return tlsConn, smtp.NewClient(tlsConn), nil

	case securityStartTLS:
		client, err := smtp.NewClientStartTLS(conn, tlsConfig)
		if err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("could not start tls: %w", err)
		}

		return conn, client, nil

	default:
		conn.Close()
		return nil, nil, fmt.Errorf("unknown smtp security %q", t.opts.Security)
	}
}

func (t *SMTPTransport) greet(client *smtp.Client) error {
	if err := client.Hello(t.opts.LocalName); err != nil {
		return err
	}

	if t.opts.Username == "" {
		return nil
	}

	password, err := t.secrets.Resolve("transports." + t.id)
	if err != nil {
		return err
	}

	if err := client.Auth(sasl.NewPlainClient("", t.opts.Username, password)); err != nil {
		return fmt.Errorf("smtp authentication failed: %w", err)
	}

	return nil
}

func (t *SMTPTransport) Disconnect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client == nil {
		return nil
	}

	client := t.client
	t.client = nil
	t.conn = nil

	err := client.Quit()
	client.Close()

	log.DebugContext(ctx).Str("address", t.opts.address()).Msg("disconnected from smtp server")
	return err
}

// Send transmits the message. Cancelling ctx closes the connection, the transport has
// to be connected again afterwards.
func (t *SMTPTransport) Send(ctx context.Context, message *models.Message, sender, recipients models.AddressSet) error {
	from, to, err := envelopeStrings(sender, recipients)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client == nil {
		return ErrNotConnected
	}

	conn := t.conn
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})

	err = t.client.SendMail(from, to, bytes.NewReader(message.Bytes()))

	if !stop() {
		t.client.Close()
		t.client = nil
		t.conn = nil

		return ctx.Err()
	}

	if err != nil {
		return fmt.Errorf("could not send message: %w", err)
	}

	log.InfoContext(ctx).
		Str("from", from).
		Strs("to", to).
		Msg("message submitted")

	return nil
}
