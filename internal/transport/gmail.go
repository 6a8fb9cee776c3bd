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
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/viper"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/lukasdietrich/briefpost/internal/log"
	"github.com/lukasdietrich/briefpost/internal/models"
)

const typeGmail = "gmail"

// GmailOptions locate the oauth client credentials and the cached token.
type GmailOptions struct {
	CredentialsFile string
	TokenFile       string
}

// GmailOptionsFromViper reads `transports.<id>.credentialsFile` and `tokenFile`.
func GmailOptionsFromViper(id string) GmailOptions {
	prefix := "transports." + id

	return GmailOptions{
		CredentialsFile: viper.GetString(prefix + ".credentialsFile"),
		TokenFile:       viper.GetString(prefix + ".tokenFile"),
	}
}

// rawSender submits a base64url encoded message.
type rawSender func(ctx context.Context, raw string) (string, error)

// GmailTransport sends through the gmail api. Gmail files every sent message in the
// account's Sent label, so no local copy is archived.
type GmailTransport struct {
	id   string
	opts GmailOptions

	mu      sync.Mutex
	connect func(context.Context) (rawSender, error)
	send    rawSender
}

func NewGmailTransport(id string, opts GmailOptions) *GmailTransport {
	t := GmailTransport{id: id, opts: opts}
	t.connect = t.newService

	return &t
}

func (t *GmailTransport) newService(ctx context.Context) (rawSender, error) {
	credentials, err := os.ReadFile(t.opts.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("could not read gmail credentials: %w", err)
	}

	config, err := google.ConfigFromJSON(credentials, gmailv1.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("could not parse gmail credentials: %w", err)
	}

	token, err := readToken(t.opts.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("could not read gmail token: %w", err)
	}

	service, err := gmailv1.NewService(ctx, option.WithTokenSource(config.TokenSource(context.Background(), token)))
	if err != nil {
		return nil, fmt.Errorf("could not create gmail service: %w", err)
	}

	return func(ctx context.Context, raw string) (string, error) {
		sent, err := service.Users.Messages.Send("me", &gmailv1.Message{Raw: raw}).Context(ctx).Do()
		if err != nil {
			return "", err
		}

		return sent.Id, nil
	}, nil
}

func readToken(filename string) (*oauth2.Token, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, err
	}

	return &token, nil
}

func (t *GmailTransport) ID() string {
	return t.id
}

func (*GmailTransport) Flags() ProviderFlags {
	return ProviderFlags{DisableSentFolder: true}
}

func (t *GmailTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.send != nil
}

func (t *GmailTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.send != nil {
		return nil
	}

	send, err := t.connect(ctx)
	if err != nil {
		return err
	}

	t.send = send
	return nil
}

func (t *GmailTransport) Disconnect(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.send = nil
	return nil
}

// Send submits the message. Gmail derives the recipients from the header, so Bcc
// recipients have to be part of it.
func (t *GmailTransport) Send(ctx context.Context, message *models.Message, _, recipients models.AddressSet) error {
	t.mu.Lock()
	send := t.send
	t.mu.Unlock()

	if send == nil {
		return ErrNotConnected
	}

	id, err := send(ctx, base64.URLEncoding.EncodeToString(message.Bytes()))
	if err != nil {
		return fmt.Errorf("gmail rejected message: %w", err)
	}

	log.InfoContext(ctx).
		Str("messageId", id).
		Int("recipients", recipients.Len()).
		Msg("message submitted")

	return nil
}
