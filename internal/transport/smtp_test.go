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
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/lukasdietrich/briefpost/internal/models"
	"github.com/lukasdietrich/briefpost/internal/secrets"
)

type receivedMail struct {
	from string
	to   []string
	data []byte
}

type testBackend struct {
	mu       sync.Mutex
	received []receivedMail
	authed   []string
}

func (b *testBackend) NewSession(*smtp.Conn) (smtp.Session, error) {
	return &testSession{backend: b}, nil
}

type testSession struct {
	backend *testBackend
	current receivedMail
}

func (s *testSession) AuthMechanisms() []string {
	return []string{sasl.Plain}
}

func (s *testSession) Auth(string) (sasl.Server, error) {
	return sasl.NewPlainServer(func(identity, username, password string) error {
		if username != "alice" || password != "hunter2" {
			return errors.New("invalid credentials")
		}

		s.backend.mu.Lock()
		s.backend.authed = append(s.backend.authed, username)
		s.backend.mu.Unlock()

		return nil
	}), nil
}

func (s *testSession) Mail(from string, _ *smtp.MailOptions) error {
	s.current = receivedMail{from: from}
	return nil
}

func (s *testSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.current.to = append(s.current.to, to)
	return nil
}

func (s *testSession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	s.current.data = data

	s.backend.mu.Lock()
	s.backend.received = append(s.backend.received, s.current)
	s.backend.mu.Unlock()

	return nil
}

func (s *testSession) Reset() {
	s.current = receivedMail{}
}

func (s *testSession) Logout() error {
	return nil
}

func TestSMTPOptionsFromViper(t *testing.T) {
	viper.Set("transports.submission.host", "mail.example.com")
	viper.Set("transports.submission.security", "tls")

	defer func() {
		viper.Set("transports.submission.host", "")
		viper.Set("transports.submission.security", "")
	}()

	assert.Equal(t, SMTPOptions{
		Host:      "mail.example.com",
		Port:      465,
		Security:  "tls",
		LocalName: "localhost",
		Timeout:   time.Minute,
	}, SMTPOptionsFromViper("submission"))

	assert.Equal(t, 587, SMTPOptionsFromViper("unconfigured").Port)
	assert.Equal(t, "starttls", SMTPOptionsFromViper("unconfigured").Security)
}

func TestSMTPTransportTestSuite(t *testing.T) {
	suite.Run(t, new(SMTPTransportTestSuite))
}

type SMTPTransportTestSuite struct {
	suite.Suite

	backend  *testBackend
	server   *smtp.Server
	listener net.Listener
}

func (s *SMTPTransportTestSuite) SetupTest() {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)

	s.backend = new(testBackend)
	s.server = smtp.NewServer(s.backend)
	s.server.Domain = "localhost"
	s.server.AllowInsecureAuth = true
	s.listener = listener

	go s.server.Serve(listener) // nolint:errcheck
}

func (s *SMTPTransportTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *SMTPTransportTestSuite) newTransport(username string) *SMTPTransport {
	host, port, err := net.SplitHostPort(s.listener.Addr().String())
	s.Require().NoError(err)

	portNumber, err := strconv.Atoi(port)
	s.Require().NoError(err)

	viper.Set("transports.test.password", "hunter2")
	s.T().Cleanup(func() { viper.Set("transports.test.password", "") })

	return NewSMTPTransport("test", SMTPOptions{
		Host:      host,
		Port:      portNumber,
		Security:  securityNone,
		Username:  username,
		LocalName: "client.example.com",
		Timeout:   5 * time.Second,
	}, nil, secrets.NewStore())
}

func mustAddressSet(addrs ...string) models.AddressSet {
	var set models.AddressSet

	for _, raw := range addrs {
		addr, err := models.ParseUnicode(raw)
		if err != nil {
			panic(err)
		}

		set.Add(addr)
	}

	return set
}

func (s *SMTPTransportTestSuite) TestSendRoundtrip() {
	transport := s.newTransport("alice")

	s.Assert().False(transport.IsConnected())
	s.Require().NoError(transport.Connect(context.TODO()))
	s.Assert().True(transport.IsConnected())

	message := models.NewMessage(models.Header{
		{Key: "From", Value: "alice@example.com"},
		{Key: "To", Value: "bob@bücher.example"},
		{Key: "Subject", Value: "Hi"},
	}, []byte("Hello Bob\r\n"))

	err := transport.Send(context.TODO(), message,
		mustAddressSet("alice@example.com"),
		mustAddressSet("bob@bücher.example", "carol@example.com"))
	s.Require().NoError(err)

	s.Require().NoError(transport.Disconnect(context.TODO()))
	s.Assert().False(transport.IsConnected())

	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	s.Assert().Equal([]string{"alice"}, s.backend.authed)
	s.Require().Len(s.backend.received, 1)

	received := s.backend.received[0]
	s.Assert().Equal("alice@example.com", received.from)
	s.Assert().Equal([]string{"bob@xn--bcher-kva.example", "carol@example.com"}, received.to)
	s.Assert().Contains(string(received.data), "Subject: Hi\r\n")
	s.Assert().Contains(string(received.data), "Hello Bob")
}

func (s *SMTPTransportTestSuite) TestConnectTwiceKeepsConnection() {
	transport := s.newTransport("")

	s.Require().NoError(transport.Connect(context.TODO()))
	client := transport.client

	s.Require().NoError(transport.Connect(context.TODO()))
	s.Assert().Same(client, transport.client)
	s.Assert().NoError(transport.Disconnect(context.TODO()))
	s.Assert().NoError(transport.Disconnect(context.TODO()))
}

func (s *SMTPTransportTestSuite) TestAuthFailure() {
	transport := s.newTransport("alice")
	viper.Set("transports.test.password", "wrong")

	s.Assert().Error(transport.Connect(context.TODO()))
	s.Assert().False(transport.IsConnected())
}

func (s *SMTPTransportTestSuite) TestSendNotConnected() {
	transport := s.newTransport("")

	err := transport.Send(context.TODO(), models.NewMessage(nil, nil),
		models.AddressSet{}, mustAddressSet("bob@example.com"))
	s.Assert().ErrorIs(err, ErrNotConnected)
}

func (s *SMTPTransportTestSuite) TestConnectCancelled() {
	transport := s.newTransport("")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.Assert().Error(transport.Connect(ctx))
	s.Assert().False(transport.IsConnected())
}
