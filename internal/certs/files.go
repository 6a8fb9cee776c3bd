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


package certs

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

func init() {
	viper.SetDefault("tls.files.crt", "cert/client.crt")
	viper.SetDefault("tls.files.key", "cert/client.key")
}

// keyPairFiles is a client certificate and its private key stored as pem files.
type keyPairFiles struct {
	crt string
	key string
}

func newKeyPairFiles(crt, key string) keyPairFiles {
	return keyPairFiles{crt: crt, key: key}
}

// lastUpdate is the most recent modification time of both files.
func (f keyPairFiles) lastUpdate() (time.Time, error) {
	crtInfo, err := os.Stat(f.crt)
	if err != nil {
		return time.Time{}, err
	}

	keyInfo, err := os.Stat(f.key)
	if err != nil {
		return time.Time{}, err
	}

	if keyInfo.ModTime().After(crtInfo.ModTime()) {
		return keyInfo.ModTime(), nil
	}

	return crtInfo.ModTime(), nil
}

func (f keyPairFiles) load() (*tls.Certificate, error) {
	pair, err := tls.LoadX509KeyPair(f.crt, f.key)
	if err != nil {
		return nil, fmt.Errorf("could not load key pair %q: %w", f.crt, err)
	}

	return &pair, nil
}

// loadCertPool reads trusted roots for verifying smtp and imap servers with private
// certificate authorities.
func loadCertPool(filename string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read ca file: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %q", filename)
	}

	return pool, nil
}
