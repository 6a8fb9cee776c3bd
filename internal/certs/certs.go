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
	"fmt"
	"sync"
	"time"

	"github.com/google/wire"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefpost/internal/log"
)

// WireSet provides the client tls configuration.
var WireSet = wire.NewSet(
	NewTLSConfig,
)

const (
	sourceNone  = "none"
	sourceFiles = "files"
)

func init() {
	viper.SetDefault("tls.source", sourceNone)
	viper.SetDefault("tls.files.ca", "")
}

type certSource interface {
	lastUpdate() (time.Time, error)
	load() (*tls.Certificate, error)
}

// newCertSource returns nil for sourceNone, in which case no client certificate is
// presented.
func newCertSource() (certSource, error) {
	switch source := viper.GetString("tls.source"); source {
	case sourceNone:
		return nil, nil
	case sourceFiles:
		return newKeyPairFiles(viper.GetString("tls.files.crt"), viper.GetString("tls.files.key")), nil
	default:
		return nil, fmt.Errorf("unknown certificate source %q", source)
	}
}

// NewTLSConfig creates the base tls configuration used when connecting to smtp and imap
// servers. A client certificate is presented, if `tls.source` provides one. It is
// reloaded whenever the files change. `tls.files.ca` optionally adds trusted roots.
func NewTLSConfig() (*tls.Config, error) {
	source, err := newCertSource()
	if err != nil {
		return nil, err
	}

	config := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	if caFilename := viper.GetString("tls.files.ca"); caFilename != "" {
		pool, err := loadCertPool(caFilename)
		if err != nil {
			return nil, err
		}

		config.RootCAs = pool
	}

	if source == nil {
		return config, nil
	}

	var (
		lastCert *tls.Certificate
		lastTime time.Time
		lock     sync.Mutex
	)

	config.GetClientCertificate = func(*tls.CertificateRequestInfo) (*tls.Certificate, error) {
		lock.Lock()
		defer lock.Unlock()

		newTime, err := source.lastUpdate()
		if err != nil {
			return nil, fmt.Errorf("could not check for certificate updates: %w", err)
		}

		if newTime.After(lastTime) {
			newCert, err := source.load()
			if err != nil {
				return nil, fmt.Errorf("could not load certificate: %w", err)
			}

			lastTime = newTime
			lastCert = newCert

			log.Debug().Time("updated", newTime).Msg("new client certificate loaded")
		}

		return lastCert, nil
	}

	return config, nil
}

// ForServer returns a copy of base verifying the given server name.
func ForServer(base *tls.Config, serverName string) *tls.Config {
	if base == nil {
		return &tls.Config{ServerName: serverName, MinVersion: tls.VersionTLS12}
	}

	config := base.Clone()
	config.ServerName = serverName

	return config
}
