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
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefpost/internal/log"
	"github.com/lukasdietrich/briefpost/internal/models"
)

const typeSES = "ses"

// SESOptions configure the aws simple email service.
type SESOptions struct {
	Region           string
	AccessKeyID      string
	SecretAccessKey  string
	ConfigurationSet string
}

// SESOptionsFromViper reads `transports.<id>.region`, `accessKeyId`, `secretAccessKey`
// and `configurationSet`. Without static keys the default aws credential chain is used.
func SESOptionsFromViper(id string) SESOptions {
	prefix := "transports." + id

	return SESOptions{
		Region:           viper.GetString(prefix + ".region"),
		AccessKeyID:      viper.GetString(prefix + ".accessKeyId"),
		SecretAccessKey:  viper.GetString(prefix + ".secretAccessKey"),
		ConfigurationSet: viper.GetString(prefix + ".configurationSet"),
	}
}

// SendEmailAPI is the subset of the sesv2 client used by the transport.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESTransport submits raw messages through the SendEmail api. Connecting loads the aws
// configuration, there is no persistent connection.
type SESTransport struct {
	id   string
	opts SESOptions

	mu        sync.Mutex
	newClient func(context.Context) (SendEmailAPI, error)
	client    SendEmailAPI
}

func NewSESTransport(id string, opts SESOptions) *SESTransport {
	t := SESTransport{id: id, opts: opts}
	t.newClient = t.loadClient

	return &t
}

// NewSESTransportWithClient creates a transport using client for every connection.
func NewSESTransportWithClient(id string, opts SESOptions, client SendEmailAPI) *SESTransport {
	return &SESTransport{
		id:   id,
		opts: opts,
		newClient: func(context.Context) (SendEmailAPI, error) {
			return client, nil
		},
	}
}

func (t *SESTransport) loadClient(ctx context.Context) (SendEmailAPI, error) {
	var opts []func(*awsconfig.LoadOptions) error

	if t.opts.Region != "" {
		opts = append(opts, awsconfig.WithRegion(t.opts.Region))
	}

	if t.opts.AccessKeyID != "" && t.opts.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(t.opts.AccessKeyID, t.opts.SecretAccessKey, ""),
		))
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not load aws config: %w", err)
	}

	return sesv2.NewFromConfig(awsConfig), nil
}

func (t *SESTransport) ID() string {
	return t.id
}

func (*SESTransport) Flags() ProviderFlags {
	return ProviderFlags{}
}

func (t *SESTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.client != nil
}

func (t *SESTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client != nil {
		return nil
	}

	client, err := t.newClient(ctx)
	if err != nil {
		return err
	}

	t.client = client
	return nil
}

func (t *SESTransport) Disconnect(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.client = nil
	return nil
}

func (t *SESTransport) Send(ctx context.Context, message *models.Message, sender, recipients models.AddressSet) error {
	from, to, err := envelopeStrings(sender, recipients)
	if err != nil {
		return err
	}

	t.mu.Lock()
	client := t.client
	t.mu.Unlock()

	if client == nil {
		return ErrNotConnected
	}

	input := sesv2.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: to,
		},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{
				Data: message.Bytes(),
			},
		},
	}

	if from != "" {
		input.FromEmailAddress = aws.String(from)
	}

	if t.opts.ConfigurationSet != "" {
		input.ConfigurationSetName = aws.String(t.opts.ConfigurationSet)
	}

	output, err := client.SendEmail(ctx, &input)
	if err != nil {
		return fmt.Errorf("ses rejected message: %w", err)
	}

	event := log.InfoContext(ctx).Str("from", from).Strs("to", to)
	if output != nil && output.MessageId != nil {
		event.Str("messageId", *output.MessageId)
	}

	event.Msg("message submitted")
	return nil
}
