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

package filter

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefpost/internal/folder"
	"github.com/lukasdietrich/briefpost/internal/log"
	"github.com/lukasdietrich/briefpost/internal/models"
)

// RuleOptions is a single rule as configured under "filters.<purpose>".
type RuleOptions struct {
	Name    string   `mapstructure:"name"`
	Header  string   `mapstructure:"header"`
	Pattern string   `mapstructure:"pattern"`
	CopyTo  []string `mapstructure:"copyTo"`
	Flags   string   `mapstructure:"flags"`
}

// RuleBuilder compiles the configured rules on every Build, so changes to the
// configuration are picked up by the next dispatch.
type RuleBuilder struct {
	folders folder.Resolver
}

func NewRuleBuilder(folders folder.Resolver) *RuleBuilder {
	return &RuleBuilder{folders: folders}
}

func (b *RuleBuilder) Build(ctx context.Context, purpose string) (Driver, error) {
	if purpose != PurposeOutgoing {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPurpose, purpose)
	}

	var options []RuleOptions
	if err := viper.UnmarshalKey("filters."+purpose, &options); err != nil {
		return nil, fmt.Errorf("could not read %s filters: %w", purpose, err)
	}

	return NewRuleDriver(ctx, b.folders, options)
}

type rule struct {
	name    string
	header  string
	pattern *regexp.Regexp
	copyTo  []string
	flags   models.Flags
}

// RuleDriver runs compiled rules in configuration order.
type RuleDriver struct {
	folders folder.Resolver
	rules   []rule
}

func NewRuleDriver(ctx context.Context, folders folder.Resolver, options []RuleOptions) (*RuleDriver, error) {
	rules := make([]rule, 0, len(options))

	for i, opts := range options {
		name := opts.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}

		if opts.Pattern == "" {
			return nil, fmt.Errorf("rule %q: missing pattern", name)
		}

		pattern, err := regexp.Compile(opts.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %q: invalid pattern: %w", name, err)
		}

		flags, unknown := models.ParseFlags(opts.Flags)
		for _, token := range unknown {
			log.WarnContext(ctx).
				Str("rule", name).
				Str("flag", token).
				Msg("ignoring unknown filter flag")
		}

		rules = append(rules, rule{
			name:    name,
			header:  opts.Header,
			pattern: pattern,
			copyTo:  opts.CopyTo,
			flags:   flags,
		})
	}

	return &RuleDriver{folders: folders, rules: rules}, nil
}

func (d *RuleDriver) Apply(ctx context.Context, message *models.Message, info *models.MessageInfo) error {
	for _, r := range d.rules {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !r.matches(message.Header()) {
			continue
		}

		log.DebugContext(ctx).
			Str("rule", r.name).
			Msg("filter rule matched")

		info.Flags |= r.flags

		for _, uri := range r.copyTo {
			if err := d.copyTo(ctx, uri, message, *info); err != nil {
				return fmt.Errorf("rule %q: %w", r.name, err)
			}
		}
	}

	return nil
}

func (d *RuleDriver) copyTo(ctx context.Context, uri string, message *models.Message, info models.MessageInfo) error {
	target, err := d.folders.Resolve(ctx, uri)
	if err != nil {
		return err
	}

	_, err = target.Append(log.WithFolder(ctx, uri), message, info)
	return err
}

// matches reports whether any value of the rule header matches. Rules without a
// header are matched against every field as "Key: Value".
func (r rule) matches(header models.Header) bool {
	if r.header != "" {
		for _, value := range header.Values(r.header) {
			if r.pattern.MatchString(value) {
				return true
			}
		}

		return false
	}

	for _, field := range header {
		if r.pattern.MatchString(field.Key + ": " + strings.TrimSpace(field.Value)) {
			return true
		}
	}

	return false
}
