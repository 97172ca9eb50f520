// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/googlecloudplatform/gcsstream/cfg"
	"github.com/googlecloudplatform/gcsstream/internal/environ"
)

var (
	// ErrHelperLaunch means the credential helper could not be started.
	ErrHelperLaunch = errors.New("credential helper could not be launched")

	// ErrNoToken means the credential source produced no usable token.
	ErrNoToken = errors.New("credential source produced no token")

	// ErrTokenTooLarge means the token exceeds the maximum accepted size. It is
	// never truncated.
	ErrTokenTooLarge = errors.New("access token exceeds maximum size")
)

// TokenFetcher obtains a fresh access token from a credential source.
type TokenFetcher interface {
	FetchToken(ctx context.Context) (string, error)
}

// TokenFetcherFunc adapts a function to TokenFetcher.
type TokenFetcherFunc func(ctx context.Context) (string, error)

func (f TokenFetcherFunc) FetchToken(ctx context.Context) (string, error) {
	return f(ctx)
}

// HelperFetcher runs a credential-helper command and uses the first line of
// its output as the access token.
type HelperFetcher struct {
	name         string
	args         []string
	maxTokenSize int
	runner       CommandRunner
}

// NewHelperFetcher returns a fetcher for the given command line, split on
// whitespace. No shell is involved.
func NewHelperFetcher(command string, maxTokenSize int, runner CommandRunner) (*HelperFetcher, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty credential helper command")
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &HelperFetcher{
		name:         fields[0],
		args:         fields[1:],
		maxTokenSize: maxTokenSize,
		runner:       runner,
	}, nil
}

func (f *HelperFetcher) FetchToken(ctx context.Context) (string, error) {
	line, err := f.runner.FirstLine(ctx, f.name, f.args...)
	if err != nil {
		if errors.Is(err, ErrCommandStart) {
			return "", fmt.Errorf("%w: %v", ErrHelperLaunch, err)
		}
		return "", fmt.Errorf("%w: %v", ErrNoToken, err)
	}
	return checkToken(line, f.maxTokenSize)
}

// NewTokenFetcher returns the credential source selected by c.
func NewTokenFetcher(c cfg.AuthConfig, env environ.Environment) (TokenFetcher, error) {
	maxTokenSize := int(c.MaxTokenSize)
	if maxTokenSize <= 0 {
		maxTokenSize = cfg.DefaultMaxTokenSize
	}

	switch c.TokenSource {
	case cfg.ADCTokenSource:
		return NewADCFetcher(env, maxTokenSize), nil
	case cfg.HelperTokenSource, "":
		command := c.CredentialHelper
		if command == "" {
			command = cfg.DefaultCredentialHelper
		}
		return NewHelperFetcher(command, maxTokenSize, ExecRunner{})
	default:
		return nil, fmt.Errorf("unsupported token source %q", c.TokenSource)
	}
}

func checkToken(token string, maxTokenSize int) (string, error) {
	if token == "" {
		return "", ErrNoToken
	}
	if len(token) > maxTokenSize {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrTokenTooLarge, len(token), maxTokenSize)
	}
	return token, nil
}

// MaskToken returns token with everything after its first 8 characters
// replaced, for logging.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:8] + "****"
}
