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

package cfg

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Protocol is the datatype that specifies the type of connection: http1/http2.
type Protocol string

const (
	HTTP1 Protocol = "http1"
	HTTP2 Protocol = "http2"
)

func (p *Protocol) UnmarshalText(text []byte) error {
	txtStr := string(text)
	protocol := strings.ToLower(txtStr)
	v := []string{"http1", "http2"}
	if !slices.Contains(v, protocol) {
		return fmt.Errorf("invalid protocol value: %s. It can only accept values in the list: %v", txtStr, v)
	}
	*p = Protocol(protocol)
	return nil
}

// LogSeverity represents the logging severity and can accept the following values
// "TRACE", "DEBUG", "INFO", "WARNING", "ERROR", "OFF"
type LogSeverity string

func (l *LogSeverity) UnmarshalText(text []byte) error {
	textStr := string(text)
	level := strings.ToUpper(textStr)
	v := []string{TRACE, DEBUG, INFO, WARNING, ERROR, OFF}
	if !slices.Contains(v, level) {
		return fmt.Errorf("invalid logseverity value: %s. It can only assume values in the list: %v", textStr, v)
	}
	*l = LogSeverity(level)
	return nil
}

// TokenSource selects how service-account access tokens are obtained.
type TokenSource string

const (
	// HelperTokenSource runs the configured credential-helper command.
	HelperTokenSource TokenSource = "helper"
	// ADCTokenSource asks the Google auth library for Application Default Credentials.
	ADCTokenSource TokenSource = "adc"
)

func (s *TokenSource) UnmarshalText(text []byte) error {
	txtStr := string(text)
	source := strings.ToLower(txtStr)
	v := []string{string(HelperTokenSource), string(ADCTokenSource)}
	if !slices.Contains(v, source) {
		return fmt.Errorf("invalid token-source value: %s. It can only accept values in the list: %v", txtStr, v)
	}
	*s = TokenSource(source)
	return nil
}

// ResolvedPath represents a file-path which is an absolute path, with a
// leading "~" expanded to the user's home directory.
type ResolvedPath string

func (p *ResolvedPath) UnmarshalText(text []byte) error {
	path, err := resolvePath(string(text))
	if err != nil {
		return err
	}
	*p = ResolvedPath(path)
	return nil
}

func resolvePath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("fetch home dir: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	return filepath.Abs(path)
}
