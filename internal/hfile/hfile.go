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

// Package hfile provides URL-addressed streams: a registry mapping URL schemes
// to openers, and the mode conventions shared by all openers.
package hfile

import (
	"context"
	"io"
	"strings"
)

// Stream is an open remote or local object.
type Stream interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
}

// Options carry per-open settings that do not fit in the mode string.
type Options struct {
	// Headers are extra request headers, each formatted as "Name: value".
	Headers []string

	// Extra holds named opener-specific options.
	Extra map[string]string
}

// Opener opens the stream addressed by url.
//
// opts is nil when the caller supplied no options, in which case mode carries
// no options separator either.
type Opener interface {
	Open(ctx context.Context, url, mode string, opts *Options) (Stream, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, url, mode string, opts *Options) (Stream, error)

func (f OpenerFunc) Open(ctx context.Context, url, mode string, opts *Options) (Stream, error) {
	return f(ctx, url, mode, opts)
}

// AccessMode is the direction a mode string requests.
type AccessMode int

const (
	AccessOther AccessMode = iota
	AccessRead
	AccessWrite
)

func (a AccessMode) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	default:
		return "other"
	}
}

// optionsSeparator marks that a mode is followed by opener options.
const optionsSeparator = ":"

// HasOptions reports whether mode already carries the options separator.
func HasOptions(mode string) bool {
	return strings.Contains(mode, optionsSeparator)
}

// WithOptions returns mode with the options separator appended if missing.
func WithOptions(mode string) string {
	if HasOptions(mode) {
		return mode
	}
	return mode + optionsSeparator
}

// Flags returns the part of mode before the options separator.
func Flags(mode string) string {
	flags, _, _ := strings.Cut(mode, optionsSeparator)
	return flags
}

// Access classifies mode. Read wins when a mode names both directions. The
// whole mode is inspected, options included, so the classification agrees
// with the endpoint gcsurl.Rewrite picks for the same mode.
func Access(mode string) AccessMode {
	switch {
	case strings.Contains(mode, "r"):
		return AccessRead
	case strings.Contains(mode, "w"):
		return AccessWrite
	default:
		return AccessOther
	}
}
