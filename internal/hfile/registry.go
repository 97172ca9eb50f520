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

package hfile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/googlecloudplatform/gcsstream/internal/logger"
)

// ErrUnsupportedScheme is returned when no handler is registered for a URL's
// scheme.
var ErrUnsupportedScheme = errors.New("unsupported URL scheme")

// SchemeHandler describes how URLs of one scheme are opened.
type SchemeHandler struct {
	Opener Opener

	// Description names the backend, e.g. "Google Cloud Storage".
	Description string

	// Priority orders competing handlers for the same scheme. Higher wins.
	Priority int

	// AlwaysRemote reports that URLs of this scheme never name local files.
	AlwaysRemote bool
}

// Registry maps URL schemes to handlers. URLs without a scheme are local
// file paths and are served by the local file opener.
//
// Safe for concurrent access.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]*SchemeHandler
	local    Opener
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]*SchemeHandler),
		local:    OpenerFunc(openLocalFile),
	}
}

// AddSchemeHandler registers h for scheme. An already registered handler with
// a higher priority is kept.
func (r *Registry) AddSchemeHandler(scheme string, h *SchemeHandler) {
	scheme = strings.ToLower(scheme)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.handlers[scheme]; ok && existing.Priority > h.Priority {
		logger.Debugf("Keeping %q handler %q (priority %d) over %q (priority %d)",
			scheme, existing.Description, existing.Priority, h.Description, h.Priority)
		return
	}
	r.handlers[scheme] = h
}

// Lookup returns the handler registered for url's scheme. ok is false for
// local paths and for unregistered schemes.
func (r *Registry) Lookup(url string) (h *SchemeHandler, ok bool) {
	scheme, found := Scheme(url)
	if !found {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok = r.handlers[scheme]
	return
}

// Open dispatches to the handler for url's scheme, or opens a local file when
// url has no scheme.
func (r *Registry) Open(ctx context.Context, url, mode string, opts *Options) (Stream, error) {
	scheme, found := Scheme(url)
	if !found {
		return r.local.Open(ctx, url, mode, opts)
	}

	h, ok := r.Lookup(url)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
	return h.Opener.Open(ctx, url, mode, opts)
}

// IsRemote reports whether url is served by an always-remote handler.
func (r *Registry) IsRemote(url string) bool {
	h, ok := r.Lookup(url)
	return ok && h.AlwaysRemote
}

// Scheme returns the lower-cased scheme of url. A scheme is a non-empty run of
// letters, digits and "+-." followed by ':'. Single-letter schemes are treated
// as Windows drive letters and rejected.
func Scheme(url string) (string, bool) {
	i := strings.IndexByte(url, ':')
	if i < 2 {
		return "", false
	}
	for _, c := range url[:i] {
		if !isSchemeChar(c) {
			return "", false
		}
	}
	return strings.ToLower(url[:i]), true
}

func isSchemeChar(c rune) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') ||
		c == '+' || c == '-' || c == '.'
}
