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
	"fmt"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/credentials"
	"cloud.google.com/go/auth/oauth2adapt"
	"cloud.google.com/go/storage"
	"github.com/googlecloudplatform/gcsstream/internal/environ"
	"golang.org/x/oauth2"
)

var detectCredentials = credentials.DetectDefault

const scope = storage.ScopeFullControl

// GetCredentials detects default Google Cloud credentials.
//
// It prioritizes a service account key file if `keyFile` is provided. If `keyFile` is
// empty, it attempts to detect Application Default Credentials (ADC) and checks
// the metadata server for credentials.
func GetCredentials(keyFile string) (*auth.Credentials, error) {
	return getCredentials(keyFile, detectCredentials)
}

func getCredentials(keyFile string, detect func(*credentials.DetectOptions) (*auth.Credentials, error)) (*auth.Credentials, error) {
	opts := &credentials.DetectOptions{
		CredentialsFile: keyFile,
		Scopes:          []string{scope},
	}

	creds, err := detect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to detect credentials: %w", err)
	}

	return creds, nil
}

// ADCFetcher obtains access tokens through the Google auth library instead of
// an external helper. The key file named by GOOGLE_APPLICATION_CREDENTIALS is
// used when set, otherwise Application Default Credentials are detected.
type ADCFetcher struct {
	env          environ.Environment
	maxTokenSize int
}

func NewADCFetcher(env environ.Environment, maxTokenSize int) *ADCFetcher {
	return &ADCFetcher{env: env, maxTokenSize: maxTokenSize}
}

func (f *ADCFetcher) FetchToken(ctx context.Context) (string, error) {
	keyFile, _ := environ.NonEmpty(f.env, environ.ApplicationCredential)
	creds, err := GetCredentials(keyFile)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoToken, err)
	}

	token, err := accessToken(oauth2adapt.TokenSourceFromTokenProvider(creds.TokenProvider))
	if err != nil {
		return "", err
	}
	return checkToken(token, f.maxTokenSize)
}

func accessToken(ts oauth2.TokenSource) (string, error) {
	tok, err := ts.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoToken, err)
	}
	return tok.AccessToken, nil
}
