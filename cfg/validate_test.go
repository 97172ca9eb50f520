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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Auth: AuthConfig{
			CredentialHelper: DefaultCredentialHelper,
			MaxTokenSize:     DefaultMaxTokenSize,
			TokenSource:      HelperTokenSource,
			TokenValidity:    DefaultTokenValidity,
		},
		GcsConnection: GcsConnectionConfig{
			ClientProtocol:  HTTP1,
			MaxRetrySleep:   30 * time.Second,
			RetryMultiplier: 2,
		},
		Logging: LoggingConfig{
			LogRotate: LogRotateLoggingConfig{
				BackupFileCount: 0,
				Compress:        false,
				MaxFileSizeMb:   1,
			},
		},
	}
}

func TestValidateConfig(t *testing.T) {
	testCases := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid",
			modify:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "adc without helper",
			modify:  func(c *Config) { c.Auth.TokenSource = ADCTokenSource; c.Auth.CredentialHelper = "" },
			wantErr: false,
		},
		{
			name:    "helper without command",
			modify:  func(c *Config) { c.Auth.CredentialHelper = "" },
			wantErr: true,
		},
		{
			name:    "zero token validity",
			modify:  func(c *Config) { c.Auth.TokenValidity = 0 },
			wantErr: true,
		},
		{
			name:    "token validity beyond token lifetime",
			modify:  func(c *Config) { c.Auth.TokenValidity = time.Hour + time.Second },
			wantErr: true,
		},
		{
			name:    "zero max token size",
			modify:  func(c *Config) { c.Auth.MaxTokenSize = 0 },
			wantErr: true,
		},
		{
			name:    "zero log file size",
			modify:  func(c *Config) { c.Logging.LogRotate.MaxFileSizeMb = 0 },
			wantErr: true,
		},
		{
			name:    "negative backup count",
			modify:  func(c *Config) { c.Logging.LogRotate.BackupFileCount = -1 },
			wantErr: true,
		},
		{
			name:    "retry multiplier below one",
			modify:  func(c *Config) { c.GcsConnection.RetryMultiplier = 0.5 },
			wantErr: true,
		},
		{
			name:    "unknown tracing mode",
			modify:  func(c *Config) { c.Monitoring.ExperimentalTracingMode = "jaeger" },
			wantErr: true,
		},
		{
			name:    "sampling ratio above one",
			modify:  func(c *Config) { c.Monitoring.ExperimentalTracingSamplingRatio = 1.5 },
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.modify(c)

			err := ValidateConfig(c)

			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
