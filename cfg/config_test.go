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

	"github.com/mitchellh/mapstructure"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseArgs(t *testing.T, args []string) Config {
	t.Helper()
	v := viper.New()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	require.NoError(t, BindFlags(v, fs))
	require.NoError(t, fs.Parse(args))

	var c Config
	err := v.Unmarshal(&c, viper.DecodeHook(DecodeHook()), func(decoderConfig *mapstructure.DecoderConfig) {
		decoderConfig.TagName = "yaml"
	})
	require.NoError(t, err)
	return c
}

func TestBindFlags_Defaults(t *testing.T) {
	c := parseArgs(t, nil)

	assert.Equal(t, DefaultCredentialHelper, c.Auth.CredentialHelper)
	assert.Equal(t, int64(DefaultMaxTokenSize), c.Auth.MaxTokenSize)
	assert.Equal(t, HelperTokenSource, c.Auth.TokenSource)
	assert.Equal(t, DefaultTokenValidity, c.Auth.TokenValidity)
	assert.Equal(t, HTTP1, c.GcsConnection.ClientProtocol)
	assert.Equal(t, 30*time.Second, c.GcsConnection.MaxRetrySleep)
	assert.Equal(t, 2.0, c.GcsConnection.RetryMultiplier)
	assert.Equal(t, -1.0, c.GcsConnection.LimitBytesPerSec)
	assert.Equal(t, LogSeverity(INFO), c.Logging.Severity)
	assert.Equal(t, "json", c.Logging.Format)
	assert.Equal(t, int64(512), c.Logging.LogRotate.MaxFileSizeMb)
	assert.NoError(t, ValidateConfig(&c))
}

func TestBindFlags_Overrides(t *testing.T) {
	c := parseArgs(t, []string{
		"--token-source=adc",
		"--token-validity=10m",
		"--max-token-size=4096",
		"--client-protocol=http2",
		"--log-severity=trace",
		"--limit-bytes-per-sec=1048576",
		"--prometheus-port=9100",
		"--user-agent=tool/1.0",
	})

	assert.Equal(t, ADCTokenSource, c.Auth.TokenSource)
	assert.Equal(t, 10*time.Minute, c.Auth.TokenValidity)
	assert.Equal(t, int64(4096), c.Auth.MaxTokenSize)
	assert.Equal(t, HTTP2, c.GcsConnection.ClientProtocol)
	assert.Equal(t, LogSeverity(TRACE), c.Logging.Severity)
	assert.Equal(t, 1048576.0, c.GcsConnection.LimitBytesPerSec)
	assert.Equal(t, int64(9100), c.Metrics.PrometheusPort)
	assert.Equal(t, "tool/1.0", c.GcsConnection.UserAgent)
}

func TestBindFlags_InvalidValue(t *testing.T) {
	v := viper.New()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	require.NoError(t, BindFlags(v, fs))
	require.NoError(t, fs.Parse([]string{"--token-source=metadata"}))

	var c Config
	err := v.Unmarshal(&c, viper.DecodeHook(DecodeHook()), func(decoderConfig *mapstructure.DecoderConfig) {
		decoderConfig.TagName = "yaml"
	})

	assert.Error(t, err)
}
