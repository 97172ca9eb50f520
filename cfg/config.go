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
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	AppName string `yaml:"app-name"`

	Auth AuthConfig `yaml:"auth"`

	GcsConnection GcsConnectionConfig `yaml:"gcs-connection"`

	Logging LoggingConfig `yaml:"logging"`

	Metrics MetricsConfig `yaml:"metrics"`

	Monitoring MonitoringConfig `yaml:"monitoring"`
}

type AuthConfig struct {
	CredentialHelper string `yaml:"credential-helper"`

	MaxTokenSize int64 `yaml:"max-token-size"`

	TokenSource TokenSource `yaml:"token-source"`

	TokenValidity time.Duration `yaml:"token-validity"`
}

type GcsConnectionConfig struct {
	ClientProtocol Protocol `yaml:"client-protocol"`

	HttpClientTimeout time.Duration `yaml:"http-client-timeout"`

	LimitBytesPerSec float64 `yaml:"limit-bytes-per-sec"`

	MaxRetrySleep time.Duration `yaml:"max-retry-sleep"`

	RetryMultiplier float64 `yaml:"retry-multiplier"`

	UserAgent string `yaml:"user-agent"`
}

type LogRotateLoggingConfig struct {
	BackupFileCount int64 `yaml:"backup-file-count"`

	Compress bool `yaml:"compress"`

	MaxFileSizeMb int64 `yaml:"max-file-size-mb"`
}

type LoggingConfig struct {
	FilePath ResolvedPath `yaml:"file-path"`

	Format string `yaml:"format"`

	LogRotate LogRotateLoggingConfig `yaml:"log-rotate"`

	Severity LogSeverity `yaml:"severity"`
}

type MetricsConfig struct {
	CloudMetricsExportIntervalSecs int64 `yaml:"cloud-metrics-export-interval-secs"`

	PrometheusPort int64 `yaml:"prometheus-port"`
}

type MonitoringConfig struct {
	ExperimentalTracingMode string `yaml:"experimental-tracing-mode"`

	ExperimentalTracingProjectId string `yaml:"experimental-tracing-project-id"`

	ExperimentalTracingSamplingRatio float64 `yaml:"experimental-tracing-sampling-ratio"`
}

func BindFlags(v *viper.Viper, flagSet *pflag.FlagSet) error {
	var err error

	flagSet.StringP("app-name", "", "", "The application name reported in the user agent.")

	err = v.BindPFlag("app-name", flagSet.Lookup("app-name"))
	if err != nil {
		return err
	}

	flagSet.StringP("client-protocol", "", "http1", "The protocol used for communicating with the GCS backend. Value can be 'http1' (HTTP/1.1) or 'http2' (HTTP/2).")

	err = v.BindPFlag("gcs-connection.client-protocol", flagSet.Lookup("client-protocol"))
	if err != nil {
		return err
	}

	flagSet.IntP("cloud-metrics-export-interval-secs", "", 0, "Specifies the interval at which the metrics are uploaded to cloud monitoring. Disabled when 0.")

	err = v.BindPFlag("metrics.cloud-metrics-export-interval-secs", flagSet.Lookup("cloud-metrics-export-interval-secs"))
	if err != nil {
		return err
	}

	flagSet.StringP("credential-helper", "", DefaultCredentialHelper, "Command whose first line of output is used as the access token when GOOGLE_APPLICATION_CREDENTIALS is set.")

	err = v.BindPFlag("auth.credential-helper", flagSet.Lookup("credential-helper"))
	if err != nil {
		return err
	}

	flagSet.StringP("experimental-tracing-mode", "", "", "Experimental: specify tracing mode, one of [stdout, gcptrace].")

	err = v.BindPFlag("monitoring.experimental-tracing-mode", flagSet.Lookup("experimental-tracing-mode"))
	if err != nil {
		return err
	}

	flagSet.StringP("experimental-tracing-project-id", "", "", "Experimental: project to which traces are exported in gcptrace mode.")

	err = v.BindPFlag("monitoring.experimental-tracing-project-id", flagSet.Lookup("experimental-tracing-project-id"))
	if err != nil {
		return err
	}

	flagSet.Float64P("experimental-tracing-sampling-ratio", "", 0, "Experimental: sampling ratio for gcptrace mode.")

	err = v.BindPFlag("monitoring.experimental-tracing-sampling-ratio", flagSet.Lookup("experimental-tracing-sampling-ratio"))
	if err != nil {
		return err
	}

	flagSet.DurationP("http-client-timeout", "", 0, "The time duration that http client will wait to get response from the server. A value of 0 indicates no timeout.")

	err = v.BindPFlag("gcs-connection.http-client-timeout", flagSet.Lookup("http-client-timeout"))
	if err != nil {
		return err
	}

	flagSet.Float64P("limit-bytes-per-sec", "", -1, "Bandwidth limit for reading data, measured over a 30-second window. (use -1 for no limit)")

	err = v.BindPFlag("gcs-connection.limit-bytes-per-sec", flagSet.Lookup("limit-bytes-per-sec"))
	if err != nil {
		return err
	}

	flagSet.StringP("log-file", "", "", "The file for storing logs. When not provided, logs are printed to stdout and stderr.")

	err = v.BindPFlag("logging.file-path", flagSet.Lookup("log-file"))
	if err != nil {
		return err
	}

	flagSet.StringP("log-format", "", "json", "The format of the log file: 'text' or 'json'.")

	err = v.BindPFlag("logging.format", flagSet.Lookup("log-format"))
	if err != nil {
		return err
	}

	flagSet.IntP("log-rotate-backup-file-count", "", 10, "The maximum number of backup log files to retain after they have been rotated. A value of 0 retains all backups.")

	err = v.BindPFlag("logging.log-rotate.backup-file-count", flagSet.Lookup("log-rotate-backup-file-count"))
	if err != nil {
		return err
	}

	flagSet.BoolP("log-rotate-compress", "", true, "Controls whether the rotated log files should be compressed using gzip.")

	err = v.BindPFlag("logging.log-rotate.compress", flagSet.Lookup("log-rotate-compress"))
	if err != nil {
		return err
	}

	flagSet.IntP("log-rotate-max-file-size-mb", "", 512, "The maximum size in megabytes that a log file can reach before it is rotated.")

	err = v.BindPFlag("logging.log-rotate.max-file-size-mb", flagSet.Lookup("log-rotate-max-file-size-mb"))
	if err != nil {
		return err
	}

	flagSet.StringP("log-severity", "", "info", "Specifies the logging severity expressed as one of [trace, debug, info, warning, error, off]")

	err = v.BindPFlag("logging.severity", flagSet.Lookup("log-severity"))
	if err != nil {
		return err
	}

	flagSet.DurationP("max-retry-sleep", "", 30*time.Second, "The maximum duration allowed to sleep in a retry loop with exponential backoff for failed requests to GCS backend.")

	err = v.BindPFlag("gcs-connection.max-retry-sleep", flagSet.Lookup("max-retry-sleep"))
	if err != nil {
		return err
	}

	flagSet.IntP("max-token-size", "", DefaultMaxTokenSize, "The largest access token, in bytes, accepted from the credential helper.")

	err = v.BindPFlag("auth.max-token-size", flagSet.Lookup("max-token-size"))
	if err != nil {
		return err
	}

	flagSet.IntP("prometheus-port", "", 0, "Expose Prometheus metrics endpoint on this port and a path of /metrics.")

	err = v.BindPFlag("metrics.prometheus-port", flagSet.Lookup("prometheus-port"))
	if err != nil {
		return err
	}

	flagSet.Float64P("retry-multiplier", "", 2, "Param for exponential backoff algorithm, which is used to increase waiting time b/w two consecutive retries.")

	err = v.BindPFlag("gcs-connection.retry-multiplier", flagSet.Lookup("retry-multiplier"))
	if err != nil {
		return err
	}

	flagSet.StringP("token-source", "", string(HelperTokenSource), "Where service-account access tokens come from: 'helper' runs the credential helper, 'adc' uses Application Default Credentials.")

	err = v.BindPFlag("auth.token-source", flagSet.Lookup("token-source"))
	if err != nil {
		return err
	}

	flagSet.DurationP("token-validity", "", DefaultTokenValidity, "How long a service-account access token is reused before it is fetched again.")

	err = v.BindPFlag("auth.token-validity", flagSet.Lookup("token-validity"))
	if err != nil {
		return err
	}

	flagSet.StringP("user-agent", "", "", "Overrides the user agent sent with every request.")

	err = v.BindPFlag("gcs-connection.user-agent", flagSet.Lookup("user-agent"))
	if err != nil {
		return err
	}

	return nil
}
