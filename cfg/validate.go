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
)

func isValidLogRotateConfig(config *LogRotateLoggingConfig) error {
	if config.MaxFileSizeMb <= 0 {
		return fmt.Errorf("max-file-size-mb should be atleast 1")
	}
	if config.BackupFileCount < 0 {
		return fmt.Errorf("backup-file-count should be 0 (to retain all backup files) or a positive value")
	}
	return nil
}

func isValidAuthConfig(config *AuthConfig) error {
	if config.TokenValidity <= 0 || config.TokenValidity > MaxTokenValidity {
		return fmt.Errorf("token-validity should be positive and at most %v", MaxTokenValidity)
	}
	if config.MaxTokenSize <= 0 {
		return fmt.Errorf("max-token-size should be atleast 1")
	}
	if config.TokenSource == HelperTokenSource && config.CredentialHelper == "" {
		return fmt.Errorf("credential-helper can't be empty when token-source is %q", HelperTokenSource)
	}
	return nil
}

func isValidGcsConnectionConfig(config *GcsConnectionConfig) error {
	if config.RetryMultiplier < 1 {
		return fmt.Errorf("retry-multiplier should be atleast 1")
	}
	if config.MaxRetrySleep < 0 {
		return fmt.Errorf("max-retry-sleep can't be negative")
	}
	if config.HttpClientTimeout < 0 {
		return fmt.Errorf("http-client-timeout can't be negative")
	}
	return nil
}

func isValidMonitoringConfig(config *MonitoringConfig) error {
	switch config.ExperimentalTracingMode {
	case "", "stdout", "gcptrace":
	default:
		return fmt.Errorf("unsupported tracing mode: %q", config.ExperimentalTracingMode)
	}
	if config.ExperimentalTracingSamplingRatio < 0 || config.ExperimentalTracingSamplingRatio > 1 {
		return fmt.Errorf("experimental-tracing-sampling-ratio should be between 0 and 1")
	}
	return nil
}

// ValidateConfig returns a non-nil error if the config is invalid.
func ValidateConfig(config *Config) error {
	var err error

	if err = isValidLogRotateConfig(&config.Logging.LogRotate); err != nil {
		return fmt.Errorf("error parsing log-rotate config: %w", err)
	}

	if err = isValidAuthConfig(&config.Auth); err != nil {
		return fmt.Errorf("error parsing auth config: %w", err)
	}

	if err = isValidGcsConnectionConfig(&config.GcsConnection); err != nil {
		return fmt.Errorf("error parsing gcs-connection config: %w", err)
	}

	if err = isValidMonitoringConfig(&config.Monitoring); err != nil {
		return fmt.Errorf("error parsing monitoring config: %w", err)
	}

	return nil
}
