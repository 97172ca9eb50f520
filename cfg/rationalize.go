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
	"strings"
)

func userAgent(appName, version string) string {
	if appName != "" {
		return fmt.Sprintf("gcsstream/%s (GPN:gcsstream-%s)", version, appName)
	}
	return fmt.Sprintf("gcsstream/%s (GPN:gcsstream)", version)
}

// Rationalize updates the config fields based on the values of other fields.
func Rationalize(c *Config, version string) {
	c.Auth.CredentialHelper = strings.TrimSpace(c.Auth.CredentialHelper)

	// An explicit user agent wins over the one derived from app-name.
	if c.GcsConnection.UserAgent == "" {
		c.GcsConnection.UserAgent = userAgent(c.AppName, version)
	}
}
