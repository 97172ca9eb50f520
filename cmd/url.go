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

package cmd

import (
	"fmt"

	"github.com/googlecloudplatform/gcsstream/internal/gcsurl"
	"github.com/googlecloudplatform/gcsstream/internal/hfile"
	"github.com/spf13/cobra"
)

func newURLCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "url URL",
		Short: "Print the HTTPS URL a gs:// URL is rewritten to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !gcsurl.IsGCSURL(args[0]) {
				return fmt.Errorf("%w: %q", hfile.ErrUnsupportedScheme, args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), gcsurl.Rewrite(args[0], mode))
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "r", "The open mode: 'r' selects the download endpoint, 'w' the upload endpoint, anything else the generic one.")
	return cmd
}
