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

	"github.com/googlecloudplatform/gcsstream/internal/auth"
	"github.com/spf13/cobra"
)

func newTokenCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Resolve the access token used for gs:// URLs and print it masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())

			token, err := a.resolver.ResolveAccessToken(cmd.Context())
			if err != nil {
				return fmt.Errorf("resolve access token: %w", err)
			}
			if token == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no token")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), auth.MaskToken(token))
			return nil
		},
	}
}
