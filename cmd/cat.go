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
	"io"

	"github.com/spf13/cobra"
)

func newCatCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cat URL...",
		Short: "Copy the contents of each URL to standard output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())

			for _, url := range args {
				if err := cat(cmd, a, url); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func cat(cmd *cobra.Command, a *app, url string) error {
	s, err := a.registry.Open(cmd.Context(), url, "r", nil)
	if err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	defer s.Close()

	if _, err := io.Copy(cmd.OutOrStdout(), s); err != nil {
		return fmt.Errorf("read %s: %w", url, err)
	}
	return nil
}
