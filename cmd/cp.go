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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/googlecloudplatform/gcsstream/internal/hfile"
	"github.com/googlecloudplatform/gcsstream/internal/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const defaultParallelism = 4

var errNotDirectory = errors.New("destination must be a directory or end with '/' when copying several sources")

func newCpCmd(o *rootOptions) *cobra.Command {
	var parallelism int
	cmd := &cobra.Command{
		Use:   "cp SRC... DST",
		Short: "Copy local files or URLs to a destination file, directory or gs:// prefix",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if parallelism < 1 {
				return fmt.Errorf("parallelism should be atleast 1")
			}
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())

			srcs, dst := args[:len(args)-1], args[len(args)-1]
			return copyAll(cmd.Context(), a.registry, srcs, dst, parallelism)
		},
	}
	cmd.Flags().IntVar(&parallelism, "parallelism", defaultParallelism, "The maximum number of copies in flight.")
	return cmd
}

// copyAll copies every source into dst with at most parallelism copies in
// flight. The first failure cancels the copies still running.
func copyAll(ctx context.Context, registry *hfile.Registry, srcs []string, dst string, parallelism int) error {
	dstIsDir := isDirectory(dst)
	if len(srcs) > 1 && !dstIsDir {
		return errNotDirectory
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for _, src := range srcs {
		target := dst
		if dstIsDir {
			target = joinTarget(dst, baseName(src))
		}
		g.Go(func() error {
			return copyOne(ctx, registry, src, target)
		})
	}
	return g.Wait()
}

func copyOne(ctx context.Context, registry *hfile.Registry, src, dst string) (err error) {
	in, err := registry.Open(ctx, src, "r", nil)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := registry.Open(ctx, dst, "w", nil)
	if err != nil {
		return fmt.Errorf("open %s: %w", dst, err)
	}
	defer func() {
		// Close commits the upload, so its error is the copy's error.
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", dst, closeErr)
		}
	}()

	n, err := io.Copy(out, in)
	if err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	logger.Infof("Copied %s to %s (%d bytes)", src, dst, n)
	return nil
}

// isDirectory reports whether dst names a container rather than a single
// object or file. Remote destinations are containers when they end in '/'.
func isDirectory(dst string) bool {
	if strings.HasSuffix(dst, "/") {
		return true
	}
	if _, remote := hfile.Scheme(dst); remote {
		return false
	}
	fi, err := os.Stat(dst)
	return err == nil && fi.IsDir()
}

func joinTarget(dir, name string) string {
	if _, remote := hfile.Scheme(dir); remote {
		return strings.TrimSuffix(dir, "/") + "/" + name
	}
	return filepath.Join(dir, name)
}

// baseName returns the last path element of a local path or URL, ignoring
// any query or fragment.
func baseName(src string) string {
	if _, remote := hfile.Scheme(src); !remote {
		return filepath.Base(src)
	}
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	return path.Base(src)
}
