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

package hfile

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// openLocalFile opens a local path. Options are not supported for local files.
func openLocalFile(_ context.Context, path, mode string, opts *Options) (Stream, error) {
	if opts != nil && (len(opts.Headers) > 0 || len(opts.Extra) > 0) {
		return nil, fmt.Errorf("options are not supported for local file %q", path)
	}

	flag, err := fileFlags(mode)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	return f, nil
}

func fileFlags(mode string) (int, error) {
	flags := Flags(mode)
	var flag int
	switch {
	case strings.Contains(flags, "r") && strings.Contains(flags, "+"):
		flag = os.O_RDWR
	case strings.Contains(flags, "r"):
		flag = os.O_RDONLY
	case strings.Contains(flags, "w"):
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case strings.Contains(flags, "a"):
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	default:
		return 0, fmt.Errorf("invalid mode %q", mode)
	}
	if strings.Contains(flags, "x") {
		flag |= os.O_EXCL
	}
	return flag, nil
}
