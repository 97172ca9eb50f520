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

package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/googlecloudplatform/gcsstream/internal/logger"
)

// maxLineBytes bounds how much of a command's first output line is read.
const maxLineBytes = 64 * 1024

// CommandRunner runs an external command and returns the first line of its
// standard output, without the line terminator.
type CommandRunner interface {
	FirstLine(ctx context.Context, name string, args ...string) (string, error)
}

// ErrCommandStart is returned by ExecRunner when the command could not be
// started at all.
var ErrCommandStart = errors.New("command could not be started")

// ExecRunner is a CommandRunner backed by os/exec. The remaining output after
// the first line is discarded and the exit status is only logged.
type ExecRunner struct{}

func (ExecRunner) FirstLine(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrCommandStart, name, err)
	}
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrCommandStart, name, err)
	}

	line, readErr := readFirstLine(stdout)
	// Let the command run to completion so Wait does not race the pipe.
	_, _ = io.Copy(io.Discard, stdout)
	if err := cmd.Wait(); err != nil {
		logger.Debugf("Command %q exited: %v", name, err)
	}
	if readErr != nil {
		return "", fmt.Errorf("reading output of %s: %w", name, readErr)
	}
	return line, nil
}

// readFirstLine reads up to maxLineBytes of the first line of r. A line longer
// than the bound is returned truncated to the bound, so callers checking a
// smaller size limit still see it as oversized.
func readFirstLine(r io.Reader) (string, error) {
	br := bufio.NewReaderSize(io.LimitReader(r, maxLineBytes), 4096)
	var sb strings.Builder
	for {
		chunk, err := br.ReadSlice('\n')
		sb.Write(chunk)
		if err == nil || errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return "", err
	}
	return strings.TrimRight(sb.String(), "\r\n"), nil
}
