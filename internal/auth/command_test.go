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
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_ReturnsFirstLine(t *testing.T) {
	line, err := ExecRunner{}.FirstLine(context.Background(), "sh", "-c", "echo first; echo second")

	require.NoError(t, err)
	assert.Equal(t, "first", line)
}

func TestExecRunner_NoOutput(t *testing.T) {
	line, err := ExecRunner{}.FirstLine(context.Background(), "sh", "-c", "exit 1")

	require.NoError(t, err)
	assert.Empty(t, line)
}

func TestExecRunner_MissingCommand(t *testing.T) {
	_, err := ExecRunner{}.FirstLine(context.Background(), "/nonexistent/credential-helper")

	assert.ErrorIs(t, err, ErrCommandStart)
}

func TestReadFirstLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "newline_terminated", input: "token\nrest\n", want: "token"},
		{name: "crlf_terminated", input: "token\r\n", want: "token"},
		{name: "unterminated", input: "token", want: "token"},
		{name: "empty", input: "", want: ""},
		{name: "longer_than_buffer", input: strings.Repeat("x", 10000) + "\n", want: strings.Repeat("x", 10000)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := readFirstLine(strings.NewReader(tc.input))

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestReadFirstLine_IsBounded(t *testing.T) {
	got, err := readFirstLine(strings.NewReader(strings.Repeat("y", 2*maxLineBytes)))

	require.NoError(t, err)
	assert.Len(t, got, maxLineBytes)
}
