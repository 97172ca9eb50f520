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

package logger

import (
	"io"
	"log/slog"

	"github.com/googlecloudplatform/gcsstream/cfg"
)

const textTimeLayout = "02/01/2006 03:04:05.000000"

func setLoggingLevel(level string, programLevel *slog.LevelVar) {
	switch level {
	// logs having severity >= the configured value will be logged.
	case cfg.TRACE:
		programLevel.Set(LevelTrace)
	case cfg.DEBUG:
		programLevel.Set(LevelDebug)
	case cfg.INFO:
		programLevel.Set(LevelInfo)
	case cfg.WARNING:
		programLevel.Set(LevelWarn)
	case cfg.ERROR:
		programLevel.Set(LevelError)
	case cfg.OFF:
		programLevel.Set(LevelOff)
	}
}

func severityName(level slog.Level) string {
	switch {
	case level < LevelDebug:
		return cfg.TRACE
	case level < LevelInfo:
		return cfg.DEBUG
	case level < LevelWarn:
		return cfg.INFO
	case level < LevelError:
		return cfg.WARNING
	default:
		return cfg.ERROR
	}
}

func (f *loggerFactory) createJsonOrTextHandler(writer io.Writer, levelVar *slog.LevelVar, prefix string) slog.Handler {
	if f.format == "text" {
		return slog.NewTextHandler(writer, &slog.HandlerOptions{
			Level:       levelVar,
			ReplaceAttr: customiseLevel(prefix, false),
		})
	}

	return slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level:       levelVar,
		ReplaceAttr: customiseLevel(prefix, true),
	})
}

// customiseLevel renames the standard slog attributes to the
// time/severity/message layout, and prepends prefix to every message.
func customiseLevel(prefix string, json bool) func(groups []string, a slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) > 0 {
			return a
		}
		switch a.Key {
		case slog.TimeKey:
			t := a.Value.Time()
			if json {
				return slog.Group("timestamp", slog.Int64("seconds", t.Unix()), slog.Int("nanos", t.Nanosecond()))
			}
			return slog.String("time", t.Format(textTimeLayout))
		case slog.LevelKey:
			level, _ := a.Value.Any().(slog.Level)
			return slog.String("severity", severityName(level))
		case slog.MessageKey:
			return slog.String("message", prefix+a.Value.String())
		}
		return a
	}
}
