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

// Package logger provides the leveled logging used throughout gcsstream.
// Messages go to stdout/stderr by default, or to a rotated log file once
// InitLogFile has been called.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/googlecloudplatform/gcsstream/cfg"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Severity levels understood by the handlers. TRACE and OFF extend the slog
// levels below DEBUG and above ERROR respectively.
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelOff   = slog.Level(12)
)

var (
	defaultLoggerFactory *loggerFactory
	defaultLogger        *slog.Logger
)

// InitLogFile initializes the logger factory to create loggers that print to
// the configured log file, rotated according to the log-rotate config. With an
// empty file path logs keep going to stdout.
func InitLogFile(newLogConfig cfg.LoggingConfig) error {
	var fileWriter *lumberjack.Logger
	if newLogConfig.FilePath != "" {
		// Make sure the file can be written before handing it to lumberjack,
		// which would otherwise only fail on the first write.
		f, err := os.OpenFile(string(newLogConfig.FilePath), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		f.Close()

		fileWriter = &lumberjack.Logger{
			Filename:   string(newLogConfig.FilePath),
			MaxSize:    int(newLogConfig.LogRotate.MaxFileSizeMb),
			MaxBackups: int(newLogConfig.LogRotate.BackupFileCount),
			Compress:   newLogConfig.LogRotate.Compress,
		}
	}

	Close()
	defaultLoggerFactory = &loggerFactory{
		fileWriter:      fileWriter,
		format:          newLogConfig.Format,
		level:           string(newLogConfig.Severity),
		logRotateConfig: newLogConfig.LogRotate,
	}
	defaultLogger = defaultLoggerFactory.newLogger(defaultLoggerFactory.level)

	return nil
}

// init initializes the logger factory to use stdout.
func init() {
	defaultLoggerFactory = &loggerFactory{
		level:  cfg.INFO,
		format: "text",
	}
	defaultLogger = defaultLoggerFactory.newLogger(cfg.INFO)
}

// Close closes the log file when necessary.
func Close() {
	if w := defaultLoggerFactory.fileWriter; w != nil {
		w.Close()
		defaultLoggerFactory.fileWriter = nil
	}
}

// SetLogFormat updates the format of the default logger. Any value other than
// "text" selects json.
func SetLogFormat(format string) {
	defaultLoggerFactory.format = format
	defaultLogger = defaultLoggerFactory.newLogger(defaultLoggerFactory.level)
}

// Tracef prints the message with TRACE severity in the specified format.
func Tracef(format string, v ...interface{}) {
	defaultLogger.Log(context.Background(), LevelTrace, fmt.Sprintf(format, v...))
}

// Debugf prints the message with DEBUG severity in the specified format.
func Debugf(format string, v ...interface{}) {
	defaultLogger.Debug(fmt.Sprintf(format, v...))
}

// Infof prints the message with INFO severity in the specified format.
func Infof(format string, v ...interface{}) {
	defaultLogger.Info(fmt.Sprintf(format, v...))
}

// Info prints the message with info severity.
func Info(message string, args ...any) {
	defaultLogger.Info(message, args...)
}

// Warnf prints the message with WARNING severity in the specified format.
func Warnf(format string, v ...interface{}) {
	defaultLogger.Warn(fmt.Sprintf(format, v...))
}

// Errorf prints the message with ERROR severity in the specified format.
func Errorf(format string, v ...interface{}) {
	defaultLogger.Error(fmt.Sprintf(format, v...))
}

type loggerFactory struct {
	// If nil, log to stdout. Otherwise, log to this rotated file.
	fileWriter      *lumberjack.Logger
	format          string
	level           string
	logRotateConfig cfg.LogRotateLoggingConfig
}

func (f *loggerFactory) newLogger(level string) *slog.Logger {
	var programLevel = new(slog.LevelVar)
	logger := slog.New(f.handler(programLevel, ""))
	setLoggingLevel(level, programLevel)
	return logger
}

func (f *loggerFactory) writer() io.Writer {
	if f.fileWriter != nil {
		return f.fileWriter
	}
	return os.Stdout
}

func (f *loggerFactory) handler(levelVar *slog.LevelVar, prefix string) slog.Handler {
	return f.createJsonOrTextHandler(f.writer(), levelVar, prefix)
}
