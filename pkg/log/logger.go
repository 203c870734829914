// Copyright 2019-2020 Intel Corporation. All Rights Reserved.
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

package log

import "os"

// Level describes the severity of a log message.
type Level int

const (
	// LevelDebug is the severity for debug messages.
	LevelDebug Level = iota
	// LevelInfo is the severity for informational messages.
	LevelInfo
	// LevelWarn is the severity for warnings.
	LevelWarn
	// LevelError is the severity for errors.
	LevelError
	// LevelFatal is the severity for fatal errors.
	LevelFatal
)

// Logger produces log messages for a single named source — one of the
// allocator's packages, e.g. "alns" or "topology".
type Logger interface {
	// Debug formats and emits a debug message.
	Debug(format string, args ...interface{})
	// Info formats and emits an informational message.
	Info(format string, args ...interface{})
	// Warn formats and emits a warning message.
	Warn(format string, args ...interface{})
	// Error formats and emits an error message.
	Error(format string, args ...interface{})
	// Fatal formats and emits an error message and os.Exit()'s with status 1.
	Fatal(format string, args ...interface{})

	// Source returns the source name of this Logger.
	Source() string
}

// logger implements Logger; its zero value is never valid, only ids handed
// out by the registry in core.go are.
type logger uint

func (l logger) Source() string {
	log.RLock()
	defer log.RUnlock()
	return log.sources[l]
}

func (l logger) Debug(format string, args ...interface{}) { l.emit(LevelDebug, format, args...) }
func (l logger) Info(format string, args ...interface{})  { l.emit(LevelInfo, format, args...) }
func (l logger) Warn(format string, args ...interface{})  { l.emit(LevelWarn, format, args...) }
func (l logger) Error(format string, args ...interface{}) { l.emit(LevelError, format, args...) }

// Fatal logs a fatal error message and os.Exit(1)'s.
func (l logger) Fatal(format string, args ...interface{}) {
	l.emit(LevelFatal, format, args...)
	os.Exit(1)
}

// emit filters by the global level threshold set by SetLevel (debug
// messages are suppressed by the LevelInfo default and only appear once a
// caller lowers the threshold to LevelDebug) and hands the rest to the
// backend. Fatal always gets through regardless of threshold.
func (l logger) emit(level Level, format string, args ...interface{}) {
	log.RLock()
	threshold := log.level
	log.RUnlock()
	if level != LevelFatal && level < threshold {
		return
	}
	log.backend.log(level, l.Source(), format, args...)
}
