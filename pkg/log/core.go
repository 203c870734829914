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

import "sync"

// logging is the global state shared by every Logger instance: the
// source-name registry and the single fmt-based backend every source logs
// through. Unlike the teacher's version, there is no pluggable Backend
// interface — this repo only ever logs to stderr-via-fmt, so the registry
// holds the concrete backend directly rather than a swappable one.
type logging struct {
	sync.RWMutex
	level   Level            // lowest severity level that is not suppressed
	backend *fmtBackend      // the only backend
	sources map[logger]string // per-logger source name
	next    logger           // next logger id to hand out
}

// log is the single package-global instance of logging.
var log = &logging{
	level:   LevelInfo,
	backend: newFmtBackend(),
	sources: make(map[logger]string),
}

// SetLevel sets the lowest message severity that is not suppressed.
func SetLevel(level Level) {
	log.Lock()
	defer log.Unlock()
	log.level = level
}

// get returns the logger for source, creating one with default settings if necessary.
func (l *logging) get(source string) logger {
	l.Lock()
	defer l.Unlock()

	for id, src := range l.sources {
		if src == source {
			return id
		}
	}

	id := l.next
	l.next++
	l.sources[id] = source

	return id
}

// Get looks up (or creates) the Logger for the given source name.
func Get(source string) Logger {
	return log.get(source)
}

// NewLogger is an alias for Get, kept for readability at call sites that
// create a logger for a new source rather than looking up an existing one.
func NewLogger(source string) Logger {
	return log.get(source)
}

// Flush flushes the backend, forcing out any buffered startup messages.
func Flush() {
	log.backend.Flush()
}
