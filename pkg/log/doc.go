// Copyright 2019 Intel Corporation. All Rights Reserved.
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

// Package log provides per-source, leveled logging for the allocator and
// its search drivers. Every package obtains its own Logger via
// log.NewLogger(source); messages below the threshold set by SetLevel are
// dropped, so the search drivers' per-iteration Debug tracing stays silent
// until a caller lowers the threshold to LevelDebug. RateLimit wraps a
// Logger so a tight driver loop can't flood stderr with one message per
// accepted neighbor.
package log
