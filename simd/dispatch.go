// Copyright 2026 edgeasm Authors
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

package simd

import (
	"os"
	"strconv"
)

// DispatchLevel identifies the SIMD instruction set detected at runtime.
// Lanes is fixed at compile time; the level is used to report whether the
// host registers are wide enough for it.
type DispatchLevel int

const (
	// DispatchScalar indicates no usable SIMD registers.
	DispatchScalar DispatchLevel = iota

	// DispatchSSE2 indicates SSE2 (128-bit).
	DispatchSSE2

	// DispatchAVX2 indicates AVX2 (256-bit).
	DispatchAVX2

	// DispatchAVX512 indicates AVX-512 (512-bit).
	DispatchAVX512

	// DispatchNEON indicates ARM NEON (128-bit).
	DispatchNEON

	// DispatchSVE indicates ARM SVE. The vector length is not queried, so
	// the width is reported as the 128-bit minimum.
	DispatchSVE
)

// String returns a human-readable name for the dispatch level.
func (d DispatchLevel) String() string {
	switch d {
	case DispatchScalar:
		return "scalar"
	case DispatchSSE2:
		return "sse2"
	case DispatchAVX2:
		return "avx2"
	case DispatchAVX512:
		return "avx512"
	case DispatchNEON:
		return "neon"
	case DispatchSVE:
		return "sve"
	default:
		return "unknown"
	}
}

// currentLevel and currentWidth are set by init() in dispatch_*.go files.
var (
	currentLevel DispatchLevel
	currentWidth int
)

// CurrentLevel returns the detected SIMD instruction set.
func CurrentLevel() DispatchLevel {
	return currentLevel
}

// CurrentWidth returns the detected SIMD register width in bytes.
func CurrentWidth() int {
	return currentWidth
}

// CurrentName returns the name of the detected SIMD level.
func CurrentName() string {
	return currentLevel.String()
}

// Supported reports whether one Double fits in a single register of the
// detected level. A single-lane build is always supported.
func Supported() bool {
	return Lanes == 1 || Lanes*8 <= currentWidth
}

// NoSimdEnv checks the EDGEASM_NO_SIMD environment variable. When set, the
// detected level is reported as scalar regardless of CPU capabilities.
func NoSimdEnv() bool {
	val := os.Getenv("EDGEASM_NO_SIMD")
	if val == "" {
		return false
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}

func setScalarMode() {
	currentLevel = DispatchScalar
	currentWidth = 8
}
