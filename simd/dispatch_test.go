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

import "testing"

func TestDispatchLevelString(t *testing.T) {
	tests := []struct {
		level DispatchLevel
		want  string
	}{
		{DispatchScalar, "scalar"},
		{DispatchSSE2, "sse2"},
		{DispatchAVX2, "avx2"},
		{DispatchAVX512, "avx512"},
		{DispatchNEON, "neon"},
		{DispatchSVE, "sve"},
		{DispatchLevel(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("DispatchLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestCurrentWidth(t *testing.T) {
	t.Logf("SIMD level %s, width %d bytes, %d lanes", CurrentName(), CurrentWidth(), Lanes)
	if CurrentWidth() <= 0 {
		t.Errorf("CurrentWidth() = %d, want > 0", CurrentWidth())
	}
	if Lanes == 1 && !Supported() {
		t.Errorf("Supported() = false for a single-lane build")
	}
}

func TestNoSimdEnv(t *testing.T) {
	t.Setenv("EDGEASM_NO_SIMD", "")
	if NoSimdEnv() {
		t.Errorf("NoSimdEnv() = true with empty variable")
	}
	t.Setenv("EDGEASM_NO_SIMD", "false")
	if NoSimdEnv() {
		t.Errorf("NoSimdEnv() = true for \"false\"")
	}
	t.Setenv("EDGEASM_NO_SIMD", "yes")
	if !NoSimdEnv() {
		t.Errorf("NoSimdEnv() = false for \"yes\"")
	}
}
