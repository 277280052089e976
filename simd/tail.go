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

// ActiveMask returns a mask Double with 1 in the first active lanes and 0 in
// the rest. It is used as the update mask of a partially filled batch.
func ActiveMask(active int) Double {
	active = clampLanes(active)
	var m Double
	for k := 0; k < active; k++ {
		m[k] = 1
	}
	return m
}

// TailCount returns how many lanes are active in the batch that starts at
// offset when size items are processed Lanes at a time.
//
// Example:
//
//	// size 10, Lanes 4: batches at 0, 4, 8 have 4, 4 and 2 active lanes.
//	n := simd.TailCount(10, 8) // 2
func TailCount(size, offset int) int {
	return clampLanes(size - offset)
}

// NumBatches returns the number of lane batches needed to cover size items.
func NumBatches(size int) int {
	if size <= 0 {
		return 0
	}
	return (size + Lanes - 1) / Lanes
}

// ProcessWithTail calls fullFn(offset) for every complete batch of Lanes
// items and tailFn(offset, count) once for the remainder, if any.
//
// Example:
//
//	simd.ProcessWithTail(len(edges),
//	    func(offset int) {
//	        // all Lanes lanes active
//	    },
//	    func(offset, count int) {
//	        mask := simd.ActiveMask(count)
//	        // only the first count lanes are valid
//	    },
//	)
func ProcessWithTail(size int, fullFn func(offset int), tailFn func(offset, count int)) {
	fullBatches := size / Lanes
	for i := range fullBatches {
		fullFn(i * Lanes)
	}

	remaining := size % Lanes
	if remaining > 0 {
		tailFn(fullBatches*Lanes, remaining)
	}
}

// AlignedSize rounds size up to the next multiple of Lanes.
func AlignedSize(size int) int {
	return NumBatches(size) * Lanes
}

// IsAligned reports whether size is a multiple of Lanes.
func IsAligned(size int) bool {
	return size%Lanes == 0
}

func clampLanes(n int) int {
	if n < 0 {
		return 0
	}
	if n > Lanes {
		return Lanes
	}
	return n
}
