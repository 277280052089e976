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

// Command edgebench assembles the heat-conduction system of a structured
// grid with the edge loop and reports timings and residuals.
//
// Usage:
//
//	edgebench run --nx 512 --ny 512 --update coloring --implicit
//	edgebench run --nx 256 --ny 256 --compare --verbose
//
// Flags not given on the command line fall back to the EDGEASM_WORKERS,
// EDGEASM_UPDATE and EDGEASM_CHECK_CONFLICTS environment variables.
package main

import (
	"context"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
