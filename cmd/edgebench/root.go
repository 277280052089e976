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

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/edgeasm/edgeasm"
	"github.com/edgeasm/edgeasm/simd"
)

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "edgebench",
		Short:        "Benchmark edge-based linear system assembly",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			edgeasm.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			logDispatch()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pass timings and coloring statistics")
	root.AddCommand(newRunCmd())
	return root
}

func logDispatch() {
	log := edgeasm.Logger()
	log.Info("simd", "level", simd.CurrentLevel(), "width", simd.CurrentWidth(), "lanes", simd.Lanes)
	if !simd.Supported() {
		log.Warn("lanes wider than the detected registers, kernels run on partial registers",
			"lanes", simd.Lanes, "width", simd.CurrentWidth())
	}
}
