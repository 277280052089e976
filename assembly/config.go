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

package assembly

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/edgeasm/edgeasm/mesh"
)

// Environment variables read by Config.FromEnv.
const (
	EnvWorkers        = "EDGEASM_WORKERS"
	EnvUpdate         = "EDGEASM_UPDATE"
	EnvCheckConflicts = "EDGEASM_CHECK_CONFLICTS"
)

var (
	// ErrConfig is returned for invalid loop configurations.
	ErrConfig = errors.New("assembly: invalid configuration")

	// ErrClosed is returned by Run on a closed Loop.
	ErrClosed = errors.New("assembly: loop closed")

	// ErrNoEdgeFlux is returned by Run when a Direct pass has no edge flux
	// vector to write into.
	ErrNoEdgeFlux = errors.New("assembly: direct update needs an edge flux vector")
)

// Config controls a Loop.
type Config struct {
	// Workers is the size of the worker pool. Zero uses GOMAXPROCS.
	Workers int

	// UpdateType is the strategy of every pass.
	UpdateType UpdateType

	// Implicit enables Jacobian updates.
	Implicit bool

	// GroupSize is the number of consecutive edges one worker processes as
	// a unit: the coloring group size with Coloring, the work batch size
	// with Direct. Zero uses mesh.DefaultGroupSize.
	GroupSize int

	// CheckConflicts verifies during Coloring passes that no two
	// concurrently processed groups touch the same point.
	CheckConflicts bool
}

// DefaultConfig returns an explicit Coloring configuration using all CPUs.
func DefaultConfig() Config {
	return Config{
		UpdateType: Coloring,
		GroupSize:  mesh.DefaultGroupSize,
	}
}

// FromEnv overrides c with the EDGEASM_* environment variables that are
// set.
func (c *Config) FromEnv() error {
	if s := os.Getenv(EnvWorkers); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrConfig, EnvWorkers, s, err)
		}
		c.Workers = n
	}
	if s := os.Getenv(EnvUpdate); s != "" {
		if err := c.UpdateType.Set(s); err != nil {
			return fmt.Errorf("%s: %w", EnvUpdate, err)
		}
	}
	if s := os.Getenv(EnvCheckConflicts); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrConfig, EnvCheckConflicts, s, err)
		}
		c.CheckConflicts = b
	}
	return nil
}

// Validate reports the first invalid field of c.
func (c Config) Validate() error {
	switch {
	case c.Workers < 0:
		return fmt.Errorf("%w: negative worker count %d", ErrConfig, c.Workers)
	case c.GroupSize < 0:
		return fmt.Errorf("%w: negative group size %d", ErrConfig, c.GroupSize)
	case c.UpdateType != Coloring && c.UpdateType != Direct:
		return fmt.Errorf("%w: unknown update type %v", ErrConfig, c.UpdateType)
	}
	return nil
}

func (c Config) groupSize() int {
	if c.GroupSize == 0 {
		return mesh.DefaultGroupSize
	}
	return c.GroupSize
}
