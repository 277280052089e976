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

// Package fluid provides thermal conductivity closures.
package fluid

import (
	"fmt"

	"github.com/edgeasm/edgeasm/container"
)

// ConductivityModel computes the thermal conductivity of a fluid state.
// Models keep the result of the last Set call and are not safe for
// concurrent use.
type ConductivityModel interface {
	// SetConductivity evaluates the conductivity at temperature t, density
	// rho, laminar and turbulent viscosity muLam and muTurb and specific
	// heat cp.
	SetConductivity(t, rho, muLam, muTurb, cp float64)

	// SetDerConductivity evaluates the partial derivatives of the
	// conductivity given those of the viscosity.
	SetDerConductivity(t, rho, dmuDrhoT, dmuDTrho, cp float64)

	Conductivity() float64
	DktDrhoT() float64
	DktDTrho() float64
}

// ConstantConductivity is a fixed conductivity.
type ConstantConductivity struct {
	kt float64
}

// NewConstantConductivity returns a model whose conductivity is always kt.
func NewConstantConductivity(kt float64) *ConstantConductivity {
	return &ConstantConductivity{kt: kt}
}

func (c *ConstantConductivity) SetConductivity(_, _, _, _, _ float64)    {}
func (c *ConstantConductivity) SetDerConductivity(_, _, _, _, _ float64) {}
func (c *ConstantConductivity) Conductivity() float64                    { return c.kt }
func (c *ConstantConductivity) DktDrhoT() float64                        { return 0 }
func (c *ConstantConductivity) DktDTrho() float64                        { return 0 }

// ConstantConductivityRANS is a constant laminar conductivity plus the
// turbulent conductivity cp*muTurb/PrTurb of a turbulent Prandtl number.
type ConstantConductivityRANS struct {
	kt       float64
	ktLam    float64
	prTurb   float64
	dktDrhoT float64
	dktDTrho float64
}

// NewConstantConductivityRANS returns a model with laminar conductivity
// ktLam and turbulent Prandtl number prTurb.
func NewConstantConductivityRANS(ktLam, prTurb float64) *ConstantConductivityRANS {
	return &ConstantConductivityRANS{ktLam: ktLam, prTurb: prTurb}
}

// SetConductivity sets kt = ktLam + cp*muTurb/PrTurb.
func (c *ConstantConductivityRANS) SetConductivity(_, _, _, muTurb, cp float64) {
	c.kt = c.ktLam + cp*muTurb/c.prTurb
}

// SetDerConductivity leaves the derivatives at zero: the turbulent
// viscosity is frozen with respect to the laminar state.
func (c *ConstantConductivityRANS) SetDerConductivity(_, _, _, _, _ float64) {}

func (c *ConstantConductivityRANS) Conductivity() float64 { return c.kt }
func (c *ConstantConductivityRANS) DktDrhoT() float64     { return c.dktDrhoT }
func (c *ConstantConductivityRANS) DktDTrho() float64     { return c.dktDTrho }

// State holds the point fields a conductivity model is evaluated on.
type State struct {
	Temperature *container.Array1D
	Density     *container.Array1D
	MuLam       *container.Array1D
	MuTurb      *container.Array1D
	Cp          float64
}

// FillConductivity evaluates m at every point of s and stores the result
// in kt. All fields must have the length of kt.
func FillConductivity(m ConductivityModel, s State, kt *container.Array1D) error {
	n := kt.Len()
	fields := []struct {
		name string
		f    *container.Array1D
	}{
		{"temperature", s.Temperature},
		{"density", s.Density},
		{"laminar viscosity", s.MuLam},
		{"turbulent viscosity", s.MuTurb},
	}
	for _, fld := range fields {
		if fld.f == nil || fld.f.Len() != n {
			return fmt.Errorf("%w: %s field does not cover %d points", container.ErrShape, fld.name, n)
		}
	}
	for i := range n {
		m.SetConductivity(s.Temperature.At(i), s.Density.At(i), s.MuLam.At(i), s.MuTurb.At(i), s.Cp)
		kt.Set(i, m.Conductivity())
	}
	return nil
}
