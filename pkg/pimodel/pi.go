// Package pimodel solves the moment-matching equations that turn a
// driving-point moment vector into a compact equivalent circuit.
package pimodel

import (
	"fmt"
	"math"

	"pireduce/internal/consts"
	"pireduce/pkg/moments"
)

// PI is the 3-element equivalent: C1 shunting the input node, R1 in
// series, C2 shunting the output node.
type PI struct {
	R1 float64
	C1 float64
	C2 float64
}

// DegenerateNetworkError reports a moment combination the synthesis
// equations cannot invert, e.g. a network with no resistance.
type DegenerateNetworkError struct {
	Moments moments.Vector
	Reason  string
}

func (e *DegenerateNetworkError) Error() string {
	return fmt.Sprintf("degenerate network: %s (moments m0=%g m1=%g m2=%g m3=%g)",
		e.Reason, e.Moments.M0, e.Moments.M1, e.Moments.M2, e.Moments.M3)
}

// NonPhysicalResultError reports a synthesized component value that
// is negative or non-finite. It is never clamped away.
type NonPhysicalResultError struct {
	Component string
	Value     float64
}

func (e *NonPhysicalResultError) Error() string {
	return fmt.Sprintf("non-physical result: %s = %g", e.Component, e.Value)
}

// Synthesize solves for (R1, C1, C2) such that the PI model matches
// the network's m0, m1 and m2 exactly:
//
//	m0 = C1 + C2
//	m1 = -R1 * C2^2
//	m2 = R1^2 * C2^3
//
// giving C2 = m1^2/m2, R1 = -m1/C2^2 and C1 = m0 - C2. m3 is not an
// equation; use FitError to judge how well the model tracks it.
func Synthesize(m moments.Vector) (PI, error) {
	if m.M2 == 0 {
		return PI{}, &DegenerateNetworkError{Moments: m, Reason: "second moment is zero (no resistance between input and capacitance)"}
	}

	c2 := m.M1 * m.M1 / m.M2
	if math.IsNaN(c2) || math.IsInf(c2, 0) {
		return PI{}, &DegenerateNetworkError{Moments: m, Reason: "moment ratio is not finite"}
	}
	if c2 < 0 {
		return PI{}, &NonPhysicalResultError{Component: "C2", Value: c2}
	}
	if c2 == 0 {
		return PI{}, &DegenerateNetworkError{Moments: m, Reason: "first moment is zero"}
	}

	r1 := -m.M1 / (c2 * c2)
	if math.IsNaN(r1) || math.IsInf(r1, 0) {
		return PI{}, &DegenerateNetworkError{Moments: m, Reason: "series resistance is not finite"}
	}
	if r1 < 0 {
		return PI{}, &NonPhysicalResultError{Component: "R1", Value: r1}
	}

	c1 := m.M0 - c2
	if c1 < -consts.RelTol*m.M0 {
		return PI{}, &NonPhysicalResultError{Component: "C1", Value: c1}
	}
	if c1 < 0 {
		c1 = 0 // rounding noise inside tolerance
	}

	return PI{R1: r1, C1: c1, C2: c2}, nil
}

// Moments evaluates the model's own moment vector with the same
// series rules used for the full network.
func (p PI) Moments() moments.Vector {
	load := moments.Vector{M0: p.C2}
	v := load.Series(p.R1)
	v.M0 += p.C1
	return v
}

// FitError is the relative deviation of the model's third moment
// from the network's. The model matches m0..m2 by construction, so
// this is the leading truncation error of the reduction.
func FitError(m moments.Vector, p PI) float64 {
	model := p.Moments().M3
	if m.M3 == 0 {
		if model == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Abs(model-m.M3) / math.Abs(m.M3)
}
