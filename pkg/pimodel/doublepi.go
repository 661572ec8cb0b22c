package pimodel

import (
	"math"

	"pireduce/pkg/moments"
	"pireduce/pkg/rctree"
)

// DoublePI is the symmetric 5-element equivalent: R1 and R2 in
// series, shunt capacitors C1/C2/C3 at the input, middle and output
// nodes, with C1 = C3 by construction. Residual is the second-moment
// mismatch of the accepted fit; the totals Rtot and Ctot are always
// conserved.
type DoublePI struct {
	R1       float64
	R2       float64
	C1       float64
	C2       float64
	C3       float64
	Residual float64
}

const doublePIScanPoints = 1200

// SynthesizeDoublePI fits the symmetric double-PI with
// C1 = C3 = alpha*Ctot, C2 = (1-2*alpha)*Ctot, R1 = beta*Rtot,
// R2 = (1-beta)*Rtot. beta follows from the first-moment constraint
// for a given alpha; alpha is found by scanning (0, 0.5) for the
// smallest second-moment residual.
func SynthesizeDoublePI(t *rctree.Tree, m moments.Vector) (DoublePI, error) {
	rTot := t.TotalRes()
	cTot := m.M0
	if rTot <= 0 || cTot <= 0 {
		return DoublePI{}, &DegenerateNetworkError{Moments: m, Reason: "double-PI needs positive total resistance and capacitance"}
	}

	k1 := -m.M1 / (rTot * cTot * cTot)
	k2Target := m.M2 / (rTot * rTot * cTot * cTot * cTot)

	const eps = 1e-6
	bestErr := math.Inf(1)
	bestAlpha, bestBeta := 0.0, 0.0
	found := false

	for i := 0; i < doublePIScanPoints; i++ {
		alpha := eps + (0.5-2*eps)*float64(i)/float64(doublePIScanPoints-1)
		d := 1 - 2*alpha
		if math.Abs(d) < 1e-15 {
			continue
		}
		beta := (k1 - alpha*alpha) / d
		if math.IsNaN(beta) || math.IsInf(beta, 0) || beta <= 0 || beta >= 1 {
			continue
		}
		err := math.Abs(k2Shape(alpha, beta) - k2Target)
		if err < bestErr {
			bestErr = err
			bestAlpha, bestBeta = alpha, beta
			found = true
		}
	}

	if !found {
		return DoublePI{}, &DegenerateNetworkError{Moments: m, Reason: "no passive symmetric double-PI matches the first moment"}
	}

	dp := DoublePI{
		R1:       bestBeta * rTot,
		R2:       (1 - bestBeta) * rTot,
		C1:       bestAlpha * cTot,
		C2:       (1 - 2*bestAlpha) * cTot,
		C3:       bestAlpha * cTot,
		Residual: bestErr,
	}
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"R1", dp.R1}, {"R2", dp.R2}, {"C1", dp.C1}, {"C2", dp.C2}, {"C3", dp.C3},
	} {
		if v.value < 0 {
			return DoublePI{}, &NonPhysicalResultError{Component: v.name, Value: v.value}
		}
	}
	return dp, nil
}

// k2Shape is the normalized second moment of the symmetric double-PI
// as a function of the split fractions.
func k2Shape(alpha, beta float64) float64 {
	s := 1 - alpha
	return beta*beta*s*s*s +
		2*beta*(1-beta)*s*alpha*alpha +
		(1-beta)*(1-beta)*alpha*alpha*alpha
}
