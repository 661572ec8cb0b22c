// Package moments computes the leading driving-point admittance
// moments of an RC tree as seen from its root.
//
// The admittance of an RC tree is a power series in the complex
// frequency s with no constant term:
//
//	Y(s) = m0*s + m1*s^2 + m2*s^3 + m3*s^4 + ...
//
// m0 is the total capacitance. For any physical RC tree the signs
// alternate: m1 <= 0, m2 >= 0, m3 <= 0.
package moments

import "pireduce/pkg/rctree"

// Vector holds the first four admittance moments.
type Vector struct {
	M0 float64
	M1 float64
	M2 float64
	M3 float64
}

// Add combines parallel branches. Parallel admittances sum, so their
// series coefficients sum component-wise; order does not matter.
func (v Vector) Add(o Vector) Vector {
	return Vector{
		M0: v.M0 + o.M0,
		M1: v.M1 + o.M1,
		M2: v.M2 + o.M2,
		M3: v.M3 + o.M3,
	}
}

// Series pushes the admittance through a series resistance r toward
// the root: Y' = Y / (1 + r*Y), truncated at fourth order. A zero
// resistance is an exact pass-through.
func (v Vector) Series(r float64) Vector {
	if r == 0 {
		return v
	}
	m0, m1, m2, m3 := v.M0, v.M1, v.M2, v.M3
	return Vector{
		M0: m0,
		M1: m1 - r*m0*m0,
		M2: m2 - 2*r*m0*m1 + r*r*m0*m0*m0,
		M3: m3 - r*(2*m0*m2+m1*m1) + 3*r*r*m0*m0*m1 - r*r*r*m0*m0*m0*m0,
	}
}

// Compute folds the tree leaves-to-root and returns the driving-point
// moment vector at the root. The tree is read-only; each node's
// contribution is a pure function of its children's contributions.
func Compute(t *rctree.Tree) Vector {
	return subtree(t.Root)
}

func subtree(n *rctree.Node) Vector {
	var v Vector
	for _, child := range n.Children {
		v = v.Add(subtree(child).Series(child.RToParent))
	}
	v.M0 += n.Cap
	return v
}
