package pimodel

import (
	"pireduce/pkg/moments"
	"pireduce/pkg/rctree"
)

// Lumped is the single-pole equivalent: one series resistor into one
// grounded capacitor.
type Lumped struct {
	Req float64
	Ceq float64
}

// SynthesizeLumped collapses the tree to a single RC stage. The
// capacitance is conserved and the resistance is the capacitance-
// weighted mean of the root-to-node path resistances, which preserves
// the Elmore (first-moment) delay of the driving point.
func SynthesizeLumped(t *rctree.Tree) (Lumped, error) {
	ceq := 0.0
	sumCR := 0.0

	var visit func(n *rctree.Node, rUp float64)
	visit = func(n *rctree.Node, rUp float64) {
		ceq += n.Cap
		sumCR += n.Cap * rUp
		for _, child := range n.Children {
			visit(child, rUp+child.RToParent)
		}
	}
	visit(t.Root, 0)

	if ceq <= 0 {
		return Lumped{}, &DegenerateNetworkError{Moments: moments.Vector{}, Reason: "network has no capacitance"}
	}
	return Lumped{Req: sumCR / ceq, Ceq: ceq}, nil
}
