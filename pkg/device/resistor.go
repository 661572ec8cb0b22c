package device

import (
	"fmt"

	"pireduce/internal/consts"
	"pireduce/pkg/matrix"
)

type Resistor struct {
	Name  string
	Nodes [2]int
	Value float64
}

func NewResistor(name string, n1, n2 int, value float64) *Resistor {
	return &Resistor{Name: name, Nodes: [2]int{n1, n2}, Value: value}
}

func (r *Resistor) GetName() string { return r.Name }
func (r *Resistor) GetType() string { return "R" }

func (r *Resistor) Stamp(m matrix.DeviceMatrix, omega float64) error {
	if r.Value < 0 {
		return fmt.Errorf("resistor %s: negative value %g", r.Name, r.Value)
	}

	g := consts.ShortConductance // zero-ohm short
	if r.Value > 0 {
		g = 1.0 / r.Value
	}

	n1, n2 := r.Nodes[0], r.Nodes[1]
	if n1 != 0 {
		m.AddComplexElement(n1, n1, g, 0)
		if n2 != 0 {
			m.AddComplexElement(n1, n2, -g, 0)
		}
	}
	if n2 != 0 {
		if n1 != 0 {
			m.AddComplexElement(n2, n1, -g, 0)
		}
		m.AddComplexElement(n2, n2, g, 0)
	}
	return nil
}
