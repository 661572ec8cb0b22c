package device

import "pireduce/pkg/matrix"

type Capacitor struct {
	Name  string
	Nodes [2]int
	Value float64
}

func NewCapacitor(name string, n1, n2 int, value float64) *Capacitor {
	return &Capacitor{Name: name, Nodes: [2]int{n1, n2}, Value: value}
}

func (c *Capacitor) GetName() string { return c.Name }
func (c *Capacitor) GetType() string { return "C" }

func (c *Capacitor) Stamp(m matrix.DeviceMatrix, omega float64) error {
	b := omega * c.Value // susceptance C*jw

	n1, n2 := c.Nodes[0], c.Nodes[1]
	if n1 != 0 {
		m.AddComplexElement(n1, n1, 0, b)
		if n2 != 0 {
			m.AddComplexElement(n1, n2, 0, -b)
		}
	}
	if n2 != 0 {
		if n1 != 0 {
			m.AddComplexElement(n2, n1, 0, -b)
		}
		m.AddComplexElement(n2, n2, 0, b)
	}
	return nil
}
