// Package verify cross-checks a synthesized model against the
// original tree by comparing driving-point admittances over a
// frequency sweep. This is a numerical sanity check on the moment
// match, not a transient simulation.
package verify

import (
	"fmt"
	"math"
	"math/cmplx"

	"pireduce/internal/consts"
	"pireduce/pkg/device"
	"pireduce/pkg/matrix"
	"pireduce/pkg/pimodel"
	"pireduce/pkg/rctree"
)

// Sample is one frequency point of the comparison.
type Sample struct {
	Omega    float64
	YNetwork complex128
	YModel   complex128
}

// Report summarizes a sweep. MaxRelErr is the worst relative
// admittance deviation across the sampled points.
type Report struct {
	Samples   []Sample
	MaxRelErr float64
}

const defaultPoints = 20

// Compare sweeps a log-spaced band around the PI model's pole
// frequency 1/(R1*C2) and solves both circuits at each point.
func Compare(t *rctree.Tree, p pimodel.PI, points int) (*Report, error) {
	if p.R1 <= 0 || p.C2 <= 0 {
		return nil, fmt.Errorf("verification needs a positive R1 and C2, got R1=%g C2=%g", p.R1, p.C2)
	}
	devices, size, root := modelCircuit(p)
	return sweep(t, devices, size, root, 1/(p.R1*p.C2), points)
}

// CompareDouble is Compare for the 5-element double-PI model.
func CompareDouble(t *rctree.Tree, dp pimodel.DoublePI, points int) (*Report, error) {
	rTot := dp.R1 + dp.R2
	cFar := dp.C2 + dp.C3
	if rTot <= 0 || cFar <= 0 {
		return nil, fmt.Errorf("verification needs positive total resistance and downstream capacitance")
	}
	devices, size, root := doubleCircuit(dp)
	return sweep(t, devices, size, root, 1/(rTot*cFar), points)
}

func sweep(t *rctree.Tree, modelDevices []device.Device, modelSize, modelRoot int, omega0 float64, points int) (*Report, error) {
	if points < 2 {
		points = defaultPoints
	}

	netDevices, netSize, netRoot := treeCircuit(t)
	report := &Report{}

	for i := 0; i < points; i++ {
		// Two decades below the pole to one above.
		exp := -2 + 3*float64(i)/float64(points-1)
		omega := omega0 * math.Pow(10, exp)

		yNet, err := drivingPointAdmittance(netDevices, netSize, netRoot, omega)
		if err != nil {
			return nil, fmt.Errorf("network solve at omega=%g: %v", omega, err)
		}
		yModel, err := drivingPointAdmittance(modelDevices, modelSize, modelRoot, omega)
		if err != nil {
			return nil, fmt.Errorf("model solve at omega=%g: %v", omega, err)
		}

		report.Samples = append(report.Samples, Sample{Omega: omega, YNetwork: yNet, YModel: yModel})
		if mag := cmplx.Abs(yNet); mag > 0 {
			if rel := cmplx.Abs(yNet-yModel) / mag; rel > report.MaxRelErr {
				report.MaxRelErr = rel
			}
		}
	}

	return report, nil
}

func treeCircuit(t *rctree.Tree) (devices []device.Device, size, root int) {
	index := make(map[string]int)
	var assign func(n *rctree.Node)
	assign = func(n *rctree.Node) {
		index[n.Name] = len(index) + 1
		for _, c := range n.Children {
			assign(c)
		}
	}
	assign(t.Root)

	var build func(n *rctree.Node)
	build = func(n *rctree.Node) {
		if n.Cap > 0 {
			devices = append(devices, device.NewCapacitor("C_"+n.Name, index[n.Name], 0, n.Cap))
		}
		if n.Parent != nil {
			devices = append(devices, device.NewResistor("R_"+n.Name, index[n.Parent.Name], index[n.Name], n.RToParent))
		}
		for _, c := range n.Children {
			build(c)
		}
	}
	build(t.Root)

	return devices, len(index), index[t.Root.Name]
}

func modelCircuit(p pimodel.PI) (devices []device.Device, size, root int) {
	const in, out = 1, 2
	if p.C1 > 0 {
		devices = append(devices, device.NewCapacitor("C1", in, 0, p.C1))
	}
	devices = append(devices,
		device.NewResistor("R1", in, out, p.R1),
		device.NewCapacitor("C2", out, 0, p.C2),
	)
	return devices, 2, in
}

func doubleCircuit(dp pimodel.DoublePI) (devices []device.Device, size, root int) {
	const in, mid, out = 1, 2, 3
	devices = append(devices,
		device.NewResistor("R1", in, mid, dp.R1),
		device.NewResistor("R2", mid, out, dp.R2),
	)
	for _, c := range []struct {
		name  string
		node  int
		value float64
	}{
		{"C1", in, dp.C1}, {"C2", mid, dp.C2}, {"C3", out, dp.C3},
	} {
		if c.value > 0 {
			devices = append(devices, device.NewCapacitor(c.name, c.node, 0, c.value))
		}
	}
	return devices, 3, in
}

// drivingPointAdmittance injects a unit AC current at the root and
// reads Y = I/V from the resulting node voltage.
func drivingPointAdmittance(devices []device.Device, size, root int, omega float64) (complex128, error) {
	m, err := matrix.New(size)
	if err != nil {
		return 0, err
	}
	defer m.Destroy()

	for _, dev := range devices {
		if err := dev.Stamp(m, omega); err != nil {
			return 0, err
		}
	}
	for i := 1; i <= size; i++ {
		m.AddComplexElement(i, i, consts.Gmin, 0)
	}
	m.AddComplexRHS(root, 1, 0)

	if err := m.Solve(); err != nil {
		return 0, err
	}

	re, im := m.ComplexSolution(root)
	v := complex(re, im)
	if v == 0 {
		return 0, fmt.Errorf("root voltage is zero, admittance undefined")
	}
	return 1 / v, nil
}
