package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pireduce/pkg/device"
	"pireduce/pkg/matrix"
)

func TestSolveResistorToGround(t *testing.T) {
	m, err := matrix.New(1)
	require.NoError(t, err)
	defer m.Destroy()

	r := device.NewResistor("R1", 1, 0, 2)
	require.NoError(t, r.Stamp(m, 0))
	m.AddComplexRHS(1, 1, 0)

	require.NoError(t, m.Solve())
	re, im := m.ComplexSolution(1)
	assert.InEpsilon(t, 2.0, re, 1e-9)
	assert.InDelta(t, 0.0, im, 1e-9)
}

func TestSolveRCStageAtPoleFrequency(t *testing.T) {
	m, err := matrix.New(2)
	require.NoError(t, err)
	defer m.Destroy()

	// 1k into 1u, driven by a unit AC current at omega = 1/RC:
	// V1 = R - j/(omega*C) = 1000 - j1000, V2 = -j1000.
	r := device.NewResistor("R1", 1, 2, 1e3)
	c := device.NewCapacitor("C1", 2, 0, 1e-6)
	omega := 1.0 / (1e3 * 1e-6)

	require.NoError(t, r.Stamp(m, omega))
	require.NoError(t, c.Stamp(m, omega))
	m.AddComplexRHS(1, 1, 0)

	require.NoError(t, m.Solve())

	re, im := m.ComplexSolution(1)
	assert.InEpsilon(t, 1000.0, re, 1e-6)
	assert.InEpsilon(t, -1000.0, im, 1e-6)

	re, im = m.ComplexSolution(2)
	assert.InDelta(t, 0.0, re, 1e-6)
	assert.InEpsilon(t, -1000.0, im, 1e-6)
}

func TestGroundIndexIsIgnored(t *testing.T) {
	m, err := matrix.New(1)
	require.NoError(t, err)
	defer m.Destroy()

	// Stamps touching ground or out-of-range rows must be dropped,
	// not panic or corrupt the system.
	m.AddComplexElement(0, 1, 1, 0)
	m.AddComplexElement(1, 0, 1, 0)
	m.AddComplexElement(2, 2, 1, 0)
	m.AddComplexRHS(0, 5, 0)
	m.AddComplexRHS(2, 5, 0)

	m.AddComplexElement(1, 1, 1, 0)
	m.AddComplexRHS(1, 1, 0)
	require.NoError(t, m.Solve())

	re, _ := m.ComplexSolution(1)
	assert.InEpsilon(t, 1.0, re, 1e-9)

	re, im := m.ComplexSolution(0)
	assert.Zero(t, re)
	assert.Zero(t, im)
}

func TestZeroOhmResistorStampsAsShort(t *testing.T) {
	m, err := matrix.New(2)
	require.NoError(t, err)
	defer m.Destroy()

	r := device.NewResistor("R1", 1, 2, 0)
	require.NoError(t, r.Stamp(m, 0))
	c := device.NewCapacitor("C1", 2, 0, 1e-6)
	require.NoError(t, c.Stamp(m, 1e3))
	m.AddComplexRHS(1, 1, 0)

	require.NoError(t, m.Solve())
	v1re, v1im := m.ComplexSolution(1)
	v2re, v2im := m.ComplexSolution(2)
	assert.InDelta(t, v2re, v1re, 1e-6)
	assert.InDelta(t, v2im, v1im, 1e-6)
}
