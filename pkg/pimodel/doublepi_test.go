package pimodel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pireduce/pkg/moments"
	"pireduce/pkg/pimodel"
)

func TestSynthesizeDoublePIRecoversSymmetricNetwork(t *testing.T) {
	// This network already has the symmetric double-PI shape, so the
	// fit should recover it up to the scan granularity.
	tree := buildTree(t, `* symmetric
C1 in 0 1p
R1 in mid 10
C2 mid 0 2p
R2 mid out 10
C3 out 0 1p
`, "in")
	m := moments.Compute(tree)

	dp, err := pimodel.SynthesizeDoublePI(tree, m)
	require.NoError(t, err)

	assert.InEpsilon(t, 10.0, dp.R1, 2e-3)
	assert.InEpsilon(t, 10.0, dp.R2, 2e-3)
	assert.InEpsilon(t, 1e-12, dp.C1, 2e-3)
	assert.InEpsilon(t, 2e-12, dp.C2, 2e-3)
	assert.InEpsilon(t, 1e-12, dp.C3, 2e-3)
	assert.Equal(t, dp.C1, dp.C3)
	assert.Less(t, dp.Residual, 1e-3)
}

func TestSynthesizeDoublePIConservesTotals(t *testing.T) {
	tree := buildTree(t, `* ladder
R5 in n2 8
C6 in 0 10f
R3 n2 n3 10
C4 n2 0 10f
R1 n3 out 10
C2 n3 0 10f
`, "in")
	m := moments.Compute(tree)

	dp, err := pimodel.SynthesizeDoublePI(tree, m)
	require.NoError(t, err)

	assert.InEpsilon(t, tree.TotalRes(), dp.R1+dp.R2, 1e-12)
	assert.InEpsilon(t, m.M0, dp.C1+dp.C2+dp.C3, 1e-12)
	assert.Positive(t, dp.R1)
	assert.Positive(t, dp.R2)
	assert.Positive(t, dp.C2)
}

func TestSynthesizeDoublePINoResistance(t *testing.T) {
	tree := buildTree(t, "* lone cap\nC1 in 0 1p\n", "in")
	m := moments.Compute(tree)

	_, err := pimodel.SynthesizeDoublePI(tree, m)
	var de *pimodel.DegenerateNetworkError
	require.ErrorAs(t, err, &de)
}
