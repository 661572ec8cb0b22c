package reduce_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pireduce/pkg/netlist"
	"pireduce/pkg/pimodel"
	"pireduce/pkg/rctree"
	"pireduce/pkg/reduce"
)

func readDeck(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func TestRunLadderPI(t *testing.T) {
	result, err := reduce.Run(readDeck(t, "ladder.sp"), reduce.Options{})
	require.NoError(t, err)

	assert.Equal(t, "in", result.InputNode)
	assert.Equal(t, "out", result.LoadNode)
	assert.InEpsilon(t, 3e-14, result.Moments.M0, 1e-12)
	assert.InEpsilon(t, -4.2e-27, result.Moments.M1, 1e-12)
	assert.InEpsilon(t, 9.32e-40, result.Moments.M2, 1e-12)

	require.NotNil(t, result.PI)
	assert.InEpsilon(t, 11.724, result.PI.R1, 1e-3)
	assert.InEpsilon(t, 1.1073e-14, result.PI.C1, 1e-3)
	assert.InEpsilon(t, 1.8927e-14, result.PI.C2, 1e-3)
	assert.Less(t, result.FitError, 0.05)
	assert.Nil(t, result.Verification)

	lines := strings.Split(strings.TrimRight(string(result.Output), "\n"), "\n")
	want := []string{
		"* sample rc net",
		"V1 in 0 DC 1",
		"R1 in out 11.7242",
		"C1 in 0 11.073f",
		"C2 out 0 18.927f",
		".tran 1n 10n",
		".options post=2 nomod",
		".end",
	}
	assert.Equal(t, want, lines)
}

func TestRunSingleStageLumped(t *testing.T) {
	result, err := reduce.Run(readDeck(t, "single.sp"), reduce.Options{Model: reduce.ModelLumped})
	require.NoError(t, err)

	require.NotNil(t, result.Lumped)
	assert.InEpsilon(t, 10.0, result.Lumped.Req, 1e-9)
	assert.InEpsilon(t, 1e-12, result.Lumped.Ceq, 1e-9)

	out := string(result.Output)
	assert.Contains(t, out, "RREQ in out 10\n")
	assert.Contains(t, out, "CREQ out 0 1p\n")
	assert.Contains(t, out, "V1 in 0 PULSE(0 1 0 10p 10p 1n 2n)\n")
}

func TestRunDoublePI(t *testing.T) {
	result, err := reduce.Run(readDeck(t, "ladder.sp"), reduce.Options{Model: reduce.ModelDoublePI})
	require.NoError(t, err)

	dp := result.DoublePI
	require.NotNil(t, dp)
	assert.InEpsilon(t, 28.0, dp.R1+dp.R2, 1e-12)
	assert.InEpsilon(t, 3e-14, dp.C1+dp.C2+dp.C3, 1e-12)

	out := string(result.Output)
	assert.Contains(t, out, "R1 in mid ")
	assert.Contains(t, out, "R2 mid out ")
	assert.Contains(t, out, "C1 in 0 ")
	assert.Contains(t, out, "C2 mid 0 ")
	assert.Contains(t, out, "C3 out 0 ")
}

func TestRunWithVerification(t *testing.T) {
	result, err := reduce.Run(readDeck(t, "ladder.sp"), reduce.Options{Verify: true, VerifyPoints: 8})
	require.NoError(t, err)

	require.NotNil(t, result.Verification)
	assert.Len(t, result.Verification.Samples, 8)
	assert.Less(t, result.Verification.MaxRelErr, 0.15)
}

func TestRunReducedDeckIsAFixedPoint(t *testing.T) {
	first, err := reduce.Run(readDeck(t, "ladder.sp"), reduce.Options{})
	require.NoError(t, err)

	second, err := reduce.Run(first.Output, reduce.Options{})
	require.NoError(t, err)
	assert.Equal(t, string(first.Output), string(second.Output))
}

func TestRunBranchingNeedsExplicitLoad(t *testing.T) {
	deck := readDeck(t, "branching.sp")

	_, err := reduce.Run(deck, reduce.Options{})
	var te *rctree.TopologyError
	require.ErrorAs(t, err, &te)

	result, err := reduce.Run(deck, reduce.Options{LoadNode: "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", result.LoadNode)
	assert.InEpsilon(t, 6e-12, result.Moments.M0, 1e-12)
}

func TestRunRejectsCycle(t *testing.T) {
	_, err := reduce.Run(readDeck(t, "cycle.sp"), reduce.Options{})
	var se *rctree.StructuralError
	require.ErrorAs(t, err, &se)
}

func TestRunMultipleSources(t *testing.T) {
	deck := readDeck(t, "multisource.sp")

	_, err := reduce.Run(deck, reduce.Options{})
	var se *rctree.StructuralError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Error(), "multiple driving sources")

	result, err := reduce.Run(deck, reduce.Options{InputNode: "a"})
	require.NoError(t, err)
	assert.Equal(t, "a", result.InputNode)
}

func TestRunNoSource(t *testing.T) {
	deck := readDeck(t, "nosource.sp")

	_, err := reduce.Run(deck, reduce.Options{})
	var te *rctree.TopologyError
	require.ErrorAs(t, err, &te)

	result, err := reduce.Run(deck, reduce.Options{InputNode: "in"})
	require.NoError(t, err)
	assert.Equal(t, "in", result.InputNode)
	assert.Equal(t, "out", result.LoadNode)
}

func TestRunSurfacesSynthesisErrors(t *testing.T) {
	// All capacitance sits at the driven node, so m1 = m2 = 0 and the
	// synthesis equations cannot be inverted.
	_, err := reduce.Run([]byte("* cap at root\nV1 in 0 DC 1\nC1 in 0 1p\nR1 in out 10\n.end\n"), reduce.Options{})
	var de *pimodel.DegenerateNetworkError
	require.ErrorAs(t, err, &de)
}

func TestRunUnknownModel(t *testing.T) {
	_, err := reduce.Run(readDeck(t, "single.sp"), reduce.Options{Model: "bogus"})
	assert.Error(t, err)
}

func TestRunSurfacesParseErrors(t *testing.T) {
	_, err := reduce.Run([]byte("* bad\nR1 a b ten\n"), reduce.Options{})
	var pe *netlist.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)
}

func TestRunFileWritesOutput(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "reduced.sp")

	result, err := reduce.RunFile(filepath.Join("testdata", "ladder.sp"), outPath, reduce.Options{})
	require.NoError(t, err)

	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, result.Output, written)
}

func TestRunFileLeavesNoOutputOnFailure(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "reduced.sp")

	_, err := reduce.RunFile(filepath.Join("testdata", "cycle.sp"), outPath, reduce.Options{})
	require.Error(t, err)

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"input_node: in\nload_node: out\nmodel: double-pi\nverify: true\nverify_points: 12\n"), 0o644))

	opts, err := reduce.LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, "in", opts.InputNode)
	assert.Equal(t, "out", opts.LoadNode)
	assert.Equal(t, reduce.ModelDoublePI, opts.Model)
	assert.True(t, opts.Verify)
	assert.Equal(t, 12, opts.VerifyPoints)
}

func TestLoadOptionsDefaultsModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("verify: true\n"), 0o644))

	opts, err := reduce.LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, reduce.ModelPI, opts.Model)
}

func TestLoadOptionsRejectsUnknownModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: spiral\n"), 0o644))

	_, err := reduce.LoadOptions(path)
	assert.Error(t, err)
}
