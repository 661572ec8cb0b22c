// Package reduce wires the reduction pipeline: parse the deck, root
// the RC tree at the driven node, extract the driving-point moments,
// synthesize the requested equivalent model and emit the reduced
// deck. One invocation, no global state, no partial output.
package reduce

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"pireduce/pkg/moments"
	"pireduce/pkg/netlist"
	"pireduce/pkg/pimodel"
	"pireduce/pkg/rctree"
	"pireduce/pkg/verify"
)

type ModelKind string

const (
	ModelPI       ModelKind = "pi"
	ModelDoublePI ModelKind = "double-pi"
	ModelLumped   ModelKind = "lumped"
)

// Options controls one reduction. Zero values mean: infer the input
// node from the unique driving source, infer the load node from the
// unique leaf, synthesize a PI model, skip verification.
type Options struct {
	InputNode    string    `yaml:"input_node"`
	LoadNode     string    `yaml:"load_node"`
	Model        ModelKind `yaml:"model"`
	Verify       bool      `yaml:"verify"`
	VerifyPoints int       `yaml:"verify_points"`

	Logger *slog.Logger `yaml:"-"`
}

// LoadOptions reads an Options YAML file.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("reading options file: %w", err)
	}
	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("parsing options file %s: %w", path, err)
	}
	if opts.Model == "" {
		opts.Model = ModelPI
	}
	switch opts.Model {
	case ModelPI, ModelDoublePI, ModelLumped:
	default:
		return Options{}, fmt.Errorf("options file %s: unknown model kind %q", path, opts.Model)
	}
	return opts, nil
}

// Result carries every intermediate product of a successful run.
type Result struct {
	InputNode string
	LoadNode  string
	Moments   moments.Vector

	PI       *pimodel.PI
	DoublePI *pimodel.DoublePI
	Lumped   *pimodel.Lumped

	// FitError is the relative third-moment deviation of the PI
	// model (PI runs only).
	FitError     float64
	Verification *verify.Report

	Output []byte
}

// Run reduces a netlist held in memory.
func Run(input []byte, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Model == "" {
		opts.Model = ModelPI
	}

	deck, err := netlist.Parse(string(input))
	if err != nil {
		return nil, err
	}
	log.Debug("parsed deck", "title", deck.Title, "elements", len(deck.Elements), "lines", len(deck.Lines))

	input0, err := resolveInputNode(deck, opts.InputNode)
	if err != nil {
		return nil, err
	}

	tree, err := rctree.Build(deck.Elements, input0)
	if err != nil {
		return nil, err
	}
	log.Debug("built RC tree", "root", input0, "nodes", tree.Size(),
		"total_res", tree.TotalRes(), "total_cap", tree.TotalCap())

	load, err := tree.LoadNode(opts.LoadNode)
	if err != nil {
		return nil, err
	}

	m := moments.Compute(tree)
	log.Debug("computed moments", "m0", m.M0, "m1", m.M1, "m2", m.M2, "m3", m.M3)

	result := &Result{InputNode: input0, LoadNode: load, Moments: m}

	var repl []netlist.Element
	switch opts.Model {
	case ModelPI:
		pi, err := pimodel.Synthesize(m)
		if err != nil {
			return nil, err
		}
		result.PI = &pi
		result.FitError = pimodel.FitError(m, pi)
		log.Debug("synthesized PI model", "r1", pi.R1, "c1", pi.C1, "c2", pi.C2, "fit_error", result.FitError)
		repl = []netlist.Element{
			{Type: "R", Name: "R1", Nodes: []string{input0, load}, Value: pi.R1},
			{Type: "C", Name: "C1", Nodes: []string{input0, "0"}, Value: pi.C1},
			{Type: "C", Name: "C2", Nodes: []string{load, "0"}, Value: pi.C2},
		}
		if opts.Verify {
			report, err := verify.Compare(tree, pi, opts.VerifyPoints)
			if err != nil {
				return nil, fmt.Errorf("verification: %w", err)
			}
			result.Verification = report
			log.Debug("verified PI model", "points", len(report.Samples), "max_rel_err", report.MaxRelErr)
		}

	case ModelDoublePI:
		dp, err := pimodel.SynthesizeDoublePI(tree, m)
		if err != nil {
			return nil, err
		}
		result.DoublePI = &dp
		if dp.Residual > 1e-6 {
			log.Warn("double-PI second moment matched approximately", "residual", dp.Residual)
		}
		mid := freshNode(deck, input0, load, "mid")
		repl = []netlist.Element{
			{Type: "R", Name: "R1", Nodes: []string{input0, mid}, Value: dp.R1},
			{Type: "R", Name: "R2", Nodes: []string{mid, load}, Value: dp.R2},
			{Type: "C", Name: "C1", Nodes: []string{input0, "0"}, Value: dp.C1},
			{Type: "C", Name: "C2", Nodes: []string{mid, "0"}, Value: dp.C2},
			{Type: "C", Name: "C3", Nodes: []string{load, "0"}, Value: dp.C3},
		}
		if opts.Verify {
			report, err := verify.CompareDouble(tree, dp, opts.VerifyPoints)
			if err != nil {
				return nil, fmt.Errorf("verification: %w", err)
			}
			result.Verification = report
			log.Debug("verified double-PI model", "points", len(report.Samples), "max_rel_err", report.MaxRelErr)
		}

	case ModelLumped:
		lp, err := pimodel.SynthesizeLumped(tree)
		if err != nil {
			return nil, err
		}
		result.Lumped = &lp
		log.Debug("synthesized lumped model", "req", lp.Req, "ceq", lp.Ceq)
		repl = []netlist.Element{
			{Type: "R", Name: "RREQ", Nodes: []string{input0, load}, Value: lp.Req},
			{Type: "C", Name: "CREQ", Nodes: []string{load, "0"}, Value: lp.Ceq},
		}
		if opts.Verify {
			report, err := verify.Compare(tree, pimodel.PI{R1: lp.Req, C2: lp.Ceq}, opts.VerifyPoints)
			if err != nil {
				return nil, fmt.Errorf("verification: %w", err)
			}
			result.Verification = report
			log.Debug("verified lumped model", "points", len(report.Samples), "max_rel_err", report.MaxRelErr)
		}

	default:
		return nil, fmt.Errorf("unknown model kind %q", opts.Model)
	}

	result.Output = netlist.EmitReduced(deck, repl)
	return result, nil
}

// RunFile reduces inPath into outPath. The output file is only
// written after every stage succeeded.
func RunFile(inPath, outPath string, opts Options) (*Result, error) {
	input, err := os.ReadFile(inPath)
	if err != nil {
		return nil, fmt.Errorf("reading netlist file: %w", err)
	}

	result, err := Run(input, opts)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(outPath, result.Output, 0o644); err != nil {
		return nil, fmt.Errorf("writing reduced netlist: %w", err)
	}
	return result, nil
}

func resolveInputNode(deck *netlist.Deck, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	switch len(deck.SourceNodes) {
	case 1:
		return deck.SourceNodes[0], nil
	case 0:
		return "", &rctree.TopologyError{Reason: "no driving source found and no input node given"}
	}
	return "", &rctree.StructuralError{Reason: fmt.Sprintf("multiple driving sources: %v", deck.SourceNodes)}
}

// freshNode picks an internal node name not already used by the deck.
func freshNode(deck *netlist.Deck, input, load, base string) string {
	name := base
	for i := 1; deck.HasNode(name) || name == input || name == load; i++ {
		name = fmt.Sprintf("%s%d", base, i)
	}
	return name
}
