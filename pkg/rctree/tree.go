package rctree

import (
	"fmt"
	"sort"

	"pireduce/pkg/netlist"
)

// Node is one non-ground node of the RC tree. Cap is the merged
// grounded capacitance at the node; RToParent is the resistance of
// the edge toward the root (0 for the root itself). Nodes are never
// mutated after Build returns.
type Node struct {
	Name      string
	Cap       float64
	RToParent float64
	Parent    *Node
	Children  []*Node
	Depth     int
}

// Tree is a rooted RC tree. The root is the driven input node.
type Tree struct {
	Root  *Node
	nodes map[string]*Node
}

// StructuralError reports a netlist whose R/C topology is not a
// single tree driven from one node.
type StructuralError struct {
	Node   string
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("structural error: %s", e.Reason)
	}
	return fmt.Sprintf("structural error at node %q: %s", e.Node, e.Reason)
}

// TopologyError reports an ambiguous or missing port declaration.
type TopologyError struct {
	Reason string
	Nodes  []string
}

func (e *TopologyError) Error() string {
	if len(e.Nodes) == 0 {
		return fmt.Sprintf("topology error: %s", e.Reason)
	}
	return fmt.Sprintf("topology error: %s: %v", e.Reason, e.Nodes)
}

type edge struct {
	to string
	r  float64
}

// Build roots the flat element list at the input node. It rejects
// cycles, unreachable nodes, resistors with a grounded terminal and
// networks without capacitance; parallel grounded capacitors on one
// node are merged by summation.
func Build(elements []netlist.Element, input string) (*Tree, error) {
	if netlist.IsGround(input) {
		return nil, &TopologyError{Reason: "input node must not be ground"}
	}

	adjacency := make(map[string][]edge)
	caps := make(map[string]float64)
	known := make(map[string]bool)
	totalCap := 0.0

	for _, elem := range elements {
		switch elem.Type {
		case "R":
			a, b := elem.Nodes[0], elem.Nodes[1]
			if netlist.IsGround(a) || netlist.IsGround(b) {
				return nil, &StructuralError{Node: elem.Name, Reason: "resistor terminal on ground"}
			}
			adjacency[a] = append(adjacency[a], edge{to: b, r: elem.Value})
			adjacency[b] = append(adjacency[b], edge{to: a, r: elem.Value})
			known[a], known[b] = true, true
		case "C":
			caps[elem.Nodes[0]] += elem.Value
			known[elem.Nodes[0]] = true
			totalCap += elem.Value
		}
	}

	if !known[input] {
		return nil, &TopologyError{Reason: "input node not present in RC network", Nodes: []string{input}}
	}
	if totalCap <= 0 {
		return nil, &StructuralError{Reason: "network has no capacitance"}
	}

	root := &Node{Name: input, Cap: caps[input]}
	tree := &Tree{Root: root, nodes: map[string]*Node{input: root}}

	// Iterative DFS; a visited neighbor other than the parent means
	// two distinct paths exist to it.
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, e := range adjacency[n.Name] {
			if n.Parent != nil && e.to == n.Parent.Name {
				continue
			}
			if _, seen := tree.nodes[e.to]; seen {
				return nil, &StructuralError{Node: e.to, Reason: "reachable by two distinct paths (cycle)"}
			}
			child := &Node{
				Name:      e.to,
				Cap:       caps[e.to],
				RToParent: e.r,
				Parent:    n,
				Depth:     n.Depth + 1,
			}
			n.Children = append(n.Children, child)
			tree.nodes[e.to] = child
			stack = append(stack, child)
		}
	}

	for name := range known {
		if _, ok := tree.nodes[name]; !ok {
			return nil, &StructuralError{Node: name, Reason: "not reachable from input node"}
		}
	}

	return tree, nil
}

// Node returns the named node, or nil.
func (t *Tree) Node(name string) *Node {
	return t.nodes[name]
}

// Size is the number of nodes including the root.
func (t *Tree) Size() int { return len(t.nodes) }

// TotalCap is the sum of all merged node capacitances.
func (t *Tree) TotalCap() float64 {
	total := 0.0
	for _, n := range t.nodes {
		total += n.Cap
	}
	return total
}

// TotalRes is the sum of all edge resistances.
func (t *Tree) TotalRes() float64 {
	total := 0.0
	for _, n := range t.nodes {
		if n.Parent != nil {
			total += n.RToParent
		}
	}
	return total
}

// PathResistance is the resistance of the unique path from the root
// to the named node.
func (t *Tree) PathResistance(name string) float64 {
	total := 0.0
	for n := t.nodes[name]; n != nil && n.Parent != nil; n = n.Parent {
		total += n.RToParent
	}
	return total
}

// Leaves returns the childless nodes sorted by name.
func (t *Tree) Leaves() []*Node {
	var leaves []*Node
	for _, n := range t.nodes {
		if len(n.Children) == 0 && n != t.Root {
			leaves = append(leaves, n)
		}
	}
	sort.Slice(leaves, func(i, j int) bool { return leaves[i].Name < leaves[j].Name })
	return leaves
}

// LoadNode resolves the output port. An explicit name is validated;
// otherwise the unique leaf is used, and several leaves are an error
// since the load cannot be inferred for a branching tree.
func (t *Tree) LoadNode(explicit string) (string, error) {
	if explicit != "" {
		n := t.nodes[explicit]
		if n == nil {
			return "", &TopologyError{Reason: "load node not present in RC network", Nodes: []string{explicit}}
		}
		if n == t.Root {
			return "", &TopologyError{Reason: "load node equals input node", Nodes: []string{explicit}}
		}
		return explicit, nil
	}

	leaves := t.Leaves()
	switch len(leaves) {
	case 0:
		return "", &TopologyError{Reason: "network has no load leaf"}
	case 1:
		return leaves[0].Name, nil
	}
	names := make([]string, len(leaves))
	for i, l := range leaves {
		names[i] = l.Name
	}
	return "", &TopologyError{Reason: "several leaves, load node is ambiguous", Nodes: names}
}
