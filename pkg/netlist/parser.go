package netlist

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Element is a recognized resistor or grounded capacitor line.
// Capacitor nodes are normalized so Nodes[0] is the signal node and
// Nodes[1] is ground.
type Element struct {
	Type  string // "R" or "C"
	Name  string
	Nodes []string
	Value float64
	Line  int // 1-based source line number
}

// Line is one line of the source deck. Elem indexes into
// Deck.Elements for recognized R/C lines and is -1 for passthrough
// text (sources, subcircuits, dot directives, comments).
type Line struct {
	Number int
	Text   string
	Elem   int
}

// Deck is the parsed netlist. Lines holds every source line in
// original order; passthrough lines are preserved verbatim.
type Deck struct {
	Title       string
	Lines       []Line
	Elements    []Element
	Nodes       map[string]int
	SourceNodes []string // non-ground nodes attached to V/I source lines
}

// ParseError reports a malformed element line.
type ParseError struct {
	Line int
	Text string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %s: %q", e.Line, e.Msg, e.Text)
}

var unitMap = map[string]float64{
	"T":   1e12,  // tera
	"G":   1e9,   // giga
	"meg": 1e6,   // mega
	"K":   1e3,   // kilo
	"k":   1e3,   // kilo
	"m":   1e-3,  // milli
	"u":   1e-6,  // micro
	"n":   1e-9,  // nano
	"p":   1e-12, // pico
	"f":   1e-15, // femto
}

func IsGround(node string) bool {
	return node == "0" || strings.EqualFold(node, "gnd")
}

// Parse reads a SPICE-like deck. The first line is the title and is
// never interpreted. Only R and grounded-C lines are parsed into
// elements; every other line is opaque passthrough.
func Parse(input string) (*Deck, error) {
	deck := &Deck{Nodes: make(map[string]int)}
	scanner := bufio.NewScanner(strings.NewReader(input))

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := Line{Number: lineNo, Text: raw, Elem: -1}

		if lineNo == 1 {
			deck.Title = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "*"))
			deck.Lines = append(deck.Lines, line)
			continue
		}

		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, ".") {
			deck.Lines = append(deck.Lines, line)
			continue
		}

		switch strings.ToUpper(trimmed[:1]) {
		case "R":
			elem, err := parseResistor(trimmed, lineNo)
			if err != nil {
				return nil, err
			}
			line.Elem = len(deck.Elements)
			deck.Elements = append(deck.Elements, *elem)
			deck.addNodes(elem.Nodes)

		case "C":
			elem, err := parseCapacitor(trimmed, lineNo)
			if err != nil {
				return nil, err
			}
			line.Elem = len(deck.Elements)
			deck.Elements = append(deck.Elements, *elem)
			deck.addNodes(elem.Nodes)

		case "V", "I":
			deck.recordSourceNodes(trimmed)
		}

		deck.Lines = append(deck.Lines, line)
	}

	return deck, nil
}

func (d *Deck) addNodes(nodes []string) {
	for _, node := range nodes {
		if IsGround(node) {
			continue
		}
		if _, exists := d.Nodes[node]; !exists {
			d.Nodes[node] = len(d.Nodes)
		}
	}
}

func (d *Deck) recordSourceNodes(line string) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return
	}
	for _, node := range fields[1:3] {
		if IsGround(node) {
			continue
		}
		seen := false
		for _, s := range d.SourceNodes {
			if s == node {
				seen = true
				break
			}
		}
		if !seen {
			d.SourceNodes = append(d.SourceNodes, node)
		}
	}
}

// HasNode reports whether the deck references the node on any R/C
// element line.
func (d *Deck) HasNode(name string) bool {
	_, ok := d.Nodes[name]
	return ok
}

func parseResistor(line string, lineNo int) (*Element, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return nil, &ParseError{Line: lineNo, Text: line, Msg: "resistor needs name, two nodes and a value"}
	}
	value, err := ParseValue(fields[3])
	if err != nil {
		return nil, &ParseError{Line: lineNo, Text: line, Msg: err.Error()}
	}
	if value < 0 {
		return nil, &ParseError{Line: lineNo, Text: line, Msg: "negative resistance"}
	}
	return &Element{
		Type:  "R",
		Name:  fields[0],
		Nodes: []string{fields[1], fields[2]},
		Value: value,
		Line:  lineNo,
	}, nil
}

func parseCapacitor(line string, lineNo int) (*Element, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return nil, &ParseError{Line: lineNo, Text: line, Msg: "capacitor needs name, two nodes and a value"}
	}
	value, err := ParseValue(fields[3])
	if err != nil {
		return nil, &ParseError{Line: lineNo, Text: line, Msg: err.Error()}
	}
	if value < 0 {
		return nil, &ParseError{Line: lineNo, Text: line, Msg: "negative capacitance"}
	}

	n1, n2 := fields[1], fields[2]
	var signal string
	switch {
	case IsGround(n2) && !IsGround(n1):
		signal = n1
	case IsGround(n1) && !IsGround(n2):
		signal = n2
	default:
		return nil, &ParseError{Line: lineNo, Text: line, Msg: "capacitor must have exactly one grounded terminal"}
	}

	return &Element{
		Type:  "C",
		Name:  fields[0],
		Nodes: []string{signal, "0"},
		Value: value,
		Line:  lineNo,
	}, nil
}

var valueRe = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)(meg|[TGMKkmunpf])?s?$`)

// ParseValue - Parse value and factor. 1k -> 1000
func ParseValue(val string) (float64, error) {
	matches := valueRe.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %s", val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	if len(matches) > 2 && matches[2] != "" {
		if multiplier, ok := unitMap[matches[2]]; ok {
			num *= multiplier
		}
	}

	return num, nil
}
