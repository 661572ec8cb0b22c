package netlist

import (
	"bytes"
	"fmt"

	"pireduce/pkg/util"
)

// EmitReduced renders the deck with every recognized R/C line removed
// and the replacement elements inserted at the position of the first
// removed line. Passthrough lines are reproduced verbatim in their
// original order. The output is deterministic for a given deck and
// replacement set.
func EmitReduced(deck *Deck, repl []Element) []byte {
	var buf bytes.Buffer
	inserted := false

	for _, line := range deck.Lines {
		if line.Elem < 0 {
			buf.WriteString(line.Text)
			buf.WriteByte('\n')
			continue
		}
		if !inserted {
			for _, e := range repl {
				fmt.Fprintf(&buf, "%s %s %s %s\n", e.Name, e.Nodes[0], e.Nodes[1], util.FormatComponent(e.Value))
			}
			inserted = true
		}
	}

	// All-element deck edge case: replacements still have to appear.
	if !inserted {
		for _, e := range repl {
			fmt.Fprintf(&buf, "%s %s %s %s\n", e.Name, e.Nodes[0], e.Nodes[1], util.FormatComponent(e.Value))
		}
	}

	return buf.Bytes()
}
