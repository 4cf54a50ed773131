// Package export renders computed graphs into external text formats.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/gitlanes/pkg/history"
	"github.com/matzehuels/gitlanes/pkg/layout"
)

// Options configures DOT export.
type Options struct {
	// Detailed includes the author, owner branch, and lane column in node
	// labels. When false, only the short hash and message subject are shown.
	Detailed bool
}

// maxSubjectLen bounds how much of a commit message makes it into a label.
const maxSubjectLen = 50

// ToDOT converts a computed graph to Graphviz DOT format. Nodes are filled
// with their lane color; edges run child to parent and carry the color of
// the outer lane they touch, matching the connector coloring. Parents
// outside the window are omitted.
//
// Merge commits are drawn with a double border, branch tips with a thicker
// outline.
func ToDOT(snap *history.Snapshot, g *layout.Graph, opts Options) string {
	messages := make(map[string]history.Commit, len(snap.Commits))
	for _, c := range snap.Commits {
		messages[c.SHA] = c
	}

	var buf bytes.Buffer
	buf.WriteString("digraph history {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=12, fontcolor=white, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  ranksep=0.35;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	for _, c := range g.Commits {
		label := nodeLabel(c, messages[c.SHA], opts.Detailed)
		attrs := nodeAttrs(c, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", c.SHA, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, c := range g.Commits {
		for _, p := range c.Parents {
			parent, ok := g.Commit(p)
			if !ok {
				continue
			}
			color := c.Color
			if parent.Column > c.Column {
				color = parent.Color
			}
			fmt.Fprintf(&buf, "  %q -> %q [color=%q];\n", c.SHA, p, color)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(c layout.Commit, info history.Commit, detailed bool) string {
	short := info.Short()
	if short == "" {
		short = c.SHA
		if len(short) > 7 {
			short = short[:7]
		}
	}

	label := short
	if s := subject(info.Message); s != "" {
		label += "\n" + s
	}
	if !detailed {
		return label
	}

	parts := []string{fmt.Sprintf("lane: %d", c.Column)}
	if c.OwnerBranch != "" {
		parts = append(parts, "branch: "+c.OwnerBranch)
	}
	if info.Author != "" {
		parts = append(parts, "author: "+info.Author)
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func nodeAttrs(c layout.Commit, label string) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("fillcolor=%q", c.Color),
	}
	if c.IsMerge {
		attrs = append(attrs, "peripheries=2")
	}
	if c.IsBranchTip {
		attrs = append(attrs, "penwidth=2")
	}
	return attrs
}

// subject returns the first line of a commit message, truncated to a
// label-friendly length.
func subject(message string) string {
	line := message
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if len(line) > maxSubjectLen {
		line = line[:maxSubjectLen-3] + "..."
	}
	return line
}
