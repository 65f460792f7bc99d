// Package visualize exports compiled machines for humans and tools: Graphviz DOT for
// diagrams, JSON and YAML for inspection and diffing.
package visualize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/comalice/beepboop"
)

// ExportDOT generates Graphviz DOT source for the machine. The current state, if any,
// is highlighted; states with an invoke effect get a double border. Immediate
// transitions are dashed.
func ExportDOT(shape beepboop.Shape, current string) string {
	var buf bytes.Buffer
	buf.WriteString(`digraph Machine {
  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
`)

	for _, st := range shape.States {
		if st.Name == shape.Bootstrap {
			fmt.Fprintf(&buf, "  %s [label=\"\" shape=point];\n", quote(st.Name))
			continue
		}
		style := ""
		if st.Invoke {
			style += " peripheries=2"
		}
		if st.Name == current {
			style += " style=filled fillcolor=lightgreen"
		}
		fmt.Fprintf(&buf, "  %s [label=%s%s];\n", quote(st.Name), quote(st.Name), style)
	}

	for _, st := range shape.States {
		for _, t := range st.Transitions {
			label := t.Event
			if t.Guards > 0 {
				label += " [guarded]"
			}
			fmt.Fprintf(&buf, "  %s -> %s [label=%s];\n", quote(st.Name), quote(t.Target), quote(label))
		}
		for _, t := range st.Immediates {
			attrs := "style=dashed"
			if t.Guards > 0 {
				attrs += " label=" + quote("[guarded]")
			}
			fmt.Fprintf(&buf, "  %s -> %s [%s];\n", quote(st.Name), quote(t.Target), attrs)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ExportJSON serializes the shape as indented JSON.
func ExportJSON(shape beepboop.Shape) ([]byte, error) {
	data, err := json.MarshalIndent(shape, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// ExportYAML serializes the shape as YAML.
func ExportYAML(shape beepboop.Shape) ([]byte, error) {
	return yaml.Marshal(shape)
}

// Export renders the shape in the named format: dot, json or yaml.
func Export(format string, shape beepboop.Shape, current string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "dot", "":
		return []byte(ExportDOT(shape, current)), nil
	case "json":
		return ExportJSON(shape)
	case "yaml", "yml":
		return ExportYAML(shape)
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
