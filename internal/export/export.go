// Package export renders a network definition as JSON, YAML, Graphviz DOT
// or Mermaid.
package export

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matijazezelj/fuelnet/pkg/models"
)

// Format names accepted by Render.
const (
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatDOT     = "dot"
	FormatMermaid = "mermaid"
)

// Formats lists every supported format.
var Formats = []string{FormatJSON, FormatYAML, FormatDOT, FormatMermaid}

// Render dispatches to the renderer for format.
func Render(format string, data *models.NetworkData) (string, error) {
	switch format {
	case FormatJSON:
		return JSON(data)
	case FormatYAML:
		return YAML(data)
	case FormatDOT:
		return DOT(data), nil
	case FormatMermaid:
		return Mermaid(data), nil
	default:
		return "", fmt.Errorf("unknown export format %q (supported: %s)", format, strings.Join(Formats, ", "))
	}
}

// ContentType returns the MIME type for a format.
func ContentType(format string) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatDOT:
		return "text/vnd.graphviz"
	default:
		return "text/plain; charset=utf-8"
	}
}

// JSON returns the definition as indented JSON. Empty networks render with
// empty arrays rather than null.
func JSON(data *models.NetworkData) (string, error) {
	b, err := json.MarshalIndent(normalize(data), "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// YAML returns the definition in the same layout the YAML source reads, so
// the output can be loaded back.
func YAML(data *models.NetworkData) (string, error) {
	b, err := yaml.Marshal(normalize(data))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DOT returns the network as an undirected Graphviz graph. Stations are
// shaded by price relative to the rest of the network.
func DOT(data *models.NetworkData) string {
	data = normalize(data)
	lo, hi := priceRange(data.Stations)

	var b strings.Builder
	b.WriteString("graph fuelnet {\n")
	b.WriteString("  node [shape=box, style=filled];\n\n")

	for _, s := range data.Stations {
		fmt.Fprintf(&b, "  %q [label=\"%s\\n%s\", fillcolor=%q];\n",
			s.Key, dotEscape(s.Name), formatPrice(s.Price), priceColor(s.Price, lo, hi))
	}

	b.WriteString("\n")

	for _, c := range data.Connections {
		fmt.Fprintf(&b, "  %q -- %q [label=%q];\n", c.From, c.To, formatWeight(c.Distance))
	}

	b.WriteString("}\n")
	return b.String()
}

// Mermaid returns the network as a Mermaid flowchart. Node ids follow
// station order (s0, s1, ...) so arbitrary keys cannot collide or break the
// syntax; the key is shown in the label. Connections naming unknown keys are
// skipped.
func Mermaid(data *models.NetworkData) string {
	data = normalize(data)

	ids := make(map[string]string, len(data.Stations))
	var b strings.Builder
	b.WriteString("graph LR\n")

	for i, s := range data.Stations {
		id := "s" + strconv.Itoa(i)
		ids[s.Key] = id
		fmt.Fprintf(&b, "  %s[\"%s (%s): %s\"]\n", id, mermaidLabel(s.Name), mermaidLabel(s.Key), formatPrice(s.Price))
	}
	for _, c := range data.Connections {
		from, ok := ids[c.From]
		if !ok {
			continue
		}
		to, ok := ids[c.To]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "  %s ---|%s| %s\n", from, formatWeight(c.Distance), to)
	}

	return b.String()
}

func normalize(data *models.NetworkData) *models.NetworkData {
	out := &models.NetworkData{Stations: []models.StationDef{}, Connections: []models.ConnectionDef{}}
	if data == nil {
		return out
	}
	if data.Stations != nil {
		out.Stations = data.Stations
	}
	if data.Connections != nil {
		out.Connections = data.Connections
	}
	return out
}

func priceRange(stations []models.StationDef) (lo, hi float64) {
	for i, s := range stations {
		if i == 0 || s.Price < lo {
			lo = s.Price
		}
		if i == 0 || s.Price > hi {
			hi = s.Price
		}
	}
	return lo, hi
}

// priceColor maps the cheapest third to green and the dearest third to red.
func priceColor(price, lo, hi float64) string {
	if hi <= lo {
		return "#D5D8DC"
	}
	switch f := (price - lo) / (hi - lo); {
	case f < 1.0/3:
		return "#82E0AA"
	case f < 2.0/3:
		return "#F9E79F"
	default:
		return "#F1948A"
	}
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'g', -1, 64)
}

func dotEscape(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`)
}

// mermaidLabel escapes text for a quoted Mermaid label using entity codes.
func mermaidLabel(s string) string {
	r := strings.NewReplacer("#", "#35;", `"`, "#quot;", "<", "#lt;", ">", "#gt;")
	return r.Replace(s)
}
