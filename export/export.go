// Package export serializes graph snapshots to interchange formats.
//
// Three renderers are supported: node-link JSON (the layout graph
// libraries read back directly), GraphML, and GEXF. The XML formats
// carry every attribute as a string with declared keys; the JSON
// format preserves native value types. Output filenames embed the
// export time so repeated builds never overwrite each other.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/c360/docgraph/errors"
	"github.com/c360/docgraph/graph"
)

// Format identifies an export serialization.
type Format string

const (
	FormatJSON    Format = "json"
	FormatGraphML Format = "graphml"
	FormatGEXF    Format = "gexf"
)

// DefaultPrefix names export files when Exporter.Prefix is empty.
const DefaultPrefix = "knowledge_graph"

// ParseFormat resolves a format name. Input is trimmed and lowercased
// before matching.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatGraphML, FormatGEXF:
		return f, nil
	default:
		return "", errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrUnsupportedFormat, name),
			"export", "ParseFormat", "format lookup")
	}
}

// Exporter writes graph snapshots into Dir, one timestamped file per
// Export call.
type Exporter struct {
	// Dir is the output directory, created on first export.
	Dir string

	// Prefix names output files; DefaultPrefix when empty.
	Prefix string

	// now stamps output filenames. Tests pin it for deterministic
	// names; nil means time.Now.
	now func() time.Time
}

// Export renders nodes and edges in the requested format and returns
// the path written. Unknown formats fail before anything touches disk.
func (e *Exporter) Export(nodes []graph.NodeSnapshot, edges []graph.EdgeSnapshot, format Format) (string, error) {
	var write func(string, []graph.NodeSnapshot, []graph.EdgeSnapshot) error
	switch format {
	case FormatJSON:
		write = writeNodeLink
	case FormatGraphML:
		write = writeGraphML
	case FormatGEXF:
		write = writeGEXF
	default:
		return "", errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrUnsupportedFormat, format),
			"export", "Export", "format dispatch")
	}

	dir := e.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.WrapFatal(err, "export", "Export", "output directory creation")
	}

	path := filepath.Join(dir, e.filename(format))
	if err := write(path, nodes, edges); err != nil {
		return "", err
	}
	return path, nil
}

func (e *Exporter) filename(format Format) string {
	prefix := e.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	now := time.Now
	if e.now != nil {
		now = e.now
	}
	return fmt.Sprintf("%s_%s.%s", prefix, now().Format("20060102_150405"), format)
}

// nodeLink is the node-link JSON envelope for a directed multigraph.
type nodeLink struct {
	Directed   bool             `json:"directed"`
	Multigraph bool             `json:"multigraph"`
	Graph      map[string]any   `json:"graph"`
	Nodes      []map[string]any `json:"nodes"`
	Links      []map[string]any `json:"links"`
}

func writeNodeLink(path string, nodes []graph.NodeSnapshot, edges []graph.EdgeSnapshot) error {
	doc := nodeLink{
		Directed:   true,
		Multigraph: true,
		Graph:      map[string]any{},
		Nodes:      make([]map[string]any, 0, len(nodes)),
		Links:      make([]map[string]any, 0, len(edges)),
	}

	for _, node := range nodes {
		entry := make(map[string]any, len(node.Attrs)+1)
		for k, v := range node.Attrs {
			entry[k] = v
		}
		entry["id"] = node.ID
		doc.Nodes = append(doc.Nodes, entry)
	}
	for _, edge := range edges {
		entry := make(map[string]any, len(edge.Attrs)+2)
		for k, v := range edge.Attrs {
			entry[k] = v
		}
		entry["source"] = edge.Source
		entry["target"] = edge.Target
		doc.Links = append(doc.Links, entry)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "export", "Export", "node-link marshal")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "export", "Export", "output file write")
	}
	return nil
}
