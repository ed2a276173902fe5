package export

import (
	"encoding/xml"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/c360/docgraph/errors"
	"github.com/c360/docgraph/graph"
)

// formatAttr coerces a dynamic attribute value to the string form the
// XML formats carry.
func formatAttr(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// nodeAttrNames returns the union of attribute names across all node
// snapshots, sorted for deterministic key declarations.
func nodeAttrNames(nodes []graph.NodeSnapshot) []string {
	seen := make(map[string]struct{})
	for _, node := range nodes {
		for name := range node.Attrs {
			seen[name] = struct{}{}
		}
	}
	return sortedNames(seen)
}

// edgeAttrNames is nodeAttrNames for edge snapshots.
func edgeAttrNames(edges []graph.EdgeSnapshot) []string {
	seen := make(map[string]struct{})
	for _, edge := range edges {
		for name := range edge.Attrs {
			seen[name] = struct{}{}
		}
	}
	return sortedNames(seen)
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sortedKeys orders one element's attribute map for stable output.
func sortedKeys(attrs map[string]any) []string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeXML(path string, doc any) error {
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "export", "Export", "xml marshal")
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "export", "Export", "output file write")
	}
	return nil
}
