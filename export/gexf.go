package export

import (
	"encoding/xml"
	"strconv"

	"github.com/c360/docgraph/graph"
)

const (
	gexfNamespace = "http://www.gexf.net/1.2draft"
	gexfVersion   = "1.2"
)

type gexfDoc struct {
	XMLName xml.Name  `xml:"gexf"`
	XMLNS   string    `xml:"xmlns,attr"`
	Version string    `xml:"version,attr"`
	Graph   gexfGraph `xml:"graph"`
}

type gexfGraph struct {
	DefaultEdgeType string           `xml:"defaultedgetype,attr"`
	Mode            string           `xml:"mode,attr"`
	AttrDecls       []gexfAttributes `xml:"attributes"`
	Nodes           gexfNodes        `xml:"nodes"`
	Edges           gexfEdges        `xml:"edges"`
}

type gexfAttributes struct {
	Class      string          `xml:"class,attr"`
	Attributes []gexfAttribute `xml:"attribute"`
}

type gexfAttribute struct {
	ID    string `xml:"id,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

type gexfNodes struct {
	Nodes []gexfNode `xml:"node"`
}

type gexfNode struct {
	ID        string         `xml:"id,attr"`
	Label     string         `xml:"label,attr"`
	AttValues *gexfAttValues `xml:"attvalues"`
}

type gexfEdges struct {
	Edges []gexfEdge `xml:"edge"`
}

type gexfEdge struct {
	ID        string         `xml:"id,attr"`
	Source    string         `xml:"source,attr"`
	Target    string         `xml:"target,attr"`
	AttValues *gexfAttValues `xml:"attvalues"`
}

type gexfAttValues struct {
	Values []gexfAttValue `xml:"attvalue"`
}

type gexfAttValue struct {
	For   string `xml:"for,attr"`
	Value string `xml:"value,attr"`
}

// writeGEXF renders a static directed GEXF 1.2 document. Attribute ids
// are assigned globally across the node and edge declarations, and
// attvalue entries reference them through the for attribute.
func writeGEXF(path string, nodes []graph.NodeSnapshot, edges []graph.EdgeSnapshot) error {
	nodeAttrIDs := make(map[string]string)
	edgeAttrIDs := make(map[string]string)
	var nodeDecl, edgeDecl []gexfAttribute

	next := 0
	for _, name := range nodeAttrNames(nodes) {
		id := strconv.Itoa(next)
		next++
		nodeAttrIDs[name] = id
		nodeDecl = append(nodeDecl, gexfAttribute{ID: id, Title: name, Type: "string"})
	}
	for _, name := range edgeAttrNames(edges) {
		id := strconv.Itoa(next)
		next++
		edgeAttrIDs[name] = id
		edgeDecl = append(edgeDecl, gexfAttribute{ID: id, Title: name, Type: "string"})
	}

	doc := gexfDoc{
		XMLNS:   gexfNamespace,
		Version: gexfVersion,
		Graph: gexfGraph{
			DefaultEdgeType: "directed",
			Mode:            "static",
		},
	}
	if len(nodeDecl) > 0 {
		doc.Graph.AttrDecls = append(doc.Graph.AttrDecls, gexfAttributes{Class: "node", Attributes: nodeDecl})
	}
	if len(edgeDecl) > 0 {
		doc.Graph.AttrDecls = append(doc.Graph.AttrDecls, gexfAttributes{Class: "edge", Attributes: edgeDecl})
	}

	for _, node := range nodes {
		element := gexfNode{ID: node.ID, Label: node.ID}
		if len(node.Attrs) > 0 {
			values := &gexfAttValues{}
			for _, name := range sortedKeys(node.Attrs) {
				values.Values = append(values.Values, gexfAttValue{
					For:   nodeAttrIDs[name],
					Value: formatAttr(node.Attrs[name]),
				})
			}
			element.AttValues = values
		}
		doc.Graph.Nodes.Nodes = append(doc.Graph.Nodes.Nodes, element)
	}
	for i, edge := range edges {
		element := gexfEdge{
			ID:     strconv.Itoa(i),
			Source: edge.Source,
			Target: edge.Target,
		}
		if len(edge.Attrs) > 0 {
			values := &gexfAttValues{}
			for _, name := range sortedKeys(edge.Attrs) {
				values.Values = append(values.Values, gexfAttValue{
					For:   edgeAttrIDs[name],
					Value: formatAttr(edge.Attrs[name]),
				})
			}
			element.AttValues = values
		}
		doc.Graph.Edges.Edges = append(doc.Graph.Edges.Edges, element)
	}

	return writeXML(path, doc)
}
