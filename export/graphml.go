package export

import (
	"encoding/xml"
	"fmt"

	"github.com/c360/docgraph/graph"
)

const graphmlNamespace = "http://graphml.graphdrawing.org/xmlns"

type graphmlDoc struct {
	XMLName xml.Name     `xml:"graphml"`
	XMLNS   string       `xml:"xmlns,attr"`
	Keys    []graphmlKey `xml:"key"`
	Graph   graphmlGraph `xml:"graph"`
}

type graphmlKey struct {
	ID       string `xml:"id,attr"`
	For      string `xml:"for,attr"`
	AttrName string `xml:"attr.name,attr"`
	AttrType string `xml:"attr.type,attr"`
}

type graphmlGraph struct {
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphmlNode `xml:"node"`
	Edges       []graphmlEdge `xml:"edge"`
}

type graphmlNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphmlData `xml:"data"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// writeGraphML renders an attributed GraphML document. Every attribute
// name seen on a node or edge gets a declared string-typed key; data
// elements reference keys by id.
func writeGraphML(path string, nodes []graph.NodeSnapshot, edges []graph.EdgeSnapshot) error {
	nodeKeys := make(map[string]string)
	edgeKeys := make(map[string]string)
	var keys []graphmlKey

	next := 0
	for _, name := range nodeAttrNames(nodes) {
		id := fmt.Sprintf("d%d", next)
		next++
		nodeKeys[name] = id
		keys = append(keys, graphmlKey{ID: id, For: "node", AttrName: name, AttrType: "string"})
	}
	for _, name := range edgeAttrNames(edges) {
		id := fmt.Sprintf("d%d", next)
		next++
		edgeKeys[name] = id
		keys = append(keys, graphmlKey{ID: id, For: "edge", AttrName: name, AttrType: "string"})
	}

	doc := graphmlDoc{
		XMLNS: graphmlNamespace,
		Keys:  keys,
		Graph: graphmlGraph{EdgeDefault: "directed"},
	}
	for _, node := range nodes {
		element := graphmlNode{ID: node.ID}
		for _, name := range sortedKeys(node.Attrs) {
			element.Data = append(element.Data, graphmlData{
				Key:   nodeKeys[name],
				Value: formatAttr(node.Attrs[name]),
			})
		}
		doc.Graph.Nodes = append(doc.Graph.Nodes, element)
	}
	for _, edge := range edges {
		element := graphmlEdge{Source: edge.Source, Target: edge.Target}
		for _, name := range sortedKeys(edge.Attrs) {
			element.Data = append(element.Data, graphmlData{
				Key:   edgeKeys[name],
				Value: formatAttr(edge.Attrs[name]),
			})
		}
		doc.Graph.Edges = append(doc.Graph.Edges, element)
	}

	return writeXML(path, doc)
}
