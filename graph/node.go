package graph

import (
	"strings"

	"github.com/c360/docgraph/vocabulary"
)

// IDSeparator joins the two parts of a record-node id.
const IDSeparator = "::"

// unknownValue fills attributes the source never provided.
const unknownValue = "Unknown"

// RecordID identifies a record-node by its entity type and record name.
type RecordID struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// String renders the composite id "Type::Name".
func (id RecordID) String() string {
	return id.Type + IDSeparator + id.Name
}

// ParseRecordID splits a composite node id on the first separator.
// Returns false for ids without one, which identify type-nodes.
func ParseRecordID(s string) (RecordID, bool) {
	idx := strings.Index(s, IDSeparator)
	if idx < 0 {
		return RecordID{}, false
	}
	return RecordID{Type: s[:idx], Name: s[idx+len(IDSeparator):]}, true
}

// TypeNode is one entity type in the schema layer of the graph. A bare
// stub (name only) is created implicitly when an edge or record refers
// to a type that has not been discovered yet; a later upsert fills it
// in.
type TypeNode struct {
	Name        string            `json:"name"`
	Module      string            `json:"module,omitempty"`
	Custom      bool              `json:"custom"`
	Virtual     bool              `json:"is_virtual"`
	FieldCount  int               `json:"field_count"`
	Submittable bool              `json:"is_submittable"`
	HasWebView  bool              `json:"has_web_view"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// Attrs materializes the exported attribute map for the node. Extra
// keys are merged first so the typed fields win on collision.
func (n TypeNode) Attrs() map[string]any {
	attrs := make(map[string]any, len(n.Extra)+7)
	for k, v := range n.Extra {
		attrs[k] = v
	}

	module := n.Module
	if module == "" {
		module = unknownValue
	}

	attrs["node_type"] = vocabulary.LevelDoctype.String()
	attrs["module"] = module
	attrs["is_custom"] = n.Custom
	attrs["is_virtual"] = n.Virtual
	attrs["field_count"] = n.FieldCount
	attrs["is_submittable"] = n.Submittable
	attrs["has_web_view"] = n.HasWebView
	return attrs
}

// RecordNode is one concrete record in the instance layer. Identity is
// the composite RecordID; the node always hangs off its TypeNode via an
// instance_of edge created when the node enters the store.
type RecordNode struct {
	ID        RecordID          `json:"id"`
	Status    string            `json:"status,omitempty"`
	DocStatus int               `json:"docstatus"`
	Created   int64             `json:"created,omitempty"`
	Modified  int64             `json:"modified,omitempty"`
	Customer  string            `json:"customer,omitempty"`
	Supplier  string            `json:"supplier,omitempty"`
	Company   string            `json:"company,omitempty"`
	ItemCode  string            `json:"item_code,omitempty"`
	Project   string            `json:"project,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// Attrs materializes the exported attribute map for the node. Optional
// business attributes appear only when set; timestamps appear only when
// parsed (unparseable source values travel through Extra verbatim).
func (n RecordNode) Attrs() map[string]any {
	attrs := make(map[string]any, len(n.Extra)+6)
	for k, v := range n.Extra {
		attrs[k] = v
	}

	status := n.Status
	if status == "" {
		status = unknownValue
	}

	attrs["node_type"] = vocabulary.LevelDocument.String()
	attrs["doctype"] = n.ID.Type
	attrs["name"] = n.ID.Name
	attrs["status"] = status
	attrs["docstatus"] = n.DocStatus
	if n.Created != 0 {
		attrs["creation"] = n.Created
	}
	if n.Modified != 0 {
		attrs["modified"] = n.Modified
	}
	if n.Customer != "" {
		attrs["customer"] = n.Customer
	}
	if n.Supplier != "" {
		attrs["supplier"] = n.Supplier
	}
	if n.Company != "" {
		attrs["company"] = n.Company
	}
	if n.ItemCode != "" {
		attrs["item_code"] = n.ItemCode
	}
	if n.Project != "" {
		attrs["project"] = n.Project
	}
	return attrs
}
