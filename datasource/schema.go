package datasource

// Field kinds with relationship significance. The names mirror the
// backend's own field type vocabulary so schemas round-trip without
// translation tables.
const (
	// FieldKindLink marks a foreign-key style reference to a single
	// record of another entity type.
	FieldKindLink = "Link"

	// FieldKindTable marks an embedded child table whose rows belong
	// to another entity type.
	FieldKindTable = "Table"
)

// Field describes a single field in an entity type's schema.
type Field struct {
	// Name is the field's machine name, unique within its schema.
	Name string `json:"fieldname"`

	// Kind is the backend field type, for example "Data", "Link" or
	// "Table".
	Kind string `json:"fieldtype"`

	// Target is the entity type a Link or Table field points at.
	// Empty for fields without relationship significance.
	Target string `json:"options,omitempty"`
}

// Schema describes an entity type: its identity, classification flags
// and the full field list as the backend reports them.
type Schema struct {
	Name        string  `json:"name"`
	Module      string  `json:"module,omitempty"`
	Custom      bool    `json:"custom"`
	Virtual     bool    `json:"is_virtual"`
	Submittable bool    `json:"is_submittable"`
	HasWebView  bool    `json:"has_web_view"`
	Fields      []Field `json:"fields,omitempty"`
}

// FieldCount returns the number of fields in the schema. Safe to call
// on a nil schema.
func (s *Schema) FieldCount() int {
	if s == nil {
		return 0
	}
	return len(s.Fields)
}
