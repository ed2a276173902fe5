package vocabulary

import "strings"

// Level identifies which layer of the graph a relationship endpoint
// lives in.
type Level string

const (
	// LevelDoctype is the schema layer: nodes describing entity types.
	LevelDoctype Level = "doctype"

	// LevelDocument is the instance layer: nodes describing individual
	// records.
	LevelDocument Level = "document"
)

// String returns the string representation of the level
func (l Level) String() string {
	return string(l)
}

// Fixed relationship kinds.
const (
	// KindLinksTo connects a doctype to the doctype one of its Link
	// fields points at.
	KindLinksTo = "links_to"

	// KindHasChildTable connects a doctype to the child table doctype
	// one of its Table fields embeds.
	KindHasChildTable = "has_child_table"

	// KindInstanceOf connects a document node to its doctype node.
	KindInstanceOf = "instance_of"
)

// ReferencePrefix prefixes the dynamic document-to-document kinds
// generated from shared field values.
const ReferencePrefix = "references_"

// ReferenceKind returns the dynamic kind for documents related through a
// shared value in the named field: ReferenceKind("customer") is
// "references_customer".
func ReferenceKind(field string) string {
	return ReferencePrefix + field
}

// IsReferenceKind reports whether kind is a well-formed dynamic reference
// kind. The bare prefix with no field name does not qualify.
func IsReferenceKind(kind string) bool {
	return strings.HasPrefix(kind, ReferencePrefix) && len(kind) > len(ReferencePrefix)
}

// ReferenceField extracts the field name from a dynamic reference kind.
// Returns false for kinds that are not reference kinds.
func ReferenceField(kind string) (string, bool) {
	if !IsReferenceKind(kind) {
		return "", false
	}
	return kind[len(ReferencePrefix):], true
}

func init() {
	// KindLinksTo - schema-level link field edges
	Register(KindLinksTo,
		WithDescription("Schema-level link from a doctype's Link field to its target doctype"),
		WithLevels(LevelDoctype, LevelDoctype))

	// KindHasChildTable - schema-level child table edges
	Register(KindHasChildTable,
		WithDescription("Schema-level embedding of a child table doctype"),
		WithLevels(LevelDoctype, LevelDoctype))

	// KindInstanceOf - document to doctype membership
	Register(KindInstanceOf,
		WithDescription("Document is an instance of its doctype"),
		WithLevels(LevelDocument, LevelDoctype))
}
