// Package vocabulary defines the relationship kinds used in the entity
// graph and a registry of their metadata.
//
// # Relationship Kinds
//
// The graph uses three fixed kinds plus one dynamic family:
//
//   - links_to: schema-level, a doctype's Link field points at another
//     doctype
//   - has_child_table: schema-level, a doctype embeds a child table
//     doctype through a Table field
//   - instance_of: a document node belongs to its doctype node
//   - references_<field>: document-level, two documents share a value in
//     the named field (references_customer, references_project, ...)
//
// The dynamic family is constructed with ReferenceKind:
//
//	kind := vocabulary.ReferenceKind("customer") // "references_customer"
//	field, ok := vocabulary.ReferenceField(kind) // "customer", true
//
// # Kind Registry
//
// Kinds carry metadata (description, endpoint levels) in a global
// registry populated by init functions:
//
//	meta := vocabulary.GetKindMetadata(vocabulary.KindInstanceOf)
//	// meta.SourceLevel == vocabulary.LevelDocument
//	// meta.TargetLevel == vocabulary.LevelDoctype
//
// Dynamic reference kinds resolve without explicit registration:
//
//	meta := vocabulary.GetKindMetadata("references_project")
//	// meta.Dynamic == true, both levels LevelDocument
//
// Registration uses functional options and is safe for concurrent use.
// ClearRegistry exists for tests that need an empty registry.
//
// # Curated Associations
//
// AssociationsFor returns the curated fallback associations for core
// business doctypes (Customer, Supplier, Item, ...). The schema resolver
// appends these to every resolution so that well-known relationships
// survive schema fetch failures.
package vocabulary
