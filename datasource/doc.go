// Package datasource defines the contract between the build pipeline
// and a business platform backend.
//
// The central type is Source, implemented by concrete backends such as
// datasource/frappe. A Source answers four questions: is the backend
// reachable (CheckConnection), what entity types does it host
// (ListTypes), how is a type shaped (GetSchema), and what does its data
// look like (SampleRecords).
//
// Schema and Field carry the backend's own field type vocabulary;
// FieldKindLink and FieldKindTable are the two kinds the relationship
// resolver cares about. Record is a loosely typed document map with
// accessors that absorb the usual JSON decoding quirks.
//
// Everything in this package is transport-agnostic. Retries, timeouts
// and authentication live in the implementations.
package datasource
