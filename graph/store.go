package graph

import (
	"sync"

	"github.com/c360/docgraph/pkg/timestamp"
	"github.com/c360/docgraph/vocabulary"
)

// Store is the in-memory multigraph a single build assembles. All
// methods are safe for concurrent use. Mutations never fail: missing
// endpoints are created as bare stubs so no edge ever dangles, and
// re-adding a node merges instead of duplicating.
//
// A Store is single-use. Each build starts from NewStore; nothing is
// ever removed.
type Store struct {
	mu        sync.RWMutex
	types     map[string]*TypeNode
	records   map[string]*RecordNode
	order     []string
	edges     []*Edge
	instanced map[string]struct{}
}

// NewStore returns an empty graph store.
func NewStore() *Store {
	return &Store{
		types:     make(map[string]*TypeNode),
		records:   make(map[string]*RecordNode),
		instanced: make(map[string]struct{}),
	}
}

// UpsertType inserts or merges a type-node under name. Set incoming
// fields overwrite, zero-valued fields preserve what is already there,
// and Extra keys merge. The Name inside attrs is ignored; name is the
// node key. An empty name is a no-op.
func (s *Store) UpsertType(name string, attrs TypeNode) {
	if name == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.types[name]
	if !ok {
		node = &TypeNode{Name: name}
		s.types[name] = node
		s.order = append(s.order, name)
	}
	mergeTypeNode(node, attrs)
}

// UpsertRecord inserts or merges a record-node, ensures its type-node
// exists (as a stub if undiscovered) and ensures exactly one
// instance_of edge from the record to its type. Re-upserting merges
// attributes without duplicating the edge. A record without both type
// and name is a no-op.
func (s *Store) UpsertRecord(attrs RecordNode) RecordID {
	id := attrs.ID
	if id.Type == "" || id.Name == "" {
		return id
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	node := s.ensureRecordLocked(id)
	mergeRecordNode(node, attrs)
	return id
}

// AddEdge appends one edge of the given kind. Duplicates are not
// checked; the store is a multigraph and discovery decides what to
// dedup. Missing endpoints become stubs: ids containing the record
// separator become record stubs (with their own type stub and
// instance_of edge), anything else becomes a type stub. Empty source,
// target or kind is a no-op.
func (s *Store) AddEdge(source, target, kind string, meta map[string]string) {
	if source == "" || target == "" || kind == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureNodeLocked(source)
	s.ensureNodeLocked(target)
	s.edges = append(s.edges, &Edge{
		Source:    source,
		Target:    target,
		Kind:      kind,
		Meta:      copyMeta(meta),
		CreatedAt: timestamp.Now(),
	})
}

// HasNode reports whether a node with the given id exists.
func (s *Store) HasNode(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.types[id]; ok {
		return true
	}
	_, ok := s.records[id]
	return ok
}

// NodeCount returns the number of nodes across both layers.
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// EdgeCount returns the number of edges.
func (s *Store) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}

// Nodes returns insertion-ordered snapshots of every node with
// materialized attribute maps. The result is detached from the store;
// analytics and export iterate it without holding the lock.
func (s *Store) Nodes() []NodeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]NodeSnapshot, 0, len(s.order))
	for _, id := range s.order {
		if node, ok := s.types[id]; ok {
			out = append(out, NodeSnapshot{ID: id, Attrs: node.Attrs()})
			continue
		}
		if node, ok := s.records[id]; ok {
			out = append(out, NodeSnapshot{ID: id, Attrs: node.Attrs()})
		}
	}
	return out
}

// Edges returns insertion-ordered snapshots of every edge with
// materialized attribute maps.
func (s *Store) Edges() []EdgeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]EdgeSnapshot, 0, len(s.edges))
	for _, e := range s.edges {
		out = append(out, EdgeSnapshot{
			Source: e.Source,
			Target: e.Target,
			Kind:   e.Kind,
			Attrs:  e.Attrs(),
		})
	}
	return out
}

// NodeSnapshot is a detached view of one node.
type NodeSnapshot struct {
	ID    string         `json:"id"`
	Attrs map[string]any `json:"attrs"`
}

// EdgeSnapshot is a detached view of one edge.
type EdgeSnapshot struct {
	Source string         `json:"source"`
	Target string         `json:"target"`
	Kind   string         `json:"kind"`
	Attrs  map[string]any `json:"attrs"`
}

// ensureNodeLocked guarantees a node exists for id, creating the
// appropriate stub flavor when absent. Caller holds the write lock.
func (s *Store) ensureNodeLocked(id string) {
	if _, ok := s.types[id]; ok {
		return
	}
	if _, ok := s.records[id]; ok {
		return
	}
	if rid, ok := ParseRecordID(id); ok {
		s.ensureRecordLocked(rid)
		return
	}
	s.types[id] = &TypeNode{Name: id}
	s.order = append(s.order, id)
}

// ensureRecordLocked guarantees a record-node exists, along with its
// type stub and instance_of edge. Caller holds the write lock.
func (s *Store) ensureRecordLocked(id RecordID) *RecordNode {
	key := id.String()
	if node, ok := s.records[key]; ok {
		return node
	}

	node := &RecordNode{ID: id}
	s.records[key] = node
	s.order = append(s.order, key)

	if _, ok := s.types[id.Type]; !ok {
		s.types[id.Type] = &TypeNode{Name: id.Type}
		s.order = append(s.order, id.Type)
	}

	if _, ok := s.instanced[key]; !ok {
		s.edges = append(s.edges, &Edge{
			Source:    key,
			Target:    id.Type,
			Kind:      vocabulary.KindInstanceOf,
			CreatedAt: timestamp.Now(),
		})
		s.instanced[key] = struct{}{}
	}
	return node
}

func mergeTypeNode(dst *TypeNode, src TypeNode) {
	if src.Module != "" {
		dst.Module = src.Module
	}
	if src.Custom {
		dst.Custom = true
	}
	if src.Virtual {
		dst.Virtual = true
	}
	if src.FieldCount != 0 {
		dst.FieldCount = src.FieldCount
	}
	if src.Submittable {
		dst.Submittable = true
	}
	if src.HasWebView {
		dst.HasWebView = true
	}
	dst.Extra = mergeMeta(dst.Extra, src.Extra)
}

func mergeRecordNode(dst *RecordNode, src RecordNode) {
	if src.Status != "" {
		dst.Status = src.Status
	}
	if src.DocStatus != 0 {
		dst.DocStatus = src.DocStatus
	}
	if src.Created != 0 {
		dst.Created = src.Created
	}
	if src.Modified != 0 {
		dst.Modified = src.Modified
	}
	if src.Customer != "" {
		dst.Customer = src.Customer
	}
	if src.Supplier != "" {
		dst.Supplier = src.Supplier
	}
	if src.Company != "" {
		dst.Company = src.Company
	}
	if src.ItemCode != "" {
		dst.ItemCode = src.ItemCode
	}
	if src.Project != "" {
		dst.Project = src.Project
	}
	dst.Extra = mergeMeta(dst.Extra, src.Extra)
}

func copyMeta(meta map[string]string) map[string]string {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}

func mergeMeta(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
