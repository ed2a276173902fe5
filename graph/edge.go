package graph

// Edge is one directed, typed relationship between two nodes. The store
// is a multigraph: any number of edges may exist between the same
// ordered pair, with the same or different kinds.
type Edge struct {
	Source    string            `json:"source"`
	Target    string            `json:"target"`
	Kind      string            `json:"kind"`
	Meta      map[string]string `json:"meta,omitempty"`
	CreatedAt int64             `json:"created_at"`
}

// Attrs materializes the exported attribute map for the edge. Meta keys
// are merged first so the typed fields win on collision.
func (e Edge) Attrs() map[string]any {
	attrs := make(map[string]any, len(e.Meta)+2)
	for k, v := range e.Meta {
		attrs[k] = v
	}
	attrs["relationship_type"] = e.Kind
	attrs["created_at"] = e.CreatedAt
	return attrs
}
