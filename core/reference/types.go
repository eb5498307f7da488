package reference

// Lookup describes one reference to resolve.
type Lookup struct {
	// ExternalReference is tried first when set.
	ExternalReference string

	// CatalogPath is tried when the external reference did not resolve.
	CatalogPath string

	// Language of the catalog path.
	Language string

	// InstanceID scopes the external reference lookup.
	InstanceID string

	// ShapeIdentifier, when set, restricts external reference matches to one shape.
	ShapeIdentifier string
}

// Resolution is the outcome of a lookup. Both fields are empty when nothing was found.
type Resolution struct {
	ItemID   string `json:"itemId,omitempty"`
	ParentID string `json:"parentId,omitempty"`
}

// Found reports whether an item id was resolved.
func (r Resolution) Found() bool {
	return r.ItemID != ""
}
