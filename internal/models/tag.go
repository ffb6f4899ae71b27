package models

// Namespace groups tags under an optional prefix ("character" in
// "character:alice"). Names are unique.
type Namespace struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Tag identity is the pair (namespace id or none, name).
type Tag struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	NamespaceID *int64  `db:"namespace_id" json:"namespace_id,omitempty"`
	Namespace   *string `db:"namespace" json:"namespace,omitempty"`
}

// NormalizedName renders the tag in namespace:name form, or the bare name for
// unnamespaced tags.
func (t Tag) NormalizedName() string {
	if t.Namespace != nil && *t.Namespace != "" {
		return *t.Namespace + ":" + t.Name
	}
	return t.Name
}

// Pair returns the tag's identity as a TagPair.
func (t Tag) Pair() TagPair {
	return TagPair{Namespace: t.Namespace, Name: t.Name}
}

// TagPair is a parsed (namespace, name) identity key prior to persistence.
type TagPair struct {
	Namespace *string
	Name      string
}

// Key renders the pair for set membership checks.
func (p TagPair) Key() string {
	if p.Namespace != nil && *p.Namespace != "" {
		return *p.Namespace + ":" + p.Name
	}
	return p.Name
}
