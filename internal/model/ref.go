package model

// Ref is a reference to a single resource: its store-assigned numeric id
// and canonical absolute URL.
type Ref struct {
	ID   int64  `json:"id"`
	Self string `json:"self"`
}
