package model

import "strconv"

// Item is a single stock item owned by one subject. An item sits on at
// most one order at a time; Order is nil while the item is unassigned.
//
// ID, Self and TotalItems are enrichment fields computed per request and
// are never persisted; the stored document holds the remaining fields.
type Item struct {
	ID          string `json:"id,omitempty"`
	Self        string `json:"self,omitempty"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
	OwnerID     string `json:"owner_id"`
	Order       *Ref   `json:"order"`
	TotalItems  int    `json:"total_items,omitempty"`
}

// Owner returns the owning subject.
func (i *Item) Owner() string { return i.OwnerID }

// SetOwner binds the item to a subject. Set once at creation.
func (i *Item) SetOwner(owner string) { i.OwnerID = owner }

// Required lists the attributes a create or full-replace payload must carry.
func (i *Item) Required() []string { return []string{"name", "quantity", "description"} }

// ApplyPatch overwrites every schema field present in the patch. Unknown
// keys and protected fields (id, owner_id, order) are ignored, as are
// values of the wrong JSON type.
func (i *Item) ApplyPatch(patch map[string]any) {
	if v, ok := patch["name"].(string); ok {
		i.Name = v
	}
	if v, ok := patch["quantity"].(float64); ok {
		i.Quantity = int(v)
	}
	if v, ok := patch["description"].(string); ok {
		i.Description = v
	}
}

// Enrich fills the per-request representation fields.
func (i *Item) Enrich(id int64, self string) {
	i.ID = strconv.FormatInt(id, 10)
	i.Self = self
}

// Strip clears enrichment fields so they are not persisted.
func (i *Item) Strip() {
	i.ID = ""
	i.Self = ""
	i.TotalItems = 0
}

// SetTotal records the caller's total item count on a list entry.
func (i *Item) SetTotal(n int) { i.TotalItems = n }
