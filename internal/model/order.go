package model

import "strconv"

// Order groups zero or more items for shipment. Items holds refs in
// insertion order; each referenced item points back at this order.
type Order struct {
	ID          string `json:"id,omitempty"`
	Self        string `json:"self,omitempty"`
	HasShipped  bool   `json:"has_shipped"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	OwnerID     string `json:"owner_id"`
	Items       []Ref  `json:"items"`
	TotalOrders int    `json:"total_orders,omitempty"`
}

// Owner returns the owning subject.
func (o *Order) Owner() string { return o.OwnerID }

// SetOwner binds the order to a subject. Set once at creation.
func (o *Order) SetOwner(owner string) { o.OwnerID = owner }

// Required lists the attributes a create or full-replace payload must carry.
func (o *Order) Required() []string { return []string{"has_shipped", "date", "location"} }

// ApplyPatch overwrites every schema field present in the patch. Unknown
// keys and protected fields (id, owner_id, items) are ignored, as are
// values of the wrong JSON type.
func (o *Order) ApplyPatch(patch map[string]any) {
	if v, ok := patch["has_shipped"].(bool); ok {
		o.HasShipped = v
	}
	if v, ok := patch["date"].(string); ok {
		o.Date = v
	}
	if v, ok := patch["location"].(string); ok {
		o.Location = v
	}
}

// Enrich fills the per-request representation fields.
func (o *Order) Enrich(id int64, self string) {
	o.ID = strconv.FormatInt(id, 10)
	o.Self = self
}

// Strip clears enrichment fields so they are not persisted.
func (o *Order) Strip() {
	o.ID = ""
	o.Self = ""
	o.TotalOrders = 0
}

// SetTotal records the caller's total order count on a list entry.
func (o *Order) SetTotal(n int) { o.TotalOrders = n }
