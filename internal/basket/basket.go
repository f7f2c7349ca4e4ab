// Package basket holds the session-scoped shopping basket snapshot.
//
// The wire shape is a hard contract shared with the legacy storefront and
// with the audit copy stored on orders: a JSON object mapping product IDs to
// either a bare quantity or {"items_by_size": {size: quantity}}.
package basket

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/gin-contrib/sessions"
)

// Session keys owned by this package.
const (
	SessionKey         = "basket"
	SessionKeySaveInfo = "save_info"
)

// Entry is one basket line. Exactly one of the two forms is populated:
// a bare Quantity for simple products, or BySize for size variants.
// The variant is decided here, at the session-state boundary, so handlers
// never inspect raw JSON shapes.
type Entry struct {
	Quantity int
	BySize   map[string]int
}

// IsBySize reports whether the entry is keyed by size variant.
func (e Entry) IsBySize() bool {
	return e.BySize != nil
}

// TotalQuantity sums the units in this entry across sizes.
func (e Entry) TotalQuantity() int {
	if !e.IsBySize() {
		return e.Quantity
	}
	total := 0
	for _, qty := range e.BySize {
		total += qty
	}
	return total
}

// Sizes returns the entry's size keys in sorted order, so line items are
// created deterministically.
func (e Entry) Sizes() []string {
	sizes := make([]string, 0, len(e.BySize))
	for size := range e.BySize {
		sizes = append(sizes, size)
	}
	sort.Strings(sizes)
	return sizes
}

type bySizeWire struct {
	ItemsBySize map[string]int `json:"items_by_size"`
}

// UnmarshalJSON accepts either a bare integer quantity or the
// items_by_size object form.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var qty int
	if err := json.Unmarshal(data, &qty); err == nil {
		if qty <= 0 {
			return fmt.Errorf("basket quantity must be positive, got %d", qty)
		}
		*e = Entry{Quantity: qty}
		return nil
	}

	var wire bySizeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.New("basket entry must be a quantity or an items_by_size object")
	}
	if wire.ItemsBySize == nil {
		return errors.New("basket entry object is missing items_by_size")
	}
	for size, qty := range wire.ItemsBySize {
		if qty <= 0 {
			return fmt.Errorf("basket quantity for size %q must be positive, got %d", size, qty)
		}
	}
	*e = Entry{BySize: wire.ItemsBySize}
	return nil
}

// MarshalJSON writes the entry back in the exact legacy form, so the audit
// copy on an order round-trips with the session snapshot.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.IsBySize() {
		return json.Marshal(bySizeWire{ItemsBySize: e.BySize})
	}
	return json.Marshal(e.Quantity)
}

// Basket maps product IDs (as strings, matching the legacy snapshot) to
// entries.
type Basket map[string]Entry

// IsEmpty reports whether the basket has no entries.
func (b Basket) IsEmpty() bool {
	return len(b) == 0
}

// SortedIDs returns the product IDs in numeric order (string order for any
// non-numeric key), so iteration is deterministic.
func (b Basket) SortedIDs() []string {
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.ParseInt(ids[i], 10, 64)
		z, errB := strconv.ParseInt(ids[j], 10, 64)
		if errA == nil && errB == nil {
			return a < z
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Serialize renders the basket as the legacy JSON snapshot.
func (b Basket) Serialize() (string, error) {
	if b == nil {
		b = Basket{}
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Parse decodes a legacy JSON snapshot into a Basket.
func Parse(raw string) (Basket, error) {
	if raw == "" {
		return Basket{}, nil
	}
	var b Basket
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return nil, err
	}
	return b, nil
}

// FromSession reads the basket snapshot out of the request session.
// A missing or unreadable snapshot yields an empty basket.
func FromSession(session sessions.Session) Basket {
	raw, ok := session.Get(SessionKey).(string)
	if !ok {
		return Basket{}
	}
	b, err := Parse(raw)
	if err != nil {
		return Basket{}
	}
	return b
}

// Save writes the basket snapshot back into the session. The caller is
// responsible for calling session.Save().
func (b Basket) Save(session sessions.Session) error {
	raw, err := b.Serialize()
	if err != nil {
		return err
	}
	session.Set(SessionKey, raw)
	return nil
}

// Clear removes the basket snapshot from the session.
func Clear(session sessions.Session) {
	session.Delete(SessionKey)
}
